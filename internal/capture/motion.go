package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion detection constants
const (
	// motionProbeWidth is the width frames are downscaled to before
	// differencing; full-resolution differencing is wasted work for a
	// yes/no activity signal.
	motionProbeWidth = 320
	// motionBlurSize is the Gaussian kernel size used to suppress sensor noise.
	motionBlurSize = 15
	// motionDiffThreshold is the per-pixel binary threshold on the frame difference.
	motionDiffThreshold = 25
)

// MotionDetector reports whether anything is moving in front of the camera,
// using downscaled frame differencing. The session loop uses it to throttle
// the frame rate while the scene is still.
type MotionDetector struct {
	threshold   float64
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewMotionDetector creates a MotionDetector. The threshold is the
// percentage of probe pixels that must change for the frame to count as
// motion (1.0 means 1%).
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		prevGray:  gocv.NewMat(),
	}
}

// Detect compares the frame against the previous one and returns whether
// motion was seen along with the percentage of changed pixels. The first
// frame establishes the baseline and never counts as motion.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	probe := gocv.NewMat()
	defer probe.Close()

	probeHeight := frame.Rows() * motionProbeWidth / frame.Cols()
	gocv.Resize(*frame, &probe, image.Point{X: motionProbeWidth, Y: probeHeight}, 0, 0, gocv.InterpolationArea)

	gray := gocv.NewMat()
	defer gray.Close()

	if probe.Channels() > 1 {
		gocv.CvtColor(probe, &gray, gocv.ColorBGRToGray)
	} else {
		probe.CopyTo(&gray)
	}

	gocv.GaussianBlur(gray, &gray, image.Point{X: motionBlurSize, Y: motionBlurSize}, 0, 0, gocv.BorderDefault)

	if !m.initialized {
		gray.CopyTo(&m.prevGray)
		m.initialized = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(gray, m.prevGray, &diff)

	gocv.Threshold(diff, &diff, motionDiffThreshold, 255, gocv.ThresholdBinary)

	changed := gocv.CountNonZero(diff)
	total := diff.Rows() * diff.Cols()
	changePercent := float64(changed) / float64(total) * 100.0

	gray.CopyTo(&m.prevGray)

	return changePercent > m.threshold, changePercent
}

// Reset clears the baseline so the next frame re-establishes it.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
}

// Close releases resources used by the motion detector.
func (m *MotionDetector) Close() {
	m.Reset()
}
