package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	result   Result
	err      error
	lastTsMs int64
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{lastTsMs: -1}
}

// SetResult sets the result that will be returned by Detect.
func (m *MockDetector) SetResult(result Result) {
	m.result = result
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured result or error. Like the real
// detector, it rejects out-of-order timestamps.
func (m *MockDetector) Detect(frame *gocv.Mat, timestampMs int64) (Result, error) {
	if timestampMs <= m.lastTsMs {
		return Result{}, ErrTimestampOrder
	}
	m.lastTsMs = timestampMs

	if m.err != nil {
		return Result{}, m.err
	}
	return m.result, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// FaceAt returns a synthetic full face mesh centered on the nose position
// (cx, cy) in normalized coordinates, with the given normalized face width.
// The named anchor indices are placed at geometrically meaningful positions;
// the remaining mesh points are spread over the face oval.
func FaceAt(cx, cy, width float64) FaceLandmarks {
	height := width * 1.4

	face := FaceLandmarks{
		Points: make([]Point3D, NumFaceLandmarks),
		Score:  0.95,
	}

	// Fill the mesh with points inside the face oval so distance or midpoint
	// computations over arbitrary indices stay plausible.
	for i := range face.Points {
		fx := float64(i%24)/23.0 - 0.5 // [-0.5, 0.5]
		fy := float64(i/24)/19.0 - 0.5
		face.Points[i] = Point3D{
			X: cx + fx*width*0.8,
			Y: cy + fy*height*0.8,
			Z: -0.02,
		}
	}

	face.Points[FaceNoseTip] = Point3D{X: cx, Y: cy, Z: -0.05}
	face.Points[FaceLeftCheek] = Point3D{X: cx - width/2, Y: cy, Z: 0.01}
	face.Points[FaceRightCheek] = Point3D{X: cx + width/2, Y: cy, Z: 0.01}
	face.Points[FaceForehead] = Point3D{X: cx, Y: cy - height/2, Z: -0.01}
	face.Points[FaceChin] = Point3D{X: cx, Y: cy + height/2, Z: -0.01}

	return face
}

// CenteredFace returns a synthetic face mesh centered in the frame.
func CenteredFace() FaceLandmarks {
	return FaceAt(0.5, 0.5, 0.25)
}

// PalmFacingHand returns a synthetic hand presented flat toward the camera:
// every landmark shares the same slightly negative depth.
func PalmFacingHand() HandLandmarks {
	hand := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	for i := range hand.Points {
		hand.Points[i] = Point3D{
			X: 0.65 + 0.01*float64(i%5),
			Y: 0.55 + 0.015*float64(i/5),
			Z: -0.1,
		}
	}

	return hand
}

// EdgeOnHand returns a synthetic hand presented edge-on to the camera: the
// landmark depths span a wide range even though their mean is near zero.
func EdgeOnHand() HandLandmarks {
	hand := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	for i := range hand.Points {
		t := float64(i) / float64(NumHandLandmarks-1)
		hand.Points[i] = Point3D{
			X: 0.65,
			Y: 0.55 + 0.01*float64(i),
			Z: -0.2 + 0.4*t, // spans [-0.2, 0.2]
		}
	}

	return hand
}
