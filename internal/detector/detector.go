package detector

import (
	"errors"

	"gocv.io/x/gocv"
)

// ErrTimestampOrder is returned when Detect is called with a timestamp that
// is not greater than the previous one. The landmark service requires frames
// in video-timestamp order; violating it is a caller error.
var ErrTimestampOrder = errors.New("detector: frame timestamps must be strictly increasing")

// Detector defines the interface for landmark detection implementations.
type Detector interface {
	// Detect analyzes a video frame captured at the given monotonically
	// increasing timestamp (milliseconds) and returns at most one face and
	// one hand landmark set. A Result with nil Face and nil Hand means
	// nothing was detected; that is not an error.
	Detect(frame *gocv.Mat, timestampMs int64) (Result, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for landmark detection.
type Config struct {
	// MinFaceConfidence is the minimum face detection confidence (0.0-1.0).
	MinFaceConfidence float64

	// MinHandConfidence is the minimum hand detection confidence (0.0-1.0).
	MinHandConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinFaceConfidence: 0.5,
		MinHandConfidence: 0.5,
		MinTrackingConf:   0.5,
	}
}
