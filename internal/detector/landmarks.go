// Package detector provides the landmark-source boundary: face and hand
// landmark types, mesh index constants, and detector implementations.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist            = 0
	ThumbCMC         = 1
	ThumbMCP         = 2
	ThumbIP          = 3
	ThumbTip         = 4
	IndexMCP         = 5
	IndexPIP         = 6
	IndexDIP         = 7
	IndexTip         = 8
	MiddleMCP        = 9
	MiddlePIP        = 10
	MiddleDIP        = 11
	MiddleTip        = 12
	RingMCP          = 13
	RingPIP          = 14
	RingDIP          = 15
	RingTip          = 16
	PinkyMCP         = 17
	PinkyPIP         = 18
	PinkyDIP         = 19
	PinkyTip         = 20
	NumHandLandmarks = 21
)

// Face mesh anchor indices following the MediaPipe FaceMesh convention
// (468-point topology). Only the anchors the overlay engine reads are named.
const (
	FaceForehead     = 10
	FaceNoseTip      = 1
	FaceChin         = 152
	FaceLeftCheek    = 234
	FaceRightCheek   = 454
	NumFaceLandmarks = 468
)

// Point3D is a single landmark. X and Y are normalized to [0,1] relative to
// the uncropped intrinsic video frame. Z is a relative depth value; more
// negative means closer to the camera.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks holds the 21 hand landmarks for one detected hand.
type HandLandmarks struct {
	Points     [NumHandLandmarks]Point3D `json:"points"`
	Handedness string                    `json:"handedness"` // "Left" or "Right"
	Score      float64                   `json:"score"`
}

// FaceLandmarks holds the face mesh points for one detected face.
type FaceLandmarks struct {
	Points []Point3D `json:"points"`
	Score  float64   `json:"score"`
}

// Valid reports whether the landmark set carries the full mesh, so the named
// anchor indices can be read safely.
func (f *FaceLandmarks) Valid() bool {
	return f != nil && len(f.Points) >= NumFaceLandmarks
}

// Result is the output of one detector invocation: zero or one face landmark
// set and zero or one hand landmark set for the frame.
type Result struct {
	Face *FaceLandmarks `json:"face,omitempty"`
	Hand *HandLandmarks `json:"hand,omitempty"`
}

// distance3D calculates the Euclidean distance between two 3D points.
func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// FaceWidth returns the normalized distance between the left and right cheek
// anchors, or 0 if the mesh is incomplete.
func (f *FaceLandmarks) FaceWidth() float64 {
	if !f.Valid() {
		return 0
	}
	return distance3D(f.Points[FaceLeftCheek], f.Points[FaceRightCheek])
}

// FaceHeight returns the normalized distance between the forehead and chin
// anchors, or 0 if the mesh is incomplete.
func (f *FaceLandmarks) FaceHeight() float64 {
	if !f.Valid() {
		return 0
	}
	return distance3D(f.Points[FaceForehead], f.Points[FaceChin])
}
