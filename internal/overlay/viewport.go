// Package overlay computes where the sticker is drawn: it remaps normalized
// landmarks into the displayed viewport, derives a target transform from face
// and hand landmarks, and smooths the displayed transform between frames.
package overlay

import (
	"errors"

	"github.com/golang/geo/r2"

	"github.com/ayusman/bindi/internal/detector"
)

// ErrVideoNotReady is returned when the video's intrinsic size is not yet
// known (width or height is 0). Callers must skip the frame and retry.
var ErrVideoNotReady = errors.New("video intrinsic size not available")

// Mapping describes which rectangle of the source video is visible on the
// display surface under cover fitting, and how it scales to display pixels.
// A Mapping is derived fresh every frame; it is never mutated incrementally.
type Mapping struct {
	VideoW     float64 // video intrinsic width, px
	VideoH     float64 // video intrinsic height, px
	SrcOffsetX float64 // left edge of the visible crop window, intrinsic px
	SrcOffsetY float64 // top edge of the visible crop window, intrinsic px
	SrcCropW   float64 // crop window width, intrinsic px
	SrcCropH   float64 // crop window height, intrinsic px
	ScaleX     float64 // display px per intrinsic px, horizontal
	ScaleY     float64 // display px per intrinsic px, vertical
}

// ComputeMapping computes the cover-fit mapping from a video's intrinsic size
// to a display surface. The video is scaled uniformly so it fully covers the
// display rectangle; the overflow along one axis is cropped, centered.
//
// Returns ErrVideoNotReady if either video dimension is 0 (metadata not
// loaded yet). Display dimensions must be positive.
func ComputeMapping(videoW, videoH, dispW, dispH int) (Mapping, error) {
	if videoW <= 0 || videoH <= 0 {
		return Mapping{}, ErrVideoNotReady
	}
	if dispW <= 0 || dispH <= 0 {
		return Mapping{}, errors.New("display dimensions must be positive")
	}

	vw := float64(videoW)
	vh := float64(videoH)
	dw := float64(dispW)
	dh := float64(dispH)

	videoAspect := vw / vh
	displayAspect := dw / dh

	m := Mapping{VideoW: vw, VideoH: vh, SrcCropW: vw, SrcCropH: vh}

	switch {
	case videoAspect > displayAspect:
		// Video is proportionally wider than the display: the full intrinsic
		// height maps to the display height and the sides are cropped.
		m.SrcCropW = vh * displayAspect
		m.SrcOffsetX = (vw - m.SrcCropW) / 2
	case videoAspect < displayAspect:
		// Video is proportionally taller: crop top and bottom symmetrically.
		m.SrcCropH = vw / displayAspect
		m.SrcOffsetY = (vh - m.SrcCropH) / 2
	}

	m.ScaleX = dw / m.SrcCropW
	m.ScaleY = dh / m.SrcCropH

	return m, nil
}

// Project maps a normalized landmark (x, y in [0,1] relative to the uncropped
// intrinsic frame) into display-surface pixel coordinates. Points inside the
// cropped-away margins project outside the display rectangle.
func (m Mapping) Project(p detector.Point3D) r2.Point {
	ix := p.X * m.VideoW
	iy := p.Y * m.VideoH
	return r2.Point{
		X: (ix - m.SrcOffsetX) * m.ScaleX,
		Y: (iy - m.SrcOffsetY) * m.ScaleY,
	}
}

// Unproject maps a display-surface point back into intrinsic pixel
// coordinates. It is the inverse of Project for points inside the crop
// window, and is used when compositing at intrinsic resolution.
func (m Mapping) Unproject(p r2.Point) r2.Point {
	return r2.Point{
		X: p.X/m.ScaleX + m.SrcOffsetX,
		Y: p.Y/m.ScaleY + m.SrcOffsetY,
	}
}
