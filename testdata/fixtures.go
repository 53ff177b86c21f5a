// Package testdata synthesizes camera frames and sticker images for tests,
// so no binary fixtures need to live in the repo.
package testdata

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"gocv.io/x/gocv"
)

// SolidFrame returns a single-color BGR frame.
func SolidFrame(width, height int, b, g, r float64) *gocv.Mat {
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(b, g, r, 0), height, width, gocv.MatTypeCV8UC3)
	return &m
}

// MovingSequence returns frames of a bright square sliding across a dark
// background, enough pixel change per frame to trip motion detection.
func MovingSequence(width, height, count int) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, count)
	side := height / 4
	steps := count - 1
	if steps < 1 {
		steps = 1
	}

	for i := 0; i < count; i++ {
		frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(20, 20, 20, 0), height, width, gocv.MatTypeCV8UC3)

		x := (width - side) * i / steps
		rect := image.Rect(x, height/2-side/2, x+side, height/2+side/2)
		gocv.Rectangle(&frame, rect, color.RGBA{R: 240, G: 240, B: 240, A: 255}, -1)

		frames = append(frames, &frame)
	}

	return frames
}

// WriteStickerPNG writes an opaque square sticker image to path.
func WriteStickerPNG(path string, side int, c color.NRGBA) error {
	img := image.NewNRGBA(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			img.Set(x, y, c)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sticker %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode sticker %s: %w", path, err)
	}
	return nil
}

// CloseFrames releases a frame slice.
func CloseFrames(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}
