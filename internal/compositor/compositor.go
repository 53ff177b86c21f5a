// Package compositor draws the sticker overlay onto video frames. Frames
// are composited at the video's intrinsic resolution, not the display
// resolution, so exported stills carry full sensor detail regardless of the
// viewer's pixel density.
package compositor

import (
	"errors"
	"image"

	"github.com/golang/geo/r2"
	"gocv.io/x/gocv"

	"github.com/ayusman/bindi/internal/overlay"
)

// ErrBadSticker is returned when the sticker mat is not 4-channel BGRA.
var ErrBadSticker = errors.New("sticker image must be BGRA")

// Compositor renders a sticker onto frames according to an overlay
// transform. BaseSize is the sticker's reference dimension in display
// pixels at scale 1.0 and must match the placement engine's value.
type Compositor struct {
	baseSize float64
}

// New creates a Compositor with the given sticker base size.
func New(baseSize float64) *Compositor {
	if baseSize <= 0 {
		baseSize = overlay.DefaultBaseSize
	}
	return &Compositor{baseSize: baseSize}
}

// Compose draws the sticker onto the frame in place. The transform is in
// display-space coordinates; the mapping converts it back into the frame's
// intrinsic pixel space. An invisible transform is a no-op.
func (c *Compositor) Compose(frame *gocv.Mat, stickerMat *gocv.Mat, t overlay.Transform, m overlay.Mapping) error {
	if !t.Visible {
		return nil
	}
	if stickerMat == nil || stickerMat.Empty() {
		return nil
	}
	if stickerMat.Channels() != 4 {
		return ErrBadSticker
	}

	// Sticker box in display pixels, mapped back to intrinsic pixels.
	sideDisp := c.baseSize * t.Scale
	center := m.Unproject(r2.Point{X: t.X, Y: t.Y})
	w := int(sideDisp / m.ScaleX)
	h := int(sideDisp / m.ScaleY)
	if w < 1 || h < 1 {
		return nil
	}

	x0 := int(center.X) - w/2
	y0 := int(center.Y) - h/2

	// The placement engine keeps the box inside the display, which lies
	// inside the crop window, but guard against rounding at the edges.
	rect := image.Rect(x0, y0, x0+w, y0+h).Intersect(image.Rect(0, 0, frame.Cols(), frame.Rows()))
	if rect.Empty() {
		return nil
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(*stickerMat, &resized, image.Point{X: w, Y: h}, 0, 0, gocv.InterpolationLinear)

	// Portion of the resized sticker that survived the clip.
	srcRect := image.Rect(rect.Min.X-x0, rect.Min.Y-y0, rect.Max.X-x0, rect.Max.Y-y0)
	src := resized.Region(srcRect)
	defer src.Close()

	roi := frame.Region(rect)
	defer roi.Close()

	return blendBGRA(&roi, &src)
}

// blendBGRA alpha-blends a BGRA source onto a BGR destination in place.
func blendBGRA(dst *gocv.Mat, src *gocv.Mat) error {
	channels := gocv.Split(*src)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()
	if len(channels) != 4 {
		return ErrBadSticker
	}

	// alpha in [0,1], replicated across the three color channels.
	alpha := gocv.NewMat()
	defer alpha.Close()
	channels[3].ConvertToWithParams(&alpha, gocv.MatTypeCV32F, 1.0/255.0, 0)

	alpha3 := gocv.NewMat()
	defer alpha3.Close()
	gocv.Merge([]gocv.Mat{alpha, alpha, alpha}, &alpha3)

	fg := gocv.NewMat()
	defer fg.Close()
	gocv.Merge([]gocv.Mat{channels[0], channels[1], channels[2]}, &fg)
	fg.ConvertTo(&fg, gocv.MatTypeCV32FC3)

	bg := gocv.NewMat()
	defer bg.Close()
	dst.ConvertTo(&bg, gocv.MatTypeCV32FC3)

	// out = fg*alpha + bg*(1-alpha)
	gocv.Multiply(fg, alpha3, &fg)

	inv := gocv.NewMat()
	defer inv.Close()
	ones := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(1, 1, 1, 0), alpha3.Rows(), alpha3.Cols(), gocv.MatTypeCV32FC3)
	defer ones.Close()
	gocv.Subtract(ones, alpha3, &inv)
	gocv.Multiply(bg, inv, &bg)

	out := gocv.NewMat()
	defer out.Close()
	gocv.Add(fg, bg, &out)
	out.ConvertTo(&out, gocv.MatTypeCV8UC3)
	out.CopyTo(dst)

	return nil
}
