package overlay

// Smoothing defaults. Position settles a little faster than scale by tuning.
const (
	// DefaultPositionAlpha is the per-frame blend fraction for X and Y.
	DefaultPositionAlpha = 0.25
	// DefaultScaleAlpha is the per-frame blend fraction for scale.
	DefaultScaleAlpha = 0.20
)

// Smoother owns the displayed transform and blends it toward the target
// transform once per frame with first-order exponential smoothing, applied
// independently per scalar channel (x, y, scale). Visibility is never
// blended; it switches on the frame the gate changes state.
//
// The Smoother is not safe for concurrent use: the render loop owns it and
// steps it exactly once per frame.
type Smoother struct {
	positionAlpha float64
	scaleAlpha    float64
	displayed     Transform
	primed        bool
}

// NewSmoother creates a Smoother with the given blend fractions. Values
// outside (0, 1] fall back to the defaults.
func NewSmoother(positionAlpha, scaleAlpha float64) *Smoother {
	if positionAlpha <= 0 || positionAlpha > 1 {
		positionAlpha = DefaultPositionAlpha
	}
	if scaleAlpha <= 0 || scaleAlpha > 1 {
		scaleAlpha = DefaultScaleAlpha
	}

	return &Smoother{
		positionAlpha: positionAlpha,
		scaleAlpha:    scaleAlpha,
	}
}

// Step blends the displayed transform one frame toward the target and
// returns the result. The first call snaps directly to the target so the
// sticker does not fly in from the zero origin.
func (s *Smoother) Step(target Transform) Transform {
	if !s.primed {
		s.displayed = target
		s.primed = true
		return s.displayed
	}

	s.displayed.X += (target.X - s.displayed.X) * s.positionAlpha
	s.displayed.Y += (target.Y - s.displayed.Y) * s.positionAlpha
	s.displayed.Scale += (target.Scale - s.displayed.Scale) * s.scaleAlpha
	s.displayed.Visible = target.Visible

	return s.displayed
}

// Displayed returns the current displayed transform without advancing it.
func (s *Smoother) Displayed() Transform {
	return s.displayed
}

// Reset clears the smoother so the next Step snaps to its target.
func (s *Smoother) Reset() {
	s.displayed = Transform{}
	s.primed = false
}
