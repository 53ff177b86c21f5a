package overlay

import (
	"math"
	"testing"
)

func TestSmoother_FirstStepSnaps(t *testing.T) {
	s := NewSmoother(DefaultPositionAlpha, DefaultScaleAlpha)

	target := Transform{X: 100, Y: 200, Scale: 1.5, Visible: true}
	displayed := s.Step(target)

	if displayed != target {
		t.Errorf("first step = %+v, want snap to %+v", displayed, target)
	}
}

func TestSmoother_BlendsTowardTarget(t *testing.T) {
	s := NewSmoother(0.25, 0.20)

	s.Step(Transform{X: 0, Y: 0, Scale: 1.0})
	displayed := s.Step(Transform{X: 100, Y: 200, Scale: 2.0})

	if math.Abs(displayed.X-25) > epsilon {
		t.Errorf("X after one step = %f, want 25", displayed.X)
	}
	if math.Abs(displayed.Y-50) > epsilon {
		t.Errorf("Y after one step = %f, want 50", displayed.Y)
	}
	if math.Abs(displayed.Scale-1.2) > epsilon {
		t.Errorf("Scale after one step = %f, want 1.2", displayed.Scale)
	}
}

func TestSmoother_ConvergesToConstantTarget(t *testing.T) {
	s := NewSmoother(DefaultPositionAlpha, DefaultScaleAlpha)

	s.Step(Transform{X: 0, Y: 0, Scale: 1.0})

	target := Transform{X: 500, Y: 300, Scale: 1.8, Visible: true}
	var displayed Transform
	for i := 0; i < 50; i++ {
		displayed = s.Step(target)
	}

	// Geometric decay with ratio (1-alpha): after 50 steps the residual is
	// far below 0.01% of the step size.
	if math.Abs(displayed.X-target.X) > target.X*1e-4 {
		t.Errorf("X after 50 steps = %f, want within 0.01%% of %f", displayed.X, target.X)
	}
	if math.Abs(displayed.Y-target.Y) > target.Y*1e-4 {
		t.Errorf("Y after 50 steps = %f, want within 0.01%% of %f", displayed.Y, target.Y)
	}
	if math.Abs(displayed.Scale-target.Scale) > target.Scale*1e-4 {
		t.Errorf("Scale after 50 steps = %f, want within 0.01%% of %f", displayed.Scale, target.Scale)
	}
}

func TestSmoother_VisibilitySwitchesImmediately(t *testing.T) {
	s := NewSmoother(DefaultPositionAlpha, DefaultScaleAlpha)

	s.Step(Transform{X: 0, Y: 0, Scale: 1.0, Visible: false})

	displayed := s.Step(Transform{X: 100, Y: 100, Scale: 1.0, Visible: true})
	if !displayed.Visible {
		t.Error("visibility should switch on the frame the target becomes visible")
	}

	displayed = s.Step(Transform{X: 100, Y: 100, Scale: 1.0, Visible: false})
	if displayed.Visible {
		t.Error("visibility should switch off immediately, not decay")
	}
}

func TestSmoother_ClampedStepStaysInBounds(t *testing.T) {
	// Blending two individually in-bounds transforms can still push the
	// bounding box over an edge when their scales differ, so the displayed
	// transform is re-clamped after every smoothing step. Verify one step
	// from an in-bounds prior, re-clamped, is in bounds.
	const dispW, dispH = 390, 844

	engine := NewEngine(DefaultEngineConfig())
	s := NewSmoother(DefaultPositionAlpha, DefaultScaleAlpha)

	prior := engine.ClampToBounds(Transform{X: 80, Y: 80, Scale: 1.0}, dispW, dispH)
	s.Step(prior)

	target := engine.ClampToBounds(Transform{X: 120, Y: 60, Scale: 2.0}, dispW, dispH)
	displayed := engine.ClampToBounds(s.Step(target), dispW, dispH)

	half := DefaultBaseSize * displayed.Scale / 2
	if displayed.X-half < -epsilon || displayed.X+half > dispW+epsilon {
		t.Errorf("smoothed X %f with half-size %f exceeds display width", displayed.X, half)
	}
	if displayed.Y-half < -epsilon || displayed.Y+half > dispH+epsilon {
		t.Errorf("smoothed Y %f with half-size %f exceeds display height", displayed.Y, half)
	}
}

func TestSmoother_Reset(t *testing.T) {
	s := NewSmoother(DefaultPositionAlpha, DefaultScaleAlpha)

	s.Step(Transform{X: 50, Y: 50, Scale: 1.0})
	s.Step(Transform{X: 100, Y: 100, Scale: 1.5})

	s.Reset()

	target := Transform{X: 300, Y: 400, Scale: 1.2, Visible: true}
	displayed := s.Step(target)

	if displayed != target {
		t.Errorf("step after Reset = %+v, want snap to %+v", displayed, target)
	}
}

func TestNewSmoother_InvalidAlphasUseDefaults(t *testing.T) {
	cases := []struct {
		name               string
		posAlpha, sclAlpha float64
	}{
		{"zero alphas", 0, 0},
		{"negative alphas", -1, -0.5},
		{"alphas above one", 1.5, 2.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSmoother(tc.posAlpha, tc.sclAlpha)

			s.Step(Transform{})
			displayed := s.Step(Transform{X: 100, Scale: 1.0})

			if math.Abs(displayed.X-100*DefaultPositionAlpha) > epsilon {
				t.Errorf("X = %f, want default position alpha applied", displayed.X)
			}
			if math.Abs(displayed.Scale-1.0*DefaultScaleAlpha) > epsilon {
				t.Errorf("Scale = %f, want default scale alpha applied", displayed.Scale)
			}
		})
	}
}
