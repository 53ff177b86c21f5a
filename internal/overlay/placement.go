package overlay

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/bindi/internal/detector"
)

// Strategy selects how the sticker is positioned relative to the face.
// The two strategies produce visibly different placements and are kept as
// separate named behaviors rather than merged.
type Strategy string

const (
	// StrategyNoseOffset places the sticker laterally offset from the nose
	// by a multiple of the face width, on whichever side of the display has
	// more room, and one face width upward.
	StrategyNoseOffset Strategy = "nose-offset"

	// StrategyAboveFace places the sticker directly above the face, centered
	// on the nose and offset upward by 1.5x the sticker's own scaled height.
	StrategyAboveFace Strategy = "above-face"
)

// Valid reports whether s names a known strategy. The empty string is not
// valid here; NewEngine treats it as "use the default".
func (s Strategy) Valid() bool {
	return s == StrategyNoseOffset || s == StrategyAboveFace
}

// Gate selects when the sticker is visible.
type Gate string

const (
	// GatePalmFacing shows the sticker only while a hand is present and its
	// palm faces the camera.
	GatePalmFacing Gate = "palm-facing"

	// GateHandPresence shows the sticker whenever a hand is present.
	GateHandPresence Gate = "hand-presence"
)

// Valid reports whether g names a known gate. The empty string is not valid
// here; NewEngine treats it as "use the default".
func (g Gate) Valid() bool {
	return g == GatePalmFacing || g == GateHandPresence
}

// Placement tuning constants. All of these are defaults for Config fields,
// never read directly by the engine.
const (
	// DefaultBaseSize is the sticker's reference dimension in pixels at
	// scale 1.0.
	DefaultBaseSize = 150.0
	// DefaultMinScale and DefaultMaxScale bound the derived sticker scale.
	DefaultMinScale = 0.8
	DefaultMaxScale = 2.0
	// DefaultLateralOffsetFactor is the nose-offset strategy's horizontal
	// displacement in face widths.
	DefaultLateralOffsetFactor = 1.3
	// DefaultAboveFaceFactor is the above-face strategy's vertical
	// displacement in scaled sticker heights.
	DefaultAboveFaceFactor = 1.5
	// DefaultPalmZRangeMax is the maximum depth spread across the 21 hand
	// landmarks for the hand to count as roughly planar to the camera.
	DefaultPalmZRangeMax = 0.15
)

// Config holds the placement engine's tuning parameters.
type Config struct {
	Strategy            Strategy
	Gate                Gate
	BaseSize            float64
	MinScale            float64
	MaxScale            float64
	LateralOffsetFactor float64
	AboveFaceFactor     float64
	PalmZRangeMax       float64
}

// DefaultEngineConfig returns the default placement configuration:
// nose-offset placement gated on the palm facing the camera.
func DefaultEngineConfig() Config {
	return Config{
		Strategy:            StrategyNoseOffset,
		Gate:                GatePalmFacing,
		BaseSize:            DefaultBaseSize,
		MinScale:            DefaultMinScale,
		MaxScale:            DefaultMaxScale,
		LateralOffsetFactor: DefaultLateralOffsetFactor,
		AboveFaceFactor:     DefaultAboveFaceFactor,
		PalmZRangeMax:       DefaultPalmZRangeMax,
	}
}

// Engine derives the target sticker transform for each frame from the
// frame's landmark sets. It keeps the previous target so position and scale
// persist through frames where no face is detected.
type Engine struct {
	config Config
	last   Transform
	seen   bool
}

// NewEngine creates a placement engine with the given configuration.
// Zero-valued tuning fields fall back to defaults.
func NewEngine(config Config) *Engine {
	def := DefaultEngineConfig()
	if config.Strategy == "" {
		config.Strategy = def.Strategy
	}
	if config.Gate == "" {
		config.Gate = def.Gate
	}
	if config.BaseSize <= 0 {
		config.BaseSize = def.BaseSize
	}
	if config.MinScale <= 0 {
		config.MinScale = def.MinScale
	}
	if config.MaxScale <= 0 {
		config.MaxScale = def.MaxScale
	}
	if config.LateralOffsetFactor <= 0 {
		config.LateralOffsetFactor = def.LateralOffsetFactor
	}
	if config.AboveFaceFactor <= 0 {
		config.AboveFaceFactor = def.AboveFaceFactor
	}
	if config.PalmZRangeMax <= 0 {
		config.PalmZRangeMax = def.PalmZRangeMax
	}

	return &Engine{config: config}
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Target computes the target transform for one frame. The face and hand sets
// may each be nil ("no detection", not an error). Landmarks are projected
// into display space through the mapping before any geometric reasoning.
//
// When no face is present the previous target's position and scale are
// retained; visibility always follows the hand gate for the current frame.
func (e *Engine) Target(face *detector.FaceLandmarks, hand *detector.HandLandmarks, m Mapping, dispW, dispH int) Transform {
	target := e.last

	if face.Valid() {
		nose := m.Project(face.Points[detector.FaceNoseTip])
		leftCheek := m.Project(face.Points[detector.FaceLeftCheek])
		rightCheek := m.Project(face.Points[detector.FaceRightCheek])

		faceWidth := rightCheek.Sub(leftCheek).Norm()

		target.Scale = clamp(faceWidth/e.config.BaseSize, e.config.MinScale, e.config.MaxScale)

		switch e.config.Strategy {
		case StrategyAboveFace:
			target.X = nose.X
			target.Y = nose.Y - e.config.AboveFaceFactor*e.config.BaseSize*target.Scale
		default: // StrategyNoseOffset
			if nose.X < float64(dispW)/2 {
				target.X = nose.X + e.config.LateralOffsetFactor*faceWidth
			} else {
				target.X = nose.X - e.config.LateralOffsetFactor*faceWidth
			}
			target.Y = nose.Y - faceWidth
		}

		target = e.ClampToBounds(target, dispW, dispH)
		e.seen = true
	} else if !e.seen {
		// Nothing anchored yet: park the sticker at the display center at
		// minimum scale until a face shows up.
		target.X = float64(dispW) / 2
		target.Y = float64(dispH) / 2
		target.Scale = e.config.MinScale
	}

	target.Visible = e.visible(hand)
	e.last = target

	return target
}

// visible applies the configured visibility gate to the frame's hand set.
func (e *Engine) visible(hand *detector.HandLandmarks) bool {
	if hand == nil {
		return false
	}
	if e.config.Gate == GateHandPresence {
		return true
	}
	return e.PalmFacingCamera(hand)
}

// PalmFacingCamera reports whether the hand is presented roughly flat toward
// the camera. It is a heuristic proxy, not a pose estimate: the hand counts
// as palm-facing when the mean landmark depth is negative (closer than the
// reference plane) and the depth spread across all 21 landmarks is below
// PalmZRangeMax (not presented edge-on).
func (e *Engine) PalmFacingCamera(hand *detector.HandLandmarks) bool {
	if hand == nil {
		return false
	}

	z := make([]float64, detector.NumHandLandmarks)
	for i, p := range hand.Points {
		z[i] = p.Z
	}

	zRange := floats.Max(z) - floats.Min(z)
	avgZ := stat.Mean(z, nil)

	return avgZ < 0 && zRange < e.config.PalmZRangeMax
}

// ClampToBounds clamps the transform's position so the sticker's bounding
// box (a square of side BaseSize*Scale centered at X,Y) stays fully inside
// the display rectangle. When the sticker is larger than the display along
// an axis it is centered on that axis.
func (e *Engine) ClampToBounds(t Transform, dispW, dispH int) Transform {
	half := e.config.BaseSize * t.Scale / 2

	t.X = clampCenter(t.X, half, float64(dispW))
	t.Y = clampCenter(t.Y, half, float64(dispH))

	return t
}

// clampCenter clamps a box center coordinate so [c-half, c+half] fits in
// [0, limit]; an oversized box is centered.
func clampCenter(c, half, limit float64) float64 {
	if 2*half >= limit {
		return limit / 2
	}
	return clamp(c, half, limit-half)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
