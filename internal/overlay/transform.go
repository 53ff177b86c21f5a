package overlay

// Transform describes how and where the sticker is drawn on the display
// surface: the center position in display pixels, a uniform scale factor
// applied to the sticker's base size, and a visibility flag.
//
// Two instances exist at runtime: the target transform, computed fresh each
// frame by the Engine, and the displayed transform, owned by the render loop
// and stepped toward the target by the Smoother.
type Transform struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Scale   float64 `json:"scale"`
	Visible bool    `json:"visible"`
}
