package viewer

import "math"

// unitSnap absorbs float drift when steps add back up to natural size
const unitSnap = 1e-9

// Mode reports whether a gesture is in progress
type Mode int

const (
	Idle Mode = iota
	Gesturing
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Gesturing:
		return "gesturing"
	default:
		return "unknown"
	}
}

// Engine owns the Transform of a single displayed image.
//
// Every operation is synchronous and total: out-of-range input is clamped or
// normalized, never rejected. An Engine is not safe for concurrent use; it is
// meant to be driven from the host's event loop.
type Engine struct {
	cfg Config
	t   Transform

	// Container size, used to turn pivots into centre-relative offsets
	viewW, viewH float64

	gesture gestureState
}

// NewEngine creates an engine at identity with the given config
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stops := make([]float64, len(cfg.ClickStops))
	copy(stops, cfg.ClickStops)
	cfg.ClickStops = stops

	e := &Engine{cfg: cfg, t: Identity()}
	e.gesture.reset()
	return e, nil
}

// NewDefaultEngine creates an engine with DefaultConfig
func NewDefaultEngine() *Engine {
	e, err := NewEngine(DefaultConfig())
	if err != nil {
		panic(err) // DefaultConfig always validates
	}
	return e
}

// Config returns the engine settings
func (e *Engine) Config() Config {
	return e.cfg
}

// Transform returns the current transform
func (e *Engine) Transform() Transform {
	return e.t
}

// Mode returns Gesturing while a pinch or drag is tracked
func (e *Engine) Mode() Mode {
	if e.gesture.pinching || e.gesture.dragging {
		return Gesturing
	}
	return Idle
}

// SetViewport records the container size so pivots can be expressed in
// container coordinates (origin top-left).
func (e *Engine) SetViewport(width, height float64) {
	e.viewW = width
	e.viewH = height
}

// Viewport returns the container size last set with SetViewport
func (e *Engine) Viewport() (float64, float64) {
	return e.viewW, e.viewH
}

func (e *Engine) center() Point {
	return Point{X: e.viewW / 2, Y: e.viewH / 2}
}

// ZoomTo sets the scale to target clamped to [MinZoom, MaxZoom]. When pivot is
// non-nil the content under it stays where it is on screen. Reaching natural
// size or below recentres the image, since drags are disabled there.
func (e *Engine) ZoomTo(target float64, pivot *Point) {
	cur := e.t.Scale
	next := clamp(target, e.cfg.MinZoom, e.cfg.MaxZoom)
	if math.Abs(next-1) < unitSnap {
		next = 1
	}

	switch {
	case next <= 1:
		e.t.Translation = Point{}
	case pivot != nil && cur > 0:
		// Offset of the pivot from the displayed image centre
		rel := pivot.Sub(e.center()).Sub(e.t.Translation)
		e.t.Translation = e.t.Translation.Sub(rel.Mul((next - cur) / cur))
	}
	e.t.Scale = next
}

// ZoomBy adds delta to the current scale
func (e *Engine) ZoomBy(delta float64, pivot *Point) {
	e.ZoomTo(e.t.Scale+delta, pivot)
}

// ZoomIn zooms by one control button step around the centre
func (e *Engine) ZoomIn() {
	e.ZoomBy(e.cfg.ButtonStep, nil)
}

// ZoomOut zooms out by one control button step around the centre
func (e *Engine) ZoomOut() {
	e.ZoomBy(-e.cfg.ButtonStep, nil)
}

// Wheel handles one scroll tick. Negative dy (scroll up) zooms in.
func (e *Engine) Wheel(dy float64, pivot *Point) {
	switch {
	case dy < 0:
		e.ZoomBy(e.cfg.WheelStep, pivot)
	case dy > 0:
		e.ZoomBy(-e.cfg.WheelStep, pivot)
	}
}

// CycleClickZoom advances through the click stops. A scale sitting exactly on
// a stop moves to the next one; anything else (including the last stop)
// returns to the first stop and recentres the image.
func (e *Engine) CycleClickZoom() {
	stops := e.cfg.ClickStops
	for i := 0; i < len(stops)-1; i++ {
		if e.t.Scale == stops[i] {
			e.t.Scale = stops[i+1]
			return
		}
	}
	e.t.Scale = stops[0]
	e.t.Translation = Point{}
}

// RotateBy adds degrees to the rotation, keeping it in [0, 360)
func (e *Engine) RotateBy(degrees int) {
	e.t.Rotation = normalizeDegrees(e.t.Rotation + degrees)
}

// SetRotation assigns an absolute rotation, e.g. the device angle reported
// after an orientation change in fullscreen.
func (e *Engine) SetRotation(degrees int) {
	e.t.Rotation = normalizeDegrees(degrees)
}

// PanBy moves the image. It does not check the scale: gating drags on
// scale > 1 happens when a gesture starts.
func (e *Engine) PanBy(dx, dy float64) {
	e.t.Translation.X += dx
	e.t.Translation.Y += dy
}

// Reset returns to identity
func (e *Engine) Reset() {
	e.t = Identity()
}

// OnSourceChanged resets the transform and drops any gesture in progress
func (e *Engine) OnSourceChanged() {
	e.Reset()
	e.gesture.reset()
}
