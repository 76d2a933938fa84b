package script

import (
	"context"
	"fmt"
	"math"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/hashicorp/go-hclog"

	"github.com/OpenTraceLab/ecglearn/pkg/viewer"
)

// Tolerance used when comparing expected floating point values
const Tolerance = 1e-9

// Step describes the engine state after one statement
type Step struct {
	Pos       lexer.Position
	Statement string
	Transform viewer.Transform
	Mode      viewer.Mode
	Tap       bool // an "up" completed a tap and cycled click zoom
}

// ExpectationError is returned when an expect statement does not hold
type ExpectationError struct {
	Pos   lexer.Position
	Field string
	Want  string
	Got   string
}

func (e *ExpectationError) Error() string {
	return fmt.Sprintf("%s: expect %s: want %s, got %s", e.Pos, e.Field, e.Want, e.Got)
}

// Runner replays scripts against an engine, acting as a headless host
type Runner struct {
	Engine *viewer.Engine
	Logger hclog.Logger

	// Trace, if set, is called after every statement
	Trace func(Step)

	source string
}

// NewRunner creates a runner around e. A nil logger discards output.
func NewRunner(e *viewer.Engine, logger hclog.Logger) *Runner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Runner{Engine: e, Logger: logger}
}

// Source returns the name given by the last source statement
func (r *Runner) Source() string {
	return r.source
}

// Run executes every statement in order. It stops at the first failed
// expectation or when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, s *Script) error {
	for _, st := range s.Statements {
		if err := ctx.Err(); err != nil {
			return err
		}
		tap, err := r.exec(st)
		if err != nil {
			return err
		}
		step := Step{
			Pos:       st.Pos,
			Statement: st.String(),
			Transform: r.Engine.Transform(),
			Mode:      r.Engine.Mode(),
			Tap:       tap,
		}
		r.Logger.Trace("step", "pos", st.Pos.String(), "stmt", step.Statement, "transform", step.Transform.String())
		if r.Trace != nil {
			r.Trace(step)
		}
	}
	return nil
}

func toPoint(p *Point) *viewer.Point {
	if p == nil {
		return nil
	}
	return &viewer.Point{X: p.X, Y: p.Y}
}

func (r *Runner) exec(st *Statement) (bool, error) {
	e := r.Engine
	switch {
	case st.Viewport != nil:
		e.SetViewport(st.Viewport.Width, st.Viewport.Height)
	case st.Source != nil:
		r.source = st.Source.Name
		e.OnSourceChanged()
	case st.Zoom != nil:
		z := st.Zoom
		switch {
		case z.To != nil:
			e.ZoomTo(*z.To, toPoint(z.Pivot))
		case z.By != nil:
			e.ZoomBy(*z.By, toPoint(z.Pivot))
		case z.In:
			e.ZoomBy(e.Config().ButtonStep, toPoint(z.Pivot))
		case z.Out:
			e.ZoomBy(-e.Config().ButtonStep, toPoint(z.Pivot))
		}
	case st.Wheel != nil:
		e.Wheel(st.Wheel.Delta, toPoint(st.Wheel.Pivot))
	case st.Click:
		e.CycleClickZoom()
	case st.Rotate != nil:
		e.RotateBy(st.Rotate.Degrees)
	case st.Orientation != nil:
		e.SetRotation(st.Orientation.Degrees)
	case st.Pan != nil:
		e.PanBy(st.Pan.Delta.X, st.Pan.Delta.Y)
	case st.Reset:
		e.Reset()
	case st.Down != nil:
		e.PointerDown(viewer.PointerID(st.Down.ID), viewer.Point{X: st.Down.At.X, Y: st.Down.At.Y})
	case st.Move != nil:
		e.PointerMove(viewer.PointerID(st.Move.ID), viewer.Point{X: st.Move.To.X, Y: st.Move.To.Y})
	case st.Up != nil:
		if e.PointerUp(viewer.PointerID(st.Up.ID)) {
			e.CycleClickZoom()
			return true, nil
		}
	case st.Cancel != nil:
		e.PointerCancel(viewer.PointerID(st.Cancel.ID))
	case st.Leave:
		e.PointerLeave()
	case st.Expect != nil:
		return false, r.check(st.Pos, st.Expect)
	}
	return false, nil
}

func (r *Runner) check(pos lexer.Position, x *Expect) error {
	t := r.Engine.Transform()
	fail := func(want, got string) error {
		return &ExpectationError{Pos: pos, Field: x.Field, Want: want, Got: got}
	}
	arity := func(n int) error {
		if len(x.Values) != n {
			return fmt.Errorf("%s: expect %s takes %d value(s), got %d", pos, x.Field, n, len(x.Values))
		}
		return nil
	}

	switch x.Field {
	case "scale":
		if err := arity(1); err != nil {
			return err
		}
		if math.Abs(t.Scale-x.Values[0]) > Tolerance {
			return fail(fmt.Sprintf("%g", x.Values[0]), fmt.Sprintf("%g", t.Scale))
		}
	case "rotation":
		if err := arity(1); err != nil {
			return err
		}
		if float64(t.Rotation) != x.Values[0] {
			return fail(fmt.Sprintf("%g", x.Values[0]), fmt.Sprintf("%d", t.Rotation))
		}
	case "translate":
		if err := arity(2); err != nil {
			return err
		}
		if math.Abs(t.Translation.X-x.Values[0]) > Tolerance || math.Abs(t.Translation.Y-x.Values[1]) > Tolerance {
			return fail(fmt.Sprintf("(%g, %g)", x.Values[0], x.Values[1]),
				fmt.Sprintf("(%g, %g)", t.Translation.X, t.Translation.Y))
		}
	case "pointers":
		if err := arity(1); err != nil {
			return err
		}
		if got := r.Engine.ActivePointers(); float64(got) != x.Values[0] {
			return fail(fmt.Sprintf("%g", x.Values[0]), fmt.Sprintf("%d", got))
		}
	case "mode":
		if x.Mode == "" {
			return fmt.Errorf("%s: expect mode takes idle or gesturing", pos)
		}
		if got := r.Engine.Mode().String(); got != x.Mode {
			return fail(x.Mode, got)
		}
	}
	return nil
}
