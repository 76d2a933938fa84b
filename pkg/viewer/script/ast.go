package script

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Script is a parsed gesture script
type Script struct {
	Statements []*Statement `@@*`
}

// Statement is one line of a script
type Statement struct {
	Pos lexer.Position

	Viewport    *Viewport    `  @@`
	Source      *Source      `| @@`
	Zoom        *Zoom        `| @@`
	Wheel       *Wheel       `| @@`
	Click       bool         `| @"click"`
	Rotate      *Rotate      `| @@`
	Orientation *Orientation `| @@`
	Pan         *Pan         `| @@`
	Reset       bool         `| @"reset"`
	Down        *Down        `| @@`
	Move        *Move        `| @@`
	Up          *Up          `| @@`
	Cancel      *Cancel      `| @@`
	Leave       bool         `| @"leave"`
	Expect      *Expect      `| @@`
}

// Point is an "X Y" pair in container pixels
type Point struct {
	X float64 `@Number`
	Y float64 `@Number`
}

func (p Point) String() string {
	return fmt.Sprintf("%g %g", p.X, p.Y)
}

// Viewport sets the container size
// Example: viewport 800 600
type Viewport struct {
	Width  float64 `"viewport" @Number`
	Height float64 `@Number`
}

// Source loads a new image, resetting the transform
// Example: source "lead-ii.png"
type Source struct {
	Name string `"source" @String`
}

// Zoom covers zoom to/by/in/out with an optional pivot
// Example: zoom by 0.25 at 50 50
type Zoom struct {
	To    *float64 `"zoom" ( "to" @Number`
	By    *float64 `       | "by" @Number`
	In    bool     `       | @"in"`
	Out   bool     `       | @"out" )`
	Pivot *Point   `( "at" @@ )?`
}

// Wheel is one scroll tick; negative deltas zoom in
// Example: wheel -1 at 100 100
type Wheel struct {
	Delta float64 `"wheel" @Number`
	Pivot *Point  `( "at" @@ )?`
}

// Rotate adds degrees to the rotation
type Rotate struct {
	Degrees int `"rotate" @Number`
}

// Orientation assigns the rotation from a device angle
type Orientation struct {
	Degrees int `"orientation" @Number`
}

// Pan moves the image
type Pan struct {
	Delta Point `"pan" @@`
}

// Down presses a pointer
// Example: down 1 at 10 20
type Down struct {
	ID int   `"down" @Number`
	At Point `"at" @@`
}

// Move moves a pressed pointer
// Example: move 1 to 40 20
type Move struct {
	ID int   `"move" @Number`
	To Point `"to" @@`
}

// Up releases a pointer
type Up struct {
	ID int `"up" @Number`
}

// Cancel aborts a pointer without a tap
type Cancel struct {
	ID int `"cancel" @Number`
}

// Expect asserts on the engine state
// Example: expect scale 1.5 / expect translate -25 -25 / expect mode idle
type Expect struct {
	Field  string    `"expect" @( "scale" | "rotation" | "translate" | "pointers" | "mode" )`
	Values []float64 `( @Number+`
	Mode   string    `| @( "idle" | "gesturing" ) )`
}

// String renders the statement back into script syntax
func (s *Statement) String() string {
	switch {
	case s.Viewport != nil:
		return fmt.Sprintf("viewport %g %g", s.Viewport.Width, s.Viewport.Height)
	case s.Source != nil:
		return fmt.Sprintf("source %q", s.Source.Name)
	case s.Zoom != nil:
		z := s.Zoom
		var b strings.Builder
		b.WriteString("zoom ")
		switch {
		case z.To != nil:
			fmt.Fprintf(&b, "to %g", *z.To)
		case z.By != nil:
			fmt.Fprintf(&b, "by %g", *z.By)
		case z.In:
			b.WriteString("in")
		case z.Out:
			b.WriteString("out")
		}
		if z.Pivot != nil {
			fmt.Fprintf(&b, " at %s", z.Pivot)
		}
		return b.String()
	case s.Wheel != nil:
		if s.Wheel.Pivot != nil {
			return fmt.Sprintf("wheel %g at %s", s.Wheel.Delta, s.Wheel.Pivot)
		}
		return fmt.Sprintf("wheel %g", s.Wheel.Delta)
	case s.Click:
		return "click"
	case s.Rotate != nil:
		return fmt.Sprintf("rotate %d", s.Rotate.Degrees)
	case s.Orientation != nil:
		return fmt.Sprintf("orientation %d", s.Orientation.Degrees)
	case s.Pan != nil:
		return fmt.Sprintf("pan %s", s.Pan.Delta)
	case s.Reset:
		return "reset"
	case s.Down != nil:
		return fmt.Sprintf("down %d at %s", s.Down.ID, s.Down.At)
	case s.Move != nil:
		return fmt.Sprintf("move %d to %s", s.Move.ID, s.Move.To)
	case s.Up != nil:
		return fmt.Sprintf("up %d", s.Up.ID)
	case s.Cancel != nil:
		return fmt.Sprintf("cancel %d", s.Cancel.ID)
	case s.Leave:
		return "leave"
	case s.Expect != nil:
		if s.Expect.Mode != "" {
			return fmt.Sprintf("expect %s %s", s.Expect.Field, s.Expect.Mode)
		}
		vals := make([]string, len(s.Expect.Values))
		for i, v := range s.Expect.Values {
			vals[i] = fmt.Sprintf("%g", v)
		}
		return fmt.Sprintf("expect %s %s", s.Expect.Field, strings.Join(vals, " "))
	}
	return "<empty>"
}
