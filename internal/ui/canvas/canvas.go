// Package canvas holds the window-independent half of the viewer host:
// routing gio pointer events into a viewer.Engine, tracking window
// orientation, fitting and placing the image, and decoding sources.
package canvas

import (
	"math"

	"gioui.org/f32"
	"gioui.org/io/pointer"

	"github.com/OpenTraceLab/ecglearn/pkg/viewer"
)

// ScrollRange accepts any wheel distance on the canvas
var ScrollRange = pointer.ScrollRange{Min: -math.MaxInt32, Max: math.MaxInt32}

// Kinds is every pointer event kind the canvas routes
const Kinds = pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel | pointer.Leave | pointer.Scroll

// ToPoint converts a gio position into container coordinates
func ToPoint(p f32.Point) viewer.Point {
	return viewer.Point{X: float64(p.X), Y: float64(p.Y)}
}

// Route feeds one pointer event into e. It reports whether the event
// completed a tap, which has already advanced the click zoom.
func Route(e *viewer.Engine, ev pointer.Event) bool {
	id := viewer.PointerID(ev.PointerID)
	switch ev.Kind {
	case pointer.Press:
		// Only the primary mouse button grabs; touch has no buttons
		if ev.Source == pointer.Mouse && ev.Buttons != pointer.ButtonPrimary {
			return false
		}
		e.PointerDown(id, ToPoint(ev.Position))
	case pointer.Drag:
		e.PointerMove(id, ToPoint(ev.Position))
	case pointer.Release:
		if e.PointerUp(id) {
			e.CycleClickZoom()
			return true
		}
	case pointer.Cancel:
		e.PointerCancel(id)
	case pointer.Leave:
		e.PointerLeave()
	case pointer.Scroll:
		if ev.Scroll.Y == 0 {
			return false
		}
		p := ToPoint(ev.Position)
		e.Wheel(float64(ev.Scroll.Y), &p)
	}
	return false
}
