package viewer

// PointerID identifies one contact (mouse or finger) for the duration of a press
type PointerID int

type pointerState struct {
	pos     Point
	travel  float64 // total distance moved since press
	pinched bool    // took part in a pinch; never reported as a tap
}

// gestureState caches what is needed between frames of a gesture
type gestureState struct {
	pointers map[PointerID]*pointerState
	order    []PointerID // press order of active pointers

	pinching bool
	pinchA   PointerID
	pinchB   PointerID
	lastDist float64

	dragging bool
	dragID   PointerID
}

func (g *gestureState) reset() {
	g.pointers = make(map[PointerID]*pointerState)
	g.order = g.order[:0]
	g.endGesture()
}

func (g *gestureState) endGesture() {
	g.pinching = false
	g.lastDist = 0
	g.dragging = false
}

// involved reports whether id drives the current pinch or drag
func (g *gestureState) involved(id PointerID) bool {
	if g.pinching {
		return id == g.pinchA || id == g.pinchB
	}
	return g.dragging && id == g.dragID
}

// release forgets id and ends the gesture it was driving, if any
func (g *gestureState) release(id PointerID) {
	if g.involved(id) {
		g.endGesture()
	}
	g.remove(id)
}

func (g *gestureState) remove(id PointerID) {
	delete(g.pointers, id)
	for i, o := range g.order {
		if o == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// Dragging reports whether a single-pointer pan is in progress
func (e *Engine) Dragging() bool {
	return e.gesture.dragging
}

// Pinching reports whether a two-pointer zoom is in progress
func (e *Engine) Pinching() bool {
	return e.gesture.pinching
}

// PointerDown registers a new contact at pos (container coordinates).
// A second contact starts a pinch; a single contact starts a drag only when
// the image is zoomed past 1.
func (e *Engine) PointerDown(id PointerID, pos Point) {
	g := &e.gesture
	if _, ok := g.pointers[id]; ok {
		g.pointers[id].pos = pos
		return
	}
	p := &pointerState{pos: pos}
	g.pointers[id] = p
	g.order = append(g.order, id)

	switch len(g.order) {
	case 1:
		if e.t.Scale > 1 {
			g.dragging = true
			g.dragID = id
		}
	case 2:
		a, b := g.pointers[g.order[0]], g.pointers[g.order[1]]
		g.dragging = false
		g.pinching = true
		g.pinchA, g.pinchB = g.order[0], g.order[1]
		g.lastDist = a.pos.Dist(b.pos)
		a.pinched = true
		b.pinched = true
	default:
		// Extra fingers during a pinch are tracked but never zoom or tap
		p.pinched = g.pinching
	}
}

// PointerMove updates a contact. Moves of unknown pointers (hover) are ignored.
func (e *Engine) PointerMove(id PointerID, pos Point) {
	g := &e.gesture
	p, ok := g.pointers[id]
	if !ok {
		return
	}
	delta := pos.Sub(p.pos)
	p.travel += p.pos.Dist(pos)
	p.pos = pos

	switch {
	case g.pinching && (id == g.pinchA || id == g.pinchB):
		a, b := g.pointers[g.pinchA], g.pointers[g.pinchB]
		dist := a.pos.Dist(b.pos)
		if g.lastDist > 0 && dist > 0 {
			mid := a.pos.Mid(b.pos)
			e.ZoomTo(e.t.Scale*dist/g.lastDist, &mid)
		}
		g.lastDist = dist
	case g.dragging && id == g.dragID:
		e.PanBy(delta.X, delta.Y)
	}
}

// PointerUp releases a contact, ending the gesture it was part of. Lifting
// an extra finger leaves a pinch running. It reports true when the release
// completes a tap: a lone pointer that never pinched and stayed within TapSlop
// of where it was pressed.
func (e *Engine) PointerUp(id PointerID) bool {
	g := &e.gesture
	p, ok := g.pointers[id]
	if !ok {
		return false
	}
	tap := !p.pinched && len(g.order) == 1 && p.travel <= e.cfg.TapSlop
	g.release(id)
	return tap
}

// PointerCancel drops a contact without producing a tap
func (e *Engine) PointerCancel(id PointerID) {
	g := &e.gesture
	if _, ok := g.pointers[id]; !ok {
		return
	}
	g.release(id)
}

// PointerLeave drops every contact, e.g. when the pointer exits the container
func (e *Engine) PointerLeave() {
	e.gesture.reset()
}

// ActivePointers returns the number of contacts currently pressed
func (e *Engine) ActivePointers() int {
	return len(e.gesture.order)
}
