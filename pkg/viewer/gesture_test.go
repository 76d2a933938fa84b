package viewer

import "testing"

func TestPinchScalesIncrementally(t *testing.T) {
	e := NewDefaultEngine()
	e.PointerDown(1, Point{X: 0, Y: 50})
	e.PointerDown(2, Point{X: 100, Y: 50})
	if e.Mode() != Gesturing || !e.Pinching() {
		t.Fatalf("expected pinch, mode=%v", e.Mode())
	}

	// 100px -> 125px -> 150px, midpoint ending at (50, 50)
	e.PointerMove(1, Point{X: -25, Y: 50})
	e.PointerMove(2, Point{X: 125, Y: 50})

	if got := e.Transform().Scale; !approx(got, 1.5) {
		t.Fatalf("scale = %v, want 1.5", got)
	}
}

func TestPinchSingleStepPivotsOnMidpoint(t *testing.T) {
	e := NewDefaultEngine()
	e.PointerDown(1, Point{X: 0, Y: 50})
	e.PointerDown(2, Point{X: 100, Y: 50})

	// Moving one finger by 50px gives ratio 1.5 around the new midpoint (75, 50)
	e.PointerMove(2, Point{X: 150, Y: 50})

	tr := e.Transform()
	if !approx(tr.Scale, 1.5) {
		t.Fatalf("scale = %v, want 1.5", tr.Scale)
	}
	want := Point{X: -75 * 0.5, Y: -50 * 0.5}
	if !approx(tr.Translation.X, want.X) || !approx(tr.Translation.Y, want.Y) {
		t.Fatalf("translation = %+v, want %+v", tr.Translation, want)
	}
}

func TestNoOpPinchLeavesScale(t *testing.T) {
	e := NewDefaultEngine()
	e.ZoomTo(1.7, nil)
	e.PointerDown(1, Point{X: 10, Y: 10})
	e.PointerDown(2, Point{X: 110, Y: 10})

	// Translate both fingers together: distance stays 100 every frame
	for i := 1; i <= 10; i++ {
		dx := float64(i * 3)
		e.PointerMove(1, Point{X: 10 + dx, Y: 10})
		e.PointerMove(2, Point{X: 110 + dx, Y: 10})
	}
	if got := e.Transform().Scale; !approx(got, 1.7) {
		t.Fatalf("scale = %v, want 1.7", got)
	}
}

func TestPinchClampsScale(t *testing.T) {
	e := NewDefaultEngine()
	e.PointerDown(1, Point{X: 0, Y: 0})
	e.PointerDown(2, Point{X: 10, Y: 0})
	e.PointerMove(2, Point{X: 1000, Y: 0})
	if got := e.Transform().Scale; got != DefaultMaxZoom {
		t.Fatalf("scale = %v, want %v", got, DefaultMaxZoom)
	}
}

func TestPinchEndReturnsToIdle(t *testing.T) {
	e := NewDefaultEngine()
	e.PointerDown(1, Point{X: 0, Y: 0})
	e.PointerDown(2, Point{X: 100, Y: 0})
	e.PointerMove(2, Point{X: 200, Y: 0})
	scale := e.Transform().Scale

	if tap := e.PointerUp(2); tap {
		t.Fatalf("pinch release reported as tap")
	}
	if e.Mode() != Idle {
		t.Fatalf("mode = %v, want idle", e.Mode())
	}
	// Remaining finger must not pan or zoom
	e.PointerMove(1, Point{X: 40, Y: 40})
	if tr := e.Transform(); tr.Scale != scale || e.Mode() != Idle {
		t.Fatalf("leftover pointer changed state: %+v mode=%v", tr, e.Mode())
	}
	if tap := e.PointerUp(1); tap {
		t.Fatalf("former pinch pointer reported as tap")
	}
}

func TestDragRequiresZoom(t *testing.T) {
	e := NewDefaultEngine()
	e.PointerDown(1, Point{X: 10, Y: 10})
	if e.Mode() != Idle {
		t.Fatalf("drag started at scale 1")
	}
	e.PointerMove(1, Point{X: 60, Y: 10})
	if tr := e.Transform().Translation; tr != (Point{}) {
		t.Fatalf("translation = %+v at scale 1", tr)
	}
	e.PointerUp(1)
}

func TestDragPansByFrameDelta(t *testing.T) {
	e := NewDefaultEngine()
	e.ZoomTo(2, nil)
	e.PointerDown(1, Point{X: 10, Y: 10})
	if !e.Dragging() || e.Mode() != Gesturing {
		t.Fatalf("expected drag")
	}
	e.PointerMove(1, Point{X: 15, Y: 12})
	e.PointerMove(1, Point{X: 25, Y: 2})
	if tr := e.Transform().Translation; tr != (Point{X: 15, Y: -8}) {
		t.Fatalf("translation = %+v, want (15, -8)", tr)
	}
	if tap := e.PointerUp(1); tap {
		t.Fatalf("drag reported as tap")
	}
	if e.Mode() != Idle {
		t.Fatalf("mode = %v after release", e.Mode())
	}
}

func TestTapDetection(t *testing.T) {
	e := NewDefaultEngine()
	e.PointerDown(1, Point{X: 10, Y: 10})
	e.PointerMove(1, Point{X: 12, Y: 11})
	if !e.PointerUp(1) {
		t.Fatalf("short press not reported as tap")
	}

	e.PointerDown(1, Point{X: 10, Y: 10})
	e.PointerMove(1, Point{X: 40, Y: 10})
	if e.PointerUp(1) {
		t.Fatalf("long move reported as tap")
	}

	if e.PointerUp(99) {
		t.Fatalf("unknown pointer reported as tap")
	}
}

func TestCancelAndLeaveClearGesture(t *testing.T) {
	e := NewDefaultEngine()
	e.ZoomTo(3, nil)
	e.PointerDown(1, Point{})
	e.PointerCancel(1)
	if e.Mode() != Idle || e.ActivePointers() != 0 {
		t.Fatalf("cancel left mode=%v pointers=%d", e.Mode(), e.ActivePointers())
	}

	e.PointerDown(1, Point{})
	e.PointerDown(2, Point{X: 50})
	e.PointerLeave()
	if e.Mode() != Idle || e.ActivePointers() != 0 {
		t.Fatalf("leave left mode=%v pointers=%d", e.Mode(), e.ActivePointers())
	}
	if e.Transform().Scale != 3 {
		t.Fatalf("transform lost on leave: %+v", e.Transform())
	}
}

func TestSourceChangeDropsGesture(t *testing.T) {
	e := NewDefaultEngine()
	e.ZoomTo(2, nil)
	e.PointerDown(1, Point{X: 5, Y: 5})
	e.OnSourceChanged()
	if e.Mode() != Idle || e.ActivePointers() != 0 {
		t.Fatalf("gesture survived source change")
	}
	e.PointerMove(1, Point{X: 50, Y: 50})
	if tr := e.Transform(); !tr.IsIdentity() {
		t.Fatalf("transform = %+v, want identity", tr)
	}
}

func TestHoverMoveIgnored(t *testing.T) {
	e := NewDefaultEngine()
	e.ZoomTo(2, nil)
	e.PointerMove(7, Point{X: 100, Y: 100})
	if tr := e.Transform().Translation; tr != (Point{}) {
		t.Fatalf("hover moved image: %+v", tr)
	}
}

func TestExtraFingerLiftKeepsPinch(t *testing.T) {
	e := NewDefaultEngine()
	e.PointerDown(1, Point{X: 0, Y: 0})
	e.PointerDown(2, Point{X: 100, Y: 0})
	e.PointerDown(3, Point{X: 50, Y: 80})

	if tap := e.PointerUp(3); tap {
		t.Fatalf("extra finger reported as tap")
	}
	if !e.Pinching() || e.Mode() != Gesturing {
		t.Fatalf("pinch ended by extra finger, mode=%v", e.Mode())
	}
	e.PointerMove(2, Point{X: 200, Y: 0})
	if got := e.Transform().Scale; !approx(got, 2) {
		t.Fatalf("scale = %v, want 2", got)
	}

	e.PointerCancel(1)
	if e.Pinching() || e.Mode() != Idle {
		t.Fatalf("cancelling a pinch pointer left mode=%v", e.Mode())
	}
}

func TestExtraFingerCancelKeepsPinch(t *testing.T) {
	e := NewDefaultEngine()
	e.PointerDown(1, Point{X: 0, Y: 0})
	e.PointerDown(2, Point{X: 100, Y: 0})
	e.PointerDown(3, Point{X: 50, Y: 80})
	e.PointerCancel(3)
	if !e.Pinching() {
		t.Fatalf("pinch ended by cancelling an extra finger")
	}

	// The last finger pressed during the pinch never taps
	e.PointerDown(3, Point{X: 50, Y: 80})
	e.PointerUp(1)
	e.PointerUp(2)
	if e.PointerUp(3) {
		t.Fatalf("finger pressed during a pinch reported as tap")
	}
}
