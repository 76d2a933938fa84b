package ui

import (
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/OpenTraceLab/ecglearn/internal/ui/canvas"
)

var fullscreenBg = color.NRGBA{A: 255}

// layoutViewport renders the image with the engine's transform and feeds
// pointer input on the canvas back into the engine.
func (a *App) layoutViewport(gtx layout.Context) layout.Dimensions {
	size := fillSize(gtx)
	a.engine.SetViewport(float64(size.X), float64(size.Y))

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  &a.canvasTag,
			Kinds:   canvas.Kinds,
			ScrollY: canvas.ScrollRange,
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		if canvas.Route(a.engine, pe) {
			a.logger.Debug("tap", "scale", a.engine.Transform().Scale)
		}
		gtx.Execute(op.InvalidateCmd{})
	}

	area := clip.Rect{Max: size}.Push(gtx.Ops)
	defer area.Pop()

	bg := a.gvTheme.Bg2
	if a.fullscreen {
		bg = fullscreenBg
	}
	paint.Fill(gtx.Ops, bg)

	if a.source != nil {
		imgSize := a.source.Size()
		t := op.Affine(canvas.Affine(a.engine.Transform(), imgSize, size)).Push(gtx.Ops)
		img := clip.Rect{Max: imgSize}.Push(gtx.Ops)
		a.imgOp.Add(gtx.Ops)
		paint.PaintOp{}.Add(gtx.Ops)
		img.Pop()
		t.Pop()
	} else {
		layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return material.Body1(a.gvTheme.Theme, "Open an ECG image to start").Layout(gtx)
		})
	}

	// Input layer on top of the image
	event.Op(gtx.Ops, &a.canvasTag)
	if a.engine.Dragging() {
		pointer.CursorGrabbing.Add(gtx.Ops)
	} else if a.engine.Transform().Scale > 1 {
		pointer.CursorGrab.Add(gtx.Ops)
	}
	return layout.Dimensions{Size: size}
}
