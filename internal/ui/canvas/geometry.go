package canvas

import (
	"image"
	"math"

	"gioui.org/f32"

	"github.com/OpenTraceLab/ecglearn/pkg/viewer"
)

// Fit returns the factor that shrinks (or grows) img to fit inside box while
// keeping its aspect ratio.
func Fit(img, box image.Point) float32 {
	if img.X <= 0 || img.Y <= 0 || box.X <= 0 || box.Y <= 0 {
		return 1
	}
	fx := float32(box.X) / float32(img.X)
	fy := float32(box.Y) / float32(img.Y)
	if fx < fy {
		return fx
	}
	return fy
}

// Affine places an image of size img inside a container of size box: fitted,
// then scaled, rotated and translated by t around the container centre.
func Affine(t viewer.Transform, img, box image.Point) f32.Affine2D {
	imgCenter := f32.Pt(float32(img.X)/2, float32(img.Y)/2)
	boxCenter := f32.Pt(float32(box.X)/2, float32(box.Y)/2)
	s := Fit(img, box) * float32(t.Scale)
	rad := float32(float64(t.Rotation) * math.Pi / 180)

	return f32.Affine2D{}.
		Offset(imgCenter.Mul(-1)).
		Scale(f32.Point{}, f32.Pt(s, s)).
		Rotate(f32.Point{}, rad).
		Offset(boxCenter.Add(f32.Pt(float32(t.Translation.X), float32(t.Translation.Y))))
}

// Orientation follows the window shape while fullscreen. A fullscreen window
// that turns from landscape to portrait reports a 90 degree device angle,
// and back to landscape reports 0.
type Orientation struct {
	known    bool
	portrait bool
}

// Update records size and returns the device angle when the window flipped
// between landscape and portrait while fullscreen. The first size seen only
// primes the tracker.
func (o *Orientation) Update(size image.Point, fullscreen bool) (int, bool) {
	if size.X <= 0 || size.Y <= 0 {
		return 0, false
	}
	portrait := size.Y > size.X
	if !o.known {
		o.known = true
		o.portrait = portrait
		return 0, false
	}
	if portrait == o.portrait {
		return 0, false
	}
	o.portrait = portrait
	if !fullscreen {
		return 0, false
	}
	if portrait {
		return 90, true
	}
	return 0, true
}
