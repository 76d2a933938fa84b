// Package viewer implements the zoom/pan/rotate state behind the image viewer.
// The Engine is a plain state machine: the host feeds it pointer, wheel and
// control events and renders whatever Transform it reports.
package viewer

import (
	"fmt"
	"math"
)

// Point is a 2D position or offset in container pixels
type Point struct {
	X float64
	Y float64
}

// Add returns p+q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul scales both components by f
func (p Point) Mul(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Dist returns the Euclidean distance between p and q
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Mid returns the midpoint between p and q
func (p Point) Mid(q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// Transform describes how the image is currently displayed
type Transform struct {
	Scale       float64 // 1.0 = natural size
	Rotation    int     // degrees, always in [0, 360)
	Translation Point   // offset of the image centre from the container centre
}

// Identity returns the untransformed state
func Identity() Transform {
	return Transform{Scale: 1}
}

// IsIdentity reports whether t leaves the image untouched
func (t Transform) IsIdentity() bool {
	return t == Identity()
}

// Apply maps a point in image coordinates (relative to the image centre) to
// container coordinates relative to the container centre.
func (t Transform) Apply(p Point) Point {
	x, y := p.X*t.Scale, p.Y*t.Scale

	if t.Rotation != 0 {
		rad := float64(t.Rotation) * math.Pi / 180.0
		cos := math.Cos(rad)
		sin := math.Sin(rad)
		x, y = x*cos-y*sin, x*sin+y*cos
	}

	return Point{X: x + t.Translation.X, Y: y + t.Translation.Y}
}

// ApplyInverse maps a centre-relative container point back to image coordinates
func (t Transform) ApplyInverse(p Point) Point {
	x := p.X - t.Translation.X
	y := p.Y - t.Translation.Y

	if t.Rotation != 0 {
		rad := -float64(t.Rotation) * math.Pi / 180.0
		cos := math.Cos(rad)
		sin := math.Sin(rad)
		x, y = x*cos-y*sin, x*sin+y*cos
	}

	if t.Scale != 0 {
		x /= t.Scale
		y /= t.Scale
	}
	return Point{X: x, Y: y}
}

// String renders the transform the way a style attribute would carry it
func (t Transform) String() string {
	return fmt.Sprintf("translate(%gpx, %gpx) scale(%g) rotate(%ddeg)",
		t.Translation.X, t.Translation.Y, t.Scale, t.Rotation)
}

// normalizeDegrees folds any angle into [0, 360)
func normalizeDegrees(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
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
