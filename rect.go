package iconic

import (
	"fmt"
	"math"
)

// Rect is an axis-aligned rectangle in image coordinates.
//
// Two distinguished values exist beyond ordinary rectangles: the null
// rectangle (RectNull), meaning "no content", and the infinite rectangle
// (RectInfinite), meaning an unbounded extent such as a generator image
// before cropping. Both must be checked before doing geometry: a null
// rectangle has no valid coordinates, and an infinite one cannot be
// rendered.
type Rect struct {
	X, Y, W, H float64
}

// RectNull is the distinguished "no content found" rectangle.
// Its coordinates are not meaningful; use IsNull before reading them.
var RectNull = Rect{X: math.Inf(1), Y: math.Inf(1), W: 0, H: 0}

// RectInfinite is the unbounded extent.
var RectInfinite = Rect{
	X: math.Inf(-1), Y: math.Inf(-1),
	W: math.Inf(1), H: math.Inf(1),
}

// NewRect creates a rectangle. Negative width or height is normalized to
// zero; a rectangle never has negative dimensions.
func NewRect(x, y, w, h float64) Rect {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return Rect{X: x, Y: y, W: w, H: h}
}

// IsNull reports whether r is the null rectangle.
func (r Rect) IsNull() bool {
	return math.IsInf(r.X, 1)
}

// IsInfinite reports whether r is the infinite rectangle.
func (r Rect) IsInfinite() bool {
	return math.IsInf(r.W, 1)
}

// IsEmpty reports whether r encloses no pixels. The null rectangle is
// empty; the infinite rectangle is not.
func (r Rect) IsEmpty() bool {
	if r.IsNull() {
		return true
	}
	return r.W <= 0 || r.H <= 0
}

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.W }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.H }

// MidX returns the horizontal center.
func (r Rect) MidX() float64 { return r.X + r.W/2 }

// MidY returns the vertical center.
func (r Rect) MidY() float64 { return r.Y + r.H/2 }

// Translated returns r shifted by (dx, dy). Null and infinite rectangles
// are returned unchanged.
func (r Rect) Translated(dx, dy float64) Rect {
	if r.IsNull() || r.IsInfinite() {
		return r
	}
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Contains reports whether the point (x, y) lies inside r.
func (r Rect) Contains(x, y float64) bool {
	if r.IsNull() {
		return false
	}
	if r.IsInfinite() {
		return true
	}
	return x >= r.X && x < r.MaxX() && y >= r.Y && y < r.MaxY()
}

// Intersect returns the overlap of r and o, or RectNull when they do
// not overlap. Intersecting with the infinite rectangle is identity.
func (r Rect) Intersect(o Rect) Rect {
	if r.IsNull() || o.IsNull() {
		return RectNull
	}
	if r.IsInfinite() {
		return o
	}
	if o.IsInfinite() {
		return r
	}
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.MaxX(), o.MaxX())
	y1 := math.Min(r.MaxY(), o.MaxY())
	if x1 <= x0 || y1 <= y0 {
		return RectNull
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Union returns the smallest rectangle containing both r and o. The
// null rectangle is the identity element.
func (r Rect) Union(o Rect) Rect {
	if r.IsNull() {
		return o
	}
	if o.IsNull() {
		return r
	}
	if r.IsInfinite() || o.IsInfinite() {
		return RectInfinite
	}
	x0 := math.Min(r.X, o.X)
	y0 := math.Min(r.Y, o.Y)
	x1 := math.Max(r.MaxX(), o.MaxX())
	y1 := math.Max(r.MaxY(), o.MaxY())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Integral returns the smallest integer-aligned rectangle containing r.
func (r Rect) Integral() Rect {
	if r.IsNull() || r.IsInfinite() {
		return r
	}
	x0 := math.Floor(r.X)
	y0 := math.Floor(r.Y)
	x1 := math.Ceil(r.X + r.W)
	y1 := math.Ceil(r.Y + r.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// String returns a readable representation, with the two distinguished
// values spelled out.
func (r Rect) String() string {
	if r.IsNull() {
		return "Rect(null)"
	}
	if r.IsInfinite() {
		return "Rect(infinite)"
	}
	return fmt.Sprintf("Rect(%g, %g, %gx%g)", r.X, r.Y, r.W, r.H)
}
