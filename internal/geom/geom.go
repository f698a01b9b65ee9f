// Package geom holds the logical and physical coordinate types shared by the
// stack, header and display backends.
package geom

import "math"

type Point struct {
	X int32
	Y int32
}

func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

func (p Point) ToF() PointF {
	return PointF{X: float64(p.X), Y: float64(p.Y)}
}

// ToPhysical converts a logical point to output pixels, rounding to the
// nearest pixel.
func (p Point) ToPhysical(scale Scale) Point {
	return Point{
		X: int32(math.Round(float64(p.X) * float64(scale))),
		Y: int32(math.Round(float64(p.Y) * float64(scale))),
	}
}

// PointF is a sub-pixel position, used for pointer locations.
type PointF struct {
	X float64
	Y float64
}

func (p PointF) Add(o PointF) PointF {
	return PointF{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p PointF) Sub(o PointF) PointF {
	return PointF{X: p.X - o.X, Y: p.Y - o.Y}
}

type Size struct {
	W int32
	H int32
}

func (s Size) IsEmpty() bool {
	return s.W <= 0 || s.H <= 0
}

type Rect struct {
	Loc  Point
	Size Size
}

func NewRect(x, y, w, h int32) Rect {
	return Rect{Loc: Point{X: x, Y: y}, Size: Size{W: w, H: h}}
}

func (r Rect) IsEmpty() bool {
	return r.Size.IsEmpty()
}

func (r Rect) Right() int32 {
	return r.Loc.X + r.Size.W
}

func (r Rect) Bottom() int32 {
	return r.Loc.Y + r.Size.H
}

// Contains reports whether p lies in the half-open rectangle [Loc, Loc+Size).
func (r Rect) Contains(p PointF) bool {
	return p.X >= float64(r.Loc.X) && p.X < float64(r.Right()) &&
		p.Y >= float64(r.Loc.Y) && p.Y < float64(r.Bottom())
}

func (r Rect) Translate(p Point) Rect {
	r.Loc = r.Loc.Add(p)
	return r
}

// Intersect returns the overlap of r and o. The second return value is false
// when they do not overlap.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	x0, y0 := max(r.Loc.X, o.Loc.X), max(r.Loc.Y, o.Loc.Y)
	x1, y1 := min(r.Right(), o.Right()), min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}, false
	}
	return NewRect(x0, y0, x1-x0, y1-y0), true
}

func (r Rect) ToPhysical(scale Scale) Rect {
	loc := r.Loc.ToPhysical(scale)
	end := Point{X: r.Right(), Y: r.Bottom()}.ToPhysical(scale)
	return Rect{Loc: loc, Size: Size{W: end.X - loc.X, H: end.Y - loc.Y}}
}

// Scale is the ratio between output pixels and logical units.
type Scale float64

// Px converts a logical length to output pixels, never rounding a non-zero
// length down to zero.
func (s Scale) Px(v int32) int32 {
	px := int32(math.Round(float64(v) * float64(s)))
	if px == 0 && v > 0 {
		return 1
	}
	return px
}
