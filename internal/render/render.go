// Package render describes drawable primitives independently of the backend
// that draws them.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ItsNotGoodName/x-tabstack/internal/geom"
)

type Color struct {
	R, G, B, A uint8
}

// ParseColor parses "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("%s: invalid color", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%s: invalid color: %w", s, err)
	}

	return Color{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// Pixel packs the color as 0xRRGGBB, the layout of a TrueColor visual.
func (c Color) Pixel() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func (c Color) WithAlpha(alpha float32) Color {
	c.A = uint8(float32(c.A) * min(max(alpha, 0), 1))
	return c
}

// Frame is the backend surface a pass draws onto. All rectangles are in
// output pixels.
type Frame interface {
	FillRect(rect geom.Rect, color Color) error
	DrawText(origin geom.Point, text string, color Color) error
}

// Element is one drawable primitive. Draw must only touch pixels inside the
// damage rectangles.
type Element interface {
	Bounds() geom.Rect
	Draw(frame Frame, damage []geom.Rect) error
}

type Solid struct {
	Rect  geom.Rect
	Color Color
}

func (s Solid) Bounds() geom.Rect {
	return s.Rect
}

func (s Solid) Draw(frame Frame, damage []geom.Rect) error {
	for _, rect := range Clip(s.Rect, damage) {
		if err := frame.FillRect(rect, s.Color); err != nil {
			return err
		}
	}
	return nil
}

// Text is drawn when its bounds intersect any damage; text is never split.
type Text struct {
	Rect  geom.Rect
	Text  string
	Color Color
}

func (t Text) Bounds() geom.Rect {
	return t.Rect
}

func (t Text) Draw(frame Frame, damage []geom.Rect) error {
	if len(Clip(t.Rect, damage)) == 0 {
		return nil
	}
	return frame.DrawText(geom.Point{X: t.Rect.Loc.X, Y: t.Rect.Bottom()}, t.Text, t.Color)
}

// Clip returns the parts of rect covered by damage.
func Clip(rect geom.Rect, damage []geom.Rect) []geom.Rect {
	var out []geom.Rect
	for _, d := range damage {
		if r, ok := rect.Intersect(d); ok {
			out = append(out, r)
		}
	}
	return out
}

// Relocate shifts every element by offset.
func Relocate(elements []Element, offset geom.Point) []Element {
	if offset == (geom.Point{}) {
		return elements
	}
	out := make([]Element, len(elements))
	for i, e := range elements {
		out[i] = relocated{Element: e, offset: offset}
	}
	return out
}

type relocated struct {
	Element
	offset geom.Point
}

func (r relocated) Bounds() geom.Rect {
	return r.Element.Bounds().Translate(r.offset)
}

func (r relocated) Draw(frame Frame, damage []geom.Rect) error {
	inner := make([]geom.Rect, len(damage))
	neg := geom.Point{}.Sub(r.offset)
	for i, d := range damage {
		inner[i] = d.Translate(neg)
	}
	return r.Element.Draw(offsetFrame{Frame: frame, offset: r.offset}, inner)
}

type offsetFrame struct {
	Frame
	offset geom.Point
}

func (f offsetFrame) FillRect(rect geom.Rect, color Color) error {
	return f.Frame.FillRect(rect.Translate(f.offset), color)
}

func (f offsetFrame) DrawText(origin geom.Point, text string, color Color) error {
	return f.Frame.DrawText(origin.Add(f.offset), text, color)
}
