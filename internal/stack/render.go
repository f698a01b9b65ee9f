package stack

import (
	"github.com/ItsNotGoodName/x-tabstack/internal/geom"
	"github.com/ItsNotGoodName/x-tabstack/internal/render"
)

// Elements are drawn in order: Header, then Window.
type Elements struct {
	Header []render.Element
	Window []render.Element
}

func (e Elements) All() []render.Element {
	return append(append(make([]render.Element, 0, len(e.Header)+len(e.Window)), e.Header...), e.Window...)
}

// RenderElements produces the header and the active member at loc, in output
// pixels. Inactive members are hidden behind the active one and are skipped.
func (s *Stack) RenderElements(loc geom.Point, scale geom.Scale, alpha float32) Elements {
	s.mu.Lock()
	active := s.windows[s.activeIndexLocked()]
	strip, ok := s.headerMaskLocked()
	s.mu.Unlock()

	geo := active.Geometry()
	if !ok {
		strip = geom.NewRect(0, 0, geo.Size.W, HeaderHeight)
	}
	headerLoc := loc.Add(geo.Loc.ToPhysical(scale))

	elements := Elements{
		Header: s.header.RenderElements(headerLoc, scale, alpha),
	}

	if s.groupFocused.Load() {
		width := strip.ToPhysical(scale).Size.W
		height := scale.Px(HeaderHeight)
		elements.Header = append(elements.Header, render.Solid{
			Rect:  geom.NewRect(headerLoc.X, headerLoc.Y+height-1, width, 1),
			Color: s.accent.WithAlpha(alpha),
		})
	}

	windowLoc := loc.Add(geom.Point{Y: scale.Px(HeaderHeight)})
	elements.Window = active.RenderElements(windowLoc, scale, alpha)

	return elements
}

// headerMaskLocked returns the header strip in stack-local logical units. It
// is cached until the next SetGeometry and unknown before the first one.
func (s *Stack) headerMaskLocked() (geom.Rect, bool) {
	if s.mask != nil {
		return *s.mask, true
	}
	if s.geometry == nil {
		return geom.Rect{}, false
	}

	mask := geom.NewRect(0, 0, s.geometry.Size.W, HeaderHeight)
	s.mask = &mask
	return mask, true
}
