// Package mosaic places stacks on the screen.
package mosaic

import "github.com/ItsNotGoodName/x-tabstack/internal/geom"

type Layout interface {
	// Place returns n rectangles inside area.
	Place(n int, area geom.Rect) []geom.Rect
}

// GridSize returns the smallest columns x rows grid holding count cells,
// growing columns first.
func GridSize(count int) (columns, rows int) {
	for columns*rows < count {
		columns++
		if columns*rows >= count {
			break
		}
		rows++
	}
	return columns, rows
}

type LayoutGrid struct{}

func (LayoutGrid) Place(n int, area geom.Rect) []geom.Rect {
	if n <= 0 {
		return nil
	}

	columns, rows := GridSize(n)
	fw := area.Size.W / int32(columns)
	fh := area.Size.H / int32(rows)

	rects := make([]geom.Rect, n)
	for i := range rects {
		row, col := i/columns, i%columns
		w, h := fw, fh
		// Last column and row absorb the rounding remainder.
		if col == columns-1 {
			w = area.Size.W - fw*int32(col)
		}
		if row == rows-1 {
			h = area.Size.H - fh*int32(row)
		}
		rects[i] = geom.NewRect(area.Loc.X+fw*int32(col), area.Loc.Y+fh*int32(row), w, h)
	}
	return rects
}

// Ratio is a rectangle in fractions of the area.
type Ratio struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	W float32 `json:"w"`
	H float32 `json:"h"`
}

// LayoutManual places stacks at fixed ratios. Stacks beyond the configured
// ratios share the last ratio's rectangle as a grid.
type LayoutManual struct {
	Ratios []Ratio
}

func (l LayoutManual) Place(n int, area geom.Rect) []geom.Rect {
	if len(l.Ratios) == 0 {
		return LayoutGrid{}.Place(n, area)
	}

	rects := make([]geom.Rect, 0, n)
	for i := 0; i < n && i < len(l.Ratios)-1; i++ {
		rects = append(rects, l.Ratios[i].rect(area))
	}
	if rest := n - len(rects); rest > 0 {
		rects = append(rects, LayoutGrid{}.Place(rest, l.Ratios[len(l.Ratios)-1].rect(area))...)
	}
	return rects
}

func (r Ratio) rect(area geom.Rect) geom.Rect {
	w, h := float32(area.Size.W), float32(area.Size.H)
	x := int32(r.X * w)
	y := int32(r.Y * h)
	return geom.NewRect(
		area.Loc.X+x,
		area.Loc.Y+y,
		int32((r.W+r.X)*w)-x,
		int32((r.H+r.Y)*h)-y,
	)
}
