package mosaic

import (
	"testing"

	"github.com/ItsNotGoodName/x-tabstack/internal/geom"
	"github.com/stretchr/testify/require"
)

func TestGridSize(t *testing.T) {
	for _, tc := range []struct {
		count, columns, rows int
	}{
		{0, 0, 0},
		{1, 1, 1},
		{2, 2, 1},
		{3, 2, 2},
		{4, 2, 2},
		{5, 3, 2},
		{7, 3, 3},
	} {
		columns, rows := GridSize(tc.count)
		require.Equal(t, tc.columns, columns, "count %d", tc.count)
		require.Equal(t, tc.rows, rows, "count %d", tc.count)
	}
}

func TestLayoutGrid(t *testing.T) {
	require.Nil(t, LayoutGrid{}.Place(0, geom.NewRect(0, 0, 100, 100)))

	require.Equal(t, []geom.Rect{
		geom.NewRect(10, 20, 1000, 500),
	}, LayoutGrid{}.Place(1, geom.NewRect(10, 20, 1000, 500)))

	require.Equal(t, []geom.Rect{
		geom.NewRect(0, 0, 333, 50),
		geom.NewRect(333, 0, 333, 50),
		geom.NewRect(666, 0, 335, 50),
		geom.NewRect(0, 50, 333, 51),
		geom.NewRect(333, 50, 333, 51),
	}, LayoutGrid{}.Place(5, geom.NewRect(0, 0, 1001, 101)))
}

func TestLayoutManual(t *testing.T) {
	l := LayoutManual{Ratios: []Ratio{
		{X: 0, Y: 0, W: 0.5, H: 1},
		{X: 0.5, Y: 0, W: 0.5, H: 1},
	}}
	area := geom.NewRect(0, 0, 1000, 400)

	require.Equal(t, []geom.Rect{
		geom.NewRect(0, 0, 500, 400),
	}, l.Place(1, area))

	require.Equal(t, []geom.Rect{
		geom.NewRect(0, 0, 500, 400),
		geom.NewRect(500, 0, 500, 400),
	}, l.Place(2, area))

	require.Equal(t, []geom.Rect{
		geom.NewRect(0, 0, 500, 400),
		geom.NewRect(500, 0, 250, 400),
		geom.NewRect(750, 0, 250, 400),
	}, l.Place(3, area))

	require.Equal(t, LayoutGrid{}.Place(3, area), LayoutManual{}.Place(3, area))
}
