package tileorg

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-mosaic/grid"
)

type warp struct{}

func (warp) SourceDimensions() int { return 2 }
func (warp) TargetDimensions() int { return 2 }
func (warp) Apply(p []float64) ([]float64, error) {
	return []float64{p[0] * p[1], p[1]}, nil
}

// tile returns a 256×256 geometry whose lower corner sits at (x, y) in a
// north-up CRS with the given resolution.
func tile(t *testing.T, res, x, y float64) grid.Geometry {
	t.Helper()
	return tileIn(t, "EPSG:3857", res, x, y)
}

func tileIn(t *testing.T, crs string, res, x, y float64) grid.Geometry {
	t.Helper()
	a, err := grid.NewAffineRows(
		[]float64{res, 0, x},
		[]float64{0, -res, y},
	)
	require.NoError(t, err)
	g, err := grid.NewGeometry(grid.MustExtent([]int64{0, 0}, []int64{255, 255}), a, grid.CellCorner, crs)
	require.NoError(t, err)
	return g
}

func coords(g *Group) [][]int64 {
	var out [][]int64
	for _, tl := range g.Tiles {
		out = append(out, tl.Coord)
	}
	return out
}

func TestOrganizeTwoByTwo(t *testing.T) {
	res, err := Organize([]grid.Geometry{
		tile(t, 10, 0, 0),
		tile(t, 10, 2560, 0),
		tile(t, 10, 0, -2560),
		tile(t, 10, 2560, -2560),
	})
	require.NoError(t, err)
	require.Len(t, res.Groups, 1)
	assert.Empty(t, res.Rejected)

	g := res.Groups[0]
	assert.Equal(t, []int64{256, 256}, g.TileSize)
	assert.Equal(t, []int64{1, 1}, g.Subsampling)
	assert.Equal(t, []int64{0, 0}, g.Phase)
	assert.Equal(t, [][]int64{{0, 0}, {1, 0}, {0, 1}, {1, 1}}, coords(g))
	assert.True(t, g.Geometry.Extent.Equal(grid.MustExtent([]int64{0, 0}, []int64{511, 511})), g.Geometry.Extent.String())

	a, err := g.Geometry.Affine()
	require.NoError(t, err)
	assert.InDelta(t, 10.0, a.At(0, 0), 1e-12)
	assert.InDelta(t, -10.0, a.At(1, 1), 1e-12)

	assert.Equal(t, []int64{256, 0}, g.Tiles[1].Offset())
	assert.Equal(t, []int64{256, 256}, g.TileOrigin([]int64{1, 1}))
	assert.Equal(t, []int64{1, 0}, g.TileCoord([]int64{300, 255}))
}

func TestOrganizeNegativeCoords(t *testing.T) {
	res, err := Organize([]grid.Geometry{
		tile(t, 10, 2560, 0),
		tile(t, 10, 0, 0),
	})
	require.NoError(t, err)
	require.Len(t, res.Groups, 1)

	g := res.Groups[0]
	assert.Equal(t, [][]int64{{0, 0}, {-1, 0}}, coords(g))
	assert.Equal(t, []int64{-256, 0}, g.Tiles[1].Origin)
	assert.True(t, g.Geometry.Extent.Equal(grid.MustExtent([]int64{-256, 0}, []int64{255, 255})))
	assert.Equal(t, []int64{-1, 0}, g.TileCoord([]int64{-1, 0}))
}

func TestOrganizeClusters(t *testing.T) {
	res, err := Organize([]grid.Geometry{
		tile(t, 10, 0, 0),
		tile(t, 10, 2*2560, 0),     // gap of one tile
		tile(t, 10, 2560, -2560),   // diagonal neighbour of the first
		tile(t, 10, 10*2560, 0),    // far away
		tile(t, 10, 2*2560, -2560), // joins the second
	})
	require.NoError(t, err)
	require.Len(t, res.Groups, 2)

	first, second := res.Groups[0], res.Groups[1]
	assert.Equal(t, []int{0, 1, 2, 4}, indices(first))
	assert.Equal(t, []int{3}, indices(second))
}

func TestOrganizePhase(t *testing.T) {
	res, err := Organize([]grid.Geometry{
		tile(t, 10, 1000, 0),
		tile(t, 10, 1000+2560, 0),
		tile(t, 10, 1010, -2560), // shifted by one pixel
	})
	require.NoError(t, err)
	require.Len(t, res.Groups, 2)
	assert.Equal(t, []int{0, 1}, indices(res.Groups[0]))
	assert.Equal(t, []int64{0, 0}, res.Groups[0].Phase)
	assert.Equal(t, []int{2}, indices(res.Groups[1]))
	assert.Equal(t, []int64{1, 0}, res.Groups[1].Phase)
}

func TestOrganizeSubsampling(t *testing.T) {
	res, err := Organize([]grid.Geometry{
		tile(t, 20, 0, 0),
		tile(t, 10, 0, 0),
		tile(t, 10, 2560, 0),
	})
	require.NoError(t, err)
	require.Len(t, res.Groups, 2)

	coarse, fine := res.Groups[0], res.Groups[1]
	assert.Equal(t, []int{0}, indices(coarse))
	assert.Equal(t, []int64{2, 2}, coarse.Subsampling)
	a, err := coarse.Geometry.Affine()
	require.NoError(t, err)
	assert.InDelta(t, 20.0, a.At(0, 0), 1e-12)

	assert.Equal(t, []int{1, 2}, indices(fine))
	assert.Equal(t, []int64{1, 1}, fine.Subsampling)
}

func TestOrganizeIndependentOfOrder(t *testing.T) {
	named := map[string]grid.Geometry{
		"a": tile(t, 2, 0, 0),
		"b": tile(t, 1, 0, 0),
		"c": tile(t, 3, 0, 0),
		"d": tile(t, 3, 3*256, 0),
	}
	groupsOf := func(order ...string) [][]string {
		geoms := make([]grid.Geometry, len(order))
		for i, name := range order {
			geoms[i] = named[name]
		}
		res, err := Organize(geoms)
		require.NoError(t, err)
		var out [][]string
		for _, g := range res.Groups {
			var names []string
			for _, tl := range g.Tiles {
				names = append(names, order[tl.Index])
			}
			slices.Sort(names)
			out = append(out, names)
		}
		slices.SortFunc(out, func(x, y []string) int { return strings.Compare(x[0], y[0]) })
		return out
	}

	want := [][]string{{"a"}, {"b"}, {"c", "d"}}
	assert.Equal(t, want, groupsOf("a", "c", "b", "d"))
	assert.Equal(t, want, groupsOf("c", "d", "a", "b"))
	assert.Equal(t, want, groupsOf("d", "b", "c", "a"))
}

func TestOrganizeSeparatesCRS(t *testing.T) {
	res, err := Organize([]grid.Geometry{
		tileIn(t, "EPSG:3857", 10, 0, 0),
		tileIn(t, "EPSG:32631", 10, 2560, 0),
	})
	require.NoError(t, err)
	assert.Len(t, res.Groups, 2)
}

func TestOrganizeRejectsNonAffine(t *testing.T) {
	warped, err := grid.NewGeometry(grid.MustExtent([]int64{0, 0}, []int64{255, 255}), warp{}, grid.CellCorner, "EPSG:3857")
	require.NoError(t, err)

	res, err := Organize([]grid.Geometry{tile(t, 10, 0, 0), warped, tile(t, 10, 2560, 0)})
	require.NoError(t, err)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, 1, res.Rejected[0].Index)
	assert.ErrorIs(t, res.Rejected[0].Err, grid.ErrNonAffine)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, []int{0, 2}, indices(res.Groups[0]))
}

func TestOrganizeDuplicate(t *testing.T) {
	_, err := Organize([]grid.Geometry{tile(t, 10, 0, 0), tile(t, 10, 0, 0)})
	assert.ErrorIs(t, err, ErrDuplicateTile)
}

func TestOrganizeCellCenter(t *testing.T) {
	a, err := grid.NewAffineRows([]float64{2, 0, 5}, []float64{0, 2, 5})
	require.NoError(t, err)
	g, err := grid.NewGeometry(grid.MustExtent([]int64{0, 0}, []int64{9, 9}), a, grid.CellCenter, "local")
	require.NoError(t, err)

	res, err := Organize([]grid.Geometry{g})
	require.NoError(t, err)
	require.Len(t, res.Groups, 1)

	out := res.Groups[0].Geometry
	assert.Equal(t, grid.CellCenter, out.Anchor)
	got, err := out.Affine()
	require.NoError(t, err)
	assert.True(t, got.EqualApprox(a), got.String())
}

func TestNeighborOffsets(t *testing.T) {
	assert.Len(t, neighborOffsets(1), 2)
	assert.Len(t, neighborOffsets(2), 8)
	assert.Len(t, neighborOffsets(3), 26)
}

func TestFloorDivMod(t *testing.T) {
	tests := []struct{ a, b, div, mod int64 }{
		{7, 3, 2, 1},
		{-7, 3, -3, 2},
		{-6, 3, -2, 0},
		{0, 5, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.div, floorDiv(tt.a, tt.b), "%d/%d", tt.a, tt.b)
		assert.Equal(t, tt.mod, floorMod(tt.a, tt.b), "%d%%%d", tt.a, tt.b)
	}
}

func indices(g *Group) []int {
	var out []int
	for _, tl := range g.Tiles {
		out = append(out, tl.Index)
	}
	return out
}
