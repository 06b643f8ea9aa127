package mosaic

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-mosaic/grid"
	"github.com/robert-malhotra/go-mosaic/raster"
	"github.com/robert-malhotra/go-mosaic/source"
)

const tileSize = 256

var ctx = context.Background()

var valueDims = []raster.SampleDimension{{Name: "v", NoData: []float64{-1}}}

type warp struct{}

func (warp) SourceDimensions() int { return 2 }
func (warp) TargetDimensions() int { return 2 }
func (warp) Apply(p []float64) ([]float64, error) {
	return []float64{p[0] * p[1], p[1]}, nil
}

// mislabeled reports more sample dimensions than its blocks carry bands.
type mislabeled struct{ *source.Memory }

func (mislabeled) SampleDimensions() []raster.SampleDimension {
	return []raster.SampleDimension{{Name: "a", NoData: []float64{0}}, {Name: "b", NoData: []float64{0}}}
}

// tileValue is the sample of tile id at local pixel (x, y).
func tileValue(id int, x, y int64) float64 {
	return float64(id*1000) + float64(x+y)
}

func newTile(t *testing.T, id int, col, row int64, dims []raster.SampleDimension, dt raster.DataType, opts ...source.MemoryOption) *source.Memory {
	t.Helper()
	g, err := grid.NewGeometry(
		grid.MustExtent([]int64{0, 0}, []int64{tileSize - 1, tileSize - 1}),
		grid.Translation([]float64{float64(col * tileSize), float64(row * tileSize)}),
		grid.CellCorner, "local",
	)
	require.NoError(t, err)
	m, err := source.NewMemoryFunc(g, dims, dt, func(c []int64, _ int) float64 {
		return tileValue(id, c[0], c[1])
	}, opts...)
	require.NoError(t, err)
	return m
}

func twoByTwo(t *testing.T) []*source.Memory {
	return []*source.Memory{
		newTile(t, 0, 0, 0, valueDims, raster.Int32),
		newTile(t, 1, 1, 0, valueDims, raster.Int32),
		newTile(t, 2, 0, 1, valueDims, raster.Int32),
		newTile(t, 3, 1, 1, valueDims, raster.Int32),
	}
}

func resources(tiles ...*source.Memory) []raster.Resource {
	out := make([]raster.Resource, len(tiles))
	for i, t := range tiles {
		out[i] = t
	}
	return out
}

func TestMosaicTwoByTwo(t *testing.T) {
	tiles := twoByTwo(t)
	m, err := NewMosaic(resources(tiles...))
	require.NoError(t, err)

	assert.True(t, m.Geometry().Extent.Equal(grid.MustExtent([]int64{0, 0}, []int64{511, 511})), m.Geometry().Extent.String())
	assert.Equal(t, 4, m.TileCount())
	assert.Equal(t, []int64{tileSize, tileSize}, m.TileSize())
	assert.Equal(t, raster.Layout{Type: raster.Int32, Bands: 1}, m.Layout())
	assert.Equal(t, []float64{-1}, m.FillValues())

	r, ok := m.TileAt([]int64{1, 0})
	require.True(t, ok)
	assert.Same(t, tiles[1], r)
	_, ok = m.TileAt([]int64{2, 0})
	assert.False(t, ok)

	b, err := m.Read(ctx, m.Geometry().Extent)
	require.NoError(t, err)
	for y := int64(0); y < 2*tileSize; y++ {
		for x := int64(0); x < 2*tileSize; x++ {
			id := int(x/tileSize) + 2*int(y/tileSize)
			want := tileValue(id, x%tileSize, y%tileSize)
			if got := b.At([]int64{x, y}, 0); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}

	env, err := m.Envelope()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, env.Lower)
	assert.Equal(t, []float64{512, 512}, env.Upper)
}

func TestMosaicSubExtentTouchesOneTile(t *testing.T) {
	tiles := twoByTwo(t)
	m, err := NewMosaic(resources(tiles...))
	require.NoError(t, err)

	b, err := m.Read(ctx, grid.MustExtent([]int64{0, 0}, []int64{tileSize - 1, tileSize - 1}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), tiles[0].Reads())
	for _, other := range tiles[1:] {
		assert.Zero(t, other.Reads())
	}

	want, err := tiles[0].Read(ctx, tiles[0].Geometry().Extent)
	require.NoError(t, err)
	assert.True(t, b.Equal(want))
}

func TestMosaicGapFill(t *testing.T) {
	tiles := twoByTwo(t)[:3]
	m, err := NewMosaic(resources(tiles...))
	require.NoError(t, err)
	assert.Equal(t, []int64{512, 512}, m.Geometry().Extent.Sizes())

	b, err := m.Read(ctx, m.Geometry().Extent)
	require.NoError(t, err)
	for _, p := range [][]int64{{256, 256}, {511, 511}, {300, 400}} {
		assert.Equal(t, -1.0, b.At(p, 0), "pixel %v", p)
	}
	assert.Equal(t, tileValue(1, 3, 4), b.At([]int64{259, 4}, 0))
	assert.Equal(t, tileValue(2, 255, 0), b.At([]int64{255, 256}, 0))

	filled, err := m.Tile(ctx, []int64{1, 1})
	require.NoError(t, err)
	assert.True(t, filled.Extent().Equal(grid.MustExtent([]int64{256, 256}, []int64{511, 511})))
	assert.Equal(t, -1.0, filled.At([]int64{256, 256}, 0))
}

func TestMosaicTileTranslates(t *testing.T) {
	m, err := NewMosaic(resources(twoByTwo(t)...))
	require.NoError(t, err)

	b, err := m.Tile(ctx, []int64{1, 1})
	require.NoError(t, err)
	assert.True(t, b.Extent().Equal(grid.MustExtent([]int64{256, 256}, []int64{511, 511})))
	assert.Equal(t, tileValue(3, 0, 0), b.At([]int64{256, 256}, 0))

	_, err = m.Tile(ctx, []int64{1})
	assert.ErrorIs(t, err, grid.ErrDimensionMismatch)
}

func TestMosaicTileErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	whole := grid.MustExtent([]int64{0, 0}, []int64{tileSize - 1, tileSize - 1})

	m, err := NewMosaic(resources(
		newTile(t, 0, 0, 0, valueDims, raster.Int32),
		newTile(t, 1, 1, 0, valueDims, raster.Int32, source.WithHole(whole)),
	))
	require.NoError(t, err)
	b, err := m.Read(ctx, m.Geometry().Extent)
	require.NoError(t, err)
	assert.Equal(t, -1.0, b.At([]int64{300, 10}, 0))
	assert.Equal(t, tileValue(0, 10, 10), b.At([]int64{10, 10}, 0))

	m, err = NewMosaic(resources(
		newTile(t, 0, 0, 0, valueDims, raster.Int32),
		newTile(t, 1, 1, 0, valueDims, raster.Int32, source.WithReadError(boom)),
	))
	require.NoError(t, err)
	_, err = m.Read(ctx, m.Geometry().Extent)
	assert.ErrorIs(t, err, boom)

	_, err = m.Read(ctx, grid.MustExtent([]int64{600, 0}, []int64{700, 10}))
	assert.ErrorIs(t, err, raster.ErrNotFound)
}

func TestMosaicConvertedDomain(t *testing.T) {
	dims := []raster.SampleDimension{{
		Name: "temperature",
		Unit: "K",
		Categories: []raster.Category{
			{Name: "valid", Min: 0, Max: 60000, Quantitative: true, Scale: 0.5, Offset: 10},
		},
	}}
	m, err := NewMosaic(resources(
		newTile(t, 0, 0, 0, dims, raster.Uint16),
		newTile(t, 1, 1, 1, dims, raster.Uint16),
	))
	require.NoError(t, err)
	assert.Equal(t, raster.Layout{Type: raster.Float32, Bands: 1}, m.Layout())
	require.Len(t, m.SampleDimensions(), 1)
	assert.True(t, m.SampleDimensions()[0].Converted)
	assert.Empty(t, m.SampleDimensions()[0].Unit)

	b, err := m.Read(ctx, m.Geometry().Extent)
	require.NoError(t, err)
	assert.Equal(t, tileValue(1, 2, 3)*0.5+10, b.At([]int64{258, 259}, 0))
	assert.True(t, math.IsNaN(b.At([]int64{300, 10}, 0)))
}

func TestMosaicConvertedKeepsPrecision(t *testing.T) {
	dims := []raster.SampleDimension{{Name: "count"}}
	const big = 1<<24 + 1
	var tiles []raster.Resource
	for col := int64(0); col < 2; col++ {
		g, err := grid.NewGeometry(
			grid.MustExtent([]int64{0, 0}, []int64{3, 3}),
			grid.Translation([]float64{float64(col * 4), 0}),
			grid.CellCorner, "local",
		)
		require.NoError(t, err)
		r, err := source.NewMemoryFunc(g, dims, raster.Int32, func(c []int64, _ int) float64 {
			return big + float64(c[0])
		})
		require.NoError(t, err)
		tiles = append(tiles, r)
	}

	m, err := NewMosaic(tiles)
	require.NoError(t, err)
	assert.Equal(t, raster.Layout{Type: raster.Float64, Bands: 1}, m.Layout())

	b, err := m.Read(ctx, m.Geometry().Extent)
	require.NoError(t, err)
	assert.Equal(t, float64(big+2), b.At([]int64{6, 1}, 0))

	assert.Equal(t, raster.Float32, convertedType(raster.Uint16))
	assert.Equal(t, raster.Float64, convertedType(raster.Uint32))
	assert.Equal(t, raster.Float64, convertedType(raster.Float64))
}

func TestNewMosaicErrors(t *testing.T) {
	_, err := NewMosaic(nil)
	assert.ErrorIs(t, err, ErrNoResources)

	_, err = NewMosaic(resources(
		newTile(t, 0, 0, 0, valueDims, raster.Int32),
		newTile(t, 1, 5, 0, valueDims, raster.Int32),
	))
	assert.ErrorIs(t, err, ErrMultipleClusters)

	g, err := grid.NewGeometry(grid.MustExtent([]int64{0, 0}, []int64{3, 3}), warp{}, grid.CellCorner, "local")
	require.NoError(t, err)
	warped, err := source.NewMemoryFunc(g, valueDims, raster.Int32, func([]int64, int) float64 { return 0 })
	require.NoError(t, err)
	_, err = NewMosaic([]raster.Resource{warped})
	assert.ErrorIs(t, err, grid.ErrNonAffine)

	bad := mislabeled{newTile(t, 0, 0, 0, valueDims, raster.Int32)}
	_, err = NewMosaic([]raster.Resource{bad, newTile(t, 1, 1, 0, valueDims, raster.Int32)})
	assert.ErrorIs(t, err, ErrBandCount)
}

func TestMosaicID(t *testing.T) {
	tiles := twoByTwo(t)
	a, err := NewMosaic(resources(tiles...))
	require.NoError(t, err)
	b, err := NewMosaic(resources(tiles...))
	require.NoError(t, err)
	c, err := NewMosaic(resources(tiles[:3]...))
	require.NoError(t, err)

	assert.Equal(t, a.ID(), b.ID())
	assert.NotEqual(t, a.ID(), c.ID())
}

func TestOrganize(t *testing.T) {
	g, err := grid.NewGeometry(grid.MustExtent([]int64{0, 0}, []int64{3, 3}), warp{}, grid.CellCorner, "local")
	require.NoError(t, err)
	warped, err := source.NewMemoryFunc(g, valueDims, raster.Int32, func([]int64, int) float64 { return 0 })
	require.NoError(t, err)

	t0 := newTile(t, 0, 0, 0, valueDims, raster.Int32)
	t1 := newTile(t, 1, 1, 0, valueDims, raster.Int32)
	far := newTile(t, 2, 9, 9, valueDims, raster.Int32)

	out, err := Organize([]raster.Resource{t0, warped, t1, far})
	require.NoError(t, err)
	require.Len(t, out, 3)

	m, ok := out[0].(*Mosaic)
	require.True(t, ok, "got %T", out[0])
	assert.Equal(t, 2, m.TileCount())
	assert.Same(t, warped, out[1])
	assert.Same(t, far, out[2])
}

func TestOrganizeSingleton(t *testing.T) {
	only := newTile(t, 0, 0, 0, valueDims, raster.Int32)

	out, err := Organize([]raster.Resource{only})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Same(t, only, out[0])

	out, err = Organize([]raster.Resource{only}, WithoutPassThrough())
	require.NoError(t, err)
	require.Len(t, out, 1)
	m, ok := out[0].(*Mosaic)
	require.True(t, ok)
	assert.Equal(t, 1, m.TileCount())
}

func TestOrganizeDuplicate(t *testing.T) {
	_, err := Organize(resources(
		newTile(t, 0, 0, 0, valueDims, raster.Int32),
		newTile(t, 1, 0, 0, valueDims, raster.Int32),
	))
	assert.ErrorIs(t, err, ErrDuplicateTile)
}

func TestOrganizeEmpty(t *testing.T) {
	out, err := Organize(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
