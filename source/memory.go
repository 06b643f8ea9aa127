package source

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/robert-malhotra/go-mosaic/grid"
	"github.com/robert-malhotra/go-mosaic/raster"
)

// MemoryOption configures a Memory resource.
type MemoryOption func(*Memory)

// WithReadError makes every Read fail with err.
func WithReadError(err error) MemoryOption {
	return func(m *Memory) {
		m.readErr = err
	}
}

// WithHole makes reads report raster.ErrNotFound when the requested extent
// lies entirely inside hole.
func WithHole(hole grid.Extent) MemoryOption {
	return func(m *Memory) {
		m.holes = append(m.holes, hole)
	}
}

// Memory is a raster resource whose pixels live in one in-memory block.
type Memory struct {
	geometry grid.Geometry
	dims     []raster.SampleDimension
	block    *raster.Block
	readErr  error
	holes    []grid.Extent
	reads    atomic.Int64
}

var _ raster.Resource = (*Memory)(nil)

// NewMemory creates a resource serving block. The block must cover the
// geometry extent and carry one band per sample dimension.
func NewMemory(geometry grid.Geometry, dims []raster.SampleDimension, block *raster.Block, opts ...MemoryOption) (*Memory, error) {
	if !block.Extent().Equal(geometry.Extent) {
		return nil, fmt.Errorf("block extent %v does not match geometry extent %v", block.Extent(), geometry.Extent)
	}
	if block.Layout().Bands != len(dims) {
		return nil, fmt.Errorf("%w: %d bands for %d sample dimensions", raster.ErrBadLayout, block.Layout().Bands, len(dims))
	}
	m := &Memory{geometry: geometry, dims: dims, block: block}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// NewMemoryFunc creates a resource whose samples are computed once by fn.
func NewMemoryFunc(
	geometry grid.Geometry,
	dims []raster.SampleDimension,
	dataType raster.DataType,
	fn func(coord []int64, band int) float64,
	opts ...MemoryOption,
) (*Memory, error) {
	block, err := raster.NewBlock(geometry.Extent, raster.Layout{Type: dataType, Bands: len(dims)})
	if err != nil {
		return nil, err
	}
	forEachCell(geometry.Extent, func(coord []int64) {
		for b := range dims {
			block.Set(coord, b, fn(coord, b))
		}
	})
	return NewMemory(geometry, dims, block, opts...)
}

func (m *Memory) Geometry() grid.Geometry                    { return m.geometry }
func (m *Memory) SampleDimensions() []raster.SampleDimension { return m.dims }
func (m *Memory) Layout() raster.Layout                      { return m.block.Layout() }

// Reads returns the number of Read calls served so far.
func (m *Memory) Reads() int64 { return m.reads.Load() }

func (m *Memory) Read(ctx context.Context, extent grid.Extent) (*raster.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.reads.Add(1)
	if m.readErr != nil {
		return nil, m.readErr
	}
	clipped, ok := extent.Intersect(m.geometry.Extent)
	if !ok {
		return nil, fmt.Errorf("%v outside %v: %w", extent, m.geometry.Extent, raster.ErrNotFound)
	}
	for _, h := range m.holes {
		if h.ContainsExtent(clipped) {
			return nil, fmt.Errorf("%v: %w", clipped, raster.ErrNotFound)
		}
	}
	out, err := raster.NewBlock(clipped, m.block.Layout())
	if err != nil {
		return nil, err
	}
	if _, err := out.CopyFrom(m.block); err != nil {
		return nil, err
	}
	return out, nil
}

// forEachCell visits every coordinate of e with axis 0 varying fastest.
func forEachCell(e grid.Extent, fn func(coord []int64)) {
	coord := e.Lows()
	for {
		fn(coord)
		i := 0
		for ; i < len(coord); i++ {
			if coord[i] < e.High(i) {
				coord[i]++
				break
			}
			coord[i] = e.Low(i)
		}
		if i == len(coord) {
			return
		}
	}
}
