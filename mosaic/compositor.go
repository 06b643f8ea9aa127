package mosaic

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/sync/errgroup"

	"github.com/robert-malhotra/go-mosaic/grid"
	"github.com/robert-malhotra/go-mosaic/raster"
)

var dimensionOpts = cmp.Options{cmpopts.EquateNaNs(), cmpopts.EquateEmpty()}

// Compositor overlays resources that share one grid. Sources are read
// concurrently and merged in the order they were given: where footprints
// overlap, the later source wins.
type Compositor struct {
	sources  []raster.Resource
	offsets  [][]int64
	geometry grid.Geometry
	dims     []raster.SampleDimension
	layout   raster.Layout
	fill     []float64
	opts     *options
}

var _ raster.Resource = (*Compositor)(nil)

// NewCompositor creates a compositor over resources. Every resource must
// describe its bands identically, share one pixel layout and lie on the
// grid of the first one.
func NewCompositor(resources []raster.Resource, opts ...Option) (*Compositor, error) {
	if len(resources) == 0 {
		return nil, ErrNoResources
	}
	dims := resources[0].SampleDimensions()
	layout := resources[0].Layout()
	for i, r := range resources[1:] {
		if other := r.SampleDimensions(); !cmp.Equal(dims, other, dimensionOpts) {
			return nil, fmt.Errorf("%w: resource %d (-first +got):\n%s",
				ErrMismatchedDimensions, i+1, cmp.Diff(dims, other, dimensionOpts))
		}
		if other := r.Layout(); other != layout {
			return nil, fmt.Errorf("%w: resource %d has layout %v, want %v", ErrMismatchedLayout, i+1, other, layout)
		}
	}
	agg, err := grid.Aggregate(geometries(resources)...)
	if err != nil {
		return nil, err
	}
	c := &Compositor{
		sources:  resources,
		offsets:  agg.Offsets,
		geometry: agg.Geometry,
		dims:     dims,
		layout:   layout,
		fill:     make([]float64, len(dims)),
		opts:     newOptions(opts),
	}
	for i, d := range dims {
		c.fill[i], _ = d.FillValue()
	}
	return c, nil
}

func (c *Compositor) Geometry() grid.Geometry                    { return c.geometry }
func (c *Compositor) SampleDimensions() []raster.SampleDimension { return c.dims }
func (c *Compositor) Layout() raster.Layout                      { return c.layout }

// Read materializes extent, clipped to the union of the sources. Sources
// without data there, or failing to read, are left out. The read fails with
// raster.ErrNotFound when no source returned data.
func (c *Compositor) Read(ctx context.Context, extent grid.Extent) (*raster.Block, error) {
	if extent.Dimension() != c.geometry.Dimension() {
		return nil, fmt.Errorf("%w: %d-axis request on %d-axis compositor", grid.ErrDimensionMismatch, extent.Dimension(), c.geometry.Dimension())
	}
	domain, ok := extent.Intersect(c.geometry.Extent)
	if !ok {
		return nil, fmt.Errorf("%v outside %v: %w", extent, c.geometry.Extent, raster.ErrNotFound)
	}
	log := c.opts.log()

	blocks := make([]*raster.Block, len(c.sources))
	var g errgroup.Group
	g.SetLimit(c.opts.concurrency)
	for i, src := range c.sources {
		g.Go(func() error {
			local, ok := domain.Translate(negate(c.offsets[i])).Intersect(src.Geometry().Extent)
			if !ok {
				return nil
			}
			b, err := src.Read(ctx, local)
			switch {
			case err == nil:
				blocks[i] = b.Translate(c.offsets[i])
			case errors.Is(err, raster.ErrNotFound):
				log.Debug("source has no data", "source", i, "extent", local)
			case ctx.Err() != nil:
			default:
				log.Warn("dropping source after read error", "source", i, "extent", local, "err", err)
			}
			return nil
		})
	}
	// Sources record their own failures; only cancellation fails the read.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var dst *raster.Block
	for _, b := range blocks {
		if b == nil {
			continue
		}
		if dst == nil {
			var err error
			if dst, err = raster.NewBlock(domain, c.layout); err != nil {
				return nil, err
			}
			if !allZero(c.fill) {
				if err := dst.Fill(c.fill); err != nil {
					return nil, err
				}
			}
		}
		if _, err := dst.MergeFrom(b, c.keep()); err != nil {
			return nil, err
		}
	}
	if dst == nil {
		return nil, fmt.Errorf("no source has data in %v: %w", domain, raster.ErrNotFound)
	}
	return dst, nil
}

// keep returns the sample filter used when merging, or nil to copy every
// sample.
func (c *Compositor) keep() func(band int, v float64) bool {
	if !c.opts.noDataMerge {
		return nil
	}
	return func(band int, v float64) bool {
		return !c.dims[band].IsNoData(v)
	}
}

func (c *Compositor) String() string {
	return fmt.Sprintf("Compositor{%v, %d sources}", c.geometry.Extent, len(c.sources))
}

func negate(v []int64) []int64 {
	out := make([]int64, len(v))
	for i, x := range v {
		out[i] = -x
	}
	return out
}
