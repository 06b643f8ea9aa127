package mosaic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/robert-malhotra/go-mosaic/grid"
	"github.com/robert-malhotra/go-mosaic/internal/bitset"
	"github.com/robert-malhotra/go-mosaic/internal/tileorg"
	"github.com/robert-malhotra/go-mosaic/raster"
)

var idNamespace = uuid.MustParse("6f1c5a0e-3b7d-5c1a-9e42-d0a8f3b1c7e5")

// Tile is a resource placed on the mosaic lattice.
type Tile struct {
	Coord []int64

	// Origin is the tile's lower corner in mosaic pixel coordinates.
	Origin []int64

	Resource raster.Resource

	source grid.Extent
	offset []int64
}

// Mosaic is a raster made of equally sized tiles laid on one grid.
// Pixels are read from the tiles on demand; positions without a tile are
// served with the fill value of each band. A Mosaic is immutable and safe
// for concurrent use.
type Mosaic struct {
	id        uuid.UUID
	geometry  grid.Geometry
	dims      []raster.SampleDimension
	reference []raster.SampleDimension
	fill      []float64
	converted bool
	layout    raster.Layout
	tileSize  []int64
	phase     []int64
	tiles     []*Tile
	index     map[string]*Tile
	log       *slog.Logger
}

var _ raster.Resource = (*Mosaic)(nil)

// NewMosaic assembles tiles into one Mosaic. All tiles must share an affine
// grid family, have the same size and sit on one lattice, and form a single
// connected cluster. Use Organize for arbitrary resource lists.
func NewMosaic(tiles []raster.Resource, opts ...Option) (*Mosaic, error) {
	if len(tiles) == 0 {
		return nil, ErrNoResources
	}
	res, err := tileorg.Organize(geometries(tiles))
	if err != nil {
		return nil, err
	}
	if len(res.Rejected) > 0 {
		r := res.Rejected[0]
		return nil, fmt.Errorf("tile %d: %w", r.Index, r.Err)
	}
	if len(res.Groups) != 1 {
		return nil, fmt.Errorf("%w: %d clusters", ErrMultipleClusters, len(res.Groups))
	}
	return newMosaic(res.Groups[0], tiles, newOptions(opts))
}

func newMosaic(g *tileorg.Group, resources []raster.Resource, o *options) (*Mosaic, error) {
	first := resources[g.Tiles[0].Index]
	h := Harmonize(first.SampleDimensions())

	l := first.Layout()
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if l.Bands != len(h.Dimensions) {
		return nil, fmt.Errorf("%w: layout has %d bands for %d sample dimensions", ErrBandCount, l.Bands, len(h.Dimensions))
	}
	if h.Converted {
		l.Type = convertedType(l.Type)
	}

	m := &Mosaic{
		geometry:  g.Geometry,
		dims:      h.Dimensions,
		reference: first.SampleDimensions(),
		fill:      h.Fill,
		converted: h.Converted,
		layout:    l,
		tileSize:  g.TileSize,
		phase:     g.Phase,
		index:     make(map[string]*Tile, len(g.Tiles)),
		log:       o.log(),
	}
	for _, t := range g.Tiles {
		r := resources[t.Index]
		if b := r.Layout().Bands; b != l.Bands {
			return nil, fmt.Errorf("%w: tile %v has %d bands, want %d", ErrBandCount, t.Coord, b, l.Bands)
		}
		tile := &Tile{
			Coord:    t.Coord,
			Origin:   t.Origin,
			Resource: r,
			source:   t.Source,
			offset:   t.Offset(),
		}
		m.tiles = append(m.tiles, tile)
		m.index[coordKey(t.Coord)] = tile
	}
	m.id = m.computeID()
	return m, nil
}

// convertedType returns the floating point type able to hold every value
// of t exactly.
func convertedType(t raster.DataType) raster.DataType {
	switch t {
	case raster.Int32, raster.Uint32, raster.Float64:
		return raster.Float64
	default:
		return raster.Float32
	}
}

// computeID derives a stable identifier from the grid and tile placement.
func (m *Mosaic) computeID() uuid.UUID {
	var sb strings.Builder
	sb.WriteString(m.geometry.String())
	for _, t := range m.tiles {
		fmt.Fprintf(&sb, ";%v@%v", t.Coord, t.Resource.Geometry())
	}
	return uuid.NewSHA1(idNamespace, []byte(sb.String()))
}

func (m *Mosaic) Geometry() grid.Geometry                    { return m.geometry }
func (m *Mosaic) SampleDimensions() []raster.SampleDimension { return m.dims }
func (m *Mosaic) Layout() raster.Layout                      { return m.layout }

// ID returns an identifier derived from the mosaic grid and the placement
// of its tiles.
func (m *Mosaic) ID() uuid.UUID { return m.id }

// Envelope returns the bounds of the mosaic in its reference space.
func (m *Mosaic) Envelope() (grid.Envelope, error) { return m.geometry.Envelope() }

// TileSize returns the size of every tile, in pixels.
func (m *Mosaic) TileSize() []int64 { return slices.Clone(m.tileSize) }

// TileCount returns the number of tiles bound to a resource.
func (m *Mosaic) TileCount() int { return len(m.tiles) }

// Tiles returns the tiles in the order the resources were given.
func (m *Mosaic) Tiles() []Tile {
	out := make([]Tile, len(m.tiles))
	for i, t := range m.tiles {
		out[i] = *t
	}
	return out
}

// TileAt returns the resource at a tile coordinate.
func (m *Mosaic) TileAt(coord []int64) (raster.Resource, bool) {
	t, ok := m.index[coordKey(coord)]
	if !ok {
		return nil, false
	}
	return t.Resource, true
}

// FillValues returns the per-band value of pixels no tile covers.
func (m *Mosaic) FillValues() []float64 { return slices.Clone(m.fill) }

func (m *Mosaic) tileOrigin(coord []int64) []int64 {
	o := make([]int64, len(coord))
	for i, c := range coord {
		o[i] = c*m.tileSize[i] + m.phase[i]
	}
	return o
}

func (m *Mosaic) tileCoord(pixel []int64) []int64 {
	c := make([]int64, len(pixel))
	for i, p := range pixel {
		d := p - m.phase[i]
		q := d / m.tileSize[i]
		if d%m.tileSize[i] != 0 && d < 0 {
			q--
		}
		c[i] = q
	}
	return c
}

// Tile renders the block at a tile coordinate. A bound tile is read in full
// from its resource; any other position yields a block of fill values.
// Errors from the resource, including raster.ErrNotFound, are returned as
// is.
func (m *Mosaic) Tile(ctx context.Context, coord []int64) (*raster.Block, error) {
	if len(coord) != m.geometry.Dimension() {
		return nil, fmt.Errorf("%w: tile coordinate %v for %d axes", grid.ErrDimensionMismatch, coord, m.geometry.Dimension())
	}
	if t, ok := m.index[coordKey(coord)]; ok {
		return m.readTile(ctx, t)
	}
	footprint, err := grid.ExtentFromSize(m.tileOrigin(coord), m.tileSize)
	if err != nil {
		return nil, err
	}
	return m.fillBlock(footprint)
}

func (m *Mosaic) readTile(ctx context.Context, t *Tile) (*raster.Block, error) {
	b, err := t.Resource.Read(ctx, t.source)
	if err != nil {
		return nil, err
	}
	switch {
	case m.converted:
		if b, err = b.Convert(m.layout.Type, func(band int, v float64) float64 {
			return m.reference[band].Transfer(v)
		}); err != nil {
			return nil, err
		}
	case b.Layout().Type != m.layout.Type:
		if b, err = b.Convert(m.layout.Type, nil); err != nil {
			return nil, err
		}
	}
	return b.Translate(t.offset), nil
}

func (m *Mosaic) fillBlock(extent grid.Extent) (*raster.Block, error) {
	b, err := raster.NewBlock(extent, m.layout)
	if err != nil {
		return nil, err
	}
	if !allZero(m.fill) {
		if err := b.Fill(m.fill); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Read materializes extent, clipped to the mosaic. Tiles whose resource
// reports raster.ErrNotFound are served as fill values; any other tile
// error fails the read.
func (m *Mosaic) Read(ctx context.Context, extent grid.Extent) (*raster.Block, error) {
	if extent.Dimension() != m.geometry.Dimension() {
		return nil, fmt.Errorf("%w: %d-axis request on %d-axis mosaic", grid.ErrDimensionMismatch, extent.Dimension(), m.geometry.Dimension())
	}
	domain, ok := extent.Intersect(m.geometry.Extent)
	if !ok {
		return nil, fmt.Errorf("%v outside %v: %w", extent, m.geometry.Extent, raster.ErrNotFound)
	}
	dst, err := raster.NewBlock(domain, m.layout)
	if err != nil {
		return nil, err
	}
	tileRange, err := grid.NewExtent(m.tileCoord(domain.Lows()), m.tileCoord(domain.Highs()))
	if err != nil {
		return nil, err
	}
	served, err := bitset.New(tileRange)
	if err != nil {
		return nil, err
	}

	for _, t := range m.tiles {
		if !tileRange.Contains(t.Coord) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := m.readTile(ctx, t)
		if errors.Is(err, raster.ErrNotFound) {
			m.log.Debug("tile has no data", "mosaic", m.id, "tile", t.Coord, "err", err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading tile %v: %w", t.Coord, err)
		}
		if _, err := dst.CopyFrom(b); err != nil {
			return nil, err
		}
		if err := served.Set(t.Coord); err != nil {
			return nil, err
		}
	}

	if allZero(m.fill) {
		return dst, nil
	}
	next, ok, err := served.NextClear(tileRange.Lows())
	for ; ok && err == nil; next, ok, err = served.NextClear(next) {
		footprint, ferr := grid.ExtentFromSize(m.tileOrigin(next), m.tileSize)
		if ferr != nil {
			return nil, ferr
		}
		if part, ok := footprint.Intersect(domain); ok {
			fb, ferr := m.fillBlock(part)
			if ferr != nil {
				return nil, ferr
			}
			if _, ferr := dst.CopyFrom(fb); ferr != nil {
				return nil, ferr
			}
		}
		if err = served.Set(next); err != nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return dst, nil
}

func (m *Mosaic) String() string {
	return fmt.Sprintf("Mosaic{%v, %d tiles of %v, %v}", m.geometry.Extent, len(m.tiles), m.tileSize, m.layout)
}

func geometries(resources []raster.Resource) []grid.Geometry {
	out := make([]grid.Geometry, len(resources))
	for i, r := range resources {
		out[i] = r.Geometry()
	}
	return out
}

func coordKey(coord []int64) string {
	var sb strings.Builder
	for i, c := range coord {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(c, 10))
	}
	return sb.String()
}
