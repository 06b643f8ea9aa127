package raster

import (
	"bytes"
	"fmt"
	"math"

	"github.com/robert-malhotra/go-mosaic/grid"
	"github.com/robert-malhotra/go-mosaic/internal/dtype"
	"github.com/robert-malhotra/go-mosaic/internal/layout"
)

// Block holds the pixels of one grid extent. Samples are little-endian,
// bands are interleaved, and axis 0 of the extent varies fastest.
type Block struct {
	extent grid.Extent
	layout Layout
	data   []byte
}

// NewBlock allocates a zero-filled block.
func NewBlock(extent grid.Extent, l Layout) (*Block, error) {
	n, err := byteSize(extent, l)
	if err != nil {
		return nil, err
	}
	return &Block{extent: extent, layout: l, data: make([]byte, n)}, nil
}

// NewBlockData wraps existing sample bytes. The block takes ownership of
// data.
func NewBlockData(extent grid.Extent, l Layout, data []byte) (*Block, error) {
	n, err := byteSize(extent, l)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) != n {
		return nil, fmt.Errorf("%w: %d bytes for %v of %v, want %d", ErrBadLayout, len(data), extent, l, n)
	}
	return &Block{extent: extent, layout: l, data: data}, nil
}

func byteSize(extent grid.Extent, l Layout) (int64, error) {
	if err := l.Validate(); err != nil {
		return 0, err
	}
	cells, err := extent.CellCount()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCapacity, err)
	}
	if cells == 0 {
		return 0, fmt.Errorf("%w: empty extent", grid.ErrInvalidExtent)
	}
	if cells > math.MaxInt/int64(l.PixelSize()) {
		return 0, fmt.Errorf("%w: %d cells of %d bytes", ErrCapacity, cells, l.PixelSize())
	}
	return cells * int64(l.PixelSize()), nil
}

// Extent returns the grid extent covered by the block.
func (b *Block) Extent() grid.Extent { return b.extent }

// Layout returns the pixel layout.
func (b *Block) Layout() Layout { return b.layout }

// Data returns the raw sample bytes. The slice is shared with the block.
func (b *Block) Data() []byte { return b.data }

func (b *Block) box() layout.Box {
	return layout.Box{Low: b.extent.Lows(), Size: b.extent.Sizes()}
}

// offset returns the byte offset of one sample, or -1 when it lies outside
// the block.
func (b *Block) offset(coord []int64, band int) int {
	if band < 0 || band >= b.layout.Bands || !b.extent.Contains(coord) {
		return -1
	}
	var cell, stride int64 = 0, 1
	for i, c := range coord {
		cell += (c - b.extent.Low(i)) * stride
		stride *= b.extent.Size(i)
	}
	return int(cell)*b.layout.PixelSize() + band*b.layout.Type.Size()
}

// At returns the sample of band at coord, or NaN when coord or band lies
// outside the block.
func (b *Block) At(coord []int64, band int) float64 {
	off := b.offset(coord, band)
	if off < 0 {
		return math.NaN()
	}
	return dtype.Get(b.layout.Type, b.data[off:])
}

// Set stores v in band at coord. It does nothing outside the block.
func (b *Block) Set(coord []int64, band int, v float64) {
	off := b.offset(coord, band)
	if off < 0 {
		return
	}
	dtype.Put(b.layout.Type, b.data[off:], v)
}

// Fill sets every pixel to values, one per band.
func (b *Block) Fill(values []float64) error {
	if len(values) != b.layout.Bands {
		return fmt.Errorf("%w: %d fill values for %d bands", ErrBadLayout, len(values), b.layout.Bands)
	}
	size := b.layout.Type.Size()
	pixel := make([]byte, b.layout.PixelSize())
	for i, v := range values {
		dtype.Put(b.layout.Type, pixel[i*size:], v)
	}
	layout.Fill(b.data, pixel)
	return nil
}

// Translate returns a block sharing b's samples whose extent is shifted by
// offset.
func (b *Block) Translate(offset []int64) *Block {
	return &Block{extent: b.extent.Translate(offset), layout: b.layout, data: b.data}
}

// Convert returns a copy of b stored as type t, with every sample passed
// through fn. A nil fn keeps values unchanged.
func (b *Block) Convert(t DataType, fn func(band int, v float64) float64) (*Block, error) {
	l := Layout{Type: t, Bands: b.layout.Bands}
	out, err := NewBlock(b.extent, l)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		dtype.Convert(out.data, t, b.data, b.layout.Type, len(b.data)/b.layout.Type.Size())
		return out, nil
	}
	ss, ds := b.layout.Type.Size(), t.Size()
	bands := b.layout.Bands
	for i := 0; i*ss < len(b.data); i++ {
		v := dtype.Get(b.layout.Type, b.data[i*ss:])
		dtype.Put(t, out.data[i*ds:], fn(i%bands, v))
	}
	return out, nil
}

// CopyFrom overwrites the part of b covered by src with src's samples,
// converting the sample type when needed. It reports whether the blocks
// overlap.
func (b *Block) CopyFrom(src *Block) (bool, error) {
	if src.layout.Bands != b.layout.Bands {
		return false, fmt.Errorf("%w: copying %d bands into %d", ErrBadLayout, src.layout.Bands, b.layout.Bands)
	}
	if src.layout.Type == b.layout.Type {
		return layout.Copy(b.data, b.box(), src.data, src.box(), int64(b.layout.PixelSize())), nil
	}
	dp, sp := int64(b.layout.PixelSize()), int64(src.layout.PixelSize())
	samples := int64(b.layout.Bands)
	return layout.Overlap(b.box(), src.box(), func(d, s, n int64) {
		dtype.Convert(b.data[d*dp:], b.layout.Type, src.data[s*sp:], src.layout.Type, int(n*samples))
	}), nil
}

// MergeFrom is like CopyFrom but leaves a destination sample untouched
// whenever keep reports false for the source sample.
func (b *Block) MergeFrom(src *Block, keep func(band int, v float64) bool) (bool, error) {
	if keep == nil {
		return b.CopyFrom(src)
	}
	if src.layout.Bands != b.layout.Bands {
		return false, fmt.Errorf("%w: merging %d bands into %d", ErrBadLayout, src.layout.Bands, b.layout.Bands)
	}
	bands := int64(b.layout.Bands)
	dt, st := b.layout.Type, src.layout.Type
	ds, ss := int64(dt.Size()), int64(st.Size())
	return layout.Overlap(b.box(), src.box(), func(d, s, n int64) {
		for i := int64(0); i < n*bands; i++ {
			v := dtype.Get(st, src.data[(s*bands+i)*ss:])
			if keep(int(i%bands), v) {
				dtype.Put(dt, b.data[(d*bands+i)*ds:], v)
			}
		}
	}), nil
}

// Equal reports whether both blocks cover the same extent with the same
// layout and bytes.
func (b *Block) Equal(o *Block) bool {
	return b.extent.Equal(o.extent) && b.layout == o.layout && bytes.Equal(b.data, o.data)
}

func (b *Block) String() string {
	return fmt.Sprintf("Block{%v, %v}", b.extent, b.layout)
}
