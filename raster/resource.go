package raster

import (
	"context"
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-mosaic/grid"
	"github.com/robert-malhotra/go-mosaic/internal/dtype"
)

var (
	ErrNotFound  = errors.New("no data in requested domain")
	ErrCapacity  = errors.New("block too large")
	ErrBadLayout = errors.New("invalid pixel layout")
)

// Resource is a raster that can describe itself and materialize pixels.
type Resource interface {
	// Geometry returns the grid geometry of the whole resource.
	Geometry() grid.Geometry

	// SampleDimensions returns the description of every band, in band order.
	SampleDimensions() []SampleDimension

	// Layout returns the pixel layout of the blocks returned by Read.
	Layout() Layout

	// Read materializes the pixels of extent, given in the resource's own
	// grid coordinates. The returned block covers extent clipped to the
	// resource. It fails with ErrNotFound when nothing is available there.
	Read(ctx context.Context, extent grid.Extent) (*Block, error)
}

// DataType is the storage type of one sample.
type DataType = dtype.Type

const (
	Uint8   = dtype.Uint8
	Int8    = dtype.Int8
	Uint16  = dtype.Uint16
	Int16   = dtype.Int16
	Uint32  = dtype.Uint32
	Int32   = dtype.Int32
	Float32 = dtype.Float32
	Float64 = dtype.Float64
)

// Layout describes how the pixels of a block are stored.
type Layout struct {
	Type  DataType
	Bands int
}

// PixelSize returns the number of bytes of one pixel, all bands included.
func (l Layout) PixelSize() int {
	return l.Type.Size() * l.Bands
}

// Validate checks that the layout can back a block.
func (l Layout) Validate() error {
	if !l.Type.Valid() {
		return fmt.Errorf("%w: unknown sample type %v", ErrBadLayout, l.Type)
	}
	if l.Bands <= 0 {
		return fmt.Errorf("%w: %d bands", ErrBadLayout, l.Bands)
	}
	return nil
}

func (l Layout) String() string {
	return fmt.Sprintf("%d×%v", l.Bands, l.Type)
}
