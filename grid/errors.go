package grid

import "errors"

var (
	ErrInvalidExtent     = errors.New("invalid grid extent")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrOverflow          = errors.New("integer overflow")
	ErrNonAffine         = errors.New("grid-to-CRS transform is not affine")
	ErrNotInvertible     = errors.New("transform is not invertible")
	ErrNotAligned        = errors.New("grid geometries are not aligned")
)
