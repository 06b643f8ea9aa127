// Package grid provides the integer and affine primitives shared by every
// raster resource: grid extents, grid-to-CRS transforms, grid geometries and
// envelopes.
//
// # Extents
//
// An [Extent] is an N-dimensional axis-aligned box of integer grid
// coordinates. Both bounds are inclusive, so the size along axis i is
// high[i] - low[i] + 1. Axis 0 is the column (x) axis and varies fastest in
// every memory layout built on top of this package.
//
// # Transforms
//
// A [Transform] maps grid coordinates to a reference space. Only affine
// transforms ([Affine], backed by a gonum matrix) can take part in mosaics;
// [AsAffine] rejects anything else with [ErrNonAffine].
//
// # Geometries
//
// A [Geometry] pairs an extent with its grid-to-CRS transform, the pixel
// anchor the transform refers to and a CRS identifier. [Aggregate] merges
// geometries that share one grid (same scale and rotation, integer cell
// offsets) into their union.
package grid
