// Package tileorg groups raster footprints that can be assembled into
// tiled mosaics.
//
// # Affine Families
//
// Two geometries belong to the same family when they share a CRS and the
// grid of one is an integer subsampling of the grid of the other: with B
// the corner-anchored grid-to-CRS transform of the family base and T that
// of a member,
//
//	B⁻¹ ∘ T = translate(o) ∘ scale(S)
//
// where S is a positive integer diagonal and o an integer vector. When a
// newcomer is finer than the current base, it becomes the new base.
//
// # Lattices
//
// Members with subsampling S live on a mosaic grid mapping pixel m to base
// coordinate S·m + r, where r = o mod S. A member's pixel origin P on that
// grid is divided by its tile size into a tile coordinate; the remainder q
// is the lattice phase. Members are keyed by (S, tile size, r, q): tiles of
// different pixel size or subsampling never share a key.
//
// # Clusters
//
// Within one key, tiles whose footprints abut or overlap (tile coordinates
// differing by at most one on every axis) are joined into one [Group]. Two
// members landing on the same tile coordinate of one key fail with
// [ErrDuplicateTile].
package tileorg
