// Package raster defines the capability every raster resource exposes and
// the values that flow through it.
//
// A [Resource] reports its grid geometry, the semantics of its bands
// ([SampleDimension]), its pixel layout, and materializes pixel [Block]s for
// requested sub-extents. Leaf readers, mosaics and compositors all implement
// the same interface, so they nest freely.
//
// Reads that find no data in the requested domain fail with [ErrNotFound].
// Callers distinguish it from I/O failures with errors.Is.
package raster
