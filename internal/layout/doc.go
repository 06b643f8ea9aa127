// Package layout provides the memory layout arithmetic shared by raster
// blocks: stride tables, N-dimensional overlap copies and pixel fills.
//
// # Memory Layout
//
// A block stores its cells in one flat buffer. Axis 0 varies fastest, then
// axis 1, and so on; the samples of one cell (its bands) are interleaved and
// contiguous. The byte offset of a cell is therefore
//
//	sum((coord[i] - low[i]) * stride[i])
//
// where stride[0] is the pixel size and stride[i] = stride[i-1] * size[i-1].
//
// # Overlap Copying
//
// [Overlap] walks the region shared by two boxes and reports it as a
// sequence of contiguous runs along axis 0. It works by recursing through
// the axes from the slowest to the fastest:
//
//  1. For each position of the overlap along the current axis, advance the
//     destination and source offsets by that axis' stride
//  2. Recurse to the next faster axis
//  3. At axis 0 the remaining cells are contiguous in both buffers and are
//     handed to the callback as one run
//
// [Copy] builds on it for same-type copies; callers that need per-sample
// conversion or masking supply their own callback.
package layout
