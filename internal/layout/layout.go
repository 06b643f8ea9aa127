package layout

// Box is the position and size of a buffer in grid coordinates.
type Box struct {
	Low  []int64
	Size []int64
}

// Cells returns the number of cells in the box.
func (b Box) Cells() int64 {
	n := int64(1)
	for _, s := range b.Size {
		n *= s
	}
	return n
}

// Strides returns the per-axis strides of a box of the given size, in units
// of unit (1 for cell indices, the pixel size for byte offsets).
func Strides(size []int64, unit int64) []int64 {
	strides := make([]int64, len(size))
	s := unit
	for i := range size {
		strides[i] = s
		s *= size[i]
	}
	return strides
}

// Overlap calls fn once for every contiguous run of cells shared by dst and
// src. dstCell and srcCell are cell indices within each box, n the run
// length. It reports false, without calling fn, when the boxes are disjoint.
func Overlap(dst, src Box, fn func(dstCell, srcCell, n int64)) bool {
	ndims := len(dst.Low)
	if ndims == 0 || len(src.Low) != ndims {
		return false
	}

	// Overlap region, upper bound exclusive
	lo := make([]int64, ndims)
	hi := make([]int64, ndims)
	for d := 0; d < ndims; d++ {
		lo[d] = max(dst.Low[d], src.Low[d])
		hi[d] = min(dst.Low[d]+dst.Size[d], src.Low[d]+src.Size[d])
		if lo[d] >= hi[d] {
			return false
		}
	}

	w := walker{
		dst:        dst,
		src:        src,
		lo:         lo,
		hi:         hi,
		dstStrides: Strides(dst.Size, 1),
		srcStrides: Strides(src.Size, 1),
		fn:         fn,
	}
	w.recurse(ndims-1, 0, 0)
	return true
}

type walker struct {
	dst, src               Box
	lo, hi                 []int64
	dstStrides, srcStrides []int64
	fn                     func(dstCell, srcCell, n int64)
}

func (w *walker) recurse(dim int, dstIdx, srcIdx int64) {
	if dim == 0 {
		// Innermost axis - contiguous run
		w.fn(
			dstIdx+w.lo[0]-w.dst.Low[0],
			srcIdx+w.lo[0]-w.src.Low[0],
			w.hi[0]-w.lo[0],
		)
		return
	}

	for i := w.lo[dim]; i < w.hi[dim]; i++ {
		w.recurse(dim-1,
			dstIdx+(i-w.dst.Low[dim])*w.dstStrides[dim],
			srcIdx+(i-w.src.Low[dim])*w.srcStrides[dim],
		)
	}
}

// Copy copies the cells shared by both boxes from src to dst. Both buffers
// hold pixels of pixelSize bytes.
func Copy(dst []byte, dstBox Box, src []byte, srcBox Box, pixelSize int64) bool {
	return Overlap(dstBox, srcBox, func(d, s, n int64) {
		copy(dst[d*pixelSize:(d+n)*pixelSize], src[s*pixelSize:(s+n)*pixelSize])
	})
}

// Fill repeats pixel over the whole of dst. len(dst) must be a multiple of
// len(pixel).
func Fill(dst []byte, pixel []byte) {
	if len(dst) == 0 || len(pixel) == 0 {
		return
	}
	n := copy(dst, pixel)
	for n < len(dst) {
		n += copy(dst[n:], dst[:n])
	}
}
