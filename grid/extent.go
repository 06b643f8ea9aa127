package grid

import (
	"fmt"
	"math"
	"math/bits"
	"slices"
	"strings"
)

// Extent is an N-dimensional box of integer grid coordinates with inclusive
// bounds on every axis. The zero Extent has no dimensions and is empty.
type Extent struct {
	low  []int64
	high []int64
}

// NewExtent creates an extent from inclusive lower and upper corners.
func NewExtent(low, high []int64) (Extent, error) {
	if len(low) == 0 || len(low) != len(high) {
		return Extent{}, fmt.Errorf("%w: low has %d axes, high has %d", ErrInvalidExtent, len(low), len(high))
	}
	for i := range low {
		if low[i] > high[i] {
			return Extent{}, fmt.Errorf("%w: axis %d low %d > high %d", ErrInvalidExtent, i, low[i], high[i])
		}
	}
	return Extent{low: slices.Clone(low), high: slices.Clone(high)}, nil
}

// ExtentFromSize creates an extent starting at low with the given number of
// cells along each axis.
func ExtentFromSize(low, size []int64) (Extent, error) {
	if len(low) != len(size) {
		return Extent{}, fmt.Errorf("%w: low has %d axes, size has %d", ErrInvalidExtent, len(low), len(size))
	}
	high := make([]int64, len(low))
	for i := range low {
		if size[i] <= 0 {
			return Extent{}, fmt.Errorf("%w: axis %d size %d", ErrInvalidExtent, i, size[i])
		}
		h, err := addInt64(low[i], size[i]-1)
		if err != nil {
			return Extent{}, err
		}
		high[i] = h
	}
	return NewExtent(low, high)
}

// MustExtent is like NewExtent but panics on error. Intended for literals
// in tests and examples.
func MustExtent(low, high []int64) Extent {
	e, err := NewExtent(low, high)
	if err != nil {
		panic(err)
	}
	return e
}

// Dimension returns the number of axes.
func (e Extent) Dimension() int {
	return len(e.low)
}

// IsZero reports whether e is the zero Extent.
func (e Extent) IsZero() bool {
	return len(e.low) == 0
}

// Low returns the inclusive lower bound along axis i.
func (e Extent) Low(i int) int64 { return e.low[i] }

// High returns the inclusive upper bound along axis i.
func (e Extent) High(i int) int64 { return e.high[i] }

// Size returns the number of cells along axis i.
func (e Extent) Size(i int) int64 { return e.high[i] - e.low[i] + 1 }

// Lows returns a copy of the lower corner.
func (e Extent) Lows() []int64 { return slices.Clone(e.low) }

// Highs returns a copy of the upper corner.
func (e Extent) Highs() []int64 { return slices.Clone(e.high) }

// Sizes returns the number of cells along every axis.
func (e Extent) Sizes() []int64 {
	s := make([]int64, len(e.low))
	for i := range s {
		s[i] = e.Size(i)
	}
	return s
}

// CellCount returns the total number of cells, failing with ErrOverflow
// when the product does not fit in an int64.
func (e Extent) CellCount() (int64, error) {
	if e.IsZero() {
		return 0, nil
	}
	n := int64(1)
	for i := range e.low {
		var err error
		n, err = mulInt64(n, e.Size(i))
		if err != nil {
			return 0, fmt.Errorf("cell count of %v: %w", e, err)
		}
	}
	return n, nil
}

// Contains reports whether coord lies inside the extent.
func (e Extent) Contains(coord []int64) bool {
	if len(coord) != len(e.low) || e.IsZero() {
		return false
	}
	for i, c := range coord {
		if c < e.low[i] || c > e.high[i] {
			return false
		}
	}
	return true
}

// ContainsExtent reports whether o lies entirely inside e.
func (e Extent) ContainsExtent(o Extent) bool {
	return e.Contains(o.low) && e.Contains(o.high)
}

// Intersect returns the common part of e and o. The boolean is false when
// the extents are disjoint or have different dimensions.
func (e Extent) Intersect(o Extent) (Extent, bool) {
	if e.IsZero() || len(e.low) != len(o.low) {
		return Extent{}, false
	}
	low := make([]int64, len(e.low))
	high := make([]int64, len(e.low))
	for i := range low {
		low[i] = max(e.low[i], o.low[i])
		high[i] = min(e.high[i], o.high[i])
		if low[i] > high[i] {
			return Extent{}, false
		}
	}
	return Extent{low: low, high: high}, true
}

// Union returns the smallest extent containing both e and o.
func (e Extent) Union(o Extent) (Extent, error) {
	if e.IsZero() {
		return o, nil
	}
	if o.IsZero() {
		return e, nil
	}
	if len(e.low) != len(o.low) {
		return Extent{}, fmt.Errorf("%w: %d and %d axes", ErrDimensionMismatch, len(e.low), len(o.low))
	}
	low := make([]int64, len(e.low))
	high := make([]int64, len(e.low))
	for i := range low {
		low[i] = min(e.low[i], o.low[i])
		high[i] = max(e.high[i], o.high[i])
	}
	return Extent{low: low, high: high}, nil
}

// Translate returns e shifted by offset. Callers keep offsets small enough
// for the bounds to stay representable.
func (e Extent) Translate(offset []int64) Extent {
	low := make([]int64, len(e.low))
	high := make([]int64, len(e.low))
	for i := range low {
		low[i] = e.low[i] + offset[i]
		high[i] = e.high[i] + offset[i]
	}
	return Extent{low: low, high: high}
}

// Equal reports whether e and o have the same bounds.
func (e Extent) Equal(o Extent) bool {
	return slices.Equal(e.low, o.low) && slices.Equal(e.high, o.high)
}

func (e Extent) String() string {
	if e.IsZero() {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i := range e.low {
		if i > 0 {
			sb.WriteString(" × ")
		}
		fmt.Fprintf(&sb, "%d…%d", e.low[i], e.high[i])
	}
	sb.WriteByte(']')
	return sb.String()
}

func mulInt64(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("%w: negative operand", ErrOverflow)
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d × %d", ErrOverflow, a, b)
	}
	return int64(lo), nil
}

func addInt64(a, b int64) (int64, error) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, a, b)
	}
	return s, nil
}
