package bitset

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/robert-malhotra/go-mosaic/grid"
)

var (
	ErrCapacity   = errors.New("bit set capacity exceeded")
	ErrOutOfRange = errors.New("coordinate out of range")
)

// maxBits is the largest number of bits a Set may address.
const maxBits = math.MaxInt - 63

// Set is a bitmap with one bit per cell of a grid extent.
type Set struct {
	extent  grid.Extent
	low     []int64
	high    []int64
	strides []int64
	n       int64
	words   []uint64
}

// New creates an empty set covering extent.
func New(extent grid.Extent) (*Set, error) {
	if extent.IsZero() {
		return nil, fmt.Errorf("%w: empty extent", grid.ErrInvalidExtent)
	}
	dims := extent.Dimension()
	strides := make([]int64, dims)
	n := int64(1)
	for i := 0; i < dims; i++ {
		strides[i] = n
		hi, lo := bits.Mul64(uint64(n), uint64(extent.Size(i)))
		if hi != 0 || lo > maxBits {
			return nil, fmt.Errorf("%w: extent %v", ErrCapacity, extent)
		}
		n = int64(lo)
	}
	return &Set{
		extent:  extent,
		low:     extent.Lows(),
		high:    extent.Highs(),
		strides: strides,
		n:       n,
		words:   make([]uint64, (n+63)/64),
	}, nil
}

// Extent returns the extent the set is bound to.
func (s *Set) Extent() grid.Extent { return s.extent }

// Len returns the number of cells, which is also the number of bits.
func (s *Set) Len() int64 { return s.n }

// Index returns the bit index of coord.
func (s *Set) Index(coord []int64) (int64, error) {
	if len(coord) != len(s.low) {
		return 0, fmt.Errorf("%w: %d coordinates for %d axes", ErrOutOfRange, len(coord), len(s.low))
	}
	var idx int64
	for i, c := range coord {
		if c < s.low[i] || c > s.high[i] {
			return 0, fmt.Errorf("%w: axis %d value %d outside [%d, %d]", ErrOutOfRange, i, c, s.low[i], s.high[i])
		}
		idx += (c - s.low[i]) * s.strides[i]
	}
	return idx, nil
}

// Coord returns the cell coordinate of bit idx.
func (s *Set) Coord(idx int64) ([]int64, error) {
	if idx < 0 || idx >= s.n {
		return nil, fmt.Errorf("%w: index %d outside [0, %d)", ErrOutOfRange, idx, s.n)
	}
	coord := make([]int64, len(s.low))
	for i := len(s.low) - 1; i >= 0; i-- {
		coord[i] = s.low[i] + idx/s.strides[i]
		idx %= s.strides[i]
	}
	return coord, nil
}

// Get reports whether the bit of coord is set.
func (s *Set) Get(coord []int64) (bool, error) {
	idx, err := s.Index(coord)
	if err != nil {
		return false, err
	}
	return s.words[idx>>6]&(1<<(idx&63)) != 0, nil
}

// Set sets the bit of coord.
func (s *Set) Set(coord []int64) error {
	return s.SetTo(coord, true)
}

// Clear clears the bit of coord.
func (s *Set) Clear(coord []int64) error {
	return s.SetTo(coord, false)
}

// SetTo sets the bit of coord to v.
func (s *Set) SetTo(coord []int64, v bool) error {
	idx, err := s.Index(coord)
	if err != nil {
		return err
	}
	if v {
		s.words[idx>>6] |= 1 << (idx & 63)
	} else {
		s.words[idx>>6] &^= 1 << (idx & 63)
	}
	return nil
}

// NextClear returns the first cell at or after coord, in index order, whose
// bit is not set. ok is false when every remaining bit is set.
func (s *Set) NextClear(coord []int64) (next []int64, ok bool, err error) {
	start, err := s.Index(coord)
	if err != nil {
		return nil, false, err
	}
	wordIdx := start >> 6
	word := ^s.words[wordIdx] & (^uint64(0) << (start & 63))
	for word == 0 {
		wordIdx++
		if wordIdx >= int64(len(s.words)) {
			return nil, false, nil
		}
		word = ^s.words[wordIdx]
	}
	idx := wordIdx<<6 + int64(bits.TrailingZeros64(word))
	if idx >= s.n {
		// Padding bits past the last cell of the final word
		return nil, false, nil
	}
	next, err = s.Coord(idx)
	return next, err == nil, err
}

// Count returns the number of set bits.
func (s *Set) Count() int64 {
	var c int64
	for _, w := range s.words {
		c += int64(bits.OnesCount64(w))
	}
	return c
}
