package grid

import (
	"fmt"
	"math"
)

// Aggregation is the union of several aligned geometries.
type Aggregation struct {
	// Geometry covers every input. It reuses the grid-to-CRS transform and
	// anchor of the first input.
	Geometry Geometry

	// Offsets holds, for each input, the translation to add to its grid
	// coordinates to obtain coordinates in Geometry's grid.
	Offsets [][]int64
}

// Relative returns the transform from the grid of a to the grid of base,
// that is base⁻¹ ∘ a.
func Relative(base, a *Affine) (*Affine, error) {
	inv, err := base.Inverse()
	if err != nil {
		return nil, err
	}
	return inv.Concatenate(a)
}

// Aggregate computes the union of geometries that share one grid: same CRS,
// same scale and rotation, and cell offsets that are whole numbers.
// It fails with ErrNotAligned when any input cannot be expressed on the grid
// of the first one.
func Aggregate(geoms ...Geometry) (*Aggregation, error) {
	if len(geoms) == 0 {
		return nil, fmt.Errorf("%w: no geometries", ErrNotAligned)
	}
	first := geoms[0]
	base, err := first.CornerAffine()
	if err != nil {
		return nil, fmt.Errorf("geometry 0: %w", err)
	}

	agg := &Aggregation{Offsets: make([][]int64, len(geoms))}
	union := Extent{}
	for i, g := range geoms {
		if g.Dimension() != first.Dimension() {
			return nil, fmt.Errorf("%w: geometry %d has %d axes, want %d", ErrNotAligned, i, g.Dimension(), first.Dimension())
		}
		if g.CRS != first.CRS {
			return nil, fmt.Errorf("%w: geometry %d is in CRS %q, want %q", ErrNotAligned, i, g.CRS, first.CRS)
		}
		offset, err := gridOffset(base, g)
		if err != nil {
			return nil, fmt.Errorf("geometry %d: %w", i, err)
		}
		agg.Offsets[i] = offset
		union, err = union.Union(g.Extent.Translate(offset))
		if err != nil {
			return nil, err
		}
	}
	agg.Geometry = first.WithExtent(union)
	return agg, nil
}

// gridOffset returns the integer translation from g's grid to the grid of
// the corner-anchored base transform.
func gridOffset(base *Affine, g Geometry) ([]int64, error) {
	a, err := g.CornerAffine()
	if err != nil {
		return nil, err
	}
	rel, err := Relative(base, a)
	if err != nil {
		return nil, err
	}
	n := rel.Dimension()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(rel.At(i, j)-want) > integerTolerance {
				return nil, fmt.Errorf("%w: scale or rotation differs", ErrNotAligned)
			}
		}
	}
	offset := make([]int64, n)
	for i, v := range rel.Offset() {
		k, ok := AsInteger(v)
		if !ok {
			return nil, fmt.Errorf("%w: offset %g on axis %d is not a whole number of cells", ErrNotAligned, v, i)
		}
		offset[i] = k
	}
	return offset, nil
}
