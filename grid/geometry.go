package grid

import (
	"fmt"
	"math"
	"slices"
)

// PixelInCell tells which point of a grid cell a grid-to-CRS transform maps
// integer grid coordinates to.
type PixelInCell uint8

const (
	CellCenter PixelInCell = iota
	CellCorner
)

func (p PixelInCell) String() string {
	switch p {
	case CellCenter:
		return "center"
	case CellCorner:
		return "corner"
	default:
		return fmt.Sprintf("PixelInCell(%d)", uint8(p))
	}
}

// Geometry pairs a grid extent with the transform from its grid coordinates
// to a reference space.
type Geometry struct {
	Extent    Extent
	GridToCRS Transform
	Anchor    PixelInCell
	CRS       string
}

// NewGeometry creates a geometry, checking that the transform source
// dimension matches the extent dimension.
func NewGeometry(extent Extent, gridToCRS Transform, anchor PixelInCell, crs string) (Geometry, error) {
	if extent.IsZero() {
		return Geometry{}, fmt.Errorf("%w: empty extent", ErrInvalidExtent)
	}
	if gridToCRS == nil {
		return Geometry{}, fmt.Errorf("%w: nil grid-to-CRS transform", ErrNonAffine)
	}
	if gridToCRS.SourceDimensions() != extent.Dimension() {
		return Geometry{}, fmt.Errorf("%w: extent has %d axes, transform expects %d",
			ErrDimensionMismatch, extent.Dimension(), gridToCRS.SourceDimensions())
	}
	return Geometry{Extent: extent, GridToCRS: gridToCRS, Anchor: anchor, CRS: crs}, nil
}

// Dimension returns the number of grid axes.
func (g Geometry) Dimension() int {
	return g.Extent.Dimension()
}

// Affine returns the grid-to-CRS transform if it is affine.
func (g Geometry) Affine() (*Affine, error) {
	return AsAffine(g.GridToCRS)
}

// CornerAffine returns the affine grid-to-CRS transform re-anchored so that
// integer grid coordinates map to cell corners.
func (g Geometry) CornerAffine() (*Affine, error) {
	a, err := g.Affine()
	if err != nil {
		return nil, err
	}
	return Reanchor(a, g.Anchor, CellCorner)
}

// WithExtent returns a copy of g covering another extent of the same grid.
func (g Geometry) WithExtent(e Extent) Geometry {
	g.Extent = e
	return g
}

// Envelope returns the bounding box of the geometry in the reference space,
// covering whole cells.
func (g Geometry) Envelope() (Envelope, error) {
	n := g.Dimension()
	if n == 0 {
		return Envelope{}, fmt.Errorf("%w: empty extent", ErrInvalidExtent)
	}
	if n > 30 {
		return Envelope{}, fmt.Errorf("%w: %d axes", ErrOverflow, n)
	}
	shift := 0.0
	if g.Anchor == CellCenter {
		shift = 0.5
	}
	env := Envelope{
		CRS:   g.CRS,
		Lower: make([]float64, g.GridToCRS.TargetDimensions()),
		Upper: make([]float64, g.GridToCRS.TargetDimensions()),
	}
	for i := range env.Lower {
		env.Lower[i] = math.Inf(1)
		env.Upper[i] = math.Inf(-1)
	}
	corner := make([]float64, n)
	for mask := 0; mask < 1<<n; mask++ {
		for i := 0; i < n; i++ {
			if mask&(1<<i) == 0 {
				corner[i] = float64(g.Extent.Low(i)) - shift
			} else {
				corner[i] = float64(g.Extent.High(i)) + 1 - shift
			}
		}
		p, err := g.GridToCRS.Apply(corner)
		if err != nil {
			return Envelope{}, fmt.Errorf("transforming corner %v: %w", corner, err)
		}
		for i, v := range p {
			env.Lower[i] = min(env.Lower[i], v)
			env.Upper[i] = max(env.Upper[i], v)
		}
	}
	return env, nil
}

func (g Geometry) String() string {
	return fmt.Sprintf("Geometry{%v, %v, %v, %q}", g.Extent, g.GridToCRS, g.Anchor, g.CRS)
}

// Reanchor converts an affine grid-to-CRS transform between pixel anchors.
func Reanchor(a *Affine, from, to PixelInCell) (*Affine, error) {
	if from == to {
		return a, nil
	}
	shift := 0.5
	if to == CellCorner {
		shift = -0.5
	}
	offsets := slices.Repeat([]float64{shift}, a.Dimension())
	return a.Concatenate(Translation(offsets))
}
