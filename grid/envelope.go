package grid

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Envelope is an axis-aligned box in a reference space.
type Envelope struct {
	CRS   string
	Lower []float64
	Upper []float64
}

// Dimension returns the number of axes.
func (e Envelope) Dimension() int {
	return len(e.Lower)
}

// Span returns the width of the envelope along axis i.
func (e Envelope) Span(i int) float64 {
	return e.Upper[i] - e.Lower[i]
}

// Bound returns the first two axes as a planar bound. A one-dimensional
// envelope yields a bound of zero height.
func (e Envelope) Bound() orb.Bound {
	switch e.Dimension() {
	case 0:
		return orb.Bound{}
	case 1:
		return orb.Bound{Min: orb.Point{e.Lower[0], 0}, Max: orb.Point{e.Upper[0], 0}}
	default:
		return orb.Bound{
			Min: orb.Point{e.Lower[0], e.Lower[1]},
			Max: orb.Point{e.Upper[0], e.Upper[1]},
		}
	}
}

// Intersects reports whether both envelopes share at least one point.
func (e Envelope) Intersects(o Envelope) bool {
	if e.Dimension() != o.Dimension() || e.CRS != o.CRS {
		return false
	}
	for i := range e.Lower {
		if e.Upper[i] < o.Lower[i] || o.Upper[i] < e.Lower[i] {
			return false
		}
	}
	return true
}

// Union returns the smallest envelope containing both.
func (e Envelope) Union(o Envelope) (Envelope, error) {
	if e.Dimension() != o.Dimension() {
		return Envelope{}, fmt.Errorf("%w: %d and %d axes", ErrDimensionMismatch, e.Dimension(), o.Dimension())
	}
	if e.CRS != o.CRS {
		return Envelope{}, fmt.Errorf("envelopes in different CRS %q and %q", e.CRS, o.CRS)
	}
	u := Envelope{CRS: e.CRS, Lower: make([]float64, len(e.Lower)), Upper: make([]float64, len(e.Upper))}
	for i := range e.Lower {
		u.Lower[i] = min(e.Lower[i], o.Lower[i])
		u.Upper[i] = max(e.Upper[i], o.Upper[i])
	}
	return u, nil
}

func (e Envelope) String() string {
	return fmt.Sprintf("Envelope{%q, %v, %v}", e.CRS, e.Lower, e.Upper)
}
