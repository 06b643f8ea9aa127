package grid

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Tolerance is the absolute tolerance used when comparing transform
// coefficients.
const Tolerance = 1e-9

// integerTolerance bounds the distance to the nearest integer for values
// obtained through a matrix inverse.
const integerTolerance = 1e-6

// Transform maps points from grid coordinates to a reference space.
type Transform interface {
	// SourceDimensions returns the number of grid axes.
	SourceDimensions() int

	// TargetDimensions returns the number of reference space axes.
	TargetDimensions() int

	// Apply transforms a single point.
	Apply(point []float64) ([]float64, error)
}

// Affine is an N-dimensional affine transform stored as an (N+1)×(N+1)
// matrix in homogeneous coordinates. The last row is always [0 … 0 1].
// Affine values are immutable.
type Affine struct {
	m *mat.Dense
}

// NewAffine creates an affine transform from a square homogeneous matrix.
func NewAffine(m mat.Matrix) (*Affine, error) {
	r, c := m.Dims()
	if r != c || r < 2 {
		return nil, fmt.Errorf("%w: affine matrix must be square with at least 2 rows, got %d×%d", ErrNonAffine, r, c)
	}
	for j := 0; j < c; j++ {
		want := 0.0
		if j == c-1 {
			want = 1
		}
		if math.Abs(m.At(r-1, j)-want) > Tolerance {
			return nil, fmt.Errorf("%w: last row is not [0 … 0 1]", ErrNonAffine)
		}
	}
	return &Affine{m: mat.DenseCopyOf(m)}, nil
}

// NewAffineRows creates an affine transform from its N rows of linear
// coefficients followed by the translation term, the layout of a GDAL
// geotransform generalised to N axes.
func NewAffineRows(rows ...[]float64) (*Affine, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrNonAffine)
	}
	m := mat.NewDense(n+1, n+1, nil)
	for i, row := range rows {
		if len(row) != n+1 {
			return nil, fmt.Errorf("%w: row %d has %d terms, want %d", ErrNonAffine, i, len(row), n+1)
		}
		m.SetRow(i, row)
	}
	m.Set(n, n, 1)
	return &Affine{m: m}, nil
}

// Identity returns the identity transform on n axes.
func Identity(n int) *Affine {
	m := mat.NewDense(n+1, n+1, nil)
	for i := 0; i <= n; i++ {
		m.Set(i, i, 1)
	}
	return &Affine{m: m}
}

// Translation returns a transform adding offsets to every point.
func Translation(offsets []float64) *Affine {
	a := Identity(len(offsets))
	for i, v := range offsets {
		a.m.Set(i, len(offsets), v)
	}
	return a
}

// Scaling returns a transform multiplying every axis by its factor.
func Scaling(factors []float64) *Affine {
	a := Identity(len(factors))
	for i, v := range factors {
		a.m.Set(i, i, v)
	}
	return a
}

// Dimension returns the number of axes N.
func (a *Affine) Dimension() int {
	r, _ := a.m.Dims()
	return r - 1
}

func (a *Affine) SourceDimensions() int { return a.Dimension() }
func (a *Affine) TargetDimensions() int { return a.Dimension() }

// At returns the homogeneous matrix coefficient at row i, column j.
func (a *Affine) At(i, j int) float64 { return a.m.At(i, j) }

// Matrix returns a copy of the homogeneous matrix.
func (a *Affine) Matrix() *mat.Dense { return mat.DenseCopyOf(a.m) }

// Linear returns a copy of the N×N linear part.
func (a *Affine) Linear() *mat.Dense {
	n := a.Dimension()
	return mat.DenseCopyOf(a.m.Slice(0, n, 0, n))
}

// Offset returns the translation terms.
func (a *Affine) Offset() []float64 {
	n := a.Dimension()
	t := make([]float64, n)
	for i := range t {
		t[i] = a.m.At(i, n)
	}
	return t
}

// Apply transforms a point.
func (a *Affine) Apply(point []float64) ([]float64, error) {
	n := a.Dimension()
	if len(point) != n {
		return nil, fmt.Errorf("%w: point has %d coordinates, transform has %d axes", ErrDimensionMismatch, len(point), n)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v := a.m.At(i, n)
		for j := 0; j < n; j++ {
			v += a.m.At(i, j) * point[j]
		}
		out[i] = v
	}
	return out, nil
}

// Concatenate returns the transform applying b first, then a.
func (a *Affine) Concatenate(b *Affine) (*Affine, error) {
	if a.Dimension() != b.Dimension() {
		return nil, fmt.Errorf("%w: %d and %d axes", ErrDimensionMismatch, a.Dimension(), b.Dimension())
	}
	var m mat.Dense
	m.Mul(a.m, b.m)
	return &Affine{m: &m}, nil
}

// Inverse returns the inverse transform.
func (a *Affine) Inverse() (*Affine, error) {
	var m mat.Dense
	if err := m.Inverse(a.m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotInvertible, err)
	}
	return &Affine{m: &m}, nil
}

// EqualApprox reports whether both transforms have the same coefficients
// within Tolerance.
func (a *Affine) EqualApprox(b *Affine) bool {
	if a.Dimension() != b.Dimension() {
		return false
	}
	return mat.EqualApprox(a.m, b.m, Tolerance)
}

func (a *Affine) String() string {
	n := a.Dimension()
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString("; ")
		}
		for j := 0; j <= n; j++ {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%g", a.m.At(i, j))
		}
	}
	return "Affine[" + sb.String() + "]"
}

// AsAffine returns t as an affine transform, or ErrNonAffine.
func AsAffine(t Transform) (*Affine, error) {
	switch v := t.(type) {
	case *Affine:
		if v == nil {
			return nil, fmt.Errorf("%w: nil transform", ErrNonAffine)
		}
		return v, nil
	case nil:
		return nil, fmt.Errorf("%w: nil transform", ErrNonAffine)
	default:
		return nil, fmt.Errorf("%w: %T", ErrNonAffine, t)
	}
}

// IntegerDiagonal returns the diagonal of m rounded to integers when m is a
// diagonal matrix whose diagonal terms are all positive integers.
func IntegerDiagonal(m mat.Matrix) ([]int64, bool) {
	r, c := m.Dims()
	if r != c {
		return nil, false
	}
	d := make([]int64, r)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if i != j {
				if math.Abs(v) > integerTolerance {
					return nil, false
				}
				continue
			}
			k, ok := AsInteger(v)
			if !ok || k < 1 {
				return nil, false
			}
			d[i] = k
		}
	}
	return d, true
}

// AsInteger returns v rounded to the nearest integer when v lies within
// integerTolerance of it.
func AsInteger(v float64) (int64, bool) {
	r := math.Round(v)
	if math.IsNaN(v) || math.Abs(v-r) > integerTolerance || math.Abs(r) > 1<<62 {
		return 0, false
	}
	return int64(r), true
}
