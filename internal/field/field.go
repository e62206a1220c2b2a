package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Field is a 2D grid of physical values (brightness temperature, reflectance,
// solar zenith angle, ...) backed by a gonum dense matrix. Invalid pixels are
// represented as NaN and propagate through elementwise operations.
type Field struct {
	m *mat.Dense
}

// New creates a zero-filled field with the given dimensions.
func New(rows, cols int) *Field {
	return &Field{m: mat.NewDense(rows, cols, nil)}
}

// FromSlice creates a field using data as the backing storage in row-major
// order. len(data) must equal rows*cols.
func FromSlice(rows, cols int, data []float64) *Field {
	return &Field{m: mat.NewDense(rows, cols, data)}
}

// Full creates a field with every pixel set to v.
func Full(rows, cols int, v float64) *Field {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = v
	}
	return &Field{m: mat.NewDense(rows, cols, data)}
}

// Dims returns the number of rows and columns.
func (f *Field) Dims() (rows, cols int) {
	return f.m.Dims()
}

// At returns the value at (i, j).
func (f *Field) At(i, j int) float64 {
	return f.m.At(i, j)
}

// Set assigns the value at (i, j).
func (f *Field) Set(i, j int, v float64) {
	f.m.Set(i, j, v)
}

// Data returns the row-major backing slice. Mutating it mutates the field.
func (f *Field) Data() []float64 {
	return f.m.RawMatrix().Data
}

// Clone returns a deep copy.
func (f *Field) Clone() *Field {
	var c mat.Dense
	c.CloneFrom(f.m)
	return &Field{m: &c}
}

// SameShape reports whether f and o have identical dimensions.
func (f *Field) SameShape(o *Field) bool {
	fr, fc := f.Dims()
	or, oc := o.Dims()
	return fr == or && fc == oc
}

// Min returns the smallest finite value, ignoring NaN pixels.
// Returns NaN if no pixel is finite.
func (f *Field) Min() float64 {
	min := math.NaN()
	for _, v := range f.Data() {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(min) || v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest finite value, ignoring NaN pixels.
// Returns NaN if no pixel is finite.
func (f *Field) Max() float64 {
	max := math.NaN()
	for _, v := range f.Data() {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(max) || v > max {
			max = v
		}
	}
	return max
}

// Apply returns a new field with fn applied to every pixel.
func (f *Field) Apply(fn func(v float64) float64) *Field {
	rows, cols := f.Dims()
	src := f.Data()
	dst := make([]float64, len(src))
	ParallelRange(len(src), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] = fn(src[i])
		}
	})
	return FromSlice(rows, cols, dst)
}

// ShapeMismatchError reports paired grids with incompatible dimensions.
type ShapeMismatchError struct {
	Context            string
	WantRows, WantCols int
	GotRows, GotCols   int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: shape mismatch: want %dx%d, got %dx%d",
		e.Context, e.WantRows, e.WantCols, e.GotRows, e.GotCols)
}

// CheckSameShape returns a ShapeMismatchError if got does not match want.
func CheckSameShape(context string, want, got *Field) error {
	if want.SameShape(got) {
		return nil
	}
	wr, wc := want.Dims()
	gr, gc := got.Dims()
	return &ShapeMismatchError{
		Context:  context,
		WantRows: wr, WantCols: wc,
		GotRows: gr, GotCols: gc,
	}
}
