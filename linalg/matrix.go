// linalg/matrix.go
package linalg

import (
	"fmt"
	"math"
	"strings"
)

// MaxElements caps the number of float64 cells a single matrix may hold.
// Requests above it fail with ErrAllocation instead of aborting the runtime.
const MaxElements = 1 << 30

// Matrix is a dense, row-major grid of float64 with a shape fixed at
// creation. The zero value is not usable; create matrices with New,
// NewLike or NewFromSlice.
type Matrix struct {
	rows, cols int
	data       []float64
}

// New allocates a zero-filled rows x cols matrix.
func New(rows, cols int) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("new %dx%d: non-positive dimension: %w", rows, cols, ErrAllocation)
	}
	if rows > MaxElements/cols {
		return nil, fmt.Errorf("new %dx%d: more than %d elements: %w", rows, cols, MaxElements, ErrAllocation)
	}
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}, nil
}

// NewLike allocates a zero-filled matrix with the shape of m.
func NewLike(m *Matrix) (*Matrix, error) {
	if err := operand("new like", m); err != nil {
		return nil, err
	}
	return New(m.rows, m.cols)
}

// NewFromSlice wraps data, stored row-major, without copying it.
func NewFromSlice(rows, cols int, data []float64) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("new %dx%d: non-positive dimension: %w", rows, cols, ErrAllocation)
	}
	if rows > MaxElements/cols {
		return nil, fmt.Errorf("new %dx%d: more than %d elements: %w", rows, cols, MaxElements, ErrAllocation)
	}
	if len(data) != rows*cols {
		return nil, shapeErrorf("new from slice", "%d values for %dx%d", len(data), rows, cols)
	}
	return &Matrix{rows: rows, cols: cols, data: data}, nil
}

// NewFromRows copies a rectangular [][]float64 into a new matrix.
func NewFromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("new from rows: no rows: %w", ErrAllocation)
	}
	m, err := New(len(rows), len(rows[0]))
	if err != nil {
		return nil, err
	}
	for i, r := range rows {
		if len(r) != m.cols {
			return nil, shapeErrorf("new from rows", "row %d has %d values, want %d", i, len(r), m.cols)
		}
		copy(m.data[i*m.cols:], r)
	}
	return m, nil
}

// Release drops the storage. Calling it again, or on a nil matrix, is a no-op.
func (m *Matrix) Release() {
	if m == nil {
		return
	}
	m.data = nil
}

// Released reports whether the storage has been dropped.
func (m *Matrix) Released() bool { return m == nil || m.data == nil }

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

func (m *Matrix) Dims() (rows, cols int) { return m.rows, m.cols }

func (m *Matrix) mustLive() {
	if m.data == nil {
		panic(ErrReleased)
	}
}

func (m *Matrix) index(i, j int) int {
	m.mustLive()
	if uint(i) >= uint(m.rows) || uint(j) >= uint(m.cols) {
		panic(fmt.Errorf("(%d,%d) in %dx%d: %w", i, j, m.rows, m.cols, ErrIndexOutOfRange))
	}
	return i*m.cols + j
}

// At returns element (i,j). It panics on out-of-range indices or a released
// matrix.
func (m *Matrix) At(i, j int) float64 { return m.data[m.index(i, j)] }

// Set writes element (i,j). It panics like At.
func (m *Matrix) Set(i, j int, v float64) { m.data[m.index(i, j)] = v }

// Row returns row i as a slice aliasing the matrix storage.
func (m *Matrix) Row(i int) []float64 {
	off := m.index(i, 0)
	return m.data[off : off+m.cols : off+m.cols]
}

// RawData returns the row-major backing slice.
func (m *Matrix) RawData() []float64 {
	m.mustLive()
	return m.data
}

// Copy returns a deep copy of m.
func (m *Matrix) Copy() *Matrix {
	m.mustLive()
	out := &Matrix{rows: m.rows, cols: m.cols, data: make([]float64, len(m.data))}
	copy(out.data, m.data)
	return out
}

// T returns a transposed view of m. No storage is copied: writes through
// the view land in m.
func (m *Matrix) T() TransposeView { return TransposeView{m: m} }

// TransposeView addresses a matrix with its indices swapped.
type TransposeView struct {
	m *Matrix
}

func (v TransposeView) Rows() int                 { return v.m.cols }
func (v TransposeView) Cols() int                 { return v.m.rows }
func (v TransposeView) At(i, j int) float64       { return v.m.At(j, i) }
func (v TransposeView) Set(i, j int, val float64) { v.m.Set(j, i, val) }

// Moved holds storage whose ownership has been handed over by Move. The
// only things to do with it are to pass it to an operation that consumes
// it, or to Release it.
type Moved struct {
	m *Matrix
}

// Move transfers m's storage into a Moved value. m is left released.
func (m *Matrix) Move() Moved {
	m.mustLive()
	mv := Moved{m: &Matrix{rows: m.rows, cols: m.cols, data: m.data}}
	m.data = nil
	return mv
}

func (mv Moved) Release() { mv.m.Release() }

// Dims reports the shape of the moved matrix.
func (mv Moved) Dims() (rows, cols int) {
	if mv.m == nil {
		return 0, 0
	}
	return mv.m.rows, mv.m.cols
}

// EqualApprox reports whether a and b have the same shape and every pair of
// elements differs by at most tol.
func EqualApprox(a, b *Matrix, tol float64) bool {
	d, err := MaxAbsDiff(a, b)
	return err == nil && d <= tol
}

// MaxAbsDiff is the largest elementwise |a-b|. NaN anywhere gives +Inf.
func MaxAbsDiff(a, b *Matrix) (float64, error) {
	if err := operand("max abs diff", a); err != nil {
		return 0, err
	}
	if err := operand("max abs diff", b); err != nil {
		return 0, err
	}
	if a.rows != b.rows || a.cols != b.cols {
		return 0, shapeErrorf("max abs diff", "%dx%d vs %dx%d", a.rows, a.cols, b.rows, b.cols)
	}
	worst := 0.0
	for k, av := range a.data {
		d := math.Abs(av - b.data[k])
		if math.IsNaN(d) {
			return math.Inf(1), nil
		}
		worst = math.Max(worst, d)
	}
	return worst, nil
}

func (m *Matrix) String() string {
	if m.Released() {
		return "Matrix(released)"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Matrix(%dx%d)[", m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString("; ")
		}
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%g", m.data[i*m.cols+j])
		}
	}
	sb.WriteByte(']')
	return sb.String()
}
