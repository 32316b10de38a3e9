// linalg/cholesky.go
package linalg

import (
	"math"

	"chess-tuner/parallel"
)

// The Cholesky variants below read only the diagonal and lower triangle of
// their input, which must be symmetric positive definite. They return a
// lower-triangular L with L*Lᵗ equal to the input and zeros strictly above
// the diagonal. A non-positive or NaN pivot radicand stops the factorization
// with a *PivotError wrapping ErrNotPositiveDefinite.
//
// The in-place variants restore their input when they fail: the diagonal
// from a saved copy and the strict lower triangle from the untouched upper
// one. The caller never gets a half-factored matrix back.

// Cholesky factors x into a newly allocated L, leaving x unmodified. On
// failure it returns nil.
func Cholesky(x *Matrix) (*Matrix, error) {
	if err := square("cholesky", x); err != nil {
		return nil, err
	}
	l, err := NewLike(x)
	if err != nil {
		return nil, err
	}
	if err := banachiewicz(l, x); err != nil {
		l.Release()
		return nil, err
	}
	return l, nil
}

// CholeskyInPlace overwrites x with its Cholesky factor.
func CholeskyInPlace(x *Matrix) error {
	if err := square("cholesky in place", x); err != nil {
		return err
	}
	diag := saveDiagonal(x)
	if err := banachiewicz(x, x); err != nil {
		restoreLower(x, diag)
		return err
	}
	zeroUpper(x)
	return nil
}

// banachiewicz computes L row by row into l, reading the lower triangle of a.
// l and a may be the same matrix: every a[i,j] is read before l[i,j] is
// written, and only earlier entries of l are read afterwards.
func banachiewicz(l, a *Matrix) error {
	n := a.rows
	for i := 0; i < n; i++ {
		li := l.data[i*n : (i+1)*n]
		for j := 0; j <= i; j++ {
			lj := l.data[j*n : (j+1)*n]
			sum := a.data[i*n+j]
			for k := 0; k < j; k++ {
				sum -= li[k] * lj[k]
			}
			if i == j {
				if !(sum > 0) {
					return &PivotError{Col: j, Radicand: sum}
				}
				li[j] = math.Sqrt(sum)
				continue
			}
			li[j] = sum / lj[j]
		}
	}
	return nil
}

// CholeskyOuterInPlace overwrites x with its Cholesky factor using the
// outer-product form: per pivot column, take the root, scale the column
// below it, then subtract the column's outer product from the trailing
// lower triangle.
func CholeskyOuterInPlace(x *Matrix) error {
	if err := square("cholesky outer", x); err != nil {
		return err
	}
	diag := saveDiagonal(x)
	n := x.rows
	for j := 0; j < n; j++ {
		if err := pivotColumn(x, j); err != nil {
			restoreLower(x, diag)
			return err
		}
		trailingUpdate(x, j, j+1, n)
	}
	zeroUpper(x)
	return nil
}

// trailingGrain is the fewest trailing rows per worker in the threaded
// outer-product update.
const trailingGrain = 8

// CholeskyOuterInPlaceThreaded is CholeskyOuterInPlace with each pivot's
// trailing update split by row range over at most maxThreads workers. The
// pool's Run returns only after every range is updated, and that barrier is
// what makes it safe to read the next pivot column. Results are
// bit-identical to CholeskyOuterInPlace.
func CholeskyOuterInPlaceThreaded(x *Matrix, maxThreads int) error {
	if maxThreads <= 1 {
		return CholeskyOuterInPlace(x)
	}
	if err := square("cholesky outer threaded", x); err != nil {
		return err
	}
	diag := saveDiagonal(x)
	n := x.rows
	pool := workers()
	for j := 0; j < n; j++ {
		if err := pivotColumn(x, j); err != nil {
			restoreLower(x, diag)
			return err
		}
		rest := n - j - 1
		if rest == 0 {
			break
		}
		parts := min(maxThreads, (rest+trailingGrain-1)/trailingGrain)
		ranges := parallel.SplitBalanced(j+1, n, parts, func(i int) float64 { return float64(i - j) })
		err := pool.Run(ranges, func(r parallel.Range) error {
			trailingUpdate(x, j, r.Start, r.End)
			return nil
		})
		if err != nil {
			restoreLower(x, diag)
			return err
		}
	}
	zeroUpper(x)
	return nil
}

// pivotColumn turns column j into the j-th column of L, assuming earlier
// pivots have already been subtracted from it.
func pivotColumn(x *Matrix, j int) error {
	n := x.rows
	d := x.data[j*n+j]
	if !(d > 0) {
		return &PivotError{Col: j, Radicand: d}
	}
	d = math.Sqrt(d)
	x.data[j*n+j] = d
	for i := j + 1; i < n; i++ {
		x.data[i*n+j] /= d
	}
	return nil
}

// trailingUpdate subtracts L[:,j] L[:,j]ᵗ from rows [lo,hi) of the lower
// triangle right of column j. Row i writes only its own cells and reads
// column j, which is final by now.
func trailingUpdate(x *Matrix, j, lo, hi int) {
	n := x.rows
	for i := lo; i < hi; i++ {
		lij := x.data[i*n+j]
		row := x.data[i*n : i*n+i+1]
		for k := j + 1; k <= i; k++ {
			row[k] -= lij * x.data[k*n+j]
		}
	}
}

func saveDiagonal(x *Matrix) []float64 {
	d := make([]float64, x.rows)
	for i := range d {
		d[i] = x.data[i*x.cols+i]
	}
	return d
}

func restoreLower(x *Matrix, diag []float64) {
	n := x.rows
	for i := 0; i < n; i++ {
		x.data[i*n+i] = diag[i]
		for j := 0; j < i; j++ {
			x.data[i*n+j] = x.data[j*n+i]
		}
	}
}

func zeroUpper(x *Matrix) {
	n := x.rows
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			x.data[i*n+j] = 0
		}
	}
}
