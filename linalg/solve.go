// linalg/solve.go
package linalg

import (
	"fmt"

	"chess-tuner/parallel"
)

// ForwardSubstitute solves l*y = b for y, where l is lower triangular with a
// non-zero diagonal. b may carry several right-hand sides as columns.
func ForwardSubstitute(l, b *Matrix) (*Matrix, error) {
	y, err := substAlloc("forward substitute", l, b)
	if err != nil {
		return nil, err
	}
	n, m := l.rows, b.cols
	for i := 0; i < n; i++ {
		li := l.data[i*n : (i+1)*n]
		d := li[i]
		for c := 0; c < m; c++ {
			sum := b.data[i*m+c]
			for k := 0; k < i; k++ {
				sum -= li[k] * y.data[k*m+c]
			}
			y.data[i*m+c] = sum / d
		}
	}
	return y, nil
}

// BackSubstituteTransposed solves lᵗ*w = y for w, reading lᵗ through the
// transposed view of l.
func BackSubstituteTransposed(l, y *Matrix) (*Matrix, error) {
	w, err := substAlloc("back substitute", l, y)
	if err != nil {
		return nil, err
	}
	lt := l.T()
	n, m := l.rows, y.cols
	for i := n - 1; i >= 0; i-- {
		d := lt.At(i, i)
		for c := 0; c < m; c++ {
			sum := y.data[i*m+c]
			for k := i + 1; k < n; k++ {
				sum -= lt.At(i, k) * w.data[k*m+c]
			}
			w.data[i*m+c] = sum / d
		}
	}
	return w, nil
}

func substAlloc(op string, l, b *Matrix) (*Matrix, error) {
	if err := square(op, l); err != nil {
		return nil, err
	}
	if err := operand(op, b); err != nil {
		return nil, err
	}
	if b.rows != l.rows {
		return nil, shapeErrorf(op, "%dx%d system with %dx%d right-hand side", l.rows, l.cols, b.rows, b.cols)
	}
	for i := 0; i < l.rows; i++ {
		if l.data[i*l.cols+i] == 0 {
			return nil, fmt.Errorf("%s: zero diagonal at %d: %w", op, i, ErrInvalidArgument)
		}
	}
	return NewLike(b)
}

// SolveCholesky solves x*w = b for symmetric positive definite x by
// factoring x = L*Lᵗ and running both substitutions. x is not modified.
func SolveCholesky(x, b *Matrix) (*Matrix, error) {
	if err := solveArgs(x, b); err != nil {
		return nil, err
	}
	l, err := Cholesky(x)
	if err != nil {
		return nil, err
	}
	defer l.Release()
	z, err := ForwardSubstitute(l, b)
	if err != nil {
		return nil, err
	}
	defer z.Release()
	return BackSubstituteTransposed(l, z)
}

// dotGrain is the shortest dot product worth splitting across workers.
const dotGrain = 256

// SolveCholeskyThreaded is SolveCholesky using CholeskyOuterInPlaceThreaded
// on a copy of x. The substitutions stay sequential row by row, but long
// per-row dot products are split over the pool and their partial sums
// added in range order.
func SolveCholeskyThreaded(x, b *Matrix, maxThreads int) (*Matrix, error) {
	if maxThreads <= 1 {
		return SolveCholesky(x, b)
	}
	if err := solveArgs(x, b); err != nil {
		return nil, err
	}
	l := x.Copy()
	defer l.Release()
	if err := CholeskyOuterInPlaceThreaded(l, maxThreads); err != nil {
		return nil, err
	}

	n, m := l.rows, b.cols
	pool := workers()
	dot := func(lo, hi int, term func(k int) float64) (float64, error) {
		parts := min(maxThreads, (hi-lo)/dotGrain)
		if parts <= 1 {
			s := 0.0
			for k := lo; k < hi; k++ {
				s += term(k)
			}
			return s, nil
		}
		ranges := parallel.SplitRange(lo, hi, parts)
		partial := make([]float64, len(ranges))
		err := pool.RunIndexed(ranges, func(idx int, r parallel.Range) error {
			s := 0.0
			for k := r.Start; k < r.End; k++ {
				s += term(k)
			}
			partial[idx] = s
			return nil
		})
		s := 0.0
		for _, p := range partial {
			s += p
		}
		return s, err
	}

	z, err := NewLike(b)
	if err != nil {
		return nil, err
	}
	defer z.Release()
	for i := 0; i < n; i++ {
		li := l.data[i*n : (i+1)*n]
		for c := 0; c < m; c++ {
			s, err := dot(0, i, func(k int) float64 { return li[k] * z.data[k*m+c] })
			if err != nil {
				return nil, err
			}
			z.data[i*m+c] = (b.data[i*m+c] - s) / li[i]
		}
	}

	w, err := NewLike(b)
	if err != nil {
		return nil, err
	}
	lt := l.T()
	for i := n - 1; i >= 0; i-- {
		for c := 0; c < m; c++ {
			s, err := dot(i+1, n, func(k int) float64 { return lt.At(i, k) * w.data[k*m+c] })
			if err != nil {
				w.Release()
				return nil, err
			}
			w.data[i*m+c] = (z.data[i*m+c] - s) / lt.At(i, i)
		}
	}
	return w, nil
}

func solveArgs(x, b *Matrix) error {
	if err := square("solve cholesky", x); err != nil {
		return err
	}
	if err := operand("solve cholesky", b); err != nil {
		return err
	}
	if b.rows != x.rows {
		return shapeErrorf("solve cholesky", "%dx%d system with %dx%d right-hand side", x.rows, x.cols, b.rows, b.cols)
	}
	return nil
}
