// linalg/mul.go
package linalg

import (
	"chess-tuner/parallel"
)

// rowGrain is the fewest output rows worth handing to a separate worker.
const rowGrain = 4

func workers() *parallel.Pool { return parallel.Default() }

// rowParts caps the number of row ranges so each holds about rowGrain rows.
func rowParts(rows, maxThreads int) int {
	return min(maxThreads, (rows+rowGrain-1)/rowGrain)
}

// Mul returns x*y.
func Mul(x, y *Matrix) (*Matrix, error) {
	out, err := mulAlloc(x, y)
	if err != nil {
		return nil, err
	}
	mulRows(out, x, y, 0, x.rows)
	return out, nil
}

// MulThreaded is Mul with output rows split over at most maxThreads workers.
// The result is bit-identical to Mul.
func MulThreaded(x, y *Matrix, maxThreads int) (*Matrix, error) {
	if maxThreads <= 1 {
		return Mul(x, y)
	}
	out, err := mulAlloc(x, y)
	if err != nil {
		return nil, err
	}
	err = workers().RunN(x.rows, rowParts(x.rows, maxThreads), func(r parallel.Range) error {
		mulRows(out, x, y, r.Start, r.End)
		return nil
	})
	if err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

func mulAlloc(x, y *Matrix) (*Matrix, error) {
	if err := operand("mul", x); err != nil {
		return nil, err
	}
	if err := operand("mul", y); err != nil {
		return nil, err
	}
	if x.cols != y.rows {
		return nil, shapeErrorf("mul", "%dx%d * %dx%d", x.rows, x.cols, y.rows, y.cols)
	}
	return New(x.rows, y.cols)
}

// mulRows fills out rows [lo,hi) in i-k-j order.
func mulRows(out, x, y *Matrix, lo, hi int) {
	n := y.cols
	for i := lo; i < hi; i++ {
		oi := out.data[i*n : (i+1)*n]
		xi := x.data[i*x.cols : (i+1)*x.cols]
		for k, a := range xi {
			yk := y.data[k*n : (k+1)*n]
			for j, b := range yk {
				oi[j] += a * b
			}
		}
	}
}

// MulTransA returns xᵗ*y without materializing xᵗ.
func MulTransA(x, y *Matrix) (*Matrix, error) {
	out, err := mulTransAAlloc(x, y)
	if err != nil {
		return nil, err
	}
	mulTransARows(out, x, y, 0, x.cols)
	return out, nil
}

// MulTransAThreaded is MulTransA with output rows split over at most
// maxThreads workers. The result is bit-identical to MulTransA.
func MulTransAThreaded(x, y *Matrix, maxThreads int) (*Matrix, error) {
	if maxThreads <= 1 {
		return MulTransA(x, y)
	}
	out, err := mulTransAAlloc(x, y)
	if err != nil {
		return nil, err
	}
	err = workers().RunN(x.cols, rowParts(x.cols, maxThreads), func(r parallel.Range) error {
		mulTransARows(out, x, y, r.Start, r.End)
		return nil
	})
	if err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

func mulTransAAlloc(x, y *Matrix) (*Matrix, error) {
	if err := operand("mul trans a", x); err != nil {
		return nil, err
	}
	if err := operand("mul trans a", y); err != nil {
		return nil, err
	}
	if x.rows != y.rows {
		return nil, shapeErrorf("mul trans a", "%dx%d (transposed) * %dx%d", x.rows, x.cols, y.rows, y.cols)
	}
	return New(x.cols, y.cols)
}

// mulTransARows fills out rows [lo,hi), summing over k in ascending order.
func mulTransARows(out, x, y *Matrix, lo, hi int) {
	xt := x.T()
	n := y.cols
	for i := lo; i < hi; i++ {
		oi := out.data[i*n : (i+1)*n]
		for k := 0; k < x.rows; k++ {
			a := xt.At(i, k)
			yk := y.data[k*n : (k+1)*n]
			for j, b := range yk {
				oi[j] += a * b
			}
		}
	}
}

// Gram returns xᵗx. Only the lower triangle is accumulated; the upper
// triangle is a mirror of it, so the result is exactly symmetric.
func Gram(x *Matrix) (*Matrix, error) {
	if err := operand("gram", x); err != nil {
		return nil, err
	}
	g, err := New(x.cols, x.cols)
	if err != nil {
		return nil, err
	}
	gramRows(g, x, 0, x.cols)
	mirrorLower(g)
	return g, nil
}

// GramThreaded is Gram with the rows of the lower triangle split over at
// most maxThreads workers, balanced by triangle row length. Each worker
// writes only its own rows; the result is bit-identical to Gram.
func GramThreaded(x *Matrix, maxThreads int) (*Matrix, error) {
	if maxThreads <= 1 {
		return Gram(x)
	}
	if err := operand("gram", x); err != nil {
		return nil, err
	}
	p := x.cols
	g, err := New(p, p)
	if err != nil {
		return nil, err
	}
	parts := parallel.SplitBalanced(0, p, min(maxThreads, p), func(i int) float64 { return float64(i + 1) })
	err = workers().Run(parts, func(r parallel.Range) error {
		gramRows(g, x, r.Start, r.End)
		return nil
	})
	if err != nil {
		g.Release()
		return nil, err
	}
	mirrorLower(g)
	return g, nil
}

// gramRows accumulates rows [lo,hi) of the lower triangle of xᵗx as a sum of
// per-sample outer products, samples in ascending order.
func gramRows(g, x *Matrix, lo, hi int) {
	p := x.cols
	for s := 0; s < x.rows; s++ {
		xs := x.data[s*p : (s+1)*p]
		for i := lo; i < hi; i++ {
			a := xs[i]
			gi := g.data[i*p : i*p+i+1]
			for j := range gi {
				gi[j] += a * xs[j]
			}
		}
	}
}

func mirrorLower(m *Matrix) {
	n := m.rows
	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			m.data[j*n+i] = m.data[i*n+j]
		}
	}
}
