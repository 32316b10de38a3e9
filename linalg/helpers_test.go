package linalg

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func mustRows(t testing.TB, rows [][]float64) *Matrix {
	t.Helper()
	m, err := NewFromRows(rows)
	require.NoError(t, err)
	return m
}

func randomMatrix(t testing.TB, rng *rand.Rand, rows, cols int) *Matrix {
	t.Helper()
	m, err := New(rows, cols)
	require.NoError(t, err)
	for k := range m.data {
		m.data[k] = rng.NormFloat64()
	}
	return m
}

// randomSPD builds xᵗx + n*I, which is comfortably positive definite.
func randomSPD(t testing.TB, rng *rand.Rand, n int) *Matrix {
	t.Helper()
	x := randomMatrix(t, rng, 2*n, n)
	g, err := Gram(x)
	require.NoError(t, err)
	require.NoError(t, RegularizeInPlace(g, float64(n)))
	return g
}

func toDense(m *Matrix) *mat.Dense {
	return mat.NewDense(m.rows, m.cols, append([]float64(nil), m.data...))
}

func toSym(m *Matrix) *mat.SymDense {
	return mat.NewSymDense(m.rows, append([]float64(nil), m.data...))
}

// reconstruct returns l*lᵗ.
func reconstruct(t testing.TB, l *Matrix) *Matrix {
	t.Helper()
	lt, err := Transpose(l)
	require.NoError(t, err)
	out, err := Mul(l, lt)
	require.NoError(t, err)
	return out
}

func requireLowerTriangular(t testing.TB, l *Matrix) {
	t.Helper()
	for i := 0; i < l.rows; i++ {
		for j := i + 1; j < l.cols; j++ {
			require.Zero(t, l.At(i, j), "L[%d,%d]", i, j)
		}
	}
}

var threadCounts = []int{1, 2, 4, 8}
