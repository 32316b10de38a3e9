package linalg

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadShapes(t *testing.T) {
	cases := []struct {
		name       string
		rows, cols int
	}{
		{"zero rows", 0, 3},
		{"zero cols", 3, 0},
		{"negative", -1, 2},
		{"too large", MaxElements, 2},
		{"overflow", math.MaxInt / 2, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := New(tc.rows, tc.cols)
			require.ErrorIs(t, err, ErrAllocation)
			require.Nil(t, m)
		})
	}
}

func TestNewIsZeroed(t *testing.T) {
	m, err := New(3, 4)
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 4, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			assert.Zero(t, m.At(i, j))
		}
	}

	like, err := NewLike(m)
	require.NoError(t, err)
	assert.Equal(t, 3, like.Rows())
	assert.Equal(t, 4, like.Cols())
}

func TestNewFromSlice(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6}
	m, err := NewFromSlice(2, 3, data)
	require.NoError(t, err)
	assert.Equal(t, 6.0, m.At(1, 2))
	assert.Equal(t, []float64{4, 5, 6}, m.Row(1))

	_, err = NewFromSlice(2, 2, data)
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewFromRows([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestAtSetPanicOutOfRange(t *testing.T) {
	m, err := New(2, 2)
	require.NoError(t, err)
	m.Set(1, 0, 7)
	assert.Equal(t, 7.0, m.At(1, 0))

	for _, ij := range [][2]int{{2, 0}, {0, 2}, {-1, 0}, {0, -1}} {
		assert.Panics(t, func() { m.At(ij[0], ij[1]) })
		assert.Panics(t, func() { m.Set(ij[0], ij[1], 1) })
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	m, err := New(2, 2)
	require.NoError(t, err)
	m.Release()
	m.Release()
	assert.True(t, m.Released())
	assert.Panics(t, func() { m.At(0, 0) })

	var nilM *Matrix
	nilM.Release()
	assert.True(t, nilM.Released())

	_, err = Add(m, m)
	require.ErrorIs(t, err, ErrReleased)
	_, err = Cholesky(nilM)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCopyIsDeep(t *testing.T) {
	m := mustRows(t, [][]float64{{1, 2}, {3, 4}})
	c := m.Copy()
	c.Set(0, 0, 100)
	assert.Equal(t, 1.0, m.At(0, 0))
	assert.Equal(t, 100.0, c.At(0, 0))
}

func TestTransposeViewAddressesSwapped(t *testing.T) {
	m := mustRows(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	v := m.T()
	assert.Equal(t, 3, v.Rows())
	assert.Equal(t, 2, v.Cols())
	assert.Equal(t, 2.0, v.At(1, 0))
	assert.Equal(t, 6.0, v.At(2, 1))

	v.Set(0, 1, 40)
	assert.Equal(t, 40.0, m.At(1, 0))
}

func TestMoveReleasesSource(t *testing.T) {
	m := mustRows(t, [][]float64{{1, 2}})
	mv := m.Move()
	assert.True(t, m.Released())
	r, c := mv.Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, 2, c)
	mv.Release()
	mv.Release()
	assert.Panics(t, func() { m.Move() })
}

func TestMaxAbsDiff(t *testing.T) {
	a := mustRows(t, [][]float64{{1, 2}, {3, 4}})
	b := mustRows(t, [][]float64{{1, 2.5}, {3, 3}})
	d, err := MaxAbsDiff(a, b)
	require.NoError(t, err)
	assert.Equal(t, 1.0, d)
	assert.True(t, EqualApprox(a, b, 1))
	assert.False(t, EqualApprox(a, b, 0.9))

	b.Set(0, 0, math.NaN())
	d, err = MaxAbsDiff(a, b)
	require.NoError(t, err)
	assert.True(t, math.IsInf(d, 1))

	c := mustRows(t, [][]float64{{1, 2}})
	_, err = MaxAbsDiff(a, c)
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.False(t, EqualApprox(a, c, 10))
}

func TestString(t *testing.T) {
	m := mustRows(t, [][]float64{{1, 2}, {3, 4.5}})
	assert.Equal(t, "Matrix(2x2)[1 2; 3 4.5]", m.String())
	m.Release()
	assert.Equal(t, "Matrix(released)", m.String())
}

func TestRowAliasesStorage(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := randomMatrix(t, rng, 3, 3)
	r := m.Row(2)
	r[1] = 9
	assert.Equal(t, 9.0, m.At(2, 1))
	assert.Len(t, r, 3)
}
