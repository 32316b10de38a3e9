package linalg

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// variant runs one Cholesky flavour on a copy of its input and returns L.
type variant struct {
	name string
	run  func(x *Matrix) (*Matrix, error)
}

func inPlace(f func(*Matrix) error) func(*Matrix) (*Matrix, error) {
	return func(x *Matrix) (*Matrix, error) {
		c := x.Copy()
		if err := f(c); err != nil {
			return nil, err
		}
		return c, nil
	}
}

func variants() []variant {
	vs := []variant{
		{"banachiewicz", Cholesky},
		{"inplace", inPlace(CholeskyInPlace)},
		{"outer", inPlace(CholeskyOuterInPlace)},
	}
	for _, threads := range threadCounts {
		threads := threads
		vs = append(vs, variant{
			name: fmt.Sprintf("outer-threaded-%d", threads),
			run: inPlace(func(x *Matrix) error {
				return CholeskyOuterInPlaceThreaded(x, threads)
			}),
		})
	}
	return vs
}

func TestCholeskyKnownFactor(t *testing.T) {
	x := mustRows(t, [][]float64{{4, 2}, {2, 3}})
	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			l, err := v.run(x)
			require.NoError(t, err)
			assert.InDelta(t, 2.0, l.At(0, 0), 1e-15)
			assert.Zero(t, l.At(0, 1))
			assert.InDelta(t, 1.0, l.At(1, 0), 1e-15)
			assert.InDelta(t, math.Sqrt2, l.At(1, 1), 1e-15)
			require.True(t, EqualApprox(x, reconstruct(t, l), 1e-12))
		})
	}
}

func TestCholeskyReconstructs(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	for _, n := range []int{1, 2, 5, 17, 64} {
		x := randomSPD(t, rng, n)
		scale := 0.0
		for _, v := range x.data {
			scale = math.Max(scale, math.Abs(v))
		}
		for _, v := range variants() {
			t.Run(fmt.Sprintf("%s/n=%d", v.name, n), func(t *testing.T) {
				l, err := v.run(x)
				require.NoError(t, err)
				requireLowerTriangular(t, l)
				d, err := MaxAbsDiff(x, reconstruct(t, l))
				require.NoError(t, err)
				require.Less(t, d/scale, 1e-9)
			})
		}
	}
}

func TestCholeskyMatchesGonum(t *testing.T) {
	rng := rand.New(rand.NewSource(22))
	x := randomSPD(t, rng, 30)

	var chol mat.Cholesky
	require.True(t, chol.Factorize(toSym(x)))
	var want mat.TriDense
	chol.LTo(&want)

	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			l, err := v.run(x)
			require.NoError(t, err)
			require.True(t, mat.EqualApprox(&want, toDense(l), 1e-9))
		})
	}
}

func TestCholeskyOuterThreadedIsBitIdentical(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	x := randomSPD(t, rng, 90)
	seq := x.Copy()
	require.NoError(t, CholeskyOuterInPlace(seq))
	for _, threads := range threadCounts {
		got := x.Copy()
		require.NoError(t, CholeskyOuterInPlaceThreaded(got, threads))
		require.Equal(t, seq.data, got.data, "threads=%d", threads)
	}
}

func TestCholeskyRejectsNonSPD(t *testing.T) {
	inputs := map[string][][]float64{
		"diag(1,-1)": {{1, 0}, {0, -1}},
		"zero":       {{0, 0}, {0, 0}},
		"singular":   {{1, 1, 0}, {1, 1, 0}, {0, 0, 1}},
		"indefinite": {{2, 3}, {3, 2}},
		"nan":        {{1, 0}, {0, math.NaN()}},
	}
	for name, rows := range inputs {
		for _, v := range variants() {
			t.Run(name+"/"+v.name, func(t *testing.T) {
				x := mustRows(t, rows)
				l, err := v.run(x)
				require.ErrorIs(t, err, ErrNotPositiveDefinite)
				require.Nil(t, l)
				var pe *PivotError
				require.ErrorAs(t, err, &pe)
				assert.False(t, pe.Radicand > 0)
			})
		}
	}
}

func TestCholeskyInPlaceRestoresInputOnFailure(t *testing.T) {
	rng := rand.New(rand.NewSource(24))
	base := randomSPD(t, rng, 12)
	// break positive definiteness late so several columns get factored first
	base.Set(9, 9, -50)

	fns := map[string]func(*Matrix) error{
		"inplace": CholeskyInPlace,
		"outer":   CholeskyOuterInPlace,
		"outer-threaded": func(x *Matrix) error {
			return CholeskyOuterInPlaceThreaded(x, 4)
		},
	}
	for name, fn := range fns {
		t.Run(name, func(t *testing.T) {
			x := base.Copy()
			err := fn(x)
			require.ErrorIs(t, err, ErrNotPositiveDefinite)
			var pe *PivotError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, 9, pe.Col)
			require.Equal(t, base.data, x.data)
		})
	}
}

func TestCholeskyLeavesInputUntouched(t *testing.T) {
	rng := rand.New(rand.NewSource(25))
	x := randomSPD(t, rng, 8)
	before := x.Copy()
	_, err := Cholesky(x)
	require.NoError(t, err)
	require.Equal(t, before.data, x.data)
}

func TestCholeskyRequiresSquare(t *testing.T) {
	x := mustRows(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	_, err := Cholesky(x)
	require.ErrorIs(t, err, ErrShapeMismatch)
	require.ErrorIs(t, CholeskyInPlace(x), ErrShapeMismatch)
	require.ErrorIs(t, CholeskyOuterInPlace(x), ErrShapeMismatch)
	require.ErrorIs(t, CholeskyOuterInPlaceThreaded(x, 4), ErrShapeMismatch)
}
