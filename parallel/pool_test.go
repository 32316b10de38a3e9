package parallel

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCoversRange(t *testing.T) {
	for _, n := range []int{1, 2, 7, 64, 100} {
		for _, parts := range []int{-3, 0, 1, 2, 3, 8, 200} {
			rs := Split(n, parts)
			require.NotEmpty(t, rs)
			require.LessOrEqual(t, len(rs), max(parts, 1))
			next := 0
			for _, r := range rs {
				require.Equal(t, next, r.Start, "n=%d parts=%d", n, parts)
				require.Greater(t, r.Len(), 0)
				next = r.End
			}
			require.Equal(t, n, next)
		}
	}
	assert.Nil(t, Split(0, 4))
	assert.Nil(t, Split(-1, 4))
}

func TestSplitBalancedTriangle(t *testing.T) {
	cost := func(i int) float64 { return float64(i + 1) }
	rs := SplitBalanced(0, 100, 4, cost)
	require.Len(t, rs, 4)
	next := 0
	sums := make([]float64, len(rs))
	for k, r := range rs {
		require.Equal(t, next, r.Start)
		require.Greater(t, r.Len(), 0)
		for i := r.Start; i < r.End; i++ {
			sums[k] += cost(i)
		}
		next = r.End
	}
	require.Equal(t, 100, next)
	// later ranges are shorter because their rows cost more
	assert.Greater(t, rs[0].Len(), rs[3].Len())
	total := 5050.0
	for _, s := range sums {
		assert.InDelta(t, total/4, s, total/8)
	}
}

func TestSplitBalancedNeverEmpty(t *testing.T) {
	// all the cost sits on the first index
	cost := func(i int) float64 {
		if i == 0 {
			return 1000
		}
		return 0
	}
	rs := SplitBalanced(0, 5, 5, cost)
	require.Len(t, rs, 5)
	for _, r := range rs {
		require.Equal(t, 1, r.Len())
	}
}

func TestRunVisitsEveryRange(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	hits := make([]int32, 1000)
	err := p.RunN(len(hits), 8, func(r Range) error {
		for i := r.Start; i < r.End; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
		return nil
	})
	require.NoError(t, err)
	for i, h := range hits {
		require.Equal(t, int32(1), h, "index %d", i)
	}
}

func TestRunIsBarrier(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	const phases = 50
	var done atomic.Int64
	for phase := 0; phase < phases; phase++ {
		parts := Split(16, 8)
		want := int64(phase * len(parts))
		err := p.Run(parts, func(Range) error {
			if got := done.Load(); got < want {
				t.Errorf("phase %d started with only %d of %d earlier tasks done", phase, got, want)
			}
			done.Add(1)
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, want+int64(len(parts)), done.Load())
	}
}

func TestRunReturnsFirstError(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	boom := errors.New("boom")
	var mu sync.Mutex
	seen := 0
	err := p.Run(Split(64, 64), func(r Range) error {
		mu.Lock()
		seen++
		mu.Unlock()
		if r.Start == 0 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
	// the caller runs range 0 itself, so at least it was seen
	assert.GreaterOrEqual(t, seen, 1)
	assert.LessOrEqual(t, seen, 64)
}

func TestRunAfterCloseRunsInline(t *testing.T) {
	p := NewPool(3)
	p.Close()
	p.Close()

	sum := 0
	err := p.RunN(10, 5, func(r Range) error {
		for i := r.Start; i < r.End; i++ {
			sum += i
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 45, sum)
}

func TestDefaultPool(t *testing.T) {
	p := Default()
	require.Same(t, p, Default())
	assert.GreaterOrEqual(t, p.Size(), 1)
	assert.Equal(t, 1, NewPool(0).Size())
}
