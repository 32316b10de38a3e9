// parallel/pool.go
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of long-lived workers. Work is handed to it through
// Run, which blocks until every submitted range has been processed, so a Run
// call is a full barrier: nothing submitted afterwards can observe a
// half-finished earlier call.
type Pool struct {
	tasks chan func()
	size  int

	mu     sync.RWMutex
	closed bool
}

// NewPool starts size workers. size < 1 is treated as 1.
func NewPool(size int) *Pool {
	size = max(size, 1)
	p := &Pool{
		tasks: make(chan func(), size),
		size:  size,
	}
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for task := range p.tasks {
		task()
	}
}

// Size is the number of workers.
func (p *Pool) Size() int { return p.size }

// Close stops the workers once queued tasks drain. Run on a closed pool still
// works, it just executes on the calling goroutine.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.tasks)
}

var (
	defaultOnce sync.Once
	defaultPool *Pool
)

// Default returns the process-wide pool, sized by GOMAXPROCS at first use.
func Default() *Pool {
	defaultOnce.Do(func() {
		defaultPool = NewPool(runtime.GOMAXPROCS(0))
	})
	return defaultPool
}

// Run calls fn once per range and returns after all calls finished. The first
// range runs on the caller. If any call fails, ranges that have not started
// yet are skipped and the first error is returned. fn must not call Run on
// the same pool.
func (p *Pool) Run(parts []Range, fn func(Range) error) error {
	return p.RunIndexed(parts, func(_ int, r Range) error { return fn(r) })
}

// RunIndexed is Run with the position of each range in parts passed along,
// for callers that collect one partial result per range.
func (p *Pool) RunIndexed(parts []Range, fn func(idx int, r Range) error) error {
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return fn(0, parts[0])
	}

	var (
		wg       sync.WaitGroup
		failed   atomic.Bool
		errOnce  sync.Once
		firstErr error
	)
	call := func(idx int) {
		if failed.Load() {
			return
		}
		if err := fn(idx, parts[idx]); err != nil {
			errOnce.Do(func() { firstErr = err })
			failed.Store(true)
		}
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		for idx := range parts {
			call(idx)
		}
		return firstErr
	}
	wg.Add(len(parts) - 1)
	for idx := 1; idx < len(parts); idx++ {
		idx := idx
		p.tasks <- func() {
			defer wg.Done()
			call(idx)
		}
	}
	p.mu.RUnlock()

	call(0)
	wg.Wait()
	return firstErr
}

// RunN splits [0,n) into at most maxParts ranges and runs them.
func (p *Pool) RunN(n, maxParts int, fn func(Range) error) error {
	return p.Run(Split(n, maxParts), fn)
}
