package workerpool

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many tasks may run concurrently.
type Pool interface {
	// Submit runs fn, blocking until a slot is available or ctx is done.
	// It returns immediately after starting fn; call WaitAll to block for
	// completion of every submitted task.
	Submit(ctx context.Context, fn func(ctx context.Context) error) error
	// WaitAll blocks until every task submitted so far has completed and
	// returns the first error encountered, if any.
	WaitAll() error
}

// Local is a Pool implementation bounded by an in-process weighted
// semaphore. Capacity <= 0 means unbounded (every Submit runs immediately).
type Local struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup

	mu   sync.Mutex
	errs []error
}

// New returns a Local pool that runs at most capacity tasks concurrently.
func New(capacity int) *Local {
	l := &Local{}
	if capacity > 0 {
		l.sem = semaphore.NewWeighted(int64(capacity))
	}
	return l
}

// Submit acquires a slot (blocking if the pool is at capacity) and runs fn
// in a new goroutine.
func (l *Local) Submit(ctx context.Context, fn func(ctx context.Context) error) error {
	if l.sem != nil {
		if err := l.sem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if l.sem != nil {
			defer l.sem.Release(1)
		}
		if err := fn(ctx); err != nil {
			l.mu.Lock()
			l.errs = append(l.errs, err)
			l.mu.Unlock()
		}
	}()
	return nil
}

// WaitAll blocks until every submitted task has returned and reports the
// first error encountered, if any. Errors accumulated across calls persist
// until the next WaitAll call, after which the error list resets.
func (l *Local) WaitAll() error {
	l.wg.Wait()
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.errs) == 0 {
		return nil
	}
	err := l.errs[0]
	l.errs = nil
	return err
}
