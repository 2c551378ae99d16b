package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestLocalRunsAllTasks(t *testing.T) {
	p := New(2)
	var count int32
	for i := 0; i < 10; i++ {
		if err := p.Submit(context.Background(), func(ctx context.Context) error {
			atomic.AddInt32(&count, 1)
			return nil
		}); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	if err := p.WaitAll(); err != nil {
		t.Fatalf("WaitAll() error = %v", err)
	}
	if got := atomic.LoadInt32(&count); got != 10 {
		t.Errorf("count = %d, want 10", got)
	}
}

func TestLocalBoundsConcurrency(t *testing.T) {
	p := New(2)
	var inFlight, maxSeen int32
	for i := 0; i < 8; i++ {
		p.Submit(context.Background(), func(ctx context.Context) error {
			cur := atomic.AddInt32(&inFlight, 1)
			for {
				max := atomic.LoadInt32(&maxSeen)
				if cur <= max || atomic.CompareAndSwapInt32(&maxSeen, max, cur) {
					break
				}
			}
			atomic.AddInt32(&inFlight, -1)
			return nil
		})
	}
	if err := p.WaitAll(); err != nil {
		t.Fatalf("WaitAll() error = %v", err)
	}
	if atomic.LoadInt32(&maxSeen) > 2 {
		t.Errorf("max concurrency observed = %d, want <= 2", maxSeen)
	}
}

func TestLocalPropagatesError(t *testing.T) {
	p := New(0)
	wantErr := errors.New("boom")
	p.Submit(context.Background(), func(ctx context.Context) error { return wantErr })
	if err := p.WaitAll(); err != wantErr {
		t.Errorf("WaitAll() error = %v, want %v", err, wantErr)
	}
}

func TestLocalUnboundedCapacity(t *testing.T) {
	p := New(0)
	var count int32
	for i := 0; i < 5; i++ {
		p.Submit(context.Background(), func(ctx context.Context) error {
			atomic.AddInt32(&count, 1)
			return nil
		})
	}
	p.WaitAll()
	if got := atomic.LoadInt32(&count); got != 5 {
		t.Errorf("count = %d, want 5", got)
	}
}
