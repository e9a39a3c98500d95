package workers

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolBoundsConcurrency(t *testing.T) {
	pool := NewPool(3)
	var running, peak int64
	for i := 0; i < 20; i++ {
		pool.Submit(func() {
			n := atomic.AddInt64(&running, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&running, -1)
		})
	}
	pool.Wait()
	if peak > 3 {
		t.Errorf("peak concurrency %d exceeds pool size", peak)
	}
}

func TestEachKeepsOrder(t *testing.T) {
	items := []int{1, 2, 3, 4}
	errs := Each(context.Background(), 2, items, func(_ context.Context, n int) error {
		if n%2 == 0 {
			return fmt.Errorf("even %d", n)
		}
		return nil
	})
	if errs[0] != nil || errs[2] != nil || errs[1] == nil || errs[3].Error() != "even 4" {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestRetry(t *testing.T) {
	var calls int
	r := Retry{MaxAttempts: 3, BaseDelay: time.Millisecond}
	err := r.Do(context.Background(), "flaky", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("boom")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("want success on third call, got %v after %d", err, calls)
	}

	calls = 0
	err = r.Do(context.Background(), "bad", func(context.Context) error {
		calls++
		return fmt.Errorf("bad url: %w", ErrPermanent)
	})
	if calls != 1 || !errors.Is(err, ErrPermanent) {
		t.Fatalf("permanent error retried: %v after %d", err, calls)
	}

	calls = 0
	err = r.Do(context.Background(), "down", func(context.Context) error {
		calls++
		return errors.New("down")
	})
	if calls != 3 || err == nil {
		t.Fatalf("want 3 attempts, got %d (%v)", calls, err)
	}
}
