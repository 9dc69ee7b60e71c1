package mirror

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_RunsSubmittedTasks(t *testing.T) {
	p := NewPool(3, 16, time.Second, nil)
	results := p.Run(context.Background())

	var ran atomic.Int32
	boom := errors.New("boom")
	for i := 0; i < 5; i++ {
		fail := i == 2
		if !p.Submit(fmt.Sprintf("key-%d", i), "task", func(ctx context.Context) error {
			ran.Add(1)
			if fail {
				return boom
			}
			return nil
		}) {
			t.Fatalf("submit %d rejected", i)
		}
	}
	p.Close()

	failures := 0
	for r := range results {
		if errors.Is(r.Err, boom) {
			failures++
		}
	}
	if ran.Load() != 5 || failures != 1 {
		t.Fatalf("ran=%d failures=%d", ran.Load(), failures)
	}
}

func TestPool_SubmitDropsWhenFull(t *testing.T) {
	p := NewPool(1, 1, 0, nil)
	// No workers running, so the single buffer slot fills.
	if !p.Submit("k", "a", func(context.Context) error { return nil }) {
		t.Fatalf("first submit should fit the buffer")
	}
	if p.Submit("k", "b", func(context.Context) error { return nil }) {
		t.Fatalf("second submit should be dropped")
	}
	p.Close()
	if p.Submit("k", "c", func(context.Context) error { return nil }) {
		t.Fatalf("submit after close must be rejected")
	}
}

func TestPool_TaskTimeout(t *testing.T) {
	p := NewPool(1, 1, 20*time.Millisecond, nil)
	results := p.Run(context.Background())
	p.Submit("k", "slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	p.Close()

	r := <-results
	if !errors.Is(r.Err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", r.Err)
	}
}

func TestPool_SameKeyRunsInSubmissionOrder(t *testing.T) {
	p := NewPool(4, 64, time.Second, nil)
	results := p.Run(context.Background())

	var mu sync.Mutex
	var order []string
	record := func(name string, delay time.Duration) Task {
		return func(context.Context) error {
			time.Sleep(delay)
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}

	// The first task is the slowest; a shared lane must still finish it first.
	p.Submit("owner-1", "set", record("set", 50*time.Millisecond))
	p.Submit("owner-1", "delete", record("delete", 0))
	p.Submit("owner-1", "set-again", record("set-again", 0))
	p.Close()
	for range results {
	}

	want := []string{"set", "delete", "set-again"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
}
