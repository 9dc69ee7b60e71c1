package async

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestValue_AwaitReturnsFirstUpdate(t *testing.T) {
	v := New[[]string]()
	go func() {
		time.Sleep(10 * time.Millisecond)
		v.Publish([]string{"a"})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	u, err := v.Await(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(u.Value) != 1 || u.Value[0] != "a" || u.Err != nil {
		t.Fatalf("unexpected update: %+v", u)
	}
}

func TestValue_FailCarriesPartialResult(t *testing.T) {
	sentinel := errors.New("backend down")
	v := New[[]int]()
	v.Fail([]int{1}, sentinel)

	u, ok := v.Latest()
	if !ok {
		t.Fatalf("expected latest")
	}
	if !errors.Is(u.Err, sentinel) || len(u.Value) != 1 {
		t.Fatalf("unexpected update: %+v", u)
	}
}

func TestValue_SubscribeReplaysLatestThenFollows(t *testing.T) {
	v := New[int]()
	v.Publish(1)

	var got []int
	unsub := v.Subscribe(func(u Update[int]) { got = append(got, u.Value) })
	v.Publish(2)
	unsub()
	v.Publish(3)

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected deliveries: %v", got)
	}
}

func TestValue_NextWaitsForNewerVersion(t *testing.T) {
	v := New[int]()
	v.Publish(1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	u, ver, err := v.Next(ctx, 0)
	if err != nil || u.Value != 1 {
		t.Fatalf("unexpected first: %+v err=%v", u, err)
	}

	go v.Publish(2)
	u, _, err = v.Next(ctx, ver)
	if err != nil || u.Value != 2 {
		t.Fatalf("unexpected second: %+v err=%v", u, err)
	}
}

func TestValue_CloseRunsTeardownOnceAndStopsEmits(t *testing.T) {
	v := New[int]()
	calls := 0
	v.OnClose(func() { calls++ })

	v.Close()
	v.Close()
	v.Publish(5)

	if calls != 1 {
		t.Fatalf("expected one teardown call, got %d", calls)
	}
	if _, ok := v.Latest(); ok {
		t.Fatalf("closed value must not accept updates")
	}

	late := false
	v.OnClose(func() { late = true })
	if !late {
		t.Fatalf("OnClose after Close must run immediately")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := v.Await(ctx); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
