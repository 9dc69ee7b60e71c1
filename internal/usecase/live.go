package usecase

import (
	"context"
	"sync"

	"skill-swap/internal/async"
	"skill-swap/internal/resolver"
	"skill-swap/internal/store"
)

// bindContext closes v when ctx ends.
func bindContext[T any](ctx context.Context, v *async.Value[T]) {
	stop := context.AfterFunc(ctx, v.Close)
	v.OnClose(func() { stop() })
}

// snapshotQuery re-evaluates eval against the subscribed collection after
// every change to it.
func snapshotQuery[T any](
	ctx context.Context,
	subscribe func(context.Context, store.Listener) (store.Subscription, error),
	eval func(store.Snapshot) []T,
) *async.Value[[]T] {
	out := async.New[[]T]()
	sub, err := subscribe(ctx, func(snap store.Snapshot, err error) {
		if err != nil {
			out.Fail([]T{}, translate(err))
			return
		}
		out.Publish(eval(snap))
	})
	if err != nil {
		out.Fail([]T{}, translate(err))
		return out
	}
	out.OnClose(sub.Cancel)
	bindContext(ctx, out)
	return out
}

// relay forwards in to a new value with errors translated.
func relay[T any](ctx context.Context, in *async.Value[T]) *async.Value[T] {
	out := async.New[T]()
	unsubscribe := in.Subscribe(func(u async.Update[T]) {
		if u.Err != nil {
			out.Fail(u.Value, translate(u.Err))
			return
		}
		out.Publish(u.Value)
	})
	out.OnClose(in.Close)
	out.OnClose(unsubscribe)
	bindContext(ctx, out)
	return out
}

// idFeed resolves successive id lists into out. Each push supersedes any
// resolution still in flight, so out only ever receives the entities for
// the newest list.
type idFeed[T any] struct {
	ctx context.Context
	res *resolver.Resolver[T]
	out *async.Value[[]T]

	mu      sync.Mutex
	gen     uint64
	pending *async.Value[[]T]
	closed  bool
}

func newIDFeed[T any](ctx context.Context, res *resolver.Resolver[T], out *async.Value[[]T]) *idFeed[T] {
	f := &idFeed[T]{ctx: ctx, res: res, out: out}
	out.OnClose(f.close)
	return f
}

func (f *idFeed[T]) push(ids []string, err error) {
	if err != nil {
		f.mu.Lock()
		f.gen++
		f.dropPendingLocked()
		f.mu.Unlock()
		f.out.Fail([]T{}, translate(err))
		return
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.gen++
	gen := f.gen
	f.dropPendingLocked()
	pending := f.res.Resolve(f.ctx, ids)
	f.pending = pending
	f.mu.Unlock()

	pending.Subscribe(func(u async.Update[[]T]) {
		f.mu.Lock()
		current := gen == f.gen && !f.closed
		f.mu.Unlock()
		if !current {
			return
		}
		if u.Err != nil {
			f.out.Fail(u.Value, translate(u.Err))
			return
		}
		f.out.Publish(u.Value)
	})
}

func (f *idFeed[T]) dropPendingLocked() {
	if f.pending != nil {
		f.pending.Close()
		f.pending = nil
	}
}

func (f *idFeed[T]) close() {
	f.mu.Lock()
	f.closed = true
	f.gen++
	f.dropPendingLocked()
	f.mu.Unlock()
}
