package async

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("async value closed")

// Update is one emission of a Value. Err distinguishes a genuinely empty
// result from one produced while the backing source was failing; Value then
// holds whatever partial result was available.
type Update[T any] struct {
	Value T
	Err   error
}

// Value is a live result that re-emits whenever its source changes. Close
// releases the subscriptions feeding it.
type Value[T any] struct {
	emitMu sync.Mutex

	mu        sync.Mutex
	latest    Update[T]
	has       bool
	version   uint64
	changed   chan struct{}
	observers map[uint64]func(Update[T])
	nextObs   uint64
	teardown  []func()
	closed    bool
	done      chan struct{}
}

func New[T any]() *Value[T] {
	return &Value[T]{
		changed:   make(chan struct{}),
		observers: make(map[uint64]func(Update[T])),
		done:      make(chan struct{}),
	}
}

// Resolved returns a Value that already holds one update.
func Resolved[T any](v T, err error) *Value[T] {
	out := New[T]()
	out.emit(Update[T]{Value: v, Err: err})
	return out
}

func (v *Value[T]) Publish(val T) {
	v.emit(Update[T]{Value: val})
}

func (v *Value[T]) Fail(val T, err error) {
	v.emit(Update[T]{Value: val, Err: err})
}

func (v *Value[T]) emit(u Update[T]) {
	v.emitMu.Lock()
	defer v.emitMu.Unlock()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.latest = u
	v.has = true
	v.version++
	close(v.changed)
	v.changed = make(chan struct{})
	obs := make([]func(Update[T]), 0, len(v.observers))
	for _, fn := range v.observers {
		obs = append(obs, fn)
	}
	v.mu.Unlock()

	for _, fn := range obs {
		fn(u)
	}
}

// Latest returns the most recent update, if any was emitted.
func (v *Value[T]) Latest() (Update[T], bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.latest, v.has
}

// Subscribe registers fn for every future update and replays the latest one.
// The returned func unregisters fn.
func (v *Value[T]) Subscribe(fn func(Update[T])) func() {
	if fn == nil {
		return func() {}
	}

	v.emitMu.Lock()
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		v.emitMu.Unlock()
		return func() {}
	}
	v.nextObs++
	id := v.nextObs
	v.observers[id] = fn
	latest, has := v.latest, v.has
	v.mu.Unlock()
	if has {
		fn(latest)
	}
	v.emitMu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.observers, id)
		v.mu.Unlock()
	}
}

// Await returns the latest update, waiting for the first one if none has
// been emitted yet.
func (v *Value[T]) Await(ctx context.Context) (Update[T], error) {
	v.mu.Lock()
	if v.has {
		u := v.latest
		v.mu.Unlock()
		return u, nil
	}
	ch := v.changed
	v.mu.Unlock()

	select {
	case <-ch:
		u, _ := v.Latest()
		return u, nil
	case <-v.done:
		if u, ok := v.Latest(); ok {
			return u, nil
		}
		return Update[T]{}, ErrClosed
	case <-ctx.Done():
		return Update[T]{}, ctx.Err()
	}
}

// Next waits for an update newer than the one observed at version after.
func (v *Value[T]) Next(ctx context.Context, after uint64) (Update[T], uint64, error) {
	for {
		v.mu.Lock()
		if v.has && v.version > after {
			u, ver := v.latest, v.version
			v.mu.Unlock()
			return u, ver, nil
		}
		ch := v.changed
		v.mu.Unlock()

		select {
		case <-ch:
		case <-v.done:
			return Update[T]{}, after, ErrClosed
		case <-ctx.Done():
			return Update[T]{}, after, ctx.Err()
		}
	}
}

// OnClose registers fn to run once when the Value is closed. If it already
// is, fn runs immediately.
func (v *Value[T]) OnClose(fn func()) {
	if fn == nil {
		return
	}
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		fn()
		return
	}
	v.teardown = append(v.teardown, fn)
	v.mu.Unlock()
}

func (v *Value[T]) Done() <-chan struct{} {
	return v.done
}

func (v *Value[T]) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	fns := v.teardown
	v.teardown = nil
	v.observers = map[uint64]func(Update[T]){}
	close(v.done)
	v.mu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
