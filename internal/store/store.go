package store

import (
	"context"
	"errors"
)

var (
	ErrUnavailable = errors.New("store unavailable")
	ErrInvalidPath = errors.New("invalid store path")
)

// Listener receives the current value at a subscribed path. A non-nil err
// is terminal: no further deliveries follow it.
type Listener func(snap Snapshot, err error)

type Subscription interface {
	Cancel()
}

// Store is a hierarchical JSON-like document tree addressed by slash
// separated paths such as "/users/{id}/profile".
type Store interface {
	Get(ctx context.Context, path string) (Snapshot, error)
	Set(ctx context.Context, path string, value any) error
	// Update applies each field as a relative child path under path.
	Update(ctx context.Context, path string, fields map[string]any) error
	Delete(ctx context.Context, path string) error
	Push(ctx context.Context, path string, value any) (string, error)
	NewID() string

	// Subscribe delivers the value at path immediately and again after
	// every write that touches path, one of its ancestors or descendants.
	Subscribe(ctx context.Context, path string, fn Listener) (Subscription, error)
}

type SubscriptionFunc func()

func (f SubscriptionFunc) Cancel() {
	if f != nil {
		f()
	}
}
