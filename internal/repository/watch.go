package repository

import (
	"context"
	"fmt"

	"skill-swap/internal/async"
	"skill-swap/internal/store"
)

// watchEntity mirrors the record at path into an async value. A missing
// record is reported with notFound so callers can tell it from an outage.
func watchEntity[T any](ctx context.Context, s store.Store, path string, decode func(string, any) (T, error), notFound error) *async.Value[T] {
	out := async.New[T]()
	var zero T

	sub, err := s.Subscribe(ctx, path, func(snap store.Snapshot, err error) {
		if err != nil {
			out.Fail(zero, err)
			return
		}
		if !snap.Exists() {
			out.Fail(zero, notFound)
			return
		}
		v, err := decode(snap.Key, snap.Value)
		if err != nil {
			out.Fail(zero, err)
			return
		}
		out.Publish(v)
	})
	if err != nil {
		out.Fail(zero, err)
		return out
	}
	out.OnClose(sub.Cancel)
	return out
}

func getEntity[T any](ctx context.Context, s store.Store, path string, decode func(string, any) (T, error), notFound error) (T, error) {
	var zero T
	snap, err := s.Get(ctx, path)
	if err != nil {
		return zero, err
	}
	if !snap.Exists() {
		return zero, notFound
	}
	v, err := decode(snap.Key, snap.Value)
	if err != nil {
		return zero, fmt.Errorf("load %s: %w", path, err)
	}
	return v, nil
}
