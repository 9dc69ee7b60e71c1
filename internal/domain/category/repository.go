package category

import (
	"context"
	"errors"

	"skill-swap/internal/async"
	"skill-swap/internal/store"
)

var ErrNotFound = errors.New("category not found")

type Repository interface {
	Save(ctx context.Context, c Category) (Category, error)
	Get(ctx context.Context, id string) (Category, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Watch(ctx context.Context, id string) *async.Value[Category]
	SubscribeAll(ctx context.Context, fn store.Listener) (store.Subscription, error)
}
