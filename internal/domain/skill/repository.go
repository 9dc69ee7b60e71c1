package skill

import (
	"context"
	"errors"

	"skill-swap/internal/async"
	"skill-swap/internal/store"
)

var ErrNotFound = errors.New("skill not found")

type Repository interface {
	Save(ctx context.Context, s Skill) (Skill, error)
	Get(ctx context.Context, id string) (Skill, error)
	Delete(ctx context.Context, id string) error
	Watch(ctx context.Context, id string) *async.Value[Skill]
	SubscribeAll(ctx context.Context, fn store.Listener) (store.Subscription, error)

	// UpdateSummary rewrites only title and category, leaving the teacher set intact.
	UpdateSummary(ctx context.Context, id, title, category string) error
	AddTeacher(ctx context.Context, skillID, userID string) error
	RemoveTeacher(ctx context.Context, skillID, userID string) error
}
