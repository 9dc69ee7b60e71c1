package user

import (
	"context"
	"errors"

	"skill-swap/internal/async"
	"skill-swap/internal/store"
)

var ErrNotFound = errors.New("user not found")

type Repository interface {
	Save(ctx context.Context, u User) (User, error)
	Get(ctx context.Context, id string) (User, error)
	Delete(ctx context.Context, id string) error
	Watch(ctx context.Context, id string) *async.Value[User]
	SubscribeAll(ctx context.Context, fn store.Listener) (store.Subscription, error)

	UpdateProfile(ctx context.Context, id string, p Profile) error
	UpdateField(ctx context.Context, id string, field string, value any) error

	PutTeachSkill(ctx context.Context, userID, skillID string, s TeachSkill) error
	DeleteTeachSkill(ctx context.Context, userID, skillID string) error
	PutLearnSkill(ctx context.Context, userID, skillID string, s LearnSkill) error
	DeleteLearnSkill(ctx context.Context, userID, skillID string) error
}
