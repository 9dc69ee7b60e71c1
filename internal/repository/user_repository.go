package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skill-swap/internal/async"
	"skill-swap/internal/codec"
	"skill-swap/internal/domain/user"
	"skill-swap/internal/store"
)

const usersRoot = "users"

var ErrInvalidField = errors.New("invalid user field")

type StoreUserRepository struct {
	store store.Store
	now   func() time.Time
}

var _ user.Repository = (*StoreUserRepository)(nil)

func NewStoreUserRepository(s store.Store) *StoreUserRepository {
	return &StoreUserRepository{store: s, now: codec.Now}
}

func UserPath(id string) string {
	return store.Join(usersRoot, id)
}

// Save writes the whole user record, assigning an id when u has none, and
// stamps lastActive.
func (r *StoreUserRepository) Save(ctx context.Context, u user.User) (user.User, error) {
	if r == nil || r.store == nil {
		return user.User{}, fmt.Errorf("nil store")
	}
	if strings.TrimSpace(u.ID) == "" {
		u.ID = r.store.NewID()
	}
	u.Profile.LastActive = r.now()
	if err := r.store.Set(ctx, UserPath(u.ID), codec.EncodeUser(u)); err != nil {
		return user.User{}, err
	}
	if u.SkillsToTeach == nil {
		u.SkillsToTeach = map[string]user.TeachSkill{}
	}
	if u.SkillsToLearn == nil {
		u.SkillsToLearn = map[string]user.LearnSkill{}
	}
	return u, nil
}

func (r *StoreUserRepository) Get(ctx context.Context, id string) (user.User, error) {
	return getEntity(ctx, r.store, UserPath(id), codec.DecodeUser, user.ErrNotFound)
}

func (r *StoreUserRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, UserPath(id))
}

func (r *StoreUserRepository) Watch(ctx context.Context, id string) *async.Value[user.User] {
	return watchEntity(ctx, r.store, UserPath(id), codec.DecodeUser, user.ErrNotFound)
}

func (r *StoreUserRepository) SubscribeAll(ctx context.Context, fn store.Listener) (store.Subscription, error) {
	return r.store.Subscribe(ctx, store.Join(usersRoot), fn)
}

// UpdateProfile replaces the profile sub-record and stamps lastActive.
func (r *StoreUserRepository) UpdateProfile(ctx context.Context, id string, p user.Profile) error {
	p.LastActive = r.now()
	return r.store.Set(ctx, store.Join(usersRoot, id, "profile"), codec.EncodeProfile(p))
}

// UpdateField writes one field addressed with dots, e.g. "profile.bio" or
// "skills_to_teach.s1.level". Profile writes also stamp lastActive.
func (r *StoreUserRepository) UpdateField(ctx context.Context, id string, field string, value any) error {
	rel := FieldPath(field)
	if rel == "" {
		return ErrInvalidField
	}
	if _, err := store.Split(rel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	fields := map[string]any{rel: value}
	if strings.HasPrefix(rel, "profile/") && rel != "profile/lastActive" {
		fields["profile/lastActive"] = codec.ToMillis(r.now())
	}
	return r.store.Update(ctx, UserPath(id), fields)
}

// FieldPath converts a dotted field name into a relative store path.
func FieldPath(field string) string {
	field = strings.Trim(strings.TrimSpace(field), ".")
	if field == "" {
		return ""
	}
	return strings.ReplaceAll(field, ".", "/")
}

func (r *StoreUserRepository) PutTeachSkill(ctx context.Context, userID, skillID string, s user.TeachSkill) error {
	return r.store.Set(ctx, store.Join(usersRoot, userID, "skills_to_teach", skillID), codec.EncodeTeachSkill(s))
}

func (r *StoreUserRepository) DeleteTeachSkill(ctx context.Context, userID, skillID string) error {
	return r.store.Delete(ctx, store.Join(usersRoot, userID, "skills_to_teach", skillID))
}

func (r *StoreUserRepository) PutLearnSkill(ctx context.Context, userID, skillID string, s user.LearnSkill) error {
	return r.store.Set(ctx, store.Join(usersRoot, userID, "skills_to_learn", skillID), codec.EncodeLearnSkill(s))
}

func (r *StoreUserRepository) DeleteLearnSkill(ctx context.Context, userID, skillID string) error {
	return r.store.Delete(ctx, store.Join(usersRoot, userID, "skills_to_learn", skillID))
}
