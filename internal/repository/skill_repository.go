package repository

import (
	"context"
	"fmt"
	"strings"

	"skill-swap/internal/async"
	"skill-swap/internal/codec"
	"skill-swap/internal/domain/skill"
	"skill-swap/internal/store"
)

const skillsRoot = "skills"

type StoreSkillRepository struct {
	store store.Store
}

var _ skill.Repository = (*StoreSkillRepository)(nil)

func NewStoreSkillRepository(s store.Store) *StoreSkillRepository {
	return &StoreSkillRepository{store: s}
}

func SkillPath(id string) string {
	return store.Join(skillsRoot, id)
}

func (r *StoreSkillRepository) Save(ctx context.Context, s skill.Skill) (skill.Skill, error) {
	if r == nil || r.store == nil {
		return skill.Skill{}, fmt.Errorf("nil store")
	}
	if strings.TrimSpace(s.ID) == "" {
		s.ID = r.store.NewID()
	}
	if err := r.store.Set(ctx, SkillPath(s.ID), codec.EncodeSkill(s)); err != nil {
		return skill.Skill{}, err
	}
	return s, nil
}

func (r *StoreSkillRepository) Get(ctx context.Context, id string) (skill.Skill, error) {
	return getEntity(ctx, r.store, SkillPath(id), codec.DecodeSkill, skill.ErrNotFound)
}

// Delete removes only the catalog entry. Users that listed the skill keep
// their own copy.
func (r *StoreSkillRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, SkillPath(id))
}

func (r *StoreSkillRepository) Watch(ctx context.Context, id string) *async.Value[skill.Skill] {
	return watchEntity(ctx, r.store, SkillPath(id), codec.DecodeSkill, skill.ErrNotFound)
}

func (r *StoreSkillRepository) SubscribeAll(ctx context.Context, fn store.Listener) (store.Subscription, error) {
	return r.store.Subscribe(ctx, store.Join(skillsRoot), fn)
}

func (r *StoreSkillRepository) UpdateSummary(ctx context.Context, id, title, category string) error {
	return r.store.Update(ctx, SkillPath(id), map[string]any{
		"title":    title,
		"category": category,
	})
}

// AddTeacher fails with skill.ErrNotFound when the catalog entry is missing.
func (r *StoreSkillRepository) AddTeacher(ctx context.Context, skillID, userID string) error {
	snap, err := r.store.Get(ctx, store.Join(skillsRoot, skillID, "title"))
	if err != nil {
		return err
	}
	if !snap.Exists() {
		return skill.ErrNotFound
	}
	return r.store.Set(ctx, store.Join(skillsRoot, skillID, "users_teaching", userID), true)
}

func (r *StoreSkillRepository) RemoveTeacher(ctx context.Context, skillID, userID string) error {
	return r.store.Delete(ctx, store.Join(skillsRoot, skillID, "users_teaching", userID))
}
