package usecase

import (
	"context"
	"strings"
	"sync"

	"skill-swap/internal/async"
	"skill-swap/internal/domain/category"
	"skill-swap/internal/domain/skill"
	"skill-swap/internal/domain/user"
	"skill-swap/internal/search"
	"skill-swap/internal/store"
)

func (d *Directory) SearchUsers(ctx context.Context, c search.Criteria) *async.Value[[]user.User] {
	return snapshotQuery(ctx, d.users.SubscribeAll, func(snap store.Snapshot) []user.User {
		return d.engine.Users(snap, c)
	})
}

func (d *Directory) SearchSkills(ctx context.Context, c search.Criteria) *async.Value[[]skill.Skill] {
	return snapshotQuery(ctx, d.skills.SubscribeAll, func(snap store.Snapshot) []skill.Skill {
		return d.engine.Skills(snap, c)
	})
}

func (d *Directory) SearchCategories(ctx context.Context, text string) *async.Value[[]category.Category] {
	return snapshotQuery(ctx, d.categories.SubscribeAll, func(snap store.Snapshot) []category.Category {
		return d.engine.Categories(snap, text)
	})
}

func (d *Directory) ListCategories(ctx context.Context) *async.Value[[]category.Category] {
	return d.SearchCategories(ctx, "")
}

func (d *Directory) GetUser(ctx context.Context, id string) *async.Value[user.User] {
	id = strings.TrimSpace(id)
	if id == "" {
		return async.Resolved(user.User{}, ErrInvalidInput)
	}
	return relay(ctx, d.users.Watch(ctx, id))
}

func (d *Directory) GetSkill(ctx context.Context, id string) *async.Value[skill.Skill] {
	id = strings.TrimSpace(id)
	if id == "" {
		return async.Resolved(skill.Skill{}, ErrInvalidInput)
	}
	return relay(ctx, d.skills.Watch(ctx, id))
}

func (d *Directory) GetCategory(ctx context.Context, id string) *async.Value[category.Category] {
	id = strings.TrimSpace(id)
	if id == "" {
		return async.Resolved(category.Category{}, ErrInvalidInput)
	}
	return relay(ctx, d.categories.Watch(ctx, id))
}

// FavoriteUsers resolves the owner's favorites in the order they were added
// and re-resolves after every change to the list.
func (d *Directory) FavoriteUsers(ctx context.Context, ownerID string) *async.Value[[]user.User] {
	return d.relationUsers(ctx, d.favorites, ownerID)
}

// RecentContactUsers resolves the owner's recent contacts, most recent
// first.
func (d *Directory) RecentContactUsers(ctx context.Context, ownerID string) *async.Value[[]user.User] {
	return d.relationUsers(ctx, d.recents, ownerID)
}

func (d *Directory) relationUsers(ctx context.Context, rel Relations, ownerID string) *async.Value[[]user.User] {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return async.Resolved([]user.User{}, ErrInvalidInput)
	}

	out := async.New[[]user.User]()
	feed := newIDFeed(ctx, d.resolver, out)

	// Every refresh re-reads the list under mu, so the last push always
	// reflects the newest local state.
	var mu sync.Mutex
	refresh := func() {
		mu.Lock()
		defer mu.Unlock()
		ids, err := rel.List(ctx, ownerID)
		feed.push(ids, err)
	}

	cancel := rel.Watch(ownerID, func([]string) { refresh() })
	out.OnClose(cancel)
	refresh()

	bindContext(ctx, out)
	return out
}

// SkillTeachers follows the skill's users_teaching set.
func (d *Directory) SkillTeachers(ctx context.Context, skillID string) *async.Value[[]user.User] {
	skillID = strings.TrimSpace(skillID)
	if skillID == "" {
		return async.Resolved([]user.User{}, ErrInvalidInput)
	}

	out := async.New[[]user.User]()
	feed := newIDFeed(ctx, d.resolver, out)

	watched := d.skills.Watch(ctx, skillID)
	out.OnClose(watched.Close)
	unsubscribe := watched.Subscribe(func(u async.Update[skill.Skill]) {
		if u.Err != nil {
			feed.push(nil, u.Err)
			return
		}
		feed.push(u.Value.UsersTeaching, nil)
	})
	out.OnClose(unsubscribe)

	bindContext(ctx, out)
	return out
}
