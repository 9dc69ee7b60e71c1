package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"skill-swap/internal/async"
	"skill-swap/internal/codec"
	"skill-swap/internal/domain/category"
	"skill-swap/internal/domain/skill"
	"skill-swap/internal/domain/user"
	"skill-swap/internal/infrastructure/cache"
	"skill-swap/internal/relation"
	"skill-swap/internal/repository"
	"skill-swap/internal/resolver"
	"skill-swap/internal/search"
	"skill-swap/internal/store/memstore"
)

type fakeObjects struct {
	mu       sync.Mutex
	objects  map[string][]byte
	presigns int
}

func (f *fakeObjects) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = b
	return nil
}

func (f *fakeObjects) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presigns++
	return "https://objects.test/" + key + "?sig=1", nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

type fixture struct {
	store   *memstore.Store
	dir     *Directory
	objects *fakeObjects
}

type downCache struct {
	cache.Cache
}

func (downCache) SetJSON(context.Context, string, any, time.Duration) error {
	return cache.ErrUnavailable
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return newFixtureWithCache(t, cache.NewMemory())
}

func newFixtureWithCache(t *testing.T, local cache.Cache) fixture {
	t.Helper()
	s := memstore.New(nil)
	objects := &fakeObjects{}

	dir := NewDirectory(DirectoryDeps{
		Users:         repository.NewStoreUserRepository(s),
		Skills:        repository.NewStoreSkillRepository(s),
		Categories:    repository.NewStoreCategoryRepository(s),
		Favorites:     relation.NewSynchronizer(relation.Favorites, local, s),
		Recents:       relation.NewSynchronizer(relation.RecentContacts, local, s),
		UserResolver:  resolver.New[user.User](s, "user", repository.UserPath, codec.DecodeUser, resolver.WithTimeout[user.User](2*time.Second)),
		Cache:         local,
		Objects:       objects,
		PresignExpiry: time.Hour,
		NewID:         s.NewID,
	})
	t.Cleanup(func() { _ = s.Close() })
	return fixture{store: s, dir: dir, objects: objects}
}

func (f fixture) user(t *testing.T, id, name string) {
	t.Helper()
	if _, err := f.dir.SaveUser(context.Background(), user.User{ID: id, Profile: user.Profile{Name: name}}); err != nil {
		t.Fatalf("save user %s: %v", id, err)
	}
}

// waitFor returns the first update satisfying ok.
func waitFor[T any](t *testing.T, v *async.Value[T], ok func(async.Update[T]) bool) async.Update[T] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var ver uint64
	for {
		u, next, err := v.Next(ctx, ver)
		if err != nil {
			latest, _ := v.Latest()
			t.Fatalf("no matching update: %v (latest %+v)", err, latest)
		}
		if ok(u) {
			return u
		}
		ver = next
	}
}

func userIDs(users []user.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func equalIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestSearchUsers_LiveUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1", "Ana Guitar")
	f.user(t, "u2", "Budi")

	v := f.dir.SearchUsers(ctx, search.Criteria{Text: "guitar"})
	defer v.Close()

	u := waitFor(t, v, func(u async.Update[[]user.User]) bool { return len(u.Value) == 1 })
	if u.Err != nil || u.Value[0].ID != "u1" {
		t.Fatalf("unexpected first result: %+v", u)
	}

	if _, err := f.dir.AddSkillToTeach(ctx, "u2", TeachSkillInput{SkillID: "s1", Title: "Guitar", Level: 3}); err != nil {
		t.Fatalf("add teach: %v", err)
	}
	u = waitFor(t, v, func(u async.Update[[]user.User]) bool { return len(u.Value) == 2 })
	if !equalIDs(userIDs(u.Value), []string{"u1", "u2"}) {
		t.Fatalf("expected snapshot order, got %v", userIDs(u.Value))
	}
}

func TestSearchUsers_StoreOutageIsSignaled(t *testing.T) {
	f := newFixture(t)
	f.user(t, "u1", "Ana")

	v := f.dir.SearchUsers(context.Background(), search.Criteria{})
	defer v.Close()
	waitFor(t, v, func(u async.Update[[]user.User]) bool { return len(u.Value) == 1 })

	f.store.SetUnavailable(errors.New("connection reset"))
	u := waitFor(t, v, func(u async.Update[[]user.User]) bool { return u.Err != nil })
	if !errors.Is(u.Err, ErrUnavailable) || len(u.Value) != 0 {
		t.Fatalf("expected empty result with ErrUnavailable, got %+v", u)
	}
}

func TestFavoriteUsers_FollowsListChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "a", "Owner")
	f.user(t, "b", "Bea")
	f.user(t, "c", "Cici")

	v := f.dir.FavoriteUsers(ctx, "a")
	defer v.Close()
	u := waitFor(t, v, func(async.Update[[]user.User]) bool { return true })
	if u.Err != nil || len(u.Value) != 0 {
		t.Fatalf("expected empty favorites, got %+v", u)
	}

	_, _ = f.dir.AddFavorite(ctx, "a", "c", "")
	_, _ = f.dir.AddFavorite(ctx, "a", "missing", "")
	_, _ = f.dir.AddFavorite(ctx, "a", "b", "great")

	u = waitFor(t, v, func(u async.Update[[]user.User]) bool { return len(u.Value) == 2 })
	if !equalIDs(userIDs(u.Value), []string{"c", "b"}) {
		t.Fatalf("expected insertion order without missing ids, got %v", userIDs(u.Value))
	}

	_, _ = f.dir.RemoveFavorite(ctx, "a", "c")
	u = waitFor(t, v, func(u async.Update[[]user.User]) bool { return len(u.Value) == 1 })
	if u.Value[0].ID != "b" {
		t.Fatalf("expected [b], got %v", userIDs(u.Value))
	}

	entries, err := f.dir.FavoriteEntries(ctx, "a")
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 || entries[1].TargetID != "b" || entries[1].Note != "great" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestRecentContactUsers_MostRecentFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c", "d"} {
		f.user(t, id, id)
	}

	for _, id := range []string{"b", "c", "d", "c"} {
		if _, err := f.dir.AddRecentContact(ctx, "a", id); err != nil {
			t.Fatalf("add recent %s: %v", id, err)
		}
	}

	v := f.dir.RecentContactUsers(ctx, "a")
	defer v.Close()
	u := waitFor(t, v, func(u async.Update[[]user.User]) bool { return len(u.Value) == 3 })
	if !equalIDs(userIDs(u.Value), []string{"c", "d", "b"}) {
		t.Fatalf("expected [c d b], got %v", userIDs(u.Value))
	}
}

func TestRelations_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.dir.AddFavorite(ctx, "", "b", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	u, _ := f.dir.FavoriteUsers(ctx, " ").Latest()
	if !errors.Is(u.Err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty owner, got %+v", u)
	}
}

func TestRelations_CacheOutageIsUnavailable(t *testing.T) {
	f := newFixtureWithCache(t, downCache{Cache: cache.NewMemory()})

	ok, err := f.dir.AddFavorite(context.Background(), "a", "b", "")
	if ok || !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, ok=%v err=%v", ok, err)
	}
	if !errors.Is(err, cache.ErrUnavailable) || !errors.Is(err, relation.ErrLocalWrite) {
		t.Fatalf("expected cache and relation errors kept in chain, got %v", err)
	}
}

func TestAddSkillToTeach_UpdatesGlobalSkill(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1", "Ana")
	f.user(t, "u2", "Budi")

	id, err := f.dir.AddSkillToTeach(ctx, "u1", TeachSkillInput{Title: "Guitar", Level: 7, Category: "music"})
	if err != nil || id == "" {
		t.Fatalf("add teach: id=%q err=%v", id, err)
	}
	if _, err := f.dir.AddSkillToTeach(ctx, "u2", TeachSkillInput{SkillID: id, Title: "Guitar", Level: 2, Category: "music"}); err != nil {
		t.Fatalf("add second teacher: %v", err)
	}

	got, err := f.dir.skills.Get(ctx, id)
	if err != nil {
		t.Fatalf("get skill: %v", err)
	}
	if got.Title != "Guitar" || got.Level != user.MaxLevel || !equalIDs(got.UsersTeaching, []string{"u1", "u2"}) {
		t.Fatalf("unexpected global skill: %+v", got)
	}

	teachers := f.dir.SkillTeachers(ctx, id)
	defer teachers.Close()
	u := waitFor(t, teachers, func(u async.Update[[]user.User]) bool { return len(u.Value) == 2 })
	if u.Err != nil {
		t.Fatalf("unexpected error: %v", u.Err)
	}

	if err := f.dir.RemoveSkillToTeach(ctx, "u1", id); err != nil {
		t.Fatalf("remove teach: %v", err)
	}
	u = waitFor(t, teachers, func(u async.Update[[]user.User]) bool { return len(u.Value) == 1 })
	if u.Value[0].ID != "u2" {
		t.Fatalf("expected only u2 teaching, got %v", userIDs(u.Value))
	}

	owner, _ := f.dir.users.Get(ctx, "u1")
	if _, ok := owner.SkillsToTeach[id]; ok {
		t.Fatalf("expected user entry removed")
	}
}

func TestAddSkillToTeach_UnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.dir.AddSkillToTeach(context.Background(), "ghost", TeachSkillInput{Title: "Go"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteSkill_DoesNotCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1", "Ana")
	id, _ := f.dir.AddSkillToTeach(ctx, "u1", TeachSkillInput{Title: "Chess"})

	if err := f.dir.DeleteSkill(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.dir.skills.Get(ctx, id); !errors.Is(err, skill.ErrNotFound) {
		t.Fatalf("expected skill gone, got %v", err)
	}
	u, _ := f.dir.users.Get(ctx, "u1")
	if u.SkillsToTeach[id].Title != "Chess" {
		t.Fatalf("expected user copy kept, got %+v", u.SkillsToTeach)
	}
}

func TestGetUser_MissingAndPresent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v := f.dir.GetUser(ctx, "u1")
	defer v.Close()
	u := waitFor(t, v, func(async.Update[user.User]) bool { return true })
	if !errors.Is(u.Err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %+v", u)
	}

	f.user(t, "u1", "Ana")
	u = waitFor(t, v, func(u async.Update[user.User]) bool { return u.Err == nil })
	if u.Value.Profile.Name != "Ana" {
		t.Fatalf("unexpected user: %+v", u.Value)
	}
}

func TestSearchCategories_ByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, name := range []string{"Music", "Art", "Music Theory"} {
		if _, err := f.dir.SaveCategory(ctx, category.Category{Name: name}); err != nil {
			t.Fatalf("save category: %v", err)
		}
	}
	if _, err := f.dir.SaveCategory(ctx, category.Category{Name: "  "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	v := f.dir.SearchCategories(ctx, "MUSIC")
	defer v.Close()
	u := waitFor(t, v, func(async.Update[[]category.Category]) bool { return true })
	if len(u.Value) != 2 {
		t.Fatalf("expected 2 music categories, got %+v", u.Value)
	}
}

func TestProfileImage_UploadAndCachedURL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1", "Ana")

	key, err := f.dir.UploadProfileImage(ctx, "u1", bytes.NewReader([]byte("jpeg")), 4, "image/jpeg")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if key != "users/u1/profile.jpg" {
		t.Fatalf("unexpected key %q", key)
	}

	first, err := f.dir.ProfileImageURL(ctx, "u1")
	if err != nil {
		t.Fatalf("url: %v", err)
	}
	second, _ := f.dir.ProfileImageURL(ctx, "u1")
	if first != second || f.objects.presigns != 1 {
		t.Fatalf("expected cached url, presigns=%d", f.objects.presigns)
	}

	if _, err := f.dir.ProfileImageURL(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
