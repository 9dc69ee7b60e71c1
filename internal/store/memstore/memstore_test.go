package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"skill-swap/internal/store"
)

type recorder struct {
	mu    sync.Mutex
	snaps []store.Snapshot
	errs  []error
	ch    chan struct{}
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan struct{}, 64)}
}

func (r *recorder) listen(snap store.Snapshot, err error) {
	r.mu.Lock()
	if err != nil {
		r.errs = append(r.errs, err)
	} else {
		r.snaps = append(r.snaps, snap)
	}
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for delivery")
	}
}

func (r *recorder) last() store.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snaps[len(r.snaps)-1]
}

func TestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	if err := s.Set(ctx, "/users/u1/profile", map[string]any{"name": "Ana"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	snap, err := s.Get(ctx, "/users/u1/profile/name")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if snap.String() != "Ana" {
		t.Fatalf("expected Ana, got %#v", snap.Value)
	}

	if err := s.Delete(ctx, "/users/u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	snap, _ = s.Get(ctx, "/users/u1")
	if snap.Exists() {
		t.Fatalf("expected deleted")
	}
}

func TestStore_UpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	_ = s.Set(ctx, "/skills/s1", map[string]any{"title": "Go", "level": 2})
	if err := s.Update(ctx, "/skills/s1", map[string]any{"category": "c1", "users_teaching/u1": true}); err != nil {
		t.Fatalf("update: %v", err)
	}

	snap, _ := s.Get(ctx, "/skills/s1")
	m, _ := snap.Map()
	if m["title"] != "Go" || m["category"] != "c1" {
		t.Fatalf("unexpected merged value: %#v", m)
	}
	if snap.Child("users_teaching/u1").Value != true {
		t.Fatalf("expected nested update applied")
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	_ = s.Set(ctx, "/categories/c1", map[string]any{"name": "Music"})

	snap, _ := s.Get(ctx, "/categories/c1")
	m, _ := snap.Map()
	m["name"] = "mutated"

	again, _ := s.Get(ctx, "/categories/c1/name")
	if again.String() != "Music" {
		t.Fatalf("stored state was mutated through a snapshot")
	}
}

func TestStore_PushKeysFollowInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		id, err := s.Push(ctx, "/skills", map[string]any{"title": title})
		if err != nil {
			t.Fatalf("push: %v", err)
		}
		ids = append(ids, id)
	}

	snap, _ := s.Get(ctx, "/skills")
	kids := snap.Children()
	if len(kids) != 3 {
		t.Fatalf("expected 3 children, got %d", len(kids))
	}
	for i, k := range kids {
		if k.Key != ids[i] {
			t.Fatalf("child %d = %s, want %s", i, k.Key, ids[i])
		}
	}
}

func TestStore_SubscribeDeliversInitialAndChanges(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	rec := newRecorder()

	sub, err := s.Subscribe(ctx, "/users", rec.listen)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Cancel()

	rec.wait(t)
	if rec.last().Exists() {
		t.Fatalf("expected empty initial snapshot")
	}

	_ = s.Set(ctx, "/users/u1/profile/name", "Ana")
	rec.wait(t)
	if rec.last().Child("u1/profile/name").String() != "Ana" {
		t.Fatalf("expected descendant write delivered, got %#v", rec.last().Value)
	}
}

func TestStore_SubscribeIgnoresUnrelatedPaths(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	rec := newRecorder()

	sub, _ := s.Subscribe(ctx, "/users/u1", rec.listen)
	defer sub.Cancel()
	rec.wait(t)

	_ = s.Set(ctx, "/skills/s1/title", "Go")
	select {
	case <-rec.ch:
		t.Fatalf("unexpected delivery for unrelated write")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStore_CancelStopsDeliveries(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	rec := newRecorder()

	sub, _ := s.Subscribe(ctx, "/users", rec.listen)
	rec.wait(t)
	sub.Cancel()

	_ = s.Set(ctx, "/users/u1/profile/name", "Ana")
	select {
	case <-rec.ch:
		t.Fatalf("delivery after cancel")
	case <-time.After(100 * time.Millisecond):
	}
	if s.hub.Len() != 0 {
		t.Fatalf("expected subscription removed, got %d", s.hub.Len())
	}
}

func TestStore_UnavailableReachesSubscribersOnce(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	rec := newRecorder()

	sub, _ := s.Subscribe(ctx, "/users", rec.listen)
	defer sub.Cancel()
	rec.wait(t)

	s.SetUnavailable(errors.New("connection reset"))
	rec.wait(t)

	rec.mu.Lock()
	errs := append([]error(nil), rec.errs...)
	rec.mu.Unlock()
	if len(errs) != 1 || !errors.Is(errs[0], store.ErrUnavailable) {
		t.Fatalf("expected one ErrUnavailable, got %v", errs)
	}

	if err := s.Set(ctx, "/users/u1", map[string]any{}); !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("expected write to fail, got %v", err)
	}

	s.SetUnavailable(nil)
	if err := s.Set(ctx, "/users/u1", map[string]any{"profile": map[string]any{}}); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	select {
	case <-rec.ch:
		t.Fatalf("terminated subscription must not deliver again")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStore_SubscriptionEndsWithContext(t *testing.T) {
	s := New(nil)
	rec := newRecorder()
	ctx, cancel := context.WithCancel(context.Background())

	_, _ = s.Subscribe(ctx, "/users", rec.listen)
	rec.wait(t)
	cancel()

	deadline := time.Now().Add(time.Second)
	for s.hub.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.hub.Len() != 0 {
		t.Fatalf("expected subscription released after ctx cancel")
	}
}
