package relation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"skill-swap/internal/codec"
	"skill-swap/internal/domain/contact"
	"skill-swap/internal/infrastructure/cache"
	"skill-swap/internal/metrics"
	"skill-swap/internal/mirror"
	"skill-swap/internal/store"
)

type Kind string

const (
	Favorites      Kind = "favorites"
	RecentContacts Kind = "recent_contacts"

	DefaultRecentCap = 20

	inlineMirrorTimeout = 5 * time.Second
)

var (
	ErrValidation  = errors.New("owner and target ids are required")
	ErrLocalWrite  = errors.New("local relationship write failed")
	ErrLocalRead   = errors.New("local relationship read failed")
	ErrUnsupported = errors.New("operation not supported for this relationship")
)

// Entry is one element of an owner's list as kept in the local cache.
type Entry struct {
	TargetID  string `json:"targetId"`
	Timestamp int64  `json:"timestamp"`
	Note      string `json:"notes,omitempty"`
}

// Mirror queues remote writes. Tasks sharing a key must run in submission
// order.
type Mirror interface {
	Submit(key, name string, t mirror.Task) bool
}

// Synchronizer owns one relationship list per owner. The local cache is the
// source of truth for reads; every successful local write is then mirrored
// to the remote store on a best-effort basis. Writes for the same owner are
// serialized.
type Synchronizer struct {
	kind   Kind
	local  cache.Cache
	remote store.Store
	mirror Mirror
	cap    int
	now    func() time.Time
	logger *log.Logger

	locks sync.Map

	watchMu   sync.Mutex
	watchers  map[string]map[uint64]func([]string)
	nextWatch uint64
}

type Option func(*Synchronizer)

// WithCap bounds recent-contact lists. It has no effect on favorites.
func WithCap(n int) Option {
	return func(s *Synchronizer) { s.cap = n }
}

// WithMirror routes remote writes through m. Without it they run inline.
func WithMirror(m Mirror) Option {
	return func(s *Synchronizer) { s.mirror = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Synchronizer) { s.logger = l }
}

func NewSynchronizer(kind Kind, local cache.Cache, remote store.Store, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		kind:     kind,
		local:    local,
		remote:   remote,
		cap:      DefaultRecentCap,
		now:      codec.Now,
		watchers: map[string]map[uint64]func([]string){},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.cap <= 0 {
		s.cap = DefaultRecentCap
	}
	return s
}

func (s *Synchronizer) Kind() Kind {
	return s.kind
}

func LocalKey(kind Kind, ownerID string) string {
	return fmt.Sprintf("%s_%s", kind, ownerID)
}

func RemotePath(kind Kind, ownerID, targetID string) string {
	return store.Join(string(kind), ownerID, targetID)
}

// Add records target in owner's list. Re-adding refreshes the timestamp and
// note of a favorite in place, and moves a recent contact to the front.
func (s *Synchronizer) Add(ctx context.Context, ownerID, targetID, note string) (bool, error) {
	ownerID, targetID, err := validate(ownerID, targetID)
	if err != nil {
		return false, err
	}

	entry := Entry{TargetID: targetID, Timestamp: codec.ToMillis(s.now())}
	var evicted []Entry

	_, err = s.mutate(ctx, ownerID, func(entries []Entry) ([]Entry, bool) {
		switch s.kind {
		case Favorites:
			entry.Note = note
			for i := range entries {
				if entries[i].TargetID == targetID {
					entries[i] = entry
					return entries, true
				}
			}
			return append(entries, entry), true
		default:
			out := make([]Entry, 0, len(entries)+1)
			out = append(out, entry)
			for _, e := range entries {
				if e.TargetID != targetID {
					out = append(out, e)
				}
			}
			if len(out) > s.cap {
				evicted = append(evicted, out[s.cap:]...)
				out = out[:s.cap]
			}
			return out, true
		}
	}, func() {
		s.mirrorSet(ownerID, entry)
		for _, e := range evicted {
			s.mirrorDelete(ownerID, e.TargetID)
		}
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Remove succeeds whether or not target was present.
func (s *Synchronizer) Remove(ctx context.Context, ownerID, targetID string) (bool, error) {
	ownerID, targetID, err := validate(ownerID, targetID)
	if err != nil {
		return false, err
	}

	_, err = s.mutate(ctx, ownerID, func(entries []Entry) ([]Entry, bool) {
		out := entries[:0]
		found := false
		for _, e := range entries {
			if e.TargetID == targetID {
				found = true
				continue
			}
			out = append(out, e)
		}
		return out, found
	}, func() {
		s.mirrorDelete(ownerID, targetID)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateNote changes the note on an existing favorite. It reports false when
// target is not a favorite of owner.
func (s *Synchronizer) UpdateNote(ctx context.Context, ownerID, targetID, note string) (bool, error) {
	if s.kind != Favorites {
		return false, ErrUnsupported
	}
	ownerID, targetID, err := validate(ownerID, targetID)
	if err != nil {
		return false, err
	}

	found := false
	_, err = s.mutate(ctx, ownerID, func(entries []Entry) ([]Entry, bool) {
		for i := range entries {
			if entries[i].TargetID == targetID {
				entries[i].Note = note
				found = true
				return entries, true
			}
		}
		return entries, false
	}, func() {
		if !found {
			return
		}
		path := RemotePath(s.kind, ownerID, targetID)
		s.submit(ownerID, "update_note "+path, func(ctx context.Context) error {
			return s.remote.Update(ctx, path, map[string]any{"notes": note})
		})
	})
	if err != nil || !found {
		return false, err
	}
	return true, nil
}

func (s *Synchronizer) IsMember(ctx context.Context, ownerID, targetID string) (bool, error) {
	ownerID, targetID, err := validate(ownerID, targetID)
	if err != nil {
		return false, err
	}
	entries, err := s.load(ctx, ownerID)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.TargetID == targetID {
			return true, nil
		}
	}
	return false, nil
}

// List returns target ids in list order: insertion order for favorites,
// most recent first for recent contacts.
func (s *Synchronizer) List(ctx context.Context, ownerID string) ([]string, error) {
	entries, err := s.Entries(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return targetIDs(entries), nil
}

func (s *Synchronizer) Entries(ctx context.Context, ownerID string) ([]Entry, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrValidation
	}
	return s.load(ctx, ownerID)
}

// Watch calls fn with the owner's target ids after every successful local
// write to that owner's list.
func (s *Synchronizer) Watch(ownerID string, fn func(ids []string)) (cancel func()) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" || fn == nil {
		return func() {}
	}
	s.watchMu.Lock()
	s.nextWatch++
	id := s.nextWatch
	if s.watchers[ownerID] == nil {
		s.watchers[ownerID] = map[uint64]func([]string){}
	}
	s.watchers[ownerID][id] = fn
	s.watchMu.Unlock()

	return func() {
		s.watchMu.Lock()
		delete(s.watchers[ownerID], id)
		if len(s.watchers[ownerID]) == 0 {
			delete(s.watchers, ownerID)
		}
		s.watchMu.Unlock()
	}
}

func (s *Synchronizer) ToFavorite(ownerID string, e Entry) contact.Favorite {
	return contact.Favorite{
		OwnerID:   ownerID,
		TargetID:  e.TargetID,
		CreatedAt: codec.Millis(e.Timestamp),
		Note:      e.Note,
	}
}

func (s *Synchronizer) ToRecentContact(ownerID string, e Entry) contact.RecentContact {
	return contact.RecentContact{
		OwnerID:         ownerID,
		TargetID:        e.TargetID,
		LastContactedAt: codec.Millis(e.Timestamp),
	}
}

func (s *Synchronizer) ownerLock(ownerID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(ownerID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// mutate applies fn to the owner's list under the owner lock and persists
// the result when fn reports a change. afterWrite runs once the local list is
// settled and while the lock is still held, so remote writes are queued in
// the same order the local list changed.
func (s *Synchronizer) mutate(ctx context.Context, ownerID string, fn func([]Entry) ([]Entry, bool), afterWrite func()) ([]Entry, error) {
	mu := s.ownerLock(ownerID)
	mu.Lock()

	entries, err := s.load(ctx, ownerID)
	if err != nil {
		mu.Unlock()
		return nil, fmt.Errorf("%w: %w", ErrLocalWrite, err)
	}

	next, changed := fn(entries)
	if !changed {
		if afterWrite != nil {
			afterWrite()
		}
		mu.Unlock()
		return next, nil
	}
	if err := s.local.SetJSON(ctx, LocalKey(s.kind, ownerID), next, 0); err != nil {
		mu.Unlock()
		if s.logger != nil {
			s.logger.Printf("[Relations] local write failed kind=%s owner=%s err=%v", s.kind, ownerID, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrLocalWrite, err)
	}
	if afterWrite != nil {
		afterWrite()
	}
	ids := targetIDs(next)
	mu.Unlock()

	s.notify(ownerID, ids)
	return next, nil
}

func (s *Synchronizer) load(ctx context.Context, ownerID string) ([]Entry, error) {
	if s.local == nil {
		return nil, ErrLocalRead
	}
	var entries []Entry
	if _, err := s.local.GetJSON(ctx, LocalKey(s.kind, ownerID), &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLocalRead, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (s *Synchronizer) notify(ownerID string, ids []string) {
	s.watchMu.Lock()
	fns := make([]func([]string), 0, len(s.watchers[ownerID]))
	for _, fn := range s.watchers[ownerID] {
		fns = append(fns, fn)
	}
	s.watchMu.Unlock()

	for _, fn := range fns {
		fn(append([]string(nil), ids...))
	}
}

func (s *Synchronizer) mirrorSet(ownerID string, e Entry) {
	path := RemotePath(s.kind, ownerID, e.TargetID)
	var value map[string]any
	if s.kind == Favorites {
		value = codec.EncodeFavorite(s.ToFavorite(ownerID, e))
	} else {
		value = codec.EncodeRecentContact(s.ToRecentContact(ownerID, e))
	}
	s.submit(ownerID, "set "+path, func(ctx context.Context) error {
		return s.remote.Set(ctx, path, value)
	})
}

func (s *Synchronizer) mirrorDelete(ownerID, targetID string) {
	path := RemotePath(s.kind, ownerID, targetID)
	s.submit(ownerID, "delete "+path, func(ctx context.Context) error {
		return s.remote.Delete(ctx, path)
	})
}

// submit runs a remote write without ever failing the caller. Failures are
// logged and counted. A write the pool cannot queue is dropped rather than
// run inline, since running it now could overtake writes already queued for
// the same owner.
func (s *Synchronizer) submit(ownerID, name string, write mirror.Task) {
	if s.remote == nil {
		return
	}
	task := func(ctx context.Context) error {
		err := write(ctx)
		if err != nil {
			metrics.RelationMirrorFailures.WithLabelValues(string(s.kind)).Inc()
			if s.logger != nil {
				s.logger.Printf("[Relations] mirror failed %s: %v", name, err)
			}
		}
		return err
	}

	if s.mirror != nil {
		if s.mirror.Submit(ownerID, name, task) {
			return
		}
		metrics.RelationMirrorFailures.WithLabelValues(string(s.kind)).Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), inlineMirrorTimeout)
	defer cancel()
	_ = task(ctx)
}

func validate(ownerID, targetID string) (string, string, error) {
	ownerID = strings.TrimSpace(ownerID)
	targetID = strings.TrimSpace(targetID)
	if ownerID == "" || targetID == "" {
		return "", "", ErrValidation
	}
	return ownerID, targetID, nil
}

func targetIDs(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.TargetID)
	}
	return out
}
