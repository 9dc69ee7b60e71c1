package memstore

import (
	"context"
	"fmt"
	"log"
	"sync"

	"skill-swap/internal/store"
)

// Store keeps the whole tree in process memory. It is the default backend
// for local runs and the backend used by tests.
type Store struct {
	mu      sync.RWMutex
	root    any
	failure error

	hub    *store.Hub
	ids    *store.IDGenerator
	logger *log.Logger
}

func New(logger *log.Logger) *Store {
	s := &Store{
		root:   map[string]any{},
		ids:    store.NewIDGenerator(),
		logger: logger,
	}
	s.hub = store.NewHub(s.read, logger)
	return s
}

func (s *Store) read(ctx context.Context, parts []string) (store.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return store.Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failure != nil {
		return store.Snapshot{}, s.failure
	}
	v, _ := store.GetAt(s.root, parts)
	key := ""
	if len(parts) > 0 {
		key = parts[len(parts)-1]
	}
	return store.Snapshot{Key: key, Value: store.Clone(v)}, nil
}

func (s *Store) Get(ctx context.Context, path string) (store.Snapshot, error) {
	parts, err := store.Split(path)
	if err != nil {
		return store.Snapshot{}, err
	}
	return s.read(ctx, parts)
}

func (s *Store) Set(ctx context.Context, path string, value any) error {
	parts, err := store.Split(path)
	if err != nil {
		return err
	}
	norm, err := store.Normalize(value)
	if err != nil {
		return err
	}
	if err := s.apply(ctx, func(root any) any {
		return store.SetAt(root, parts, norm)
	}); err != nil {
		return err
	}
	s.hub.NotifyParts(parts)
	return nil
}

func (s *Store) Update(ctx context.Context, path string, fields map[string]any) error {
	base, err := store.Split(path)
	if err != nil {
		return err
	}
	type change struct {
		parts []string
		value any
	}
	changes := make([]change, 0, len(fields))
	for rel, v := range fields {
		relParts, err := store.Split(rel)
		if err != nil {
			return err
		}
		if len(relParts) == 0 {
			return fmt.Errorf("%w: empty update field", store.ErrInvalidPath)
		}
		norm, err := store.Normalize(v)
		if err != nil {
			return err
		}
		abs := append(append([]string{}, base...), relParts...)
		changes = append(changes, change{parts: abs, value: norm})
	}
	if len(changes) == 0 {
		return nil
	}

	if err := s.apply(ctx, func(root any) any {
		for _, c := range changes {
			root = store.SetAt(root, c.parts, c.value)
		}
		return root
	}); err != nil {
		return err
	}
	s.hub.NotifyParts(base)
	return nil
}

func (s *Store) Delete(ctx context.Context, path string) error {
	return s.Set(ctx, path, nil)
}

func (s *Store) Push(ctx context.Context, path string, value any) (string, error) {
	id := s.NewID()
	if err := s.Set(ctx, store.Join(path, id), value); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) NewID() string {
	return s.ids.New()
}

func (s *Store) Subscribe(ctx context.Context, path string, fn store.Listener) (store.Subscription, error) {
	return s.hub.Subscribe(ctx, path, fn)
}

// Subscriptions reports how many path subscriptions are live.
func (s *Store) Subscriptions() int {
	return s.hub.Len()
}

// SetUnavailable simulates a backend outage. While err is non-nil every
// operation fails with it and live subscriptions receive it once.
func (s *Store) SetUnavailable(err error) {
	s.mu.Lock()
	if err != nil {
		err = fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	s.failure = err
	s.mu.Unlock()
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("[Store] memory backend marked unavailable: %v", err)
		}
		s.hub.NotifyAll()
	}
}

func (s *Store) Close() error {
	s.hub.Close()
	return nil
}

func (s *Store) apply(ctx context.Context, fn func(root any) any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return s.failure
	}
	root := fn(s.root)
	if root == nil {
		root = map[string]any{}
	}
	s.root = root
	return nil
}
