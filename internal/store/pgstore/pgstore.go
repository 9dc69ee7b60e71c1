package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"skill-swap/internal/database"
	"skill-swap/internal/store"
)

const (
	Table         = "tree_nodes"
	NotifyChannel = "tree_changes"
	listenRetry   = 2 * time.Second
)

// Notifier delivers payloads published with pg_notify on a channel until ctx
// ends or the connection drops.
type Notifier interface {
	Listen(ctx context.Context, channel string, handle func(payload string)) error
}

// Store persists the tree in Postgres as one JSONB document per second-level
// node: /users/{id} is a row, /users is the set of rows sharing a root.
// Commits publish the written path on NotifyChannel so every process
// sharing the database wakes its own subscriptions.
type Store struct {
	db       database.DB
	notifier Notifier
	hub      *store.Hub
	ids      *store.IDGenerator
	logger   *log.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(db database.DB, notifier Notifier, logger *log.Logger) *Store {
	s := &Store{
		db:       db,
		notifier: notifier,
		ids:      store.NewIDGenerator(),
		logger:   logger,
	}
	s.hub = store.NewHub(s.read, logger)
	return s
}

// Start begins consuming change notifications. Without a notifier only
// writes made through this Store wake subscriptions.
func (s *Store) Start(ctx context.Context) {
	if s == nil || s.notifier == nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go s.listen(ctx)
}

func (s *Store) listen(ctx context.Context) {
	defer s.wg.Done()
	for {
		err := s.notifier.Listen(ctx, NotifyChannel, s.hub.Notify)
		if ctx.Err() != nil {
			return
		}
		if s.logger != nil {
			s.logger.Printf("[Store] LISTEN %s dropped, resyncing subscribers: %v", NotifyChannel, err)
		}
		s.hub.NotifyAll()

		select {
		case <-ctx.Done():
			return
		case <-time.After(listenRetry):
		}
	}
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.hub.Close()
	return nil
}

func (s *Store) Get(ctx context.Context, path string) (store.Snapshot, error) {
	parts, err := store.Split(path)
	if err != nil {
		return store.Snapshot{}, err
	}
	return s.read(ctx, parts)
}

func (s *Store) read(ctx context.Context, parts []string) (store.Snapshot, error) {
	switch len(parts) {
	case 0:
		return store.Snapshot{}, fmt.Errorf("%w: root is not readable", store.ErrInvalidPath)
	case 1:
		return s.readCollection(ctx, parts[0])
	}

	var raw string
	err := s.db.QueryRow(
		ctx,
		`SELECT doc::text FROM tree_nodes WHERE root = $1 AND key = $2`,
		parts[0],
		parts[1],
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return store.Snapshot{Key: parts[len(parts)-1]}, nil
		}
		return store.Snapshot{}, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	doc, err := store.DecodeJSON([]byte(raw))
	if err != nil {
		return store.Snapshot{}, err
	}
	v, _ := store.GetAt(doc, parts[2:])
	return store.Snapshot{Key: parts[len(parts)-1], Value: v}, nil
}

func (s *Store) readCollection(ctx context.Context, root string) (store.Snapshot, error) {
	rows, err := s.db.Query(ctx, `SELECT key, doc::text FROM tree_nodes WHERE root = $1`, root)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	defer rows.Close()

	out := map[string]any{}
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return store.Snapshot{}, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
		}
		doc, err := store.DecodeJSON([]byte(raw))
		if err != nil {
			return store.Snapshot{}, err
		}
		if doc != nil {
			out[key] = doc
		}
	}
	if err := rows.Err(); err != nil {
		return store.Snapshot{}, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	if len(out) == 0 {
		return store.Snapshot{Key: root}, nil
	}
	return store.Snapshot{Key: root, Value: out}, nil
}

type change struct {
	parts []string
	value any
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
	return s.mutate(ctx, []change{{parts: parts, value: norm}})
}

func (s *Store) Update(ctx context.Context, path string, fields map[string]any) error {
	base, err := store.Split(path)
	if err != nil {
		return err
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
		changes = append(changes, change{parts: append(append([]string{}, base...), relParts...), value: norm})
	}
	if len(changes) == 0 {
		return nil
	}
	// Stable lock order across concurrent multi-document updates.
	sort.Slice(changes, func(i, j int) bool {
		return store.Join(changes[i].parts...) < store.Join(changes[j].parts...)
	})
	return s.mutate(ctx, changes)
}

func (s *Store) Delete(ctx context.Context, path string) error {
	parts, err := store.Split(path)
	if err != nil {
		return err
	}
	return s.mutate(ctx, []change{{parts: parts}})
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

func (s *Store) mutate(ctx context.Context, changes []change) error {
	if s == nil || s.db == nil {
		return store.ErrUnavailable
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, c := range changes {
		if err := applyChange(ctx, tx, c); err != nil {
			return err
		}
	}

	for _, c := range changes {
		if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, NotifyChannel, store.Join(c.parts...)); err != nil {
			return fmt.Errorf("%w: notify: %v", store.ErrUnavailable, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", store.ErrUnavailable, err)
	}

	if s.notifier == nil {
		for _, c := range changes {
			s.hub.NotifyParts(c.parts)
		}
	}
	return nil
}

func applyChange(ctx context.Context, tx database.Tx, c change) error {
	switch len(c.parts) {
	case 0:
		return fmt.Errorf("%w: root is not writable", store.ErrInvalidPath)
	case 1:
		root := c.parts[0]
		if _, err := tx.Exec(ctx, `DELETE FROM tree_nodes WHERE root = $1`, root); err != nil {
			return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
		}
		if c.value == nil {
			return nil
		}
		m, ok := c.value.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: /%s must hold an object", store.ErrInvalidPath, root)
		}
		for key, doc := range m {
			if err := upsertDoc(ctx, tx, root, key, doc); err != nil {
				return err
			}
		}
		return nil
	}

	root, key := c.parts[0], c.parts[1]
	var doc any
	var raw string
	err := tx.QueryRow(
		ctx,
		`SELECT doc::text FROM tree_nodes WHERE root = $1 AND key = $2 FOR UPDATE`,
		root,
		key,
	).Scan(&raw)
	switch {
	case err == nil:
		doc, err = store.DecodeJSON([]byte(raw))
		if err != nil {
			return err
		}
	case errors.Is(err, database.ErrNoRows):
	default:
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	doc = store.SetAt(doc, c.parts[2:], c.value)
	if doc == nil {
		if _, err := tx.Exec(ctx, `DELETE FROM tree_nodes WHERE root = $1 AND key = $2`, root, key); err != nil {
			return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
		}
		return nil
	}
	return upsertDoc(ctx, tx, root, key, doc)
}

func upsertDoc(ctx context.Context, tx database.Tx, root, key string, doc any) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", root, key, err)
	}
	_, err = tx.Exec(
		ctx,
		`INSERT INTO tree_nodes (root, key, doc, updated_at)
		 VALUES ($1, $2, $3::jsonb, now())
		 ON CONFLICT (root, key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		root,
		key,
		string(b),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}
