package resolver

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"skill-swap/internal/async"
	"skill-swap/internal/metrics"
	"skill-swap/internal/store"

	"golang.org/x/sync/errgroup"
)

const DefaultTimeout = 10 * time.Second

type Decoder[T any] func(key string, raw any) (T, error)

// Resolver turns a list of ids into entities by reading each id's path once
// and joining the results. Ids that do not exist, fail to decode, or fail
// to load are omitted; the join still completes.
type Resolver[T any] struct {
	store   store.Store
	path    func(id string) string
	decode  Decoder[T]
	timeout time.Duration
	logger  *log.Logger
	kind    string
}

type Option[T any] func(*Resolver[T])

func WithTimeout[T any](d time.Duration) Option[T] {
	return func(r *Resolver[T]) { r.timeout = d }
}

func WithLogger[T any](l *log.Logger) Option[T] {
	return func(r *Resolver[T]) { r.logger = l }
}

func New[T any](s store.Store, kind string, path func(id string) string, decode Decoder[T], opts ...Option[T]) *Resolver[T] {
	r := &Resolver[T]{
		store:   s,
		path:    path,
		decode:  decode,
		timeout: DefaultTimeout,
		kind:    kind,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve publishes exactly one update: the entities found for ids, in the
// order the ids were given, with duplicates collapsed. If ctx ends or the
// timeout elapses first, the update carries what was resolved so far and
// the context error.
func (r *Resolver[T]) Resolve(ctx context.Context, ids []string) *async.Value[[]T] {
	out := async.New[[]T]()
	ids = dedupe(ids)
	if len(ids) == 0 {
		out.Publish([]T{})
		return out
	}

	var cancel context.CancelFunc
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	out.OnClose(cancel)

	go func() {
		defer cancel()
		items, err := r.join(ctx, ids)
		if err != nil {
			out.Fail(items, err)
			return
		}
		out.Publish(items)
	}()

	return out
}

func (r *Resolver[T]) join(ctx context.Context, ids []string) ([]T, error) {
	start := time.Now()
	slots := make([]*T, len(ids))
	loadErrs := make([]error, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			v, err := r.first(gctx, id)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				loadErrs[i] = err
				return nil
			}
			slots[i] = v
			return nil
		})
	}
	waitErr := g.Wait()

	items := make([]T, 0, len(ids))
	missing := 0
	for _, v := range slots {
		if v == nil {
			missing++
			continue
		}
		items = append(items, *v)
	}
	metrics.ResolverMissing.Add(float64(missing))

	if waitErr != nil {
		metrics.ObserveResolve("timeout", start)
		if r.logger != nil {
			r.logger.Printf("[Resolver] %s join incomplete resolved=%d/%d err=%v", r.kind, len(items), len(ids), waitErr)
		}
		return items, waitErr
	}

	if err := errors.Join(loadErrs...); err != nil {
		metrics.ObserveResolve("partial", start)
		return items, err
	}
	metrics.ObserveResolve("ok", start)
	return items, nil
}

// first waits for the initial delivery for id and releases the
// subscription. A nil entity with nil error means the id is absent or
// unreadable as T.
func (r *Resolver[T]) first(ctx context.Context, id string) (*T, error) {
	type delivery struct {
		snap store.Snapshot
		err  error
	}
	ch := make(chan delivery, 1)
	var once sync.Once

	sub, err := r.store.Subscribe(ctx, r.path(id), func(snap store.Snapshot, err error) {
		once.Do(func() { ch <- delivery{snap: snap, err: err} })
	})
	if err != nil {
		if errors.Is(err, store.ErrInvalidPath) {
			return nil, nil
		}
		return nil, err
	}
	defer sub.Cancel()

	select {
	case d := <-ch:
		if d.err != nil {
			return nil, d.err
		}
		if !d.snap.Exists() {
			return nil, nil
		}
		v, err := r.decode(id, d.snap.Value)
		if err != nil {
			if r.logger != nil {
				r.logger.Printf("[Resolver] skipping %s %s: %v", r.kind, id, err)
			}
			return nil, nil
		}
		return &v, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
