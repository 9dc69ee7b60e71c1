package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"skill-swap/internal/metrics"
)

// Reader loads the current value at a parsed path.
type Reader func(ctx context.Context, parts []string) (Snapshot, error)

// Hub fans write notifications out to path subscriptions. Each subscription
// owns one goroutine, so its deliveries never overlap. Notifications that
// arrive while a read is in flight coalesce into a single re-read, which
// still observes every write that preceded it.
type Hub struct {
	read   Reader
	logger *log.Logger

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*watcher
	closed bool
}

type watcher struct {
	id     uint64
	parts  []string
	fn     Listener
	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

func NewHub(read Reader, logger *log.Logger) *Hub {
	return &Hub{
		read:   read,
		logger: logger,
		subs:   make(map[uint64]*watcher),
	}
}

func (h *Hub) Subscribe(ctx context.Context, path string, fn Listener) (Subscription, error) {
	if h == nil || h.read == nil {
		return nil, ErrUnavailable
	}
	if fn == nil {
		return nil, errors.New("nil listener")
	}
	parts, err := Split(path)
	if err != nil {
		return nil, err
	}

	w := &watcher{
		parts:  parts,
		fn:     fn,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrUnavailable
	}
	h.nextID++
	w.id = h.nextID
	h.subs[w.id] = w
	h.mu.Unlock()
	metrics.StoreSubscriptions.Inc()

	w.signal <- struct{}{}
	go h.loop(ctx, w)

	return SubscriptionFunc(func() { h.remove(w) }), nil
}

func (h *Hub) loop(ctx context.Context, w *watcher) {
	defer h.remove(w)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case <-w.signal:
		}

		snap, err := h.read(ctx, w.parts)

		select {
		case <-w.done:
			return
		default:
		}

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if h.logger != nil {
				h.logger.Printf("[Store] subscription read failed path=%s err=%v", Join(w.parts...), err)
			}
			if !errors.Is(err, ErrUnavailable) {
				err = fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
			w.fn(Snapshot{Key: lastKey(w.parts)}, err)
			return
		}
		w.fn(snap, nil)
	}
}

func (h *Hub) remove(w *watcher) {
	w.once.Do(func() {
		close(w.done)
		h.mu.Lock()
		delete(h.subs, w.id)
		h.mu.Unlock()
		metrics.StoreSubscriptions.Dec()
	})
}

// Notify wakes every subscription whose path overlaps the written path.
func (h *Hub) Notify(path string) {
	parts, err := Split(path)
	if err != nil {
		return
	}
	h.NotifyParts(parts)
}

func (h *Hub) NotifyParts(parts []string) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, w := range h.subs {
		if Overlaps(w.parts, parts) {
			wake(w)
		}
	}
}

// NotifyAll forces every subscription to re-read, which is how backend
// outages reach subscribers.
func (h *Hub) NotifyAll() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, w := range h.subs {
		wake(w)
	}
}

func (h *Hub) Len() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) Close() {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.closed = true
	ws := make([]*watcher, 0, len(h.subs))
	for _, w := range h.subs {
		ws = append(ws, w)
	}
	h.mu.Unlock()

	for _, w := range ws {
		h.remove(w)
	}
}

func wake(w *watcher) {
	select {
	case w.signal <- struct{}{}:
	default:
	}
}

func lastKey(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
