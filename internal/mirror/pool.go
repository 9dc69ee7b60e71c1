package mirror

import (
	"context"
	"log"
	"sync"
	"time"

	"skill-swap/internal/metrics"

	"github.com/cespare/xxhash/v2"
)

type Task func(ctx context.Context) error

type Result struct {
	Name string
	Err  error
}

type job struct {
	name string
	task Task
}

// Pool runs remote mirror writes in the background on a fixed number of
// lanes, one worker each. Tasks submitted with the same key always share a
// lane and run in submission order. Submit never blocks: when a lane is full
// the task is dropped and counted, because the local write it mirrors has
// already succeeded.
type Pool struct {
	workers int
	timeout time.Duration
	lanes   []chan job
	wg      sync.WaitGroup
	mu      sync.RWMutex
	rate    <-chan time.Time
	ticker  *time.Ticker
	closed  bool
	logger  *log.Logger
}

func NewPool(workers, buffer int, timeout time.Duration, logger *log.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	perLane := 0
	if buffer > 0 {
		perLane = max(buffer/workers, 1)
	}
	lanes := make([]chan job, workers)
	for i := range lanes {
		lanes[i] = make(chan job, perLane)
	}
	return &Pool{
		workers: workers,
		timeout: timeout,
		lanes:   lanes,
		logger:  logger,
	}
}

func (p *Pool) SetRateLimit(rps int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
		p.rate = nil
	}
	p.mu.Unlock()
	if rps <= 0 {
		return
	}
	interval := time.Second / time.Duration(rps)
	t := time.NewTicker(interval)
	p.mu.Lock()
	p.ticker = t
	p.rate = t.C
	p.mu.Unlock()
}

func (p *Pool) lane(key string) chan job {
	return p.lanes[xxhash.Sum64String(key)%uint64(len(p.lanes))]
}

// Submit queues t on the lane owned by key.
func (p *Pool) Submit(key, name string, t Task) bool {
	if p == nil || t == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.lane(key) <- job{name: name, task: t}:
		return true
	default:
		metrics.MirrorDropped.Inc()
		if p.logger != nil {
			p.logger.Printf("[Mirror] queue full, dropping task=%s", name)
		}
		return false
	}
}

func (p *Pool) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
		p.rate = nil
	}
	if !p.closed {
		p.closed = true
		for _, l := range p.lanes {
			close(l)
		}
	}
	p.mu.Unlock()
}

// Wait blocks until every worker started by Run has exited.
func (p *Pool) Wait() {
	if p == nil {
		return
	}
	p.wg.Wait()
}

func (p *Pool) Run(ctx context.Context) <-chan Result {
	if p == nil {
		out := make(chan Result)
		close(out)
		return out
	}
	out := make(chan Result, p.workers*64)

	p.wg.Add(len(p.lanes))
	for _, tasks := range p.lanes {
		go func(tasks <-chan job) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-tasks:
					if !ok {
						return
					}
					if j.task == nil {
						continue
					}
					p.mu.RLock()
					rate := p.rate
					p.mu.RUnlock()
					if rate != nil {
						select {
						case <-ctx.Done():
							return
						case <-rate:
						}
					}
					err := p.exec(ctx, j.task)
					select {
					case <-ctx.Done():
						return
					case out <- Result{Name: j.name, Err: err}:
					}
				}
			}
		}(tasks)
	}

	go func() {
		p.wg.Wait()
		close(out)
	}()

	return out
}

func (p *Pool) exec(ctx context.Context, t Task) error {
	if p.timeout <= 0 {
		return t(ctx)
	}
	tctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return t(tctx)
}

// Drain logs failed results until the pool's result channel closes.
func Drain(results <-chan Result, logger *log.Logger) {
	for r := range results {
		if r.Err != nil && logger != nil {
			logger.Printf("[Mirror] task failed task=%s err=%v", r.Name, r.Err)
		}
	}
}
