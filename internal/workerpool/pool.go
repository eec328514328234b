// Package workerpool wraps a bounded pond pool behind the submit /
// gather / close surface the orchestrator drives. Workers return pure
// values; nothing here touches shared stores.
package workerpool

import (
	"context"
	"fmt"
	"sync"

	"github.com/alitto/pond/v2"
)

// Handle is one submitted unit of work. Get blocks until the unit
// finishes and returns its value; a panic or error inside the callable
// surfaces here, never swallowed.
type Handle[R any] struct {
	task  pond.Task
	value R
}

// Get blocks for the result.
func (h *Handle[R]) Get() (R, error) {
	err := h.task.Wait()
	return h.value, err
}

// Pool is a bounded worker pool collecting pending result handles.
type Pool[R any] struct {
	pool pond.Pool
	sync bool

	mu      sync.Mutex
	pending []*Handle[R]
}

// Option configures a Pool.
type Option func(*options)

type options struct {
	sync      bool
	queueSize int
}

// WithSync makes Execute run the callable inline and return a resolved
// handle, bypassing the pool. Used for debugging runs.
func WithSync() Option {
	return func(o *options) { o.sync = true }
}

// WithQueueSize bounds the pending task queue.
func WithQueueSize(n int) Option {
	return func(o *options) { o.queueSize = n }
}

// New creates a pool with the given concurrency bound.
func New[R any](workers int, opts ...Option) (*Pool[R], error) {
	if workers <= 0 {
		return nil, fmt.Errorf("workerpool: workers must be positive, got %d", workers)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var pondOpts []pond.Option
	if o.queueSize > 0 {
		pondOpts = append(pondOpts, pond.WithQueueSize(o.queueSize))
	}
	return &Pool[R]{
		pool: pond.NewPool(workers, pondOpts...),
		sync: o.sync,
	}, nil
}

// Execute submits a callable. In the default async mode the returned
// handle is also appended to the pending list gathered by Results; in
// sync mode the callable runs before Execute returns.
func (p *Pool[R]) Execute(fn func() (R, error)) *Handle[R] {
	h := &Handle[R]{}
	run := func() error {
		v, err := fn()
		if err != nil {
			return err
		}
		h.value = v
		return nil
	}

	if p.sync {
		h.task = p.pool.SubmitErr(run)
		_ = h.task.Wait()
		return h
	}

	h.task = p.pool.SubmitErr(run)
	p.mu.Lock()
	p.pending = append(p.pending, h)
	p.mu.Unlock()
	return h
}

// Results drains and returns all pending handles in submission order.
func (p *Pool[R]) Results() []*Handle[R] {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.pending
	p.pending = nil
	return out
}

// Close stops accepting work and waits for outstanding tasks.
func (p *Pool[R]) Close() {
	p.pool.StopAndWait()
}

// FanOut runs fn over every input on a bounded pool and gathers results
// in completion order, not submission order. Meant for I/O-bound bulk
// loads where per-task overhead matters more than ordering. The first
// error cancels the remaining tasks and is returned.
func FanOut[T, R any](ctx context.Context, workers int, inputs []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		return nil, fmt.Errorf("workerpool: workers must be positive, got %d", workers)
	}

	pool := pond.NewPool(workers)
	defer pool.StopAndWait()

	group := pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	done := make(chan R, len(inputs))
	for _, in := range inputs {
		group.SubmitErr(func() error {
			r, err := fn(groupCtx, in)
			if err != nil {
				return err
			}
			done <- r
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	close(done)

	out := make([]R, 0, len(inputs))
	for r := range done {
		out = append(out, r)
	}
	return out, nil
}
