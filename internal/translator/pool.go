package translator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/egorsmkv/kulyk-go/internal/engine"
	"github.com/egorsmkv/kulyk-go/pkg/types"
)

// contextPool owns a fixed set of decoding contexts for one direction.
// A context is checked out to at most one request at a time; requests
// beyond the pool size block in acquire. The free list is a buffered
// channel, so waiting parks on the scheduler instead of spinning.
type contextPool struct {
	direction types.Direction
	free      chan engine.Context
	size      int

	closeOnce sync.Once
}

func newContextPool(d types.Direction, model engine.Model, size int) (*contextPool, error) {
	if size <= 0 {
		size = 1
	}
	p := &contextPool{direction: d, free: make(chan engine.Context, size), size: size}
	for i := 0; i < size; i++ {
		c, err := model.NewContext()
		if err != nil {
			p.close()
			return nil, fmt.Errorf("create context %d: %w", i, err)
		}
		p.free <- c
	}
	return p, nil
}

// acquire checks out a context, blocking until one frees up, the caller's
// context is done, or maxWait elapses (maxWait <= 0 waits indefinitely).
// The context is reset before being handed out so nothing from the
// previous request can leak into this one.
func (p *contextPool) acquire(ctx context.Context, maxWait time.Duration) (*lease, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var timeout <-chan time.Time
	if maxWait > 0 {
		timer := time.NewTimer(maxWait)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case c := <-p.free:
		if err := c.Reset(); err != nil {
			p.free <- c
			return nil, fmt.Errorf("reset context: %w", err)
		}
		contextsInUse.WithLabelValues(p.direction.String()).Inc()
		return &lease{pool: p, ectx: c}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout:
		return nil, tooBusyError{direction: p.direction.String()}
	}
}

// inUse reports how many contexts are currently checked out.
func (p *contextPool) inUse() int { return p.size - len(p.free) }

func (p *contextPool) close() {
	p.closeOnce.Do(func() {
		close(p.free)
		for c := range p.free {
			_ = c.Close()
		}
	})
}

// lease is a scoped checkout of one context. Release is idempotent and
// must run on every exit path; a leaked lease permanently shrinks the
// pool's capacity.
type lease struct {
	pool *contextPool
	ectx engine.Context
	once sync.Once
}

func (l *lease) Context() engine.Context { return l.ectx }

func (l *lease) Release() {
	l.once.Do(func() {
		contextsInUse.WithLabelValues(l.pool.direction.String()).Dec()
		l.pool.free <- l.ectx
	})
}
