package pipeline

import (
	"context"
	"sync"

	"github.com/estensen/wallet-wrapped/internal/metrics"
)

// Session serialises interactive requests: starting a new computation
// cancels the previous one and any result it still produces is dropped.
type Session struct {
	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

func (s *Session) begin(parent context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.generation++
	s.cancel = cancel
	return ctx, s.generation
}

// finish reports whether gen is still the latest generation and releases its
// context if so. then, when set, runs under the lock so that no newer
// generation can begin until it returns. A stale generation is counted as
// discarded.
func (s *Session) finish(gen uint64, then func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		metrics.StaleResultsDiscarded.Inc()
		return false
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if then != nil {
		then()
	}
	return true
}

// Generation returns the number of computations started so far.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Latest runs compute as the newest generation of s. ok is false when a
// later call superseded this one; the result is then discarded.
func Latest[T any](ctx context.Context, s *Session, compute func(context.Context) (T, error)) (T, bool, error) {
	runCtx, gen := s.begin(ctx)
	result, err := compute(runCtx)

	if !s.finish(gen, nil) {
		var zero T
		return zero, false, nil
	}
	return result, true, err
}

// Go starts compute in the background as the newest generation of s. The
// generation is taken before Go returns, so calls order by invocation.
// deliver runs with the session locked and only for the current generation;
// it must not call back into s. The returned channel is closed once the
// background work is done.
func Go[T any](ctx context.Context, s *Session, compute func(context.Context) (T, error), deliver func(T, error)) <-chan struct{} {
	runCtx, gen := s.begin(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		result, err := compute(runCtx)
		s.finish(gen, func() { deliver(result, err) })
	}()
	return done
}
