package chain

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Source is a polled read binding: it caches the latest value of one
// chain read, refreshes it on an interval, and lets callers force a
// refetch. Polling is suppressed while a write that would touch the value
// is in flight, so a stale pre-write read never overwrites the post-write
// refetch.
type Source[T any] struct {
	name     string
	fetch    func(ctx context.Context) (T, error)
	interval time.Duration
	log      *zap.Logger

	mu        sync.RWMutex
	value     T
	err       error
	fetched   bool
	updatedAt time.Time

	suspendMu sync.Mutex
	suspended int
}

func NewSource[T any](name string, interval time.Duration, fetch func(ctx context.Context) (T, error), log *zap.Logger) *Source[T] {
	return &Source[T]{name: name, fetch: fetch, interval: interval, log: log}
}

// Get returns the cached value. Read errors are surfaced alongside the
// last good value rather than swallowed.
func (s *Source[T]) Get() (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.err
}

// UpdatedAt returns when the value last refreshed successfully.
func (s *Source[T]) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Refetch fetches immediately and replaces the cached value. A failed
// fetch keeps the previous value but records the error.
func (s *Source[T]) Refetch(ctx context.Context) error {
	v, err := s.fetch(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.err = err
		s.log.Warn("source refetch failed", zap.String("source", s.name), zap.Error(err))
		return err
	}
	s.value = v
	s.err = nil
	s.fetched = true
	s.updatedAt = time.Now()
	return nil
}

// Suspend pauses interval polling until the returned resume function is
// called. Resume triggers an immediate refetch so the cache reflects the
// write that caused the suspension. Suspensions nest.
func (s *Source[T]) Suspend() (resume func(ctx context.Context)) {
	s.suspendMu.Lock()
	s.suspended++
	s.suspendMu.Unlock()

	var once sync.Once
	return func(ctx context.Context) {
		once.Do(func() {
			s.suspendMu.Lock()
			s.suspended--
			last := s.suspended == 0
			s.suspendMu.Unlock()
			if last {
				_ = s.Refetch(ctx)
			}
		})
	}
}

func (s *Source[T]) isSuspended() bool {
	s.suspendMu.Lock()
	defer s.suspendMu.Unlock()
	return s.suspended > 0
}

// Run polls on the interval until ctx is cancelled. The first fetch
// happens immediately.
func (s *Source[T]) Run(ctx context.Context) {
	_ = s.Refetch(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.isSuspended() {
				continue
			}
			_ = s.Refetch(ctx)
		}
	}
}
