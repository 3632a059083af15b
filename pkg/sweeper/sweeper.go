// Package sweeper runs the background eviction loop for expired sessions
// when the dev-only in-memory SessionStore fallback is in use (§4.1, C15).
// It only evicts expired entries; it does not cancel abandoned checkouts.
package sweeper

import (
	"context"
	"log/slog"
	"time"
)

// Sweepable is implemented by a session store able to evict its own expired
// entries on demand. session.MemoryStore implements this; the Redis-backed
// store relies on native TTL expiry instead and is never swept.
type Sweepable interface {
	Sweep() (evicted int)
}

// Service periodically sweeps expired sessions. All operations are
// idempotent and safe to run from a single replica (the in-memory store it
// sweeps is itself single-replica by construction).
type Service struct {
	store    Sweepable
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	logger *slog.Logger
}

// NewService creates a sweeper over store, ticking every interval.
func NewService(store Sweepable, interval time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, interval: interval, logger: logger}
}

// Start launches the background sweep loop. A no-op if already running.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)
	s.logger.Info("sweeper started", "interval", s.interval)
}

// Stop signals the sweep loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.logger.Info("sweeper stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

func (s *Service) sweepOnce() {
	evicted := s.store.Sweep()
	if evicted > 0 {
		s.logger.Info("sweeper: evicted expired sessions", "count", evicted)
	}
}
