package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/splitpay/splitpay/internal/storage"
)

// Sweeper periodically reclaims memory by removing splits that reached a
// terminal status longer than maxAge ago. Active splits are never touched.
type Sweeper struct {
	store    storage.Store
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewSweeper creates a sweeper that runs every interval and removes
// terminal splits older than maxAge.
func NewSweeper(store storage.Store, interval, maxAge time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		maxAge:   maxAge,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start launches the background sweep loop. Calling Start on a running
// sweeper is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				s.Sweep(runCtx)
			}
		}
	}()

	slog.Info("Sweeper started", "interval", s.interval, "max_age", s.maxAge)
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
	slog.Info("Sweeper stopped")
}

// Sweep runs a single pass and returns the number of splits removed.
func (s *Sweeper) Sweep(ctx context.Context) int {
	splits, err := s.store.All(ctx)
	if err != nil {
		slog.Error("Sweep failed to list splits", "error", err)
		return 0
	}

	cutoff := s.now().Add(-s.maxAge)
	removed := 0
	for _, split := range splits {
		if !split.Status.Terminal() || split.UpdatedAt.After(cutoff) {
			continue
		}
		if err := s.store.Remove(ctx, split.ID); err != nil {
			slog.Warn("Sweep failed to remove split", "id", split.ID, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		slog.Info("Sweep removed terminal splits", "count", removed)
	}
	return removed
}
