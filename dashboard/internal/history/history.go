package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/code-nisarg/SunKalp/pkg/telemetry"
)

// Store is a thread-safe rolling window of samples, ordered oldest first.
// A background goroutine (Run) periodically evicts samples older than the
// window.
type Store struct {
	mu      sync.RWMutex
	samples []*telemetry.Sample
	window  time.Duration
}

// New creates a Store retaining samples for the given window.
func New(window time.Duration) *Store {
	return &Store{window: window}
}

// Append adds a sample to the window. Samples are expected in observation
// order; the pollers deliver them that way.
func (s *Store) Append(sample *telemetry.Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, sample)
}

// Latest returns the most recent sample, or nil if the window is empty.
func (s *Store) Latest() *telemetry.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.samples) == 0 {
		return nil
	}
	return s.samples[len(s.samples)-1]
}

// Recent returns all samples observed within the given duration before now,
// oldest first. A duration longer than the store's window returns the whole
// window. The caller supplies now so readers share a single clock.
func (s *Store) Recent(now time.Time, within time.Duration) []*telemetry.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cutoff := now.Add(-within)
	// Samples are time-ordered; find the first one inside the cutoff.
	for i, sample := range s.samples {
		if sample.At.After(cutoff) {
			out := make([]*telemetry.Sample, len(s.samples)-i)
			copy(out, s.samples[i:])
			return out
		}
	}
	return nil
}

// Count returns the number of samples currently held, including any not yet
// evicted.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.samples)
}

// Evict removes samples older than now minus the window. It returns the
// number of samples removed.
func (s *Store) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.window)
	keep := 0
	for keep < len(s.samples) && !s.samples[keep].At.After(cutoff) {
		keep++
	}
	if keep == 0 {
		return 0
	}
	s.samples = append([]*telemetry.Sample(nil), s.samples[keep:]...)
	return keep
}

// Run starts the background eviction loop. It ticks at half the window
// (minimum 1 second) so stale samples are dropped promptly. Run blocks until
// ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.window / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("history: evicted stale samples", "count", n)
			}
		}
	}
}
