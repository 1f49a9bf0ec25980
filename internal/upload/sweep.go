package upload

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// SweepReport summarizes one retention sweep.
type SweepReport struct {
	Scanned int
	Removed []string
	Failed  map[string]error
}

// Sweeper deletes uploads older than the retention window.
type Sweeper struct {
	dir     string
	maxAge  time.Duration
	logger  zerolog.Logger
	now     func() time.Time
	running atomic.Bool
}

// NewSweeper creates a Sweeper for dir.
func NewSweeper(dir string, maxAge time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		dir:    dir,
		maxAge: maxAge,
		logger: logger.With().Str("component", "sweeper").Logger(),
		now:    time.Now,
	}
}

// Sweep removes every regular file whose modification time is older than
// the cutoff. Per-file failures are logged and collected; they never stop
// the sweep.
func (s *Sweeper) Sweep(ctx context.Context) SweepReport {
	report := SweepReport{Failed: map[string]error{}}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Error().Err(err).Str("dir", s.dir).Msg("file cleanup error")
		report.Failed[s.dir] = err
		return report
	}

	cutoff := s.now().Add(-s.maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !entry.Type().IsRegular() {
			continue
		}
		report.Scanned++

		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("file", entry.Name()).Msg("failed to remove old file")
			report.Failed[entry.Name()] = err
			continue
		}
		report.Removed = append(report.Removed, entry.Name())
		s.logger.Info().Str("file", entry.Name()).Msg("cleaned up old file")
	}
	return report
}

// Trigger starts a sweep in the background unless one is already running.
// It reports whether a sweep was started.
func (s *Sweeper) Trigger() bool {
	if !s.running.CompareAndSwap(false, true) {
		return false
	}
	go func() {
		defer s.running.Store(false)
		s.Sweep(context.Background())
	}()
	return true
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if s.running.CompareAndSwap(false, true) {
				s.Sweep(ctx)
				s.running.Store(false)
			}
		}
	}
}
