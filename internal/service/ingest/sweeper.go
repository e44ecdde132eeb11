package ingest

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultStagingTTL           = time.Hour
	DefaultStagingSweepInterval = 15 * time.Minute
)

// StartStaleSweeper launches a background loop that removes staged files
// older than ttl. Release already runs on every ingestion path; the sweeper
// only catches files orphaned by a crash between staging and release.
func (s *Service) StartStaleSweeper(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 {
		interval = DefaultStagingSweepInterval
	}
	if ttl <= 0 {
		ttl = DefaultStagingTTL
	}
	go s.sweepLoop(ctx, interval, ttl)
}

func (s *Service) sweepLoop(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.sweepStale(ctx, ttl); err != nil {
				s.log.Warn(ctx, "sweep staging dir: %v", err)
			}
		}
	}
}

func (s *Service) sweepStale(ctx context.Context, ttl time.Duration) error {
	entries, err := os.ReadDir(s.staging.Dir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	cutoff := time.Now().Add(-ttl)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.staging.Dir(), entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Warn(ctx, "remove stale staged file %s: %v", path, err)
			continue
		}
		s.log.Debug(ctx, "removed stale staged file: %s", path)
	}
	return nil
}
