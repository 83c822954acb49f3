// Package refresh re-looks-up every leaderboard entry on a schedule so
// stale tiers and league points converge back to reality, using a bounded
// worker pool over the shared rate-limited client.
package refresh

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bits-and-blooms/bloom/v3"

	"rankbook/internal/leaderboard"
	"rankbook/internal/metrics"
	"rankbook/internal/riot"
)

const (
	DefaultWorkerCount = 4

	// How many players can enter the top ten before the announcement
	// filter starts returning false positives.
	announceFilterSize = 100000

	// Entries announced to the webhook come from this many board slots.
	topCutoff = 10
)

// Notifier is the webhook surface the sweeper announces through. Nil-able.
type Notifier interface {
	SendTopEntryNotification(ctx context.Context, obs leaderboard.PlayerObservation, position int) error
	SendSweepSummary(ctx context.Context, refreshed, failed int, took time.Duration) error
}

// Stats summarizes one sweep.
type Stats struct {
	Refreshed int
	Failed    int
	Announced int
	Took      time.Duration
}

// Sweeper walks the leaderboard and re-records every entry.
type Sweeper struct {
	client *riot.Client
	board  *leaderboard.Store
	logger *slog.Logger

	workerCount int
	notifier    Notifier

	// Identity keys already announced to the webhook. A false positive
	// costs one missed announcement, never a duplicate.
	announcedMu sync.Mutex
	announced   *bloom.BloomFilter
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithWorkerCount bounds concurrent lookups inside one sweep.
func WithWorkerCount(n int) Option {
	return func(s *Sweeper) {
		if n > 0 {
			s.workerCount = n
		}
	}
}

// WithNotifier wires a webhook for top-ten announcements and sweep
// summaries.
func WithNotifier(n Notifier) Option {
	return func(s *Sweeper) { s.notifier = n }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sweeper) { s.logger = l }
}

// NewSweeper creates a Sweeper over the shared client and board.
func NewSweeper(client *riot.Client, board *leaderboard.Store, opts ...Option) *Sweeper {
	s := &Sweeper{
		client:      client,
		board:       board,
		logger:      slog.Default(),
		workerCount: DefaultWorkerCount,
		announced:   bloom.NewWithEstimates(announceFilterSize, 0.001),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunOnce refreshes every current board entry and returns sweep stats.
// Lookup failures are counted and logged, never fatal: the stale entry
// simply keeps its last observation.
func (s *Sweeper) RunOnce(ctx context.Context) (Stats, error) {
	start := time.Now()

	entries, err := s.board.Entries(ctx)
	if err != nil {
		return Stats{}, err
	}
	s.logger.Info("starting refresh sweep", "entries", len(entries), "workers", s.workerCount)

	jobs := make(chan leaderboard.PlayerObservation)
	var refreshed, failed atomic.Int64

	var wg sync.WaitGroup
	for i := 0; i < s.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for obs := range jobs {
				if err := s.refreshOne(ctx, obs); err != nil {
					failed.Add(1)
					if !errors.Is(err, context.Canceled) {
						s.logger.Warn("refresh failed",
							"name", obs.DisplayName, "region", obs.Region, "err", err)
					}
					continue
				}
				refreshed.Add(1)
			}
		}()
	}

feed:
	for _, obs := range entries {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- obs:
		}
	}
	close(jobs)
	wg.Wait()

	stats := Stats{
		Refreshed: int(refreshed.Load()),
		Failed:    int(failed.Load()),
		Took:      time.Since(start),
	}
	if ctx.Err() != nil {
		return stats, ctx.Err()
	}

	stats.Announced = s.announceNewTopEntries(ctx)

	metrics.RefreshSweeps.Inc()
	if s.notifier != nil {
		if err := s.notifier.SendSweepSummary(ctx, stats.Refreshed, stats.Failed, stats.Took); err != nil {
			s.logger.Warn("sweep summary notification failed", "err", err)
		}
	}
	s.logger.Info("refresh sweep complete",
		"refreshed", stats.Refreshed, "failed", stats.Failed,
		"announced", stats.Announced, "took", stats.Took)
	return stats, nil
}

// refreshOne re-runs the lookup for one entry and merges the fresh
// standings back into the board.
func (s *Sweeper) refreshOne(ctx context.Context, obs leaderboard.PlayerObservation) error {
	res, err := s.client.LookupPlayer(ctx, obs.DisplayName, obs.Region)
	if err != nil {
		return err
	}
	return s.board.RecordObservation(ctx, res.Identity, obs.Region, res.Standings)
}

// announceNewTopEntries notifies the webhook about players inside the top
// cutoff that have never been announced before.
func (s *Sweeper) announceNewTopEntries(ctx context.Context) int {
	if s.notifier == nil {
		return 0
	}

	view, err := s.board.Entries(ctx)
	if err != nil {
		s.logger.Warn("could not read board for announcements", "err", err)
		return 0
	}
	if len(view) > topCutoff {
		view = view[:topCutoff]
	}

	announced := 0
	for i, obs := range view {
		key := obs.PlayerID + "|" + obs.Region

		s.announcedMu.Lock()
		already := s.announced.TestString(key)
		if !already {
			s.announced.AddString(key)
		}
		s.announcedMu.Unlock()
		if already {
			continue
		}

		if err := s.notifier.SendTopEntryNotification(ctx, obs, i+1); err != nil {
			s.logger.Warn("top entry notification failed", "name", obs.DisplayName, "err", err)
			continue
		}
		announced++
	}
	return announced
}

// RunContinuous sweeps on the given interval until the context is
// cancelled.
func (s *Sweeper) RunContinuous(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("sweep failed", "err", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
