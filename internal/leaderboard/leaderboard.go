// Package leaderboard maintains the ranked, deduplicated, size-capped set
// of every player successfully looked up with a solo-queue standing. The
// whole board lives under one blob key; every mutation is a read-modify-
// write of the full sequence.
package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"rankbook/internal/blobstore"
	"rankbook/internal/metrics"
	"rankbook/internal/riot"
)

const (
	// StorageKey is the well-known blob key the board persists under.
	StorageKey = "rankbook-leaderboard"

	// MaxEntries caps the persisted board.
	MaxEntries = 100

	// RegionAll selects every region in FilteredView.
	RegionAll = "all"
)

// PlayerObservation is one persisted board entry. Score is derived from
// tier, division and league points; identity for dedup is (PlayerID,
// Region).
type PlayerObservation struct {
	PlayerID      string    `json:"playerId"`
	DisplayName   string    `json:"displayName"`
	Region        string    `json:"region"`
	Tier          string    `json:"tier"`
	Division      string    `json:"division"`
	LeaguePoints  int       `json:"leaguePoints"`
	Wins          int       `json:"wins"`
	Losses        int       `json:"losses"`
	ProfileIconID int       `json:"profileIconId"`
	Level         int       `json:"level"`
	Score         int       `json:"score"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// Score derives the total-order ranking value: tier dominates division,
// division dominates league points. Unknown tiers and absent divisions
// (apex tiers) contribute zero.
func Score(tier, division string, leaguePoints int) int {
	return riot.TierRank[tier]*1000 + riot.DivisionRank[division]*100 + leaguePoints
}

// Store merges observations into the persisted board. The mutex serializes
// the read-modify-write so concurrent observations cannot lose updates.
type Store struct {
	mu     sync.Mutex
	blobs  blobstore.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a Store over the given persistence collaborator.
func NewStore(blobs blobstore.Store) *Store {
	return &Store{
		blobs:  blobs,
		logger: slog.Default(),
		now:    time.Now,
	}
}

// WithLogger replaces the default logger.
func (s *Store) WithLogger(l *slog.Logger) *Store {
	s.logger = l
	return s
}

// WithClock replaces the clock. Used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// RecordObservation merges one successful lookup into the board. Players
// without a RANKED_SOLO_5x5 standing are not tracked and leave the board
// untouched.
func (s *Store) RecordObservation(ctx context.Context, identity *riot.SummonerResponse, region string, standings []riot.LeagueEntryResponse) error {
	solo, ok := riot.SoloQueueEntry(standings)
	if !ok {
		s.logger.Debug("player unranked in solo queue, not recorded", "name", identity.Name, "region", region)
		return nil
	}

	obs := PlayerObservation{
		PlayerID:      identity.ID,
		DisplayName:   identity.Name,
		Region:        region,
		Tier:          solo.Tier,
		Division:      solo.Rank,
		LeaguePoints:  solo.LeaguePoints,
		Wins:          solo.Wins,
		Losses:        solo.Losses,
		ProfileIconID: identity.ProfileIconID,
		Level:         identity.SummonerLevel,
		Score:         Score(solo.Tier, solo.Rank, solo.LeaguePoints),
		LastUpdated:   s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return err
	}

	merged := merge(entries, obs)
	if err := s.persist(ctx, merged); err != nil {
		return err
	}

	metrics.LeaderboardUpserts.Inc()
	s.logger.Info("recorded observation",
		"name", obs.DisplayName, "region", obs.Region,
		"tier", obs.Tier, "division", obs.Division, "score", obs.Score,
		"board_size", len(merged))
	return nil
}

// merge upserts obs into entries: the prior entry with the same identity
// key is removed, the new one appended, the sequence stably re-sorted by
// descending score and truncated to MaxEntries. The stable sort keeps
// equal-score entries in their prior relative order, with the newcomer
// last among its ties.
func merge(entries []PlayerObservation, obs PlayerObservation) []PlayerObservation {
	out := make([]PlayerObservation, 0, len(entries)+1)
	for _, e := range entries {
		if e.PlayerID == obs.PlayerID && e.Region == obs.Region {
			continue
		}
		out = append(out, e)
	}
	out = append(out, obs)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if len(out) > MaxEntries {
		out = out[:MaxEntries]
	}
	return out
}

// FilteredView returns the persisted board, optionally restricted to one
// region. Order is the stored score-descending order.
func (s *Store) FilteredView(ctx context.Context, region string) ([]PlayerObservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if region == RegionAll || region == "" {
		return entries, nil
	}

	filtered := make([]PlayerObservation, 0, len(entries))
	for _, e := range entries {
		if e.Region == region {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// Entries returns the full persisted board. The refresh sweep iterates it.
func (s *Store) Entries(ctx context.Context) ([]PlayerObservation, error) {
	return s.FilteredView(ctx, RegionAll)
}

func (s *Store) load(ctx context.Context) ([]PlayerObservation, error) {
	raw, ok, err := s.blobs.Read(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var entries []PlayerObservation
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %w", err)
	}
	return entries, nil
}

func (s *Store) persist(ctx context.Context, entries []PlayerObservation) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode leaderboard: %w", err)
	}
	if err := s.blobs.Write(ctx, StorageKey, string(b)); err != nil {
		return fmt.Errorf("failed to write leaderboard: %w", err)
	}
	return nil
}
