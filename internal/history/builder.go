// Package history assembles the bounded match-history context used to prompt
// the generators.
package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/matchcast/internal/models"
	"github.com/yourusername/matchcast/internal/repository"
)

// Backfiller is the narrow surface of the ingestion service the builder
// needs. Both calls are best-effort and return nil on failure.
type Backfiller interface {
	BackfillTeamHistory(ctx context.Context, teamID int64, limit int, sport models.Sport) []*models.MatchRecord
	BackfillHeadToHead(ctx context.Context, teamAID, teamBID int64, limit int, sport models.Sport) []*models.MatchRecord
}

// Config bounds the context lists and the backfill trigger.
type Config struct {
	RecentCap         int
	HeadToHeadCap     int
	BackfillThreshold int
}

// DefaultConfig returns the standard caps.
func DefaultConfig() Config {
	return Config{
		RecentCap:         12,
		HeadToHeadCap:     10,
		BackfillThreshold: 3,
	}
}

type teamKey struct {
	sport  models.Sport
	teamID int64
}

type pairKey struct {
	sport models.Sport
	a, b  int64
}

// Builder constructs HistoryContext values, triggering at most one provider
// backfill per team (and per pair) over its lifetime. The memo is an
// optimization with no persistence guarantee; repeated backfill after a
// restart is wasteful but safe.
type Builder struct {
	matchRepo  repository.MatchRepository
	backfiller Backfiller
	cfg        Config
	logger     *logrus.Logger

	mu             sync.Mutex
	backfilledTeam map[teamKey]struct{}
	backfilledPair map[pairKey]struct{}
}

// NewBuilder creates a history context builder.
func NewBuilder(matchRepo repository.MatchRepository, backfiller Backfiller, cfg Config, logger *logrus.Logger) *Builder {
	if cfg.RecentCap <= 0 {
		cfg = DefaultConfig()
	}
	return &Builder{
		matchRepo:      matchRepo,
		backfiller:     backfiller,
		cfg:            cfg,
		logger:         logger,
		backfilledTeam: make(map[teamKey]struct{}),
		backfilledPair: make(map[pairKey]struct{}),
	}
}

// Build assembles the history context for the target contest. All lists are
// strictly older than the contest date (or unconstrained when the date is
// unknown), ordered most-recent-first.
func (b *Builder) Build(ctx context.Context, match *models.MatchRecord) (*models.HistoryContext, error) {
	homeRecent, err := b.teamRecent(ctx, match, match.HomeTeamName, match.HomeTeamID)
	if err != nil {
		return nil, err
	}
	awayRecent, err := b.teamRecent(ctx, match, match.AwayTeamName, match.AwayTeamID)
	if err != nil {
		return nil, err
	}
	headToHead, err := b.headToHead(ctx, match)
	if err != nil {
		return nil, err
	}

	return &models.HistoryContext{
		Sport:        match.Sport,
		HomeTeamName: match.HomeTeamName,
		AwayTeamName: match.AwayTeamName,
		HomeRecent:   homeRecent,
		AwayRecent:   awayRecent,
		HeadToHead:   headToHead,
	}, nil
}

func (b *Builder) teamRecent(ctx context.Context, match *models.MatchRecord, teamName string, teamID *int64) ([]*models.MatchRecord, error) {
	recent, err := b.matchRepo.GetTeamRecentMatches(ctx, match.Sport, teamName, match.ID, match.Date, b.cfg.RecentCap)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent matches for %s: %w", teamName, err)
	}

	if countUsable(recent) >= b.cfg.BackfillThreshold || teamID == nil {
		return recent, nil
	}
	if !b.claimTeam(match.Sport, *teamID) {
		return recent, nil
	}

	b.logger.WithFields(logrus.Fields{
		"sport":   match.Sport,
		"team":    teamName,
		"team_id": *teamID,
		"local":   len(recent),
	}).Info("Sparse local history, backfilling team")

	b.backfiller.BackfillTeamHistory(ctx, *teamID, b.cfg.RecentCap, match.Sport)

	recent, err = b.matchRepo.GetTeamRecentMatches(ctx, match.Sport, teamName, match.ID, match.Date, b.cfg.RecentCap)
	if err != nil {
		return nil, fmt.Errorf("failed to re-query recent matches for %s: %w", teamName, err)
	}
	return recent, nil
}

func (b *Builder) headToHead(ctx context.Context, match *models.MatchRecord) ([]*models.MatchRecord, error) {
	h2h, err := b.matchRepo.GetHeadToHead(ctx, match.Sport, match.HomeTeamName, match.AwayTeamName, match.ID, match.Date, b.cfg.HeadToHeadCap)
	if err != nil {
		return nil, fmt.Errorf("failed to query head-to-head: %w", err)
	}

	if countUsable(h2h) >= b.cfg.BackfillThreshold || match.HomeTeamID == nil || match.AwayTeamID == nil {
		return h2h, nil
	}
	if !b.claimPair(match.Sport, *match.HomeTeamID, *match.AwayTeamID) {
		return h2h, nil
	}

	b.logger.WithFields(logrus.Fields{
		"sport": match.Sport,
		"home":  match.HomeTeamName,
		"away":  match.AwayTeamName,
	}).Info("Sparse head-to-head history, backfilling pair")

	b.backfiller.BackfillHeadToHead(ctx, *match.HomeTeamID, *match.AwayTeamID, b.cfg.HeadToHeadCap, match.Sport)

	h2h, err = b.matchRepo.GetHeadToHead(ctx, match.Sport, match.HomeTeamName, match.AwayTeamName, match.ID, match.Date, b.cfg.HeadToHeadCap)
	if err != nil {
		return nil, fmt.Errorf("failed to re-query head-to-head: %w", err)
	}
	return h2h, nil
}

// claimTeam marks the team as backfilled, returning false when another call
// already claimed it.
func (b *Builder) claimTeam(sport models.Sport, teamID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := teamKey{sport: sport, teamID: teamID}
	if _, done := b.backfilledTeam[key]; done {
		return false
	}
	b.backfilledTeam[key] = struct{}{}
	return true
}

func (b *Builder) claimPair(sport models.Sport, a, b2 int64) bool {
	if a > b2 {
		a, b2 = b2, a
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	key := pairKey{sport: sport, a: a, b: b2}
	if _, done := b.backfilledPair[key]; done {
		return false
	}
	b.backfilledPair[key] = struct{}{}
	return true
}

func countUsable(matches []*models.MatchRecord) int {
	usable := 0
	for _, m := range matches {
		if m.HasResult() {
			usable++
		}
	}
	return usable
}
