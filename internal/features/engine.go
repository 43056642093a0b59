// Package features derives rolling team-performance features from match
// history.
package features

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/matchcast/internal/metrics"
	"github.com/yourusername/matchcast/internal/models"
	"github.com/yourusername/matchcast/internal/repository"
)

const (
	// formWindowDays bounds how far back qualifying matches may lie.
	formWindowDays = 365
	// formMatchCap bounds how many qualifying matches contribute.
	formMatchCap = 10
	// queryLimit oversamples the store query so unscored rows do not starve
	// the window of scored ones.
	queryLimit = 50
)

// TeamFeatures holds the two derived numbers for one team.
type TeamFeatures struct {
	Form       float64
	ScoringAvg float64
}

// Engine computes and caches feature records per contest.
type Engine struct {
	matchRepo   repository.MatchRepository
	featureRepo repository.FeatureRepository
	cache       *cache.Cache
	ttl         time.Duration
	logger      *logrus.Logger
	mu          sync.Mutex
	hits        uint64
	misses      uint64
}

// NewEngine creates a feature engine with an in-memory TTL cache.
func NewEngine(matchRepo repository.MatchRepository, featureRepo repository.FeatureRepository, ttl time.Duration, logger *logrus.Logger) *Engine {
	return &Engine{
		matchRepo:   matchRepo,
		featureRepo: featureRepo,
		cache:       cache.New(ttl, ttl*2),
		ttl:         ttl,
		logger:      logger,
	}
}

// GetOrCompute returns the cached feature record for the contest, computing
// and overwriting it when absent or expired.
func (e *Engine) GetOrCompute(ctx context.Context, match *models.MatchRecord) (*models.FeatureRecord, error) {
	key := strconv.FormatInt(match.ID, 10)
	if cached, found := e.cache.Get(key); found {
		e.recordCacheHit(true)
		if record, ok := cached.(*models.FeatureRecord); ok {
			return record, nil
		}
	}
	e.recordCacheHit(false)

	// The store survives restarts, so a fresh persisted record beats a
	// recompute. Stale or missing rows fall through to Compute.
	if stored, err := e.featureRepo.GetByContestID(ctx, match.ID); err == nil && stored != nil {
		if time.Since(stored.ComputedAt) < e.ttl {
			e.cache.SetDefault(key, stored)
			return stored, nil
		}
	} else if err != nil && !errors.Is(err, models.ErrNotFound) {
		e.logger.WithError(err).WithField("contest_id", match.ID).Warn("Failed to read persisted features")
	}

	record, err := e.Compute(ctx, match)
	if err != nil {
		return nil, err
	}

	e.cache.SetDefault(key, record)
	if err := e.featureRepo.Upsert(ctx, record); err != nil {
		// Persistence is an optimization; the computed record is still good.
		e.logger.WithError(err).WithField("contest_id", match.ID).Warn("Failed to persist features")
	}
	return record, nil
}

// Compute derives a fresh feature record for the contest. Recomputation over
// an unchanged match set is idempotent.
func (e *Engine) Compute(ctx context.Context, match *models.MatchRecord) (*models.FeatureRecord, error) {
	if match.HomeTeamName == "" || match.AwayTeamName == "" {
		return nil, fmt.Errorf("%w: contest %d has unresolved team names", models.ErrNoFeatures, match.ID)
	}

	home, err := e.teamFeatures(ctx, match, match.HomeTeamName)
	if err != nil {
		return nil, err
	}
	away, err := e.teamFeatures(ctx, match, match.AwayTeamName)
	if err != nil {
		return nil, err
	}

	metrics.FeatureComputationsTotal.Inc()

	return &models.FeatureRecord{
		ContestID:      match.ID,
		Sport:          match.Sport,
		HomeForm:       home.Form,
		AwayForm:       away.Form,
		HomeScoringAvg: home.ScoringAvg,
		AwayScoringAvg: away.ScoringAvg,
		ComputedAt:     time.Now().UTC(),
	}, nil
}

func (e *Engine) teamFeatures(ctx context.Context, match *models.MatchRecord, teamName string) (TeamFeatures, error) {
	matches, err := e.matchRepo.GetTeamRecentMatches(ctx, match.Sport, teamName, match.ID, match.Date, queryLimit)
	if err != nil {
		return TeamFeatures{}, fmt.Errorf("failed to load history for %s: %w", teamName, err)
	}

	reference := time.Now().UTC()
	if match.Date != nil {
		reference = *match.Date
	}
	return ComputeTeamFeatures(matches, teamName, reference), nil
}

// ComputeTeamFeatures derives {form, scoringAvg} for one team as of the
// reference date. A team with no qualifying matches yields {0, 0}; that is a
// defined default, not an error.
func ComputeTeamFeatures(matches []*models.MatchRecord, teamName string, reference time.Time) TeamFeatures {
	windowStart := reference.AddDate(0, 0, -formWindowDays)

	qualifying := make([]*models.MatchRecord, 0, len(matches))
	for _, m := range matches {
		if !m.Involves(teamName) || !m.HasResult() {
			continue
		}
		if !m.Date.Before(reference) || m.Date.Before(windowStart) {
			continue
		}
		qualifying = append(qualifying, m)
	}

	sort.Slice(qualifying, func(i, j int) bool {
		return qualifying[i].Date.Before(*qualifying[j].Date)
	})
	if len(qualifying) > formMatchCap {
		qualifying = qualifying[len(qualifying)-formMatchCap:]
	}

	var games, wins int
	var totalScored float64
	for _, m := range qualifying {
		scored, okFor := m.ScoreFor(teamName)
		conceded, okAgainst := m.OpponentScoreFor(teamName)
		if !okFor || !okAgainst {
			continue
		}
		games++
		totalScored += scored
		if scored > conceded {
			wins++
		}
	}

	if games == 0 {
		return TeamFeatures{}
	}

	return TeamFeatures{
		Form:       float64(wins) / math.Max(float64(games), 1),
		ScoringAvg: round2(totalScored / float64(games)),
	}
}

func (e *Engine) recordCacheHit(hit bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if hit {
		e.hits++
	} else {
		e.misses++
	}
	total := e.hits + e.misses
	if total > 0 {
		metrics.FeatureCacheHitRatio.Set(float64(e.hits) / float64(total))
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
