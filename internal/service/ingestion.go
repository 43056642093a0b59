// Package service contains the ingestion workflow bridging the sports-data
// provider and the match store.
package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/matchcast/internal/datasource"
	"github.com/yourusername/matchcast/internal/metrics"
	"github.com/yourusername/matchcast/internal/models"
	"github.com/yourusername/matchcast/internal/repository"
)

// IngestionService fetches contests from the provider, normalizes them and
// upserts them into the match store. Backfill calls are best-effort: any
// provider failure is logged and an empty result returned, so callers can
// always proceed with whatever local data exists.
type IngestionService struct {
	source    datasource.DataSource
	matchRepo repository.MatchRepository
	logger    *logrus.Logger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(source datasource.DataSource, matchRepo repository.MatchRepository, logger *logrus.Logger) *IngestionService {
	return &IngestionService{
		source:    source,
		matchRepo: matchRepo,
		logger:    logger,
	}
}

// FetchAndStoreMatch retrieves a single contest from the provider and upserts
// it. Unlike the backfill calls this one propagates errors, since the caller
// needs to distinguish "unknown contest" from a transient failure.
func (s *IngestionService) FetchAndStoreMatch(ctx context.Context, contestID int64) (*models.MatchRecord, error) {
	sport, rawID, err := models.SportForContestID(contestID)
	if err != nil {
		return nil, err
	}

	match, err := s.source.FetchMatch(ctx, sport, rawID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contest %d: %w", contestID, err)
	}

	if err := s.matchRepo.UpsertMatches(ctx, []*models.MatchRecord{match}); err != nil {
		return nil, fmt.Errorf("failed to store contest %d: %w", contestID, err)
	}
	return match, nil
}

// BackfillTeamHistory pulls a team's recent contests from the provider and
// upserts them. Returns the fetched records; empty on any failure.
func (s *IngestionService) BackfillTeamHistory(ctx context.Context, teamID int64, limit int, sport models.Sport) []*models.MatchRecord {
	metrics.BackfillCallsTotal.WithLabelValues("team_history").Inc()

	matches, err := s.source.FetchTeamHistory(ctx, sport, teamID, limit)
	if err != nil {
		metrics.BackfillErrorsTotal.WithLabelValues("team_history").Inc()
		s.logger.WithError(err).WithFields(logrus.Fields{
			"sport":   sport,
			"team_id": teamID,
		}).Warn("Team history backfill failed")
		return nil
	}

	return s.store(ctx, matches, "team_history")
}

// BackfillHeadToHead pulls direct meetings of two teams from the provider and
// upserts them. Returns the fetched records; empty on any failure.
func (s *IngestionService) BackfillHeadToHead(ctx context.Context, teamAID, teamBID int64, limit int, sport models.Sport) []*models.MatchRecord {
	metrics.BackfillCallsTotal.WithLabelValues("head_to_head").Inc()

	matches, err := s.source.FetchHeadToHead(ctx, sport, teamAID, teamBID, limit)
	if err != nil {
		metrics.BackfillErrorsTotal.WithLabelValues("head_to_head").Inc()
		s.logger.WithError(err).WithFields(logrus.Fields{
			"sport":     sport,
			"team_a_id": teamAID,
			"team_b_id": teamBID,
		}).Warn("Head-to-head backfill failed")
		return nil
	}

	return s.store(ctx, matches, "head_to_head")
}

func (s *IngestionService) store(ctx context.Context, matches []*models.MatchRecord, kind string) []*models.MatchRecord {
	if len(matches) == 0 {
		return nil
	}

	if err := s.matchRepo.UpsertMatches(ctx, matches); err != nil {
		metrics.BackfillErrorsTotal.WithLabelValues(kind).Inc()
		s.logger.WithError(err).Warn("Failed to store backfilled matches")
		return nil
	}

	s.logger.WithFields(logrus.Fields{
		"kind":  kind,
		"count": len(matches),
	}).Debug("Backfilled matches stored")
	return matches
}
