// Package repository provides data access for the match store.
package repository

import (
	"context"
	"time"

	"github.com/yourusername/matchcast/internal/models"
)

// MatchRepository defines the query surface of the match store. Listing
// queries return matches ordered most-recent-first.
type MatchRepository interface {
	GetByID(ctx context.Context, id int64) (*models.MatchRecord, error)
	// GetTeamRecentMatches returns matches involving the named team in the
	// given sport, excluding excludeID, strictly before beforeDate when it is
	// non-nil.
	GetTeamRecentMatches(ctx context.Context, sport models.Sport, teamName string, excludeID int64, beforeDate *time.Time, limit int) ([]*models.MatchRecord, error)
	// GetHeadToHead returns matches where the two named teams faced each
	// other directly, with the same exclusion and date bound semantics.
	GetHeadToHead(ctx context.Context, sport models.Sport, teamA, teamB string, excludeID int64, beforeDate *time.Time, limit int) ([]*models.MatchRecord, error)
	GetUpcoming(ctx context.Context, sport models.Sport, limit int) ([]*models.MatchRecord, error)
	UpsertMatches(ctx context.Context, matches []*models.MatchRecord) error
}

// FeatureRepository defines persistence for derived feature records. Upsert
// overwrites any existing record for the contest.
type FeatureRepository interface {
	Upsert(ctx context.Context, features *models.FeatureRecord) error
	GetByContestID(ctx context.Context, contestID int64) (*models.FeatureRecord, error)
}

// Repositories holds all repository implementations
type Repositories struct {
	Match   MatchRepository
	Feature FeatureRepository
}
