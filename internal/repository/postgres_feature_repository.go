package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/matchcast/internal/database"
	"github.com/yourusername/matchcast/internal/models"
)

// PostgresFeatureRepository implements FeatureRepository for PostgreSQL
type PostgresFeatureRepository struct {
	db *database.DB
}

// NewPostgresFeatureRepository creates a new feature repository
func NewPostgresFeatureRepository(db *database.DB) FeatureRepository {
	return &PostgresFeatureRepository{db: db}
}

// Upsert overwrites the feature record for a contest
func (r *PostgresFeatureRepository) Upsert(ctx context.Context, features *models.FeatureRecord) error {
	query := `
		INSERT INTO features (contest_id, sport, home_form, away_form, home_scoring_avg, away_scoring_avg, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (contest_id) DO UPDATE SET
			sport = EXCLUDED.sport,
			home_form = EXCLUDED.home_form,
			away_form = EXCLUDED.away_form,
			home_scoring_avg = EXCLUDED.home_scoring_avg,
			away_scoring_avg = EXCLUDED.away_scoring_avg,
			computed_at = now()
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		features.ContestID, features.Sport,
		features.HomeForm, features.AwayForm,
		features.HomeScoringAvg, features.AwayScoringAvg,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert features for contest %d: %w", features.ContestID, err)
	}
	return nil
}

// GetByContestID retrieves the feature record for a contest
func (r *PostgresFeatureRepository) GetByContestID(ctx context.Context, contestID int64) (*models.FeatureRecord, error) {
	query := `
		SELECT contest_id, sport, home_form, away_form, home_scoring_avg, away_scoring_avg, computed_at
		FROM features
		WHERE contest_id = $1
	`

	f := &models.FeatureRecord{}
	err := r.db.GetPool().QueryRow(ctx, query, contestID).Scan(
		&f.ContestID, &f.Sport, &f.HomeForm, &f.AwayForm,
		&f.HomeScoringAvg, &f.AwayScoringAvg, &f.ComputedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get features for contest %d: %w", contestID, err)
	}
	return f, nil
}
