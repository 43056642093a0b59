package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/matchcast/internal/database"
	"github.com/yourusername/matchcast/internal/models"
)

const matchColumns = `id, sport, match_date, status, home_team_id, away_team_id,
	home_team_name, away_team_name, home_score, away_score, created_at, updated_at`

// PostgresMatchRepository implements MatchRepository for PostgreSQL
type PostgresMatchRepository struct {
	db *database.DB
}

// NewPostgresMatchRepository creates a new match repository
func NewPostgresMatchRepository(db *database.DB) MatchRepository {
	return &PostgresMatchRepository{db: db}
}

// GetByID retrieves a single match by canonical contest id
func (r *PostgresMatchRepository) GetByID(ctx context.Context, id int64) (*models.MatchRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM matches WHERE id = $1`, matchColumns)

	match, err := scanMatch(r.db.GetPool().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return match, nil
}

// GetTeamRecentMatches retrieves a team's matches, most recent first
func (r *PostgresMatchRepository) GetTeamRecentMatches(ctx context.Context, sport models.Sport, teamName string, excludeID int64, beforeDate *time.Time, limit int) ([]*models.MatchRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM matches
		WHERE sport = $1
		  AND (home_team_name = $2 OR away_team_name = $2)
		  AND id <> $3
		  AND ($4::timestamptz IS NULL OR match_date < $4)
		ORDER BY match_date DESC NULLS LAST
		LIMIT $5
	`, matchColumns)

	rows, err := r.db.GetPool().Query(ctx, query, sport, teamName, excludeID, beforeDate, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent matches for %s: %w", teamName, err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

// GetHeadToHead retrieves direct meetings between two teams, most recent first
func (r *PostgresMatchRepository) GetHeadToHead(ctx context.Context, sport models.Sport, teamA, teamB string, excludeID int64, beforeDate *time.Time, limit int) ([]*models.MatchRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM matches
		WHERE sport = $1
		  AND ((home_team_name = $2 AND away_team_name = $3)
		    OR (home_team_name = $3 AND away_team_name = $2))
		  AND id <> $4
		  AND ($5::timestamptz IS NULL OR match_date < $5)
		ORDER BY match_date DESC NULLS LAST
		LIMIT $6
	`, matchColumns)

	rows, err := r.db.GetPool().Query(ctx, query, sport, teamA, teamB, excludeID, beforeDate, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query head-to-head %s vs %s: %w", teamA, teamB, err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

// GetUpcoming retrieves matches scheduled in the future, soonest first
func (r *PostgresMatchRepository) GetUpcoming(ctx context.Context, sport models.Sport, limit int) ([]*models.MatchRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM matches
		WHERE sport = $1 AND match_date > now() AND home_score IS NULL
		ORDER BY match_date ASC
		LIMIT $2
	`, matchColumns)

	rows, err := r.db.GetPool().Query(ctx, query, sport, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming matches: %w", err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

// UpsertMatches inserts or overwrites a batch of matches atomically
func (r *PostgresMatchRepository) UpsertMatches(ctx context.Context, matches []*models.MatchRecord) error {
	if len(matches) == 0 {
		return nil
	}

	query := `
		INSERT INTO matches (id, sport, match_date, status, home_team_id, away_team_id,
			home_team_name, away_team_name, home_score, away_score, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (id) DO UPDATE SET
			sport = EXCLUDED.sport,
			match_date = EXCLUDED.match_date,
			status = EXCLUDED.status,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			home_team_name = EXCLUDED.home_team_name,
			away_team_name = EXCLUDED.away_team_name,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			updated_at = now()
	`

	batch := &pgx.Batch{}
	for _, m := range matches {
		batch.Queue(query, m.ID, m.Sport, m.Date, m.Status, m.HomeTeamID, m.AwayTeamID,
			m.HomeTeamName, m.AwayTeamName, m.HomeScore, m.AwayScore)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	for range matches {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert match batch: %w", err)
		}
	}
	return nil
}

func scanMatch(row pgx.Row) (*models.MatchRecord, error) {
	m := &models.MatchRecord{}
	err := row.Scan(
		&m.ID, &m.Sport, &m.Date, &m.Status, &m.HomeTeamID, &m.AwayTeamID,
		&m.HomeTeamName, &m.AwayTeamName, &m.HomeScore, &m.AwayScore,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func collectMatches(rows pgx.Rows) ([]*models.MatchRecord, error) {
	matches := make([]*models.MatchRecord, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("match row iteration failed: %w", err)
	}
	return matches, nil
}
