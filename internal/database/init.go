package database

import (
	"context"
	"fmt"

	"github.com/yourusername/matchcast/internal/config"
)

// schema holds the DDL for the match store. Kept idempotent so startup can
// run it unconditionally.
const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id              BIGINT PRIMARY KEY,
	sport           TEXT NOT NULL,
	match_date      TIMESTAMPTZ,
	status          TEXT NOT NULL DEFAULT '',
	home_team_id    BIGINT,
	away_team_id    BIGINT,
	home_team_name  TEXT NOT NULL DEFAULT '',
	away_team_name  TEXT NOT NULL DEFAULT '',
	home_score      DOUBLE PRECISION,
	away_score      DOUBLE PRECISION,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_matches_sport_date ON matches (sport, match_date DESC);
CREATE INDEX IF NOT EXISTS idx_matches_home_team ON matches (sport, home_team_name);
CREATE INDEX IF NOT EXISTS idx_matches_away_team ON matches (sport, away_team_name);

CREATE TABLE IF NOT EXISTS features (
	contest_id       BIGINT PRIMARY KEY,
	sport            TEXT NOT NULL,
	home_form        DOUBLE PRECISION NOT NULL,
	away_form        DOUBLE PRECISION NOT NULL,
	home_scoring_avg DOUBLE PRECISION NOT NULL,
	away_scoring_avg DOUBLE PRECISION NOT NULL,
	computed_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Initialize creates a database connection pool and ensures the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}
