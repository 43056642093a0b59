package models

import "time"

// MatchRecord represents one two-team contest as stored in the match store.
// Provider payloads for scheduled fixtures frequently omit the kickoff time,
// team ids or scores, so those fields are nullable.
type MatchRecord struct {
	ID           int64      `db:"id" json:"id" validate:"required,gt=0"`
	Sport        Sport      `db:"sport" json:"sport" validate:"required"`
	Date         *time.Time `db:"match_date" json:"date"`
	Status       string     `db:"status" json:"status"`
	HomeTeamID   *int64     `db:"home_team_id" json:"home_team_id"`
	AwayTeamID   *int64     `db:"away_team_id" json:"away_team_id"`
	HomeTeamName string     `db:"home_team_name" json:"home_team_name"`
	AwayTeamName string     `db:"away_team_name" json:"away_team_name"`
	HomeScore    *float64   `db:"home_score" json:"home_score" validate:"omitempty,gte=0"`
	AwayScore    *float64   `db:"away_score" json:"away_score" validate:"omitempty,gte=0"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// HasResult reports whether the match carries everything feature computation
// needs: a date and both final scores.
func (m *MatchRecord) HasResult() bool {
	return m.Date != nil && m.HomeScore != nil && m.AwayScore != nil
}

// Involves reports whether the named team played in this match.
func (m *MatchRecord) Involves(teamName string) bool {
	return m.HomeTeamName == teamName || m.AwayTeamName == teamName
}

// ScoreFor returns the score recorded for the named team and whether the
// team's side could be resolved.
func (m *MatchRecord) ScoreFor(teamName string) (float64, bool) {
	switch teamName {
	case m.HomeTeamName:
		if m.HomeScore != nil {
			return *m.HomeScore, true
		}
	case m.AwayTeamName:
		if m.AwayScore != nil {
			return *m.AwayScore, true
		}
	}
	return 0, false
}

// OpponentScoreFor returns the opposing team's score for the named team.
func (m *MatchRecord) OpponentScoreFor(teamName string) (float64, bool) {
	switch teamName {
	case m.HomeTeamName:
		if m.AwayScore != nil {
			return *m.AwayScore, true
		}
	case m.AwayTeamName:
		if m.HomeScore != nil {
			return *m.HomeScore, true
		}
	}
	return 0, false
}
