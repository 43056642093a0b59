package models

import "time"

// FeatureRecord holds the rolling performance features derived for one
// contest. Records are recomputed on demand and overwritten, never merged.
type FeatureRecord struct {
	ContestID      int64     `db:"contest_id" json:"contest_id" validate:"required,gt=0"`
	Sport          Sport     `db:"sport" json:"sport" validate:"required"`
	HomeForm       float64   `db:"home_form" json:"home_form" validate:"gte=0,lte=1"`
	AwayForm       float64   `db:"away_form" json:"away_form" validate:"gte=0,lte=1"`
	HomeScoringAvg float64   `db:"home_scoring_avg" json:"home_scoring_avg" validate:"gte=0"`
	AwayScoringAvg float64   `db:"away_scoring_avg" json:"away_scoring_avg" validate:"gte=0"`
	ComputedAt     time.Time `db:"computed_at" json:"computed_at"`
}

// HistoryContext bundles the bounded match history assembled for a single
// prediction request. It is ephemeral and never persisted.
type HistoryContext struct {
	Sport        Sport
	HomeTeamName string
	AwayTeamName string
	HomeRecent   []*MatchRecord
	AwayRecent   []*MatchRecord
	HeadToHead   []*MatchRecord
}
