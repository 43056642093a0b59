package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 15, 0, 0, 0, time.UTC)
}

func TestContestIDKeepsSportsDisjoint(t *testing.T) {
	football := ContestID(SportFootball, 100)
	basketball := ContestID(SportBasketball, 100)

	assert.NotEqual(t, football, basketball)
	assert.Equal(t, int64(100), football)
	assert.Equal(t, BasketballIDOffset+100, basketball)
}

func TestSportForContestIDRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		sport Sport
		rawID int64
	}{
		{"football fixture", SportFootball, 868549},
		{"basketball game", SportBasketball, 14117},
		{"small football id", SportFootball, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sport, rawID, err := SportForContestID(ContestID(tt.sport, tt.rawID))
			require.NoError(t, err)
			assert.Equal(t, tt.sport, sport)
			assert.Equal(t, tt.rawID, rawID)
		})
	}
}

func TestSportForContestIDRejectsNonPositive(t *testing.T) {
	for _, id := range []int64{0, -1, -5_000_000_000} {
		_, _, err := SportForContestID(id)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidContestID))
	}
}

func TestMatchRecordHasResult(t *testing.T) {
	date := testDate(2026, 3, 1)
	score := 2.0

	complete := &MatchRecord{Date: &date, HomeScore: &score, AwayScore: &score}
	assert.True(t, complete.HasResult())

	assert.False(t, (&MatchRecord{HomeScore: &score, AwayScore: &score}).HasResult())
	assert.False(t, (&MatchRecord{Date: &date, AwayScore: &score}).HasResult())
	assert.False(t, (&MatchRecord{Date: &date, HomeScore: &score}).HasResult())
}

func TestScoreForResolvesSides(t *testing.T) {
	home, away := 3.0, 1.0
	m := &MatchRecord{
		HomeTeamName: "Arsenal",
		AwayTeamName: "Chelsea",
		HomeScore:    &home,
		AwayScore:    &away,
	}

	scored, ok := m.ScoreFor("Arsenal")
	require.True(t, ok)
	assert.Equal(t, 3.0, scored)

	conceded, ok := m.OpponentScoreFor("Arsenal")
	require.True(t, ok)
	assert.Equal(t, 1.0, conceded)

	_, ok = m.ScoreFor("Spurs")
	assert.False(t, ok)
}
