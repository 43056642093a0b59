package history

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/matchcast/internal/models"
)

// MockMatchRepository is a mock implementation of repository.MatchRepository
type MockMatchRepository struct {
	mock.Mock
}

func (m *MockMatchRepository) GetByID(ctx context.Context, id int64) (*models.MatchRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MatchRecord), args.Error(1)
}

func (m *MockMatchRepository) GetTeamRecentMatches(ctx context.Context, sport models.Sport, teamName string, excludeID int64, beforeDate *time.Time, limit int) ([]*models.MatchRecord, error) {
	args := m.Called(ctx, sport, teamName, excludeID, beforeDate, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MatchRecord), args.Error(1)
}

func (m *MockMatchRepository) GetHeadToHead(ctx context.Context, sport models.Sport, teamA, teamB string, excludeID int64, beforeDate *time.Time, limit int) ([]*models.MatchRecord, error) {
	args := m.Called(ctx, sport, teamA, teamB, excludeID, beforeDate, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MatchRecord), args.Error(1)
}

func (m *MockMatchRepository) GetUpcoming(ctx context.Context, sport models.Sport, limit int) ([]*models.MatchRecord, error) {
	args := m.Called(ctx, sport, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MatchRecord), args.Error(1)
}

func (m *MockMatchRepository) UpsertMatches(ctx context.Context, matches []*models.MatchRecord) error {
	args := m.Called(ctx, matches)
	return args.Error(0)
}

// MockBackfiller is a mock implementation of Backfiller
type MockBackfiller struct {
	mock.Mock
}

func (m *MockBackfiller) BackfillTeamHistory(ctx context.Context, teamID int64, limit int, sport models.Sport) []*models.MatchRecord {
	args := m.Called(ctx, teamID, limit, sport)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*models.MatchRecord)
}

func (m *MockBackfiller) BackfillHeadToHead(ctx context.Context, teamAID, teamBID int64, limit int, sport models.Sport) []*models.MatchRecord {
	args := m.Called(ctx, teamAID, teamBID, limit, sport)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*models.MatchRecord)
}

func finishedMatch(id int64, daysBefore int, reference time.Time) *models.MatchRecord {
	date := reference.AddDate(0, 0, -daysBefore)
	home, away := 1.0, 0.0
	return &models.MatchRecord{
		ID:           id,
		Sport:        models.SportFootball,
		Date:         &date,
		HomeTeamName: "Arsenal",
		AwayTeamName: "Chelsea",
		HomeScore:    &home,
		AwayScore:    &away,
	}
}

func targetMatch() *models.MatchRecord {
	date := time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC)
	homeID, awayID := int64(50), int64(60)
	return &models.MatchRecord{
		ID:           1000,
		Sport:        models.SportFootball,
		Date:         &date,
		HomeTeamID:   &homeID,
		AwayTeamID:   &awayID,
		HomeTeamName: "Arsenal",
		AwayTeamName: "Chelsea",
	}
}

func richHistory(reference time.Time) []*models.MatchRecord {
	matches := make([]*models.MatchRecord, 0, 5)
	for i := 0; i < 5; i++ {
		matches = append(matches, finishedMatch(int64(i+1), i+1, reference))
	}
	return matches
}

func TestBuildNoBackfillWhenHistoryIsRich(t *testing.T) {
	matchRepo := new(MockMatchRepository)
	backfiller := new(MockBackfiller)
	match := targetMatch()
	history := richHistory(*match.Date)

	matchRepo.On("GetTeamRecentMatches", mock.Anything, models.SportFootball, mock.Anything, match.ID, match.Date, 12).
		Return(history, nil).Twice()
	matchRepo.On("GetHeadToHead", mock.Anything, models.SportFootball, "Arsenal", "Chelsea", match.ID, match.Date, 10).
		Return(history, nil).Once()

	builder := NewBuilder(matchRepo, backfiller, DefaultConfig(), logrus.New())

	ctx, err := builder.Build(context.Background(), match)
	require.NoError(t, err)
	assert.Len(t, ctx.HomeRecent, 5)
	assert.Len(t, ctx.AwayRecent, 5)
	assert.Len(t, ctx.HeadToHead, 5)

	backfiller.AssertNotCalled(t, "BackfillTeamHistory")
	backfiller.AssertNotCalled(t, "BackfillHeadToHead")
	matchRepo.AssertExpectations(t)
}

func TestBuildBackfillsSparseTeamExactlyOnce(t *testing.T) {
	matchRepo := new(MockMatchRepository)
	backfiller := new(MockBackfiller)
	match := targetMatch()
	rich := richHistory(*match.Date)

	// Home side is sparse on every query; away side and head-to-head are rich.
	matchRepo.On("GetTeamRecentMatches", mock.Anything, models.SportFootball, "Arsenal", match.ID, match.Date, 12).
		Return([]*models.MatchRecord{}, nil)
	matchRepo.On("GetTeamRecentMatches", mock.Anything, models.SportFootball, "Chelsea", match.ID, match.Date, 12).
		Return(rich, nil)
	matchRepo.On("GetHeadToHead", mock.Anything, models.SportFootball, "Arsenal", "Chelsea", match.ID, match.Date, 10).
		Return(rich, nil)

	backfiller.On("BackfillTeamHistory", mock.Anything, int64(50), 12, models.SportFootball).
		Return([]*models.MatchRecord{}).Once()

	builder := NewBuilder(matchRepo, backfiller, DefaultConfig(), logrus.New())

	_, err := builder.Build(context.Background(), match)
	require.NoError(t, err)

	// A second build for the same sparse team must not trigger the provider
	// again; the Once expectation fails the test otherwise.
	_, err = builder.Build(context.Background(), match)
	require.NoError(t, err)

	backfiller.AssertExpectations(t)
}

func TestBuildBackfillsSparseHeadToHeadExactlyOnce(t *testing.T) {
	matchRepo := new(MockMatchRepository)
	backfiller := new(MockBackfiller)
	match := targetMatch()
	rich := richHistory(*match.Date)

	matchRepo.On("GetTeamRecentMatches", mock.Anything, models.SportFootball, mock.Anything, match.ID, match.Date, 12).
		Return(rich, nil)
	matchRepo.On("GetHeadToHead", mock.Anything, models.SportFootball, "Arsenal", "Chelsea", match.ID, match.Date, 10).
		Return([]*models.MatchRecord{}, nil)

	backfiller.On("BackfillHeadToHead", mock.Anything, int64(50), int64(60), 10, models.SportFootball).
		Return([]*models.MatchRecord{}).Once()

	builder := NewBuilder(matchRepo, backfiller, DefaultConfig(), logrus.New())

	_, err := builder.Build(context.Background(), match)
	require.NoError(t, err)
	_, err = builder.Build(context.Background(), match)
	require.NoError(t, err)

	backfiller.AssertExpectations(t)
}

func TestBuildSkipsBackfillWithoutProviderIDs(t *testing.T) {
	matchRepo := new(MockMatchRepository)
	backfiller := new(MockBackfiller)
	match := targetMatch()
	match.HomeTeamID = nil
	match.AwayTeamID = nil

	matchRepo.On("GetTeamRecentMatches", mock.Anything, models.SportFootball, mock.Anything, match.ID, match.Date, 12).
		Return([]*models.MatchRecord{}, nil)
	matchRepo.On("GetHeadToHead", mock.Anything, models.SportFootball, "Arsenal", "Chelsea", match.ID, match.Date, 10).
		Return([]*models.MatchRecord{}, nil)

	builder := NewBuilder(matchRepo, backfiller, DefaultConfig(), logrus.New())

	ctx, err := builder.Build(context.Background(), match)
	require.NoError(t, err)
	assert.Empty(t, ctx.HomeRecent)
	assert.Empty(t, ctx.HeadToHead)

	backfiller.AssertNotCalled(t, "BackfillTeamHistory")
	backfiller.AssertNotCalled(t, "BackfillHeadToHead")
}

func TestCountUsableIgnoresUnscored(t *testing.T) {
	reference := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	scored := finishedMatch(1, 1, reference)
	unscored := finishedMatch(2, 2, reference)
	unscored.HomeScore = nil

	assert.Equal(t, 1, countUsable([]*models.MatchRecord{scored, unscored}))
}
