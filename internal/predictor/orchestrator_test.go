package predictor

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/matchcast/internal/generator"
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

// MockMatchFetcher is a mock implementation of MatchFetcher
type MockMatchFetcher struct {
	mock.Mock
}

func (m *MockMatchFetcher) FetchAndStoreMatch(ctx context.Context, contestID int64) (*models.MatchRecord, error) {
	args := m.Called(ctx, contestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MatchRecord), args.Error(1)
}

// MockFeatureSource is a mock implementation of FeatureSource
type MockFeatureSource struct {
	mock.Mock
}

func (m *MockFeatureSource) GetOrCompute(ctx context.Context, match *models.MatchRecord) (*models.FeatureRecord, error) {
	args := m.Called(ctx, match)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FeatureRecord), args.Error(1)
}

// MockContextBuilder is a mock implementation of ContextBuilder
type MockContextBuilder struct {
	mock.Mock
}

func (m *MockContextBuilder) Build(ctx context.Context, match *models.MatchRecord) (*models.HistoryContext, error) {
	args := m.Called(ctx, match)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HistoryContext), args.Error(1)
}

// MockGenerator is a mock implementation of generator.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (any, error) {
	args := m.Called(ctx, prompt)
	return args.Get(0), args.Error(1)
}

func (m *MockGenerator) Name() string {
	return "mock"
}

type orchestratorFixture struct {
	matchRepo *MockMatchRepository
	fetcher   *MockMatchFetcher
	features  *MockFeatureSource
	history   *MockContextBuilder
	match     *models.MatchRecord
	record    *models.FeatureRecord
}

func newOrchestratorFixture() *orchestratorFixture {
	date := time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC)
	return &orchestratorFixture{
		matchRepo: new(MockMatchRepository),
		fetcher:   new(MockMatchFetcher),
		features:  new(MockFeatureSource),
		history:   new(MockContextBuilder),
		match: &models.MatchRecord{
			ID:           500,
			Sport:        models.SportFootball,
			Date:         &date,
			HomeTeamName: "Arsenal",
			AwayTeamName: "Chelsea",
		},
		record: &models.FeatureRecord{
			ContestID: 500,
			Sport:     models.SportFootball,
			HomeForm:  0.8,
			AwayForm:  0.2,
		},
	}
}

func (f *orchestratorFixture) expectHappyResolution() {
	f.matchRepo.On("GetByID", mock.Anything, int64(500)).Return(f.match, nil)
	f.history.On("Build", mock.Anything, f.match).Return(&models.HistoryContext{
		Sport:        models.SportFootball,
		HomeTeamName: "Arsenal",
		AwayTeamName: "Chelsea",
	}, nil)
	f.features.On("GetOrCompute", mock.Anything, f.match).Return(f.record, nil)
}

func (f *orchestratorFixture) orchestrator(remote, local generator.Generator) *Orchestrator {
	fallback := NewRuleBasedPredictor(rand.New(rand.NewSource(1)))
	return NewOrchestrator(
		f.matchRepo, f.fetcher, f.features, f.history, fallback,
		remote, time.Second, local, time.Second, logrus.New(),
	)
}

func validPayload(outcome string) map[string]any {
	return map[string]any{
		"prediction":    outcome,
		"probabilities": map[string]any{"home": 0.5, "draw": 0.3, "away": 0.2},
		"explanation":   "Test payload.",
	}
}

func TestPredictFallsBackWhenNoTiersConfigured(t *testing.T) {
	f := newOrchestratorFixture()
	f.expectHappyResolution()

	got, err := f.orchestrator(nil, nil).Predict(context.Background(), 500)

	require.NoError(t, err)
	assert.Equal(t, models.EngineRuleBased, got.Engine)
	assert.Equal(t, int64(500), got.ContestID)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.False(t, got.PredictedAt.IsZero())
	assert.InDelta(t, 1.0, got.Probabilities.Sum(), 1e-9)
}

func TestPredictUsesRemoteTierWhenItSucceeds(t *testing.T) {
	f := newOrchestratorFixture()
	f.expectHappyResolution()

	remote := new(MockGenerator)
	remote.On("Generate", mock.Anything, mock.AnythingOfType("string")).
		Return(validPayload("Home win"), nil).Once()

	got, err := f.orchestrator(remote, nil).Predict(context.Background(), 500)

	require.NoError(t, err)
	assert.Equal(t, models.EngineRemote, got.Engine)
	assert.Equal(t, "Home win", got.OutcomeLabel)
	remote.AssertExpectations(t)
}

func TestPredictFallsThroughFailedTiers(t *testing.T) {
	f := newOrchestratorFixture()
	f.expectHappyResolution()

	remote := new(MockGenerator)
	remote.On("Generate", mock.Anything, mock.Anything).
		Return(nil, errors.New("upstream 503")).Once()
	local := new(MockGenerator)
	local.On("Generate", mock.Anything, mock.Anything).
		Return(validPayload("Draw"), nil).Once()

	got, err := f.orchestrator(remote, local).Predict(context.Background(), 500)

	require.NoError(t, err)
	assert.Equal(t, models.EngineLocal, got.Engine)
	assert.Equal(t, "Draw", got.OutcomeLabel)
	remote.AssertExpectations(t)
	local.AssertExpectations(t)
}

func TestPredictFallsThroughUnusablePayloadToRuleBased(t *testing.T) {
	f := newOrchestratorFixture()
	f.expectHappyResolution()

	remote := new(MockGenerator)
	remote.On("Generate", mock.Anything, mock.Anything).
		Return(map[string]any{"unrelated": "noise"}, nil).Once()

	got, err := f.orchestrator(remote, nil).Predict(context.Background(), 500)

	require.NoError(t, err)
	assert.Equal(t, models.EngineRuleBased, got.Engine)
	remote.AssertExpectations(t)
}

func TestPredictRejectsInvalidContestID(t *testing.T) {
	f := newOrchestratorFixture()

	_, err := f.orchestrator(nil, nil).Predict(context.Background(), 0)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidContestID)
}

func TestPredictUnknownContestFallsBackToFetcher(t *testing.T) {
	f := newOrchestratorFixture()
	f.matchRepo.On("GetByID", mock.Anything, int64(500)).Return(nil, models.ErrNotFound)
	f.fetcher.On("FetchAndStoreMatch", mock.Anything, int64(500)).Return(f.match, nil)
	f.history.On("Build", mock.Anything, f.match).Return(&models.HistoryContext{}, nil)
	f.features.On("GetOrCompute", mock.Anything, f.match).Return(f.record, nil)

	got, err := f.orchestrator(nil, nil).Predict(context.Background(), 500)

	require.NoError(t, err)
	assert.Equal(t, int64(500), got.ContestID)
	f.fetcher.AssertExpectations(t)
}

func TestPredictContestNotFoundAnywhere(t *testing.T) {
	f := newOrchestratorFixture()
	f.matchRepo.On("GetByID", mock.Anything, int64(500)).Return(nil, models.ErrNotFound)
	f.fetcher.On("FetchAndStoreMatch", mock.Anything, int64(500)).
		Return(nil, errors.New("provider returned nothing"))

	_, err := f.orchestrator(nil, nil).Predict(context.Background(), 500)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrContestNotFound)
}

func TestPredictSurfacesMissingFeatures(t *testing.T) {
	f := newOrchestratorFixture()
	f.matchRepo.On("GetByID", mock.Anything, int64(500)).Return(f.match, nil)
	f.history.On("Build", mock.Anything, f.match).Return(&models.HistoryContext{}, nil)
	f.features.On("GetOrCompute", mock.Anything, f.match).Return(nil, models.ErrNoFeatures)

	_, err := f.orchestrator(nil, nil).Predict(context.Background(), 500)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNoFeatures)
}

func TestPredictToleratesHistoryFailure(t *testing.T) {
	f := newOrchestratorFixture()
	f.matchRepo.On("GetByID", mock.Anything, int64(500)).Return(f.match, nil)
	f.history.On("Build", mock.Anything, f.match).Return(nil, errors.New("store timeout"))
	f.features.On("GetOrCompute", mock.Anything, f.match).Return(f.record, nil)

	got, err := f.orchestrator(nil, nil).Predict(context.Background(), 500)

	require.NoError(t, err)
	assert.Equal(t, models.EngineRuleBased, got.Engine)
}
