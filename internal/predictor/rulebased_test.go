package predictor

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/matchcast/internal/models"
)

func fallbackFixture(homeForm, awayForm, homeAvg, awayAvg float64) (*models.MatchRecord, *models.FeatureRecord) {
	match := &models.MatchRecord{
		ID:           868549,
		Sport:        models.SportFootball,
		HomeTeamName: "Arsenal",
		AwayTeamName: "Chelsea",
	}
	features := &models.FeatureRecord{
		ContestID:      868549,
		Sport:          models.SportFootball,
		HomeForm:       homeForm,
		AwayForm:       awayForm,
		HomeScoringAvg: homeAvg,
		AwayScoringAvg: awayAvg,
	}
	return match, features
}

func pinnedPredictor() *RuleBasedPredictor {
	return NewRuleBasedPredictor(rand.New(rand.NewSource(1)))
}

func TestPredictDecisiveHomeEdge(t *testing.T) {
	// score = (0.8 - 0.2) + (2.5 - 1.0) = 2.1, capped confidence.
	match, features := fallbackFixture(0.8, 0.2, 2.5, 1.0)

	got := pinnedPredictor().Predict(match, features)

	require.NotNil(t, got)
	assert.Equal(t, "Arsenal to win", got.OutcomeLabel)
	assert.Equal(t, "Back Arsenal", got.BettingAdvice.Recommendation)
	assert.Equal(t, 0.85, got.BettingAdvice.Confidence)
	assert.Equal(t, models.EngineRuleBased, got.Engine)
	assert.Greater(t, got.Probabilities.Home, got.Probabilities.Away)
}

func TestPredictDecisiveAwayEdge(t *testing.T) {
	// score = (0.2 - 0.6) + (1.0 - 1.1) = -0.5.
	match, features := fallbackFixture(0.2, 0.6, 1.0, 1.1)

	got := pinnedPredictor().Predict(match, features)

	assert.Equal(t, "Chelsea to win", got.OutcomeLabel)
	assert.Equal(t, "Back Chelsea", got.BettingAdvice.Recommendation)
	assert.Equal(t, 0.85, got.BettingAdvice.Confidence)
	assert.InDelta(t, 1.0, got.Probabilities.Sum(), 1e-9)
}

func TestPredictModerateEdgeConfidence(t *testing.T) {
	// score = (0.6 - 0.4) + (1.42 - 1.3) = 0.32, below the cap.
	match, features := fallbackFixture(0.6, 0.4, 1.42, 1.3)

	got := pinnedPredictor().Predict(match, features)

	assert.Equal(t, "Arsenal to win", got.OutcomeLabel)
	assert.InDelta(t, 0.82, got.BettingAdvice.Confidence, 1e-6)
}

func TestPredictNoEdgeFootball(t *testing.T) {
	// score = (0.5 - 0.5) + (1.2 - 1.1) = 0.1, within the threshold.
	match, features := fallbackFixture(0.5, 0.5, 1.2, 1.1)

	got := pinnedPredictor().Predict(match, features)

	assert.Equal(t, "No clear edge, likely tight match", got.OutcomeLabel)
	assert.Equal(t, "Under on total goals", got.BettingAdvice.Recommendation)
	assert.Equal(t, 0.6, got.BettingAdvice.Confidence)
}

func TestPredictNoEdgeBasketball(t *testing.T) {
	match, features := fallbackFixture(0.5, 0.5, 1.2, 1.1)
	match.Sport = models.SportBasketball
	features.Sport = models.SportBasketball

	got := pinnedPredictor().Predict(match, features)

	assert.Equal(t, "Too close to call", got.OutcomeLabel)
	assert.Equal(t, "Avoid the spread", got.BettingAdvice.Recommendation)
}

func TestPredictProbabilitiesNormalized(t *testing.T) {
	predictor := NewRuleBasedPredictor(rand.New(rand.NewSource(42)))
	match, features := fallbackFixture(0.9, 0.1, 3.0, 0.5)

	for i := 0; i < 50; i++ {
		got := predictor.Predict(match, features)
		assert.InDelta(t, 1.0, got.Probabilities.Sum(), 1e-9)
		assert.Greater(t, got.Probabilities.Home, 0.0)
		assert.Greater(t, got.Probabilities.Draw, 0.0)
		assert.Greater(t, got.Probabilities.Away, 0.0)
	}
}

func TestPredictSameSeedSameOutput(t *testing.T) {
	match, features := fallbackFixture(0.7, 0.3, 2.0, 1.0)

	first := pinnedPredictor().Predict(match, features)
	second := pinnedPredictor().Predict(match, features)

	assert.Equal(t, first.Probabilities, second.Probabilities)
	assert.Equal(t, first.OutcomeLabel, second.OutcomeLabel)
}
