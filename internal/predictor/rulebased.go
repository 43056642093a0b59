package predictor

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/yourusername/matchcast/internal/models"
)

const (
	// edgeThreshold separates a decisive call from the no-clear-edge branch.
	edgeThreshold    = 0.3
	noEdgeConfidence = 0.6
	maxConfidence    = 0.85
	jitterSpan       = 0.1
)

// RuleBasedPredictor is the deterministic terminal fallback. The outcome
// label and recommendation depend only on the feature-derived score; the
// probability triple carries a small random jitter so repeated fallback
// predictions do not look canned. The jitter source is injectable so tests
// can pin it.
type RuleBasedPredictor struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRuleBasedPredictor creates the fallback predictor. A nil rng gets a
// time-seeded source.
func NewRuleBasedPredictor(rng *rand.Rand) *RuleBasedPredictor {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RuleBasedPredictor{rng: rng}
}

// Predict always succeeds.
func (p *RuleBasedPredictor) Predict(match *models.MatchRecord, features *models.FeatureRecord) *models.CanonicalPrediction {
	score := (features.HomeForm - features.AwayForm) + (features.HomeScoringAvg - features.AwayScoringAvg)

	var label, recommendation, reasoning string
	var confidence float64
	switch {
	case score > edgeThreshold:
		label = fmt.Sprintf("%s to win", match.HomeTeamName)
		recommendation = fmt.Sprintf("Back %s", match.HomeTeamName)
		reasoning = fmt.Sprintf("Home side holds a clear form and scoring edge (score %.2f).", score)
		confidence = decisiveConfidence(score)
	case score < -edgeThreshold:
		label = fmt.Sprintf("%s to win", match.AwayTeamName)
		recommendation = fmt.Sprintf("Back %s", match.AwayTeamName)
		reasoning = fmt.Sprintf("Away side holds a clear form and scoring edge (score %.2f).", score)
		confidence = decisiveConfidence(score)
	default:
		label, recommendation = noEdgeWording(match.Sport)
		reasoning = fmt.Sprintf("Neither side shows a meaningful edge (score %.2f).", score)
		confidence = noEdgeConfidence
	}

	pHome := clamp(0.1, 0.8, 0.5+score+p.jitter())
	pAway := clamp(0.1, 0.8, 0.5-score+p.jitter())
	pDraw := clamp(0.05, 0.6, 0.2+p.jitter())
	sum := pHome + pAway + pDraw

	return &models.CanonicalPrediction{
		ContestID:    match.ID,
		OutcomeLabel: label,
		Probabilities: models.Probabilities{
			Home: pHome / sum,
			Draw: pDraw / sum,
			Away: pAway / sum,
		},
		Explanation: fmt.Sprintf(
			"Form comparison: %s %.2f vs %s %.2f; scoring averages %.2f vs %.2f.",
			match.HomeTeamName, features.HomeForm,
			match.AwayTeamName, features.AwayForm,
			features.HomeScoringAvg, features.AwayScoringAvg,
		),
		BettingAdvice: models.BettingAdvice{
			Recommendation: recommendation,
			Confidence:     confidence,
			Reasoning:      reasoning,
		},
		Engine: models.EngineRuleBased,
	}
}

func noEdgeWording(sport models.Sport) (label, recommendation string) {
	if sport == models.SportBasketball {
		return "Too close to call", "Avoid the spread"
	}
	return "No clear edge, likely tight match", "Under on total goals"
}

func decisiveConfidence(score float64) float64 {
	abs := score
	if abs < 0 {
		abs = -abs
	}
	if 0.5+abs > maxConfidence {
		return maxConfidence
	}
	return 0.5 + abs
}

// jitter draws uniformly from [-jitterSpan, jitterSpan].
func (p *RuleBasedPredictor) jitter() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return (p.rng.Float64()*2 - 1) * jitterSpan
}

func clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
