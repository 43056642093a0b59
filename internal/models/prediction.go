package models

import (
	"time"

	"github.com/google/uuid"
)

// PredictionEngine identifies which tier produced a prediction.
type PredictionEngine string

const (
	EngineRemote    PredictionEngine = "remote"
	EngineLocal     PredictionEngine = "local"
	EngineRuleBased PredictionEngine = "rule-based"
)

// Probabilities is the three-way outcome distribution. The normalizer
// guarantees the components are non-negative and sum to 1.0 within
// floating-point tolerance.
type Probabilities struct {
	Home float64 `json:"home" validate:"gte=0,lte=1"`
	Draw float64 `json:"draw" validate:"gte=0,lte=1"`
	Away float64 `json:"away" validate:"gte=0,lte=1"`
}

// Sum returns the total mass of the distribution.
func (p Probabilities) Sum() float64 {
	return p.Home + p.Draw + p.Away
}

// BettingAdvice is the wager recommendation attached to a prediction.
type BettingAdvice struct {
	Recommendation string  `json:"recommendation"`
	Confidence     float64 `json:"confidence" validate:"gte=0,lte=1"`
	Reasoning      string  `json:"reasoning"`
}

// CanonicalPrediction is the fully-populated prediction returned to callers.
// No partial predictions leave the pipeline; failures surface as errors
// instead.
type CanonicalPrediction struct {
	ID            uuid.UUID        `json:"id"`
	ContestID     int64            `json:"contest_id" validate:"required,gt=0"`
	OutcomeLabel  string           `json:"outcome_label" validate:"required"`
	Probabilities Probabilities    `json:"probabilities"`
	Explanation   string           `json:"explanation"`
	BettingAdvice BettingAdvice    `json:"betting_advice"`
	Engine        PredictionEngine `json:"engine" validate:"required,oneof=remote local rule-based"`
	PredictedAt   time.Time        `json:"predicted_at"`
}
