package predictor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/matchcast/internal/generator"
	"github.com/yourusername/matchcast/internal/metrics"
	"github.com/yourusername/matchcast/internal/models"
	"github.com/yourusername/matchcast/internal/prompt"
	"github.com/yourusername/matchcast/internal/repository"
)

// FeatureSource supplies the feature record for a contest.
type FeatureSource interface {
	GetOrCompute(ctx context.Context, match *models.MatchRecord) (*models.FeatureRecord, error)
}

// ContextBuilder assembles the history context for a contest.
type ContextBuilder interface {
	Build(ctx context.Context, match *models.MatchRecord) (*models.HistoryContext, error)
}

// MatchFetcher resolves a contest the local store does not know yet.
type MatchFetcher interface {
	FetchAndStoreMatch(ctx context.Context, contestID int64) (*models.MatchRecord, error)
}

// tier is one candidate prediction source. Tiers are evaluated left to right
// with short-circuit on the first validated result.
type tier struct {
	engine  models.PredictionEngine
	client  generator.Generator
	timeout time.Duration
}

// Orchestrator runs the full prediction pipeline for one contest id.
type Orchestrator struct {
	matchRepo  repository.MatchRepository
	fetcher    MatchFetcher
	features   FeatureSource
	history    ContextBuilder
	normalizer *Normalizer
	fallback   *RuleBasedPredictor
	tiers      []tier
	logger     *logrus.Logger
}

// NewOrchestrator wires the pipeline. Pass nil for remote/local to leave that
// tier unconfigured; an unconfigured tier is skipped silently, it never
// counts as a failure.
func NewOrchestrator(
	matchRepo repository.MatchRepository,
	fetcher MatchFetcher,
	features FeatureSource,
	history ContextBuilder,
	fallback *RuleBasedPredictor,
	remote generator.Generator,
	remoteTimeout time.Duration,
	local generator.Generator,
	localTimeout time.Duration,
	logger *logrus.Logger,
) *Orchestrator {
	tiers := make([]tier, 0, 2)
	if remote != nil {
		tiers = append(tiers, tier{engine: models.EngineRemote, client: remote, timeout: remoteTimeout})
	}
	if local != nil {
		tiers = append(tiers, tier{engine: models.EngineLocal, client: local, timeout: localTimeout})
	}

	return &Orchestrator{
		matchRepo:  matchRepo,
		fetcher:    fetcher,
		features:   features,
		history:    history,
		normalizer: NewNormalizer(logger),
		fallback:   fallback,
		tiers:      tiers,
		logger:     logger,
	}
}

// Predict produces a fully-populated prediction for the contest, or a
// structured error when the contest cannot be resolved or featurized. The
// rule-based terminal tier guarantees a prediction whenever features exist.
func (o *Orchestrator) Predict(ctx context.Context, contestID int64) (*models.CanonicalPrediction, error) {
	start := time.Now()
	defer func() {
		metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	}()

	match, err := o.resolveMatch(ctx, contestID)
	if err != nil {
		return nil, err
	}

	historyCtx, err := o.history.Build(ctx, match)
	if err != nil {
		// History is advisory; features and the fallback do not need it.
		o.logger.WithError(err).WithField("contest_id", contestID).Warn("History context build failed")
		historyCtx = &models.HistoryContext{
			Sport:        match.Sport,
			HomeTeamName: match.HomeTeamName,
			AwayTeamName: match.AwayTeamName,
		}
	}

	features, err := o.features.GetOrCompute(ctx, match)
	if err != nil {
		if errors.Is(err, models.ErrNoFeatures) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", models.ErrNoFeatures, err)
	}

	promptText := prompt.Build(match, features, historyCtx)

	// Tiers run strictly in order; each call is awaited to completion before
	// the next tier is attempted.
	for _, t := range o.tiers {
		if candidate := o.attemptTier(ctx, t, promptText); candidate != nil {
			return o.finalize(candidate, contestID, t.engine), nil
		}
	}

	return o.finalize(o.fallback.Predict(match, features), contestID, models.EngineRuleBased), nil
}

func (o *Orchestrator) resolveMatch(ctx context.Context, contestID int64) (*models.MatchRecord, error) {
	if contestID <= 0 {
		return nil, fmt.Errorf("%w: %d", models.ErrInvalidContestID, contestID)
	}

	match, err := o.matchRepo.GetByID(ctx, contestID)
	if err == nil {
		return match, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to load contest %d: %w", contestID, err)
	}

	match, err = o.fetcher.FetchAndStoreMatch(ctx, contestID)
	if err != nil {
		if errors.Is(err, models.ErrInvalidContestID) {
			return nil, err
		}
		o.logger.WithError(err).WithField("contest_id", contestID).Warn("Contest not found locally or upstream")
		return nil, fmt.Errorf("%w: %d", models.ErrContestNotFound, contestID)
	}
	return match, nil
}

// attemptTier runs one generator tier and returns its validated prediction,
// or nil to fall through.
func (o *Orchestrator) attemptTier(ctx context.Context, t tier, promptText string) *models.CanonicalPrediction {
	tierCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	payload, err := t.client.Generate(tierCtx, promptText)
	metrics.GenerationLatency.WithLabelValues(string(t.engine)).Observe(time.Since(start).Seconds())

	if err != nil {
		reason := "call_failed"
		entry := o.logger.WithError(err).WithField("tier", t.engine)
		if errors.Is(err, generator.ErrModelNotFound) {
			reason = "model_not_found"
			entry.Warn("Generation model not found, falling through")
		} else {
			entry.Warn("Generation call failed, falling through")
		}
		metrics.TierFailuresTotal.WithLabelValues(string(t.engine), reason).Inc()
		return nil
	}

	candidate := o.normalizer.Normalize(payload)
	if candidate == nil {
		metrics.TierFailuresTotal.WithLabelValues(string(t.engine), "invalid_payload").Inc()
		o.logger.WithField("tier", t.engine).Warn("Generator payload failed validation, falling through")
		return nil
	}
	return candidate
}

// finalize stamps identity and provenance onto a validated candidate. A
// payload-declared engine label wins over the tier default.
func (o *Orchestrator) finalize(p *models.CanonicalPrediction, contestID int64, defaultEngine models.PredictionEngine) *models.CanonicalPrediction {
	p.ID = uuid.New()
	p.ContestID = contestID
	p.PredictedAt = time.Now().UTC()
	if p.Engine == "" {
		p.Engine = defaultEngine
	}
	metrics.PredictionsTotal.WithLabelValues(string(p.Engine)).Inc()
	return p
}
