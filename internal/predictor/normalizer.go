// Package predictor drives the tiered prediction pipeline: generator tiers,
// response normalization and the rule-based terminal fallback.
package predictor

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/matchcast/internal/metrics"
	"github.com/yourusername/matchcast/internal/models"
)

// maxSearchDepth bounds the recursive search over nested payload fields.
// Observed generator payloads need at most root -> candidates array ->
// message object -> text field.
const maxSearchDepth = 4

// nestedTextFields are the field names generators commonly bury their output
// under, tried in order.
var nestedTextFields = []string{"response", "output", "text", "content", "message", "completion"}

// candidateArrayFields are the field names generators use for arrays of
// alternative completions.
var candidateArrayFields = []string{"choices", "candidates", "results", "outputs"}

// Normalizer extracts and validates a canonical prediction out of whatever a
// generator returned. It never fails loudly: an unusable payload yields nil,
// which tells the orchestrator to fall through to the next tier.
type Normalizer struct {
	logger *logrus.Logger
}

// NewNormalizer creates a response normalizer
func NewNormalizer(logger *logrus.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize returns the validated prediction carried by the payload, or nil
// when none can be recovered. Only the probability fields are load-bearing;
// missing text fields are filled with placeholders.
func (n *Normalizer) Normalize(raw any) *models.CanonicalPrediction {
	candidate := n.findCandidate(raw, 0)
	if candidate == nil {
		metrics.NormalizerRejectionsTotal.WithLabelValues("invalid_shape").Inc()
		n.logger.Warn("Generator payload has no recognizable prediction structure")
		return nil
	}

	probs, ok := parseProbabilities(candidate["probabilities"])
	if !ok {
		metrics.NormalizerRejectionsTotal.WithLabelValues("unparseable_probabilities").Inc()
		n.logger.Warn("Generator payload has prediction shape but unparseable probabilities")
		return nil
	}

	prediction := &models.CanonicalPrediction{
		OutcomeLabel:  stringField(candidate, "prediction", "No outcome provided"),
		Probabilities: probs,
		Explanation:   stringField(candidate, "explanation", "No explanation provided"),
	}

	advice, _ := candidate["betting_advice"].(map[string]any)
	if advice == nil {
		advice, _ = candidate["bettingAdvice"].(map[string]any)
	}
	prediction.BettingAdvice = models.BettingAdvice{
		Recommendation: stringField(advice, "recommendation", "No recommendation"),
		Confidence:     confidenceField(advice),
		Reasoning:      stringField(advice, "reasoning", "No reasoning provided"),
	}

	// A payload may declare which engine produced it; keep that label when
	// it is one of ours.
	if engine, ok := candidate["engine"].(string); ok {
		e := models.PredictionEngine(engine)
		if e == models.EngineRemote || e == models.EngineLocal || e == models.EngineRuleBased {
			prediction.Engine = e
		}
	}

	return prediction
}

// findCandidate walks the payload looking for an object exposing both
// "prediction" and "probabilities".
func (n *Normalizer) findCandidate(value any, depth int) map[string]any {
	if depth > maxSearchDepth || value == nil {
		return nil
	}

	switch v := value.(type) {
	case string:
		parsed := parseEmbeddedObject(v)
		if parsed == nil {
			return nil
		}
		return n.findCandidate(parsed, depth+1)

	case map[string]any:
		if _, hasPrediction := v["prediction"]; hasPrediction {
			if _, hasProbs := v["probabilities"]; hasProbs {
				return v
			}
		}
		for _, field := range nestedTextFields {
			if nested, ok := v[field]; ok {
				if candidate := n.findCandidate(nested, depth+1); candidate != nil {
					return candidate
				}
			}
		}
		for _, field := range candidateArrayFields {
			if arr, ok := v[field].([]any); ok {
				for _, item := range arr {
					if candidate := n.findCandidate(item, depth+1); candidate != nil {
						return candidate
					}
				}
			}
		}
		return nil

	case []any:
		for _, item := range v {
			if candidate := n.findCandidate(item, depth+1); candidate != nil {
				return candidate
			}
		}
		return nil

	default:
		return nil
	}
}

// parseEmbeddedObject locates the first balanced {...} span in the text and
// parses it, applying one forgiving repair pass when strict parsing fails.
func parseEmbeddedObject(text string) map[string]any {
	span := extractObjectSpan(text)
	if span == "" {
		return nil
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(span), &parsed); err == nil {
		return parsed
	}

	repaired := repairJSON(span)
	if err := json.Unmarshal([]byte(repaired), &parsed); err == nil {
		return parsed
	}
	return nil
}

// extractObjectSpan returns the first balanced-brace object span in the text,
// tracking string literals so braces inside them do not count.
func extractObjectSpan(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// repairJSON applies the two repairs that cover most generator malformations:
// single-quoted strings and trailing commas before closing brackets.
func repairJSON(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	inDouble := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			sb.WriteByte(c)
			escaped = false
		case c == '\\':
			sb.WriteByte(c)
			escaped = true
		case c == '"':
			inDouble = !inDouble
			sb.WriteByte(c)
		case c == '\'' && !inDouble:
			sb.WriteByte('"')
		case (c == '}' || c == ']') && !inDouble:
			trimmed := strings.TrimRight(sb.String(), " \t\r\n")
			if strings.HasSuffix(trimmed, ",") {
				sb.Reset()
				sb.WriteString(trimmed[:len(trimmed)-1])
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// parseProbabilities validates and normalizes the three-way distribution.
func parseProbabilities(raw any) (models.Probabilities, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return models.Probabilities{}, false
	}

	home, okHome := toFiniteFloat(obj["home"])
	draw, okDraw := toFiniteFloat(obj["draw"])
	away, okAway := toFiniteFloat(obj["away"])
	if !okHome || !okDraw || !okAway {
		return models.Probabilities{}, false
	}
	if home < 0 || draw < 0 || away < 0 {
		return models.Probabilities{}, false
	}

	sum := home + draw + away
	if sum <= 0 || math.IsInf(sum, 0) || math.IsNaN(sum) {
		return models.Probabilities{}, false
	}

	return models.Probabilities{
		Home: round2(home / sum),
		Draw: round2(draw / sum),
		Away: round2(away / sum),
	}, true
}

func toFiniteFloat(v any) (float64, bool) {
	var f float64
	switch value := v.(type) {
	case float64:
		f = value
	case json.Number:
		parsed, err := value.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func stringField(obj map[string]any, key, fallback string) string {
	if obj == nil {
		return fallback
	}
	if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

func confidenceField(advice map[string]any) float64 {
	if advice == nil {
		return 0
	}
	if f, ok := toFiniteFloat(advice["confidence"]); ok {
		return round2(f)
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
