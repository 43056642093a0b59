// Package prompt renders features and match history into the generation
// request sent to the free-form generators.
package prompt

import (
	"fmt"
	"strings"

	"github.com/yourusername/matchcast/internal/models"
)

const responseSchema = `Respond with ONLY a JSON object in exactly this shape:
{
  "prediction": "<one-line outcome call>",
  "probabilities": {"home": 0.0, "draw": 0.0, "away": 0.0},
  "explanation": "<2-3 sentence analysis>",
  "betting_advice": {
    "recommendation": "<suggested bet>",
    "confidence": 0.0,
    "reasoning": "<1-2 sentence justification>"
  }
}
The three probabilities must be non-negative and sum to 1. Confidence is in [0, 1].`

// Build renders the full generation prompt. It is a pure function of its
// inputs: no storage or network access, deterministic output.
func Build(match *models.MatchRecord, features *models.FeatureRecord, history *models.HistoryContext) string {
	var sb strings.Builder

	sb.WriteString(persona(match.Sport))
	sb.WriteString("\n\n")
	sb.WriteString(responseSchema)
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Upcoming %s contest: %s (home) vs %s (away).\n",
		match.Sport, match.HomeTeamName, match.AwayTeamName)
	if match.Date != nil {
		fmt.Fprintf(&sb, "Scheduled: %s.\n", match.Date.Format("2006-01-02 15:04 MST"))
	}
	fmt.Fprintf(&sb, "Computed features: home form %.2f, away form %.2f, home scoring average %.2f, away scoring average %.2f.\n",
		features.HomeForm, features.AwayForm, features.HomeScoringAvg, features.AwayScoringAvg)

	sb.WriteString("\n")
	sb.WriteString(recentBlock(history.HomeTeamName, history.HomeRecent))
	sb.WriteString("\n")
	sb.WriteString(recentBlock(history.AwayTeamName, history.AwayRecent))
	sb.WriteString("\n")
	sb.WriteString(headToHeadBlock(history))

	return sb.String()
}

func persona(sport models.Sport) string {
	if sport == models.SportBasketball {
		return "You are a seasoned basketball analyst who specializes in pre-game outcome forecasting from team form and scoring trends."
	}
	return "You are a seasoned football (soccer) analyst who specializes in pre-match outcome forecasting from team form and scoring trends."
}

// recentBlock renders one team's recent-match list with a win/draw/loss tally
// and an aggregate scoring line.
func recentBlock(teamName string, matches []*models.MatchRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Recent matches for %s:\n", teamName)

	var lines []string
	var wins, draws, losses int
	var scored, conceded float64
	for _, m := range matches {
		if !m.HasResult() {
			continue
		}
		teamScore, _ := m.ScoreFor(teamName)
		oppScore, _ := m.OpponentScoreFor(teamName)
		scored += teamScore
		conceded += oppScore
		switch {
		case teamScore > oppScore:
			wins++
		case teamScore == oppScore:
			draws++
		default:
			losses++
		}
		lines = append(lines, fmt.Sprintf("  %s: %s %s vs %s %s",
			m.Date.Format("2006-01-02"),
			m.HomeTeamName, formatScore(m.HomeScore),
			m.AwayTeamName, formatScore(m.AwayScore)))
	}

	if len(lines) == 0 {
		fmt.Fprintf(&sb, "  No recent match data is available for %s.\n", teamName)
		return sb.String()
	}

	sb.WriteString(strings.Join(lines, "\n"))
	fmt.Fprintf(&sb, "\n  Tally: %dW-%dD-%dL, scored %.0f, conceded %.0f.\n",
		wins, draws, losses, scored, conceded)
	return sb.String()
}

// headToHeadBlock renders the direct meetings with per-side win tallies.
func headToHeadBlock(history *models.HistoryContext) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Head-to-head between %s and %s:\n", history.HomeTeamName, history.AwayTeamName)

	var lines []string
	var homeWins, awayWins, draws int
	for _, m := range history.HeadToHead {
		if !m.HasResult() {
			continue
		}
		homeScore, okHome := m.ScoreFor(history.HomeTeamName)
		awayScore, okAway := m.ScoreFor(history.AwayTeamName)
		if !okHome || !okAway {
			continue
		}
		switch {
		case homeScore > awayScore:
			homeWins++
		case awayScore > homeScore:
			awayWins++
		default:
			draws++
		}
		lines = append(lines, fmt.Sprintf("  %s: %s %s vs %s %s",
			m.Date.Format("2006-01-02"),
			m.HomeTeamName, formatScore(m.HomeScore),
			m.AwayTeamName, formatScore(m.AwayScore)))
	}

	if len(lines) == 0 {
		sb.WriteString("  These teams have no recorded head-to-head history.\n")
		return sb.String()
	}

	sb.WriteString(strings.Join(lines, "\n"))
	fmt.Fprintf(&sb, "\n  Tally: %s %d wins, %s %d wins, %d draws.\n",
		history.HomeTeamName, homeWins, history.AwayTeamName, awayWins, draws)
	return sb.String()
}

func formatScore(score *float64) string {
	if score == nil {
		return "?"
	}
	return fmt.Sprintf("%.0f", *score)
}
