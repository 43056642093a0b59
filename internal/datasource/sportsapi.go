package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/matchcast/internal/config"
	"github.com/yourusername/matchcast/internal/models"
)

const sourceName = "sports_api"

// SportsAPIClient fetches fixtures from the hosted sports-data provider. The
// football and basketball products live on separate hosts but share the
// envelope format and authentication header.
type SportsAPIClient struct {
	http          *RateLimitedHTTPClient
	footballURL   string
	basketballURL string
	apiKey        string
	logger        *logrus.Logger
}

// NewSportsAPIClient creates a client for the sports-data provider
func NewSportsAPIClient(cfg *config.SportsDataConfig, logger *logrus.Logger) *SportsAPIClient {
	httpCfg := DefaultHTTPClientConfig()
	if cfg.TimeoutSeconds > 0 {
		httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.MaxRetries > 0 {
		httpCfg.MaxRetries = cfg.MaxRetries
	}
	if cfg.RateLimitPerSec > 0 {
		httpCfg.RateLimit = cfg.RateLimitPerSec
	}

	return &SportsAPIClient{
		http:          NewRateLimitedHTTPClient(httpCfg, logger),
		footballURL:   cfg.FootballURL,
		basketballURL: cfg.BasketballURL,
		apiKey:        cfg.APIKey,
		logger:        logger,
	}
}

// Name returns the name of the data source
func (c *SportsAPIClient) Name() string {
	return sourceName
}

// FetchMatch retrieves a single contest by the provider's raw id
func (c *SportsAPIClient) FetchMatch(ctx context.Context, sport models.Sport, rawID int64) (*models.MatchRecord, error) {
	url := fmt.Sprintf("%s?id=%d", c.endpoint(sport), rawID)
	matches, err := c.fetch(ctx, sport, url)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, NewDataSourceError(sourceName, ErrCodeNotFound,
			fmt.Sprintf("no %s contest with id %d", sport, rawID), ErrNotFound)
	}
	return matches[0], nil
}

// FetchTeamHistory retrieves a team's most recent finished contests
func (c *SportsAPIClient) FetchTeamHistory(ctx context.Context, sport models.Sport, teamID int64, limit int) ([]*models.MatchRecord, error) {
	url := fmt.Sprintf("%s?team=%d&last=%d", c.endpoint(sport), teamID, limit)
	return c.fetch(ctx, sport, url)
}

// FetchHeadToHead retrieves the most recent direct meetings of two teams
func (c *SportsAPIClient) FetchHeadToHead(ctx context.Context, sport models.Sport, teamAID, teamBID int64, limit int) ([]*models.MatchRecord, error) {
	url := fmt.Sprintf("%s?h2h=%d-%d&last=%d", c.endpoint(sport), teamAID, teamBID, limit)
	return c.fetch(ctx, sport, url)
}

func (c *SportsAPIClient) endpoint(sport models.Sport) string {
	if sport == models.SportBasketball {
		return c.basketballURL + "/games"
	}
	return c.footballURL + "/fixtures"
}

func (c *SportsAPIClient) fetch(ctx context.Context, sport models.Sport, url string) ([]*models.MatchRecord, error) {
	headers := map[string]string{"x-apisports-key": c.apiKey}

	resp, err := c.http.Get(ctx, url, headers)
	if err != nil {
		return nil, NewDataSourceError(sourceName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewDataSourceError(sourceName, ErrCodeRateLimitExceeded, "provider rate limit hit", ErrRateLimitExceeded)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewDataSourceError(sourceName, ErrCodeAuthFailed, "provider rejected credentials", ErrAuthenticationFailed)
	case resp.StatusCode >= 500:
		return nil, NewDataSourceError(sourceName, ErrCodeServerError,
			fmt.Sprintf("provider returned status %d", resp.StatusCode), ErrServerError)
	case resp.StatusCode != http.StatusOK:
		return nil, NewDataSourceError(sourceName, ErrCodeInvalidData,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), ErrInvalidData)
	}

	if sport == models.SportBasketball {
		var envelope basketballEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return nil, NewDataSourceError(sourceName, ErrCodeInvalidData, "failed to decode basketball payload", err)
		}
		return mapBasketballGames(envelope.Response), nil
	}

	var envelope footballEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, NewDataSourceError(sourceName, ErrCodeInvalidData, "failed to decode football payload", err)
	}
	return mapFootballFixtures(envelope.Response), nil
}

// Provider payload shapes. Only the fields the canonical record needs are
// declared; everything else in the envelope is ignored.

type footballEnvelope struct {
	Response []footballFixture `json:"response"`
}

type footballFixture struct {
	Fixture struct {
		ID     int64      `json:"id"`
		Date   *time.Time `json:"date"`
		Status struct {
			Short string `json:"short"`
		} `json:"status"`
	} `json:"fixture"`
	Teams struct {
		Home providerTeam `json:"home"`
		Away providerTeam `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *float64 `json:"home"`
		Away *float64 `json:"away"`
	} `json:"goals"`
}

type basketballEnvelope struct {
	Response []basketballGame `json:"response"`
}

type basketballGame struct {
	ID     int64      `json:"id"`
	Date   *time.Time `json:"date"`
	Status struct {
		Short string `json:"short"`
	} `json:"status"`
	Teams struct {
		Home providerTeam `json:"home"`
		Away providerTeam `json:"away"`
	} `json:"teams"`
	Scores struct {
		Home struct {
			Total *float64 `json:"total"`
		} `json:"home"`
		Away struct {
			Total *float64 `json:"total"`
		} `json:"away"`
	} `json:"scores"`
}

type providerTeam struct {
	ID   *int64 `json:"id"`
	Name string `json:"name"`
}

func mapFootballFixtures(fixtures []footballFixture) []*models.MatchRecord {
	matches := make([]*models.MatchRecord, 0, len(fixtures))
	for _, f := range fixtures {
		if f.Fixture.ID == 0 {
			continue
		}
		matches = append(matches, &models.MatchRecord{
			ID:           models.ContestID(models.SportFootball, f.Fixture.ID),
			Sport:        models.SportFootball,
			Date:         f.Fixture.Date,
			Status:       f.Fixture.Status.Short,
			HomeTeamID:   f.Teams.Home.ID,
			AwayTeamID:   f.Teams.Away.ID,
			HomeTeamName: f.Teams.Home.Name,
			AwayTeamName: f.Teams.Away.Name,
			HomeScore:    f.Goals.Home,
			AwayScore:    f.Goals.Away,
		})
	}
	return matches
}

func mapBasketballGames(games []basketballGame) []*models.MatchRecord {
	matches := make([]*models.MatchRecord, 0, len(games))
	for _, g := range games {
		if g.ID == 0 {
			continue
		}
		matches = append(matches, &models.MatchRecord{
			ID:           models.ContestID(models.SportBasketball, g.ID),
			Sport:        models.SportBasketball,
			Date:         g.Date,
			Status:       g.Status.Short,
			HomeTeamID:   g.Teams.Home.ID,
			AwayTeamID:   g.Teams.Away.ID,
			HomeTeamName: g.Teams.Home.Name,
			AwayTeamName: g.Teams.Away.Name,
			HomeScore:    g.Scores.Home.Total,
			AwayScore:    g.Scores.Away.Total,
		})
	}
	return matches
}
