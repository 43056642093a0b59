// Package datasource fetches contest data from the remote sports-data
// provider and maps it into canonical match records.
package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/matchcast/internal/models"
)

// DataSource defines the interface for fetching contest data from the
// external provider. All calls are bounded by limit and scoped to one sport.
type DataSource interface {
	// FetchMatch retrieves a single contest by the provider's raw id.
	FetchMatch(ctx context.Context, sport models.Sport, rawID int64) (*models.MatchRecord, error)

	// FetchTeamHistory retrieves a team's most recent finished contests.
	FetchTeamHistory(ctx context.Context, sport models.Sport, teamID int64, limit int) ([]*models.MatchRecord, error)

	// FetchHeadToHead retrieves the most recent direct meetings of two teams.
	FetchHeadToHead(ctx context.Context, sport models.Sport, teamAID, teamBID int64, limit int) ([]*models.MatchRecord, error)

	// Name returns the name of the data source
	Name() string
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeAuthFailed        = "authentication_failed"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
)

// Sentinel errors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrNetworkError         = errors.New("network error")
	ErrServerError          = errors.New("server error")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
