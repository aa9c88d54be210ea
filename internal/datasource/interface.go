// Package datasource fetches team rankings and historical match results
// from external providers and normalizes them into the shared models.
package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/bracket-oracle/internal/models"
)

// DataSource defines the interface for fetching tournament data from external providers
type DataSource interface {
	// FetchRankings retrieves the current team rankings
	FetchRankings(ctx context.Context) ([]models.Team, error)

	// FetchMatches retrieves historical match results
	FetchMatches(ctx context.Context) ([]models.MatchRecord, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
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
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
	ErrCodeUnknown           = "unknown"
)

var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrNotFound          = errors.New("data not found")
	ErrInvalidData       = errors.New("invalid data format")
	ErrNetworkError      = errors.New("network error")
	ErrServerError       = errors.New("server error")
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
