package datasource

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/bracket-oracle/internal/config"
)

// SourceType represents the type of data source
type SourceType string

const (
	// VLRSourceType scrapes public ranking and results pages
	VLRSourceType SourceType = "vlr"
	// FileSourceType reads a local JSON corpus file
	FileSourceType SourceType = "file"
)

// Factory creates DataSource implementations based on configuration
type Factory struct {
	logger *logrus.Logger
	config *config.IngestionConfig
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.IngestionConfig, logger *logrus.Logger) *Factory {
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// NewHTTPClient builds the shared rate-limited client from ingestion settings
func (f *Factory) NewHTTPClient() *RateLimitedHTTPClient {
	httpCfg := DefaultHTTPClientConfig()
	if f.config != nil {
		if f.config.RateLimitPerSecond > 0 {
			httpCfg.RateLimit = f.config.RateLimitPerSecond
		}
		if f.config.MaxRetries > 0 {
			httpCfg.MaxRetries = f.config.MaxRetries
		}
		if f.config.RequestTimeoutSecs > 0 {
			httpCfg.Timeout = time.Duration(f.config.RequestTimeoutSecs) * time.Second
		}
		if f.config.CircuitBreakerLimit > 0 {
			httpCfg.CircuitBreakerMax = f.config.CircuitBreakerLimit
		}
	}
	return NewRateLimitedHTTPClient(httpCfg, f.logger)
}

// Create creates a new data source of the given type
func (f *Factory) Create(sourceType SourceType, httpClient *RateLimitedHTTPClient) (DataSource, error) {
	switch sourceType {
	case VLRSourceType:
		if f.config == nil || f.config.RankingsURL == "" || f.config.MatchesURL == "" {
			return nil, fmt.Errorf("vlr source requires rankings and matches URLs")
		}
		if httpClient == nil {
			return nil, fmt.Errorf("vlr source requires an HTTP client")
		}
		return NewVLRClient(httpClient, f.config.RankingsURL, f.config.MatchesURL, true, f.logger), nil

	case FileSourceType:
		if f.config == nil || f.config.CorpusPath == "" {
			return nil, fmt.Errorf("file source requires a corpus path")
		}
		return NewFileSource(f.config.CorpusPath), nil

	default:
		return nil, fmt.Errorf("unknown data source type: %s", sourceType)
	}
}
