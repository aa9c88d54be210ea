package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/yourusername/bracket-oracle/internal/models"
)

const fileSourceName = "file"

// corpusDocument is the on-disk layout of an exported corpus file
type corpusDocument struct {
	Teams   []models.Team        `json:"teams,omitempty"`
	Matches []models.MatchRecord `json:"matches"`
}

// FileSource reads teams and match results from a local JSON corpus file.
// Useful for offline runs and for replaying previously exported data.
type FileSource struct {
	path    string
	enabled bool
}

// NewFileSource creates a data source backed by a JSON corpus file
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path, enabled: true}
}

// Name returns the data source name
func (s *FileSource) Name() string {
	return fileSourceName
}

// IsEnabled returns whether this source is enabled
func (s *FileSource) IsEnabled() bool {
	return s.enabled
}

// FetchRankings returns the teams section of the corpus file
func (s *FileSource) FetchRankings(ctx context.Context) ([]models.Team, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Teams, nil
}

// FetchMatches returns the matches section of the corpus file
func (s *FileSource) FetchMatches(ctx context.Context) ([]models.MatchRecord, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	if len(doc.Matches) == 0 {
		return nil, NewDataSourceError(fileSourceName, ErrCodeInvalidData, "corpus file contains no matches", ErrInvalidData)
	}
	return doc.Matches, nil
}

func (s *FileSource) load() (*corpusDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewDataSourceError(fileSourceName, ErrCodeNotFound, fmt.Sprintf("corpus file %s not found", s.path), err)
		}
		return nil, NewDataSourceError(fileSourceName, ErrCodeUnknown, "failed to read corpus file", err)
	}

	var doc corpusDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, NewDataSourceError(fileSourceName, ErrCodeInvalidData, "failed to decode corpus file", err)
	}
	return &doc, nil
}
