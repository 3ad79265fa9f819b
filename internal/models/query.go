package models

import "fmt"

// DefaultLimit and MaxLimit bound the page size when a query does not set one.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// SearchQuery represents a search request with optional structured filters.
type SearchQuery struct {
	Query        string  `json:"query"`
	Limit        int     `json:"limit,omitempty"`
	Offset       int     `json:"offset,omitempty"`
	Location     string  `json:"location,omitempty"`      // substring match on location key
	Weather      string  `json:"weather,omitempty"`       // substring match on weather tag
	MinSize      int64   `json:"min_size,omitempty"`      // minimum file size in bytes
	MaxSize      int64   `json:"max_size,omitempty"`      // maximum file size in bytes (0 = unbounded)
	MinRelevance float64 `json:"min_relevance,omitempty"` // minimum fused score
}

// Validate ensures the query has valid fields and sets defaults.
// Returns an error if the query text is empty or the offset is negative;
// a non-positive limit is replaced with the default and limits above the
// maximum are capped.
func (q *SearchQuery) Validate() error {
	return q.ValidateWithLimits(DefaultLimit, MaxLimit)
}

// ValidateWithLimits is Validate with caller-supplied page-size bounds.
// Non-positive bounds fall back to the package defaults.
func (q *SearchQuery) ValidateWithLimits(defaultLimit, maxLimit int) error {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Offset < 0 {
		return fmt.Errorf("offset cannot be negative")
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return nil
}
