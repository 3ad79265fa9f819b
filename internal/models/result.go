package models

import "time"

// SearchResult is one hit with its fused score and display fields.
// Scores are computed per query and carried here, not written back to the
// shared ItemRecord, so concurrent searches cannot corrupt each other.
type SearchResult struct {
	ItemID       string     `json:"id"`
	Filename     string     `json:"filename"`
	Location     string     `json:"location"`
	Weather      string     `json:"weather,omitempty"`
	Timestamp    *time.Time `json:"timestamp,omitempty"`
	SizeBytes    int64      `json:"file_size"`
	Score        float64    `json:"relevance_score"`
	FastScore    float64    `json:"fast_score"`
	VLMScore     float64    `json:"vlm_score"`
	Description  string     `json:"description"`
	Degraded     bool       `json:"degraded,omitempty"`
	ImageURL     string     `json:"image_url"`
	ThumbnailURL string     `json:"thumbnail_url"`
}

// Page holds derived pagination metadata. All fields are computed from
// (offset, limit, total_count); nothing here is stored.
type Page struct {
	Offset      int  `json:"offset"`
	Limit       int  `json:"limit"`
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	TotalCount  int  `json:"total_count"`
	HasMore     bool `json:"has_more"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Query     string          `json:"query"`
	Items     []*SearchResult `json:"items"`
	Page      Page            `json:"page"`
	QueryTime int64           `json:"query_time_ms"`
}

// LocationCount is one entry of the locations listing.
type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}
