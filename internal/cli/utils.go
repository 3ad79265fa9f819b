// Package cli provides CLI output utilities for Miru.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hyperjump/miru/internal/models"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputCompact is one result per line, grep-friendly.
	OutputCompact SearchOutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		writeSearchResultsCompact(w, response)
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d results in %dms (page %d of %d)\n\n",
		response.Page.TotalCount, response.QueryTime,
		response.Page.CurrentPage, response.Page.TotalPages)
	for i, result := range response.Items {
		writeOneResult(w, result, response.Page.Offset+i+1)
	}
	if response.Page.HasMore {
		fmt.Fprintf(w, "More results available (use --offset %d)\n",
			response.Page.Offset+response.Page.Limit)
	}
}

func writeOneResult(w io.Writer, result *models.SearchResult, rank int) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Rank: %d | Score: %.4f (Fast: %.4f, VLM: %.4f)\n",
		rank, result.Score, result.FastScore, result.VLMScore)
	fmt.Fprintf(w, "ID: %s\n", result.ItemID)
	fmt.Fprintf(w, "Location: %s", result.Location)
	if result.Weather != "" {
		fmt.Fprintf(w, " | Weather: %s", result.Weather)
	}
	if result.Timestamp != nil {
		fmt.Fprintf(w, " | Taken: %s", result.Timestamp.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(w)
	if result.Description != "" {
		fmt.Fprintf(w, "\n%s\n", Truncate(result.Description, 200))
	}
	fmt.Fprintln(w)
}

func writeSearchResultsCompact(w io.Writer, response *models.SearchResponse) {
	for _, result := range response.Items {
		fmt.Fprintf(w, "%.4f\t%s\t%s\t%s\n",
			result.Score, result.ItemID, result.Weather, result.Description)
	}
}

// PrintSearchResults prints search results to stdout in text format.
func PrintSearchResults(response *models.SearchResponse) {
	_ = WriteSearchResults(os.Stdout, response, OutputText)
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
