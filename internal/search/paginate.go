package search

import (
	"strings"

	"github.com/hyperjump/miru/internal/models"
	"github.com/hyperjump/miru/internal/rerank"
	"github.com/hyperjump/miru/pkg/utils"
)

// ApplyFilters applies the query's structured filters conjunctively.
// The input slice is not modified.
func ApplyFilters(items []rerank.Scored, q *models.SearchQuery) []rerank.Scored {
	if q.Location == "" && q.Weather == "" && q.MinSize == 0 && q.MaxSize == 0 && q.MinRelevance == 0 {
		return items
	}
	filtered := make([]rerank.Scored, 0, len(items))
	for _, item := range items {
		rec := item.Record
		if q.Location != "" && !strings.Contains(strings.ToLower(rec.Location), strings.ToLower(q.Location)) {
			continue
		}
		if q.Weather != "" && !strings.Contains(strings.ToLower(rec.Weather), strings.ToLower(q.Weather)) {
			continue
		}
		if q.MinSize > 0 && rec.SizeBytes < q.MinSize {
			continue
		}
		if q.MaxSize > 0 && rec.SizeBytes > q.MaxSize {
			continue
		}
		if q.MinRelevance > 0 && item.Final < q.MinRelevance {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

// Slice returns the [offset, offset+limit) window of items. Offsets past the
// end yield an empty slice, never an error.
func Slice(items []rerank.Scored, offset, limit int) []rerank.Scored {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// PageOf computes pagination metadata for a result window.
func PageOf(total, offset, limit int) models.Page {
	return models.Page{
		Offset:      offset,
		Limit:       limit,
		CurrentPage: offset/limit + 1,
		TotalPages:  utils.CeilDiv(total, limit),
		TotalCount:  total,
		HasMore:     offset+limit < total,
	}
}
