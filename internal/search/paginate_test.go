package search

import (
	"testing"

	"github.com/hyperjump/miru/internal/models"
	"github.com/hyperjump/miru/internal/ranking"
	"github.com/hyperjump/miru/internal/rerank"
)

func TestPageOf(t *testing.T) {
	tests := []struct {
		name                 string
		total, offset, limit int
		wantPage, wantPages  int
		wantHasMore          bool
	}{
		{"first of three", 25, 0, 10, 1, 3, true},
		{"middle", 25, 10, 10, 2, 3, true},
		{"last partial", 25, 20, 10, 3, 3, false},
		{"exact fit", 20, 10, 10, 2, 2, false},
		{"empty", 0, 0, 10, 1, 0, false},
		{"past the end", 25, 100, 10, 11, 3, false},
		{"offset far beyond ten items", 10, 100, 10, 11, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PageOf(tt.total, tt.offset, tt.limit)
			if got.CurrentPage != tt.wantPage {
				t.Errorf("CurrentPage = %d, want %d", got.CurrentPage, tt.wantPage)
			}
			if got.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", got.TotalPages, tt.wantPages)
			}
			if got.HasMore != tt.wantHasMore {
				t.Errorf("HasMore = %v, want %v", got.HasMore, tt.wantHasMore)
			}
			if got.TotalCount != tt.total || got.Offset != tt.offset || got.Limit != tt.limit {
				t.Errorf("echoed fields wrong: %+v", got)
			}
		})
	}
}

func TestSlice(t *testing.T) {
	items := make([]rerank.Scored, 5)

	if got := Slice(items, 0, 3); len(got) != 3 {
		t.Errorf("Slice(0,3) len = %d", len(got))
	}
	if got := Slice(items, 3, 3); len(got) != 2 {
		t.Errorf("Slice(3,3) len = %d", len(got))
	}
	if got := Slice(items, 5, 3); len(got) != 0 {
		t.Errorf("Slice past end len = %d", len(got))
	}
	if got := Slice(items, 100, 3); len(got) != 0 {
		t.Errorf("Slice far past end len = %d", len(got))
	}
}

func TestApplyFilters_MinRelevance(t *testing.T) {
	items := []rerank.Scored{
		{Final: 0.9},
		{Final: 0.3},
	}
	for i := range items {
		items[i].Record = &models.ItemRecord{}
	}

	got := ApplyFilters(items, &models.SearchQuery{Query: "q", MinRelevance: 0.5})
	if len(got) != 1 || got[0].Final != 0.9 {
		t.Errorf("filtered = %+v", got)
	}
}

func TestApplyFilters_NoFiltersPassThrough(t *testing.T) {
	items := []rerank.Scored{{Candidate: ranking.Candidate{Record: &models.ItemRecord{}}}}
	got := ApplyFilters(items, &models.SearchQuery{Query: "q"})
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}
