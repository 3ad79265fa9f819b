package ranking

import (
	"sort"

	"github.com/hyperjump/miru/internal/models"
)

// DefaultCandidateCap bounds how many candidates proceed to image analysis.
const DefaultCandidateCap = 200

// Candidate pairs a catalog record with its keyword relevance score for a
// single query. Candidates are query-local; the underlying record is shared
// and never mutated.
type Candidate struct {
	ItemID string
	Record *models.ItemRecord
	Score  float64
}

// SelectCandidates returns at most limit candidates ordered by descending
// score. Ties break on ItemID so repeated queries produce identical output.
// A non-positive limit falls back to DefaultCandidateCap. The input slice is
// not modified.
func SelectCandidates(candidates []Candidate, limit int) []Candidate {
	if limit <= 0 {
		limit = DefaultCandidateCap
	}

	selected := make([]Candidate, len(candidates))
	copy(selected, candidates)

	sort.Slice(selected, func(i, j int) bool {
		if selected[i].Score != selected[j].Score {
			return selected[i].Score > selected[j].Score
		}
		return selected[i].ItemID < selected[j].ItemID
	})

	if len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}
