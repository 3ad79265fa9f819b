package ranking

import (
	"sort"
	"strings"

	"github.com/hyperjump/miru/pkg/utils"
)

// QuickScorer scores filenames against query text using fixed keyword tables.
// It is pure and deterministic: no I/O, same inputs always yield the same score.
type QuickScorer struct {
	config *RankingConfig
	tables [][]weightedTerm
}

type weightedTerm struct {
	keyword string
	weight  float64
}

// NewQuickScorer creates a QuickScorer with the given config.
// A nil config uses the defaults.
func NewQuickScorer(config *RankingConfig) *QuickScorer {
	if config == nil {
		config = DefaultRankingConfig()
	}
	return &QuickScorer{
		config: config,
		// Keywords are flattened into sorted slices so that summation order,
		// and therefore the score, is identical across runs.
		tables: [][]weightedTerm{
			sortTerms(config.WeatherTerms),
			sortTerms(config.LocationTerms),
			sortTerms(config.CorpusTerms),
		},
	}
}

func sortTerms(table map[string]float64) []weightedTerm {
	terms := make([]weightedTerm, 0, len(table))
	for keyword, weight := range table {
		terms = append(terms, weightedTerm{keyword: keyword, weight: weight})
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].keyword < terms[j].keyword })
	return terms
}

// Score returns a relevance score in [0,1] for filename against query.
//
// For every keyword in the weather, location, and corpus tables: a keyword
// present in both the query and the filename adds its full weight; a keyword
// present in exactly one of the two adds PartialCredit times its weight.
// The one-sided credit keeps recall high before the rerank stage: a query
// that merely mentions a concept found in a filename still surfaces the item,
// while items matching on both sides rank higher.
func (s *QuickScorer) Score(filename, query string) float64 {
	queryLower := strings.ToLower(query)
	filenameLower := strings.ToLower(filename)

	score := 0.0
	for _, table := range s.tables {
		score += s.scoreTable(table, queryLower, filenameLower)
	}

	if matchesCorpusPattern(filenameLower) {
		score += s.config.CorpusPatternBonus
	}

	return utils.Clamp01(score)
}

func (s *QuickScorer) scoreTable(table []weightedTerm, queryLower, filenameLower string) float64 {
	score := 0.0
	for _, term := range table {
		inQuery := strings.Contains(queryLower, term.keyword)
		inFilename := strings.Contains(filenameLower, term.keyword)
		switch {
		case inQuery && inFilename:
			score += term.weight
		case inQuery || inFilename:
			score += term.weight * s.config.PartialCredit
		}
	}
	return score
}

// matchesCorpusPattern reports whether the filename follows the corpus naming
// convention ("TS." archive prefix or an explicit camera marker).
func matchesCorpusPattern(filenameLower string) bool {
	return strings.Contains(filenameLower, "ts.") || strings.Contains(filenameLower, "cctv")
}
