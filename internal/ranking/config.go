// Package ranking provides the cheap keyword-based relevance filter applied to
// every catalog entry, and the candidate selector that bounds the rerank stage.
package ranking

// RankingConfig holds the keyword tables and tuning constants for the fast
// relevance filter. The weights and the partial-credit factor are empirical;
// they are kept configurable rather than derived.
type RankingConfig struct {
	// PartialCredit is the fraction of a keyword's weight granted when the
	// keyword appears in only one of (query, filename). A full match in both
	// grants the full weight.
	PartialCredit float64 `yaml:"partial_credit"` // default: 0.3

	// CorpusPatternBonus is added when the filename matches the known corpus
	// naming pattern (archive prefix or camera marker).
	CorpusPatternBonus float64 `yaml:"corpus_pattern_bonus"` // default: 0.1

	// WeatherTerms, LocationTerms, and CorpusTerms map keywords to weights.
	WeatherTerms  map[string]float64 `yaml:"weather_terms"`
	LocationTerms map[string]float64 `yaml:"location_terms"`
	CorpusTerms   map[string]float64 `yaml:"corpus_terms"`
}

// DefaultRankingConfig returns the default fast-filter configuration.
func DefaultRankingConfig() *RankingConfig {
	return &RankingConfig{
		PartialCredit:      0.3,
		CorpusPatternBonus: 0.1,
		WeatherTerms: map[string]float64{
			"fog":   0.4,
			"mist":  0.4,
			"haze":  0.4,
			"clear": 0.3,
			"sunny": 0.3,
			"rain":  0.3,
			"rainy": 0.3,
			"snow":  0.3,
			"snowy": 0.3,
			"night": 0.2,
			"day":   0.2,
		},
		LocationTerms: map[string]float64{
			"ganghwado":     0.5,
			"ganghwa":       0.4,
			"daebudo":       0.5,
			"daebu":         0.4,
			"deokjeokdo":    0.5,
			"baengnyeongdo": 0.5,
			"songdo":        0.5,
			"yeonpyeongdo":  0.5,
			"yeongjongdo":   0.5,
			"yeongjong":     0.4,
			"yeongheungdo":  0.5,
			"incheon":       0.4,
			"daesan":        0.4,
			"pyeongtaek":    0.4,
			"harbor":        0.3,
			"port":          0.3,
			"bridge":        0.3,
			"island":        0.3,
			"coast":         0.3,
			"pier":          0.2,
			"breakwater":    0.2,
		},
		CorpusTerms: map[string]float64{
			"cctv":   0.3,
			"camera": 0.2,
			"image":  0.2,
			"photo":  0.2,
		},
	}
}
