package rerank

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperjump/miru/pkg/utils"
)

const maxDescriptionLen = 100

var (
	scorePattern = regexp.MustCompile(`(?i)score\s*[:：]\s*([0-9]*\.?[0-9]+)`)
	descPattern  = regexp.MustCompile(`(?i)description\s*[:：]\s*(.+)`)
)

// ParseResponse extracts the score and description from a model response.
// Models do not always follow the requested format, so parsing is lenient:
// a missing score is estimated from keyword overlap with the query (0.5 if
// any query word appears in the response, 0.1 otherwise), and a missing
// description falls back to the response's first sentence.
func ParseResponse(response, query string) Analysis {
	a := Analysis{Score: estimateScore(response, query)}
	if m := scorePattern.FindStringSubmatch(response); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			a.Score = utils.Clamp01(v)
		}
	}

	if m := descPattern.FindStringSubmatch(response); m != nil {
		a.Description = strings.TrimSpace(m[1])
	} else {
		a.Description = firstSentence(response)
	}
	a.Description = utils.Truncate(a.Description, maxDescriptionLen)
	return a
}

func estimateScore(response, query string) float64 {
	responseLower := strings.ToLower(response)
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if strings.Contains(responseLower, word) {
			return 0.5
		}
	}
	return 0.1
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".\n"); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
