package rerank

import (
	"strings"
	"testing"
)

func TestParseResponse_WellFormed(t *testing.T) {
	a := ParseResponse("Score: 0.85\nDescription: Dense fog over the harbor entrance", "fog")
	if a.Score != 0.85 {
		t.Errorf("score = %v, want 0.85", a.Score)
	}
	if a.Description != "Dense fog over the harbor entrance" {
		t.Errorf("description = %q", a.Description)
	}
}

func TestParseResponse_CaseInsensitiveLabels(t *testing.T) {
	a := ParseResponse("score: 0.4\ndescription: clear skies", "clear")
	if a.Score != 0.4 || a.Description != "clear skies" {
		t.Errorf("parsed = %+v", a)
	}
}

func TestParseResponse_ScoreClamped(t *testing.T) {
	a := ParseResponse("Score: 1.7\nDescription: x", "q")
	if a.Score != 1.0 {
		t.Errorf("score = %v, want clamped 1.0", a.Score)
	}
}

func TestParseResponse_MissingScoreKeywordOverlap(t *testing.T) {
	a := ParseResponse("The image shows heavy fog near the pier.", "fog at the pier")
	if a.Score != 0.5 {
		t.Errorf("score = %v, want 0.5 (query word present in response)", a.Score)
	}
}

func TestParseResponse_MissingScoreNoOverlap(t *testing.T) {
	a := ParseResponse("A sunny road with light traffic", "fog")
	if a.Score != 0.1 {
		t.Errorf("score = %v, want 0.1 (no query word in response)", a.Score)
	}
}

func TestParseResponse_MissingDescriptionUsesFirstSentence(t *testing.T) {
	a := ParseResponse("Heavy fog is visible. Vehicles have headlights on.", "fog")
	if a.Description != "Heavy fog is visible" {
		t.Errorf("description = %q", a.Description)
	}
}

func TestParseResponse_DescriptionTruncated(t *testing.T) {
	long := strings.Repeat("fog ", 60)
	a := ParseResponse("Score: 0.5\nDescription: "+long, "fog")
	if len(a.Description) > maxDescriptionLen+len("...") {
		t.Errorf("description not truncated: %d chars", len(a.Description))
	}
	if !strings.HasSuffix(a.Description, "...") {
		t.Errorf("truncated description should end with ellipsis: %q", a.Description)
	}
}
