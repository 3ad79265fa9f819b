package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/miru/internal/models"
)

func sampleResponse() *models.SearchResponse {
	ts := time.Date(2024, 4, 3, 15, 20, 0, 0, time.UTC)
	return &models.SearchResponse{
		Query:     "fog",
		QueryTime: 42,
		Items: []*models.SearchResult{
			{
				ItemID:      "daebudo/TS.daebudo_fog.jpg",
				Filename:    "TS.daebudo_fog.jpg",
				Location:    "daebudo",
				Weather:     "fog",
				Timestamp:   &ts,
				Score:       0.9,
				FastScore:   0.4,
				VLMScore:    0.95,
				Description: "Dense fog over the pier",
				ImageURL:    "/api/v1/images/daebudo/TS.daebudo_fog.jpg",
			},
		},
		Page: models.Page{
			Offset:      0,
			Limit:       20,
			CurrentPage: 1,
			TotalPages:  1,
			TotalCount:  1,
		},
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	response := sampleResponse()
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, response, OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded models.SearchResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Query != response.Query || decoded.QueryTime != response.QueryTime {
		t.Errorf("decoded query=%q query_time=%d, want query=%q query_time=%d",
			decoded.Query, decoded.QueryTime, response.Query, response.QueryTime)
	}
	if len(decoded.Items) != 1 || decoded.Items[0].ItemID != "daebudo/TS.daebudo_fog.jpg" {
		t.Errorf("decoded items: want one result with the sample id, got %+v", decoded.Items)
	}
	if decoded.Page.TotalCount != 1 {
		t.Errorf("decoded page total_count = %d, want 1", decoded.Page.TotalCount)
	}
}

func TestWriteSearchResults_JSON_empty(t *testing.T) {
	response := &models.SearchResponse{Query: "q", Page: models.Page{Limit: 20}}
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, response, OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded models.SearchResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("empty response JSON decode: %v", err)
	}
	if decoded.Page.TotalCount != 0 || len(decoded.Items) != 0 {
		t.Errorf("expected empty page, got total_count=%d items=%d",
			decoded.Page.TotalCount, len(decoded.Items))
	}
}

func TestWriteSearchResults_text(t *testing.T) {
	response := sampleResponse()
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, response, OutputText); err != nil {
		t.Fatalf("WriteSearchResults(text): %v", err)
	}
	out := buf.String()
	for _, sub := range []string{
		"Found 1 results", "42ms", "page 1 of 1",
		"Rank: 1", "ID: daebudo/TS.daebudo_fog.jpg",
		"Location: daebudo", "Weather: fog",
		"2024-04-03 15:20:00", "Dense fog over the pier",
	} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteSearchResults_text_hasMoreHint(t *testing.T) {
	response := sampleResponse()
	response.Page = models.Page{
		Offset: 0, Limit: 1, CurrentPage: 1, TotalPages: 3, TotalCount: 3, HasMore: true,
	}
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, response, OutputText); err != nil {
		t.Fatalf("WriteSearchResults(text): %v", err)
	}
	if !strings.Contains(buf.String(), "--offset 1") {
		t.Errorf("expected a next-page hint in output:\n%s", buf.String())
	}
}

func TestWriteSearchResults_compact(t *testing.T) {
	response := sampleResponse()
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, response, OutputCompact); err != nil {
		t.Fatalf("WriteSearchResults(compact): %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("compact output: want 1 line, got %d:\n%s", len(lines), buf.String())
	}
	fields := strings.Split(lines[0], "\t")
	if len(fields) != 4 {
		t.Fatalf("compact line: want 4 tab-separated fields, got %d: %q", len(fields), lines[0])
	}
	if fields[0] != "0.9000" || fields[1] != "daebudo/TS.daebudo_fog.jpg" {
		t.Errorf("compact fields = %v", fields)
	}
}

func TestWriteSearchResults_unknownFormatTreatedAsText(t *testing.T) {
	response := &models.SearchResponse{Query: "x", Page: models.Page{CurrentPage: 1, TotalPages: 1}}
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, response, SearchOutputFormat("unknown")); err != nil {
		t.Fatalf("WriteSearchResults(unknown): %v", err)
	}
	if !strings.Contains(buf.String(), "Found") {
		t.Errorf("unknown format should fall back to text; got %q", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"empty", "", 5, ""},
		{"short", "hi", 5, "hi"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 5, "hello..."},
		{"maxLen zero", "ab", 0, "ab"},
		{"maxLen negative", "ab", -1, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.s, tt.maxLen)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestPrintSearchResults(t *testing.T) {
	response := &models.SearchResponse{Query: "print test", Page: models.Page{CurrentPage: 1, TotalPages: 1}}
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() {
		os.Stdout = oldStdout
		_ = w.Close()
	}()
	PrintSearchResults(response)
	_ = w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	if !strings.Contains(buf.String(), "Found 0 results") {
		t.Errorf("PrintSearchResults should write to stdout; got %q", buf.String())
	}
}
