// Package integration runs the whole pipeline against the HTTP API
// (real containers on disk, snapshot persistence, reranked search).
package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/miru/internal/archive"
	"github.com/hyperjump/miru/internal/catalog"
	"github.com/hyperjump/miru/internal/config"
	"github.com/hyperjump/miru/internal/models"
	"github.com/hyperjump/miru/internal/ranking"
	"github.com/hyperjump/miru/internal/rerank"
	"github.com/hyperjump/miru/internal/search"
	"github.com/hyperjump/miru/internal/server"
	"github.com/hyperjump/miru/test/e2e"
)

// keywordAnalyzer stands in for the VLM backend: images whose filename
// contains the query word get a high score with a description, the rest
// score low.
type keywordAnalyzer struct{}

func (keywordAnalyzer) Analyze(_ context.Context, query, filename string, _ []byte) (rerank.Analysis, error) {
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if strings.Contains(strings.ToLower(filename), word) {
			return rerank.Analysis{Score: 0.9, Description: "Matched " + word + " conditions"}, nil
		}
	}
	return rerank.Analysis{Score: 0.05, Description: "No match"}, nil
}

func newStack(t *testing.T) (http.Handler, *catalog.Rebuilder) {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "corpus")
	corpus := e2e.BuildCorpus()
	if _, err := e2e.WriteCorpusArchives(root, corpus); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	logger := zap.NewNop()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Corpus.Root = root
	cfg.Corpus.SnapshotPath = filepath.Join(dir, "catalog.db")
	cfg.Corpus.TempDir = filepath.Join(dir, "tmp")

	store := catalog.NewStore()
	builder := catalog.NewBuilder(root, catalog.WithLogger(logger))
	snapshot, err := catalog.OpenSnapshot(cfg.Corpus.SnapshotPath)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	t.Cleanup(func() { snapshot.Close() })
	rebuilder := catalog.NewRebuilder(builder, store, snapshot, logger)
	if _, err := rebuilder.Rebuild(context.Background()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	retriever := archive.NewRetriever(store,
		archive.WithTempDir(cfg.Corpus.TempDir),
		archive.WithRoot(cfg.Corpus.Root))
	reranker, err := rerank.NewReranker(keywordAnalyzer{}, retriever, 4,
		rerank.WithCache(rerank.NewAnalysisCache(64)))
	if err != nil {
		t.Fatalf("new reranker: %v", err)
	}
	t.Cleanup(reranker.Release)

	engine := search.NewEngine(store, ranking.NewQuickScorer(nil),
		search.WithReranker(reranker),
		search.WithCandidateCap(cfg.Search.CandidateCap),
		search.WithLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit),
		search.WithThreshold(cfg.Search.SimilarityThreshold),
	)
	srv := server.NewServer(engine, retriever, store, rebuilder, cfg, logger)
	return srv.Router(), rebuilder
}

func TestIntegration_SearchWithRerank(t *testing.T) {
	handler, _ := newStack(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?query=fog&limit=10", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp models.SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) == 0 {
		t.Fatal("expected results for fog")
	}
	top := resp.Items[0]
	if !strings.Contains(top.Filename, "fog") {
		t.Errorf("top hit = %q, want a fog image", top.ItemID)
	}
	if top.VLMScore != 0.9 {
		t.Errorf("top vlm_score = %v, want analyzer score 0.9", top.VLMScore)
	}
	if !strings.Contains(top.Description, "Matched fog") {
		t.Errorf("top description = %q, want analyzer description", top.Description)
	}
	if top.Degraded {
		t.Error("top hit should not be degraded")
	}
	// Fused score must blend both stages, not echo either one.
	if top.Score == top.FastScore || top.Score == top.VLMScore {
		t.Errorf("fused score %v should differ from fast %v and vlm %v",
			top.Score, top.FastScore, top.VLMScore)
	}
}

func TestIntegration_ImageRoundTrip(t *testing.T) {
	handler, _ := newStack(t)

	// Find a real id via search, then fetch its image bytes.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?query=songdo&limit=1", nil))
	var resp models.SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) == 0 {
		t.Fatal("no results to fetch")
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, resp.Items[0].ImageURL, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("image fetch status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "miru-e2e-image") {
		t.Error("image body does not match archived bytes")
	}
	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "max-age=3600") {
		t.Errorf("Cache-Control = %q", cc)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/images/nowhere/missing.jpg", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing image status = %d, want 404", rec.Code)
	}
}

func TestIntegration_SnapshotSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "corpus")
	corpus := e2e.BuildCorpus()
	if _, err := e2e.WriteCorpusArchives(root, corpus); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	snapshotPath := filepath.Join(dir, "catalog.db")
	logger := zap.NewNop()
	ctx := context.Background()

	// First process: scan and persist.
	snapshot, err := catalog.OpenSnapshot(snapshotPath)
	if err != nil {
		t.Fatal(err)
	}
	store := catalog.NewStore()
	rebuilder := catalog.NewRebuilder(catalog.NewBuilder(root), store, snapshot, logger)
	cat, err := rebuilder.Rebuild(ctx)
	if err != nil {
		t.Fatal(err)
	}
	snapshot.Close()

	// Second process: restore without touching the corpus.
	snapshot2, err := catalog.OpenSnapshot(snapshotPath)
	if err != nil {
		t.Fatal(err)
	}
	defer snapshot2.Close()
	store2 := catalog.NewStore()
	rebuilder2 := catalog.NewRebuilder(catalog.NewBuilder(filepath.Join(dir, "gone")), store2, snapshot2, logger)
	restored, err := rebuilder2.Restore(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if restored != cat.Len() {
		t.Errorf("restored %d items, want %d", restored, cat.Len())
	}
	if store2.Current().Len() != cat.Len() {
		t.Errorf("store after restore holds %d items, want %d", store2.Current().Len(), cat.Len())
	}
}

func TestIntegration_ReindexPicksUpNewContainers(t *testing.T) {
	handler, rebuilder := newStack(t)
	_ = rebuilder

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status endpoint = %d", rec.Code)
	}
	var before struct {
		Items int `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&before); err != nil {
		t.Fatal(err)
	}
	if before.Items == 0 {
		t.Fatal("status reports an empty catalog")
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reindex", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("reindex = %d, body %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Items int `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Items != before.Items {
		t.Errorf("reindex items = %d, want %d (corpus unchanged)", out.Items, before.Items)
	}
}
