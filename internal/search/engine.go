// Package search runs the staged query pipeline: keyword scoring over the
// whole catalog, bounded candidate selection, image analysis rerank, and
// pagination.
package search

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/miru/internal/catalog"
	"github.com/hyperjump/miru/internal/itemid"
	"github.com/hyperjump/miru/internal/models"
	"github.com/hyperjump/miru/internal/ranking"
	"github.com/hyperjump/miru/internal/rerank"
)

const (
	// DefaultThreshold is the minimum fused score a hit must exceed.
	DefaultThreshold = 0.1

	// baselineScore keeps entries the keyword filter knows nothing about
	// visible to the selection stage instead of zeroing them out.
	baselineScore = 0.1
)

// Reranker is the refinement stage contract. Implementations never fail the
// whole call; per-item failures come back marked degraded.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []ranking.Candidate) []rerank.Scored
}

// Engine runs the staged search pipeline over the published catalog.
type Engine struct {
	store        *catalog.Store
	scorer       *ranking.QuickScorer
	reranker     Reranker // optional; nil runs keyword-only scoring
	candidateCap int
	threshold    float64
	defaultLimit int
	maxLimit     int
	logger       *zap.Logger // optional
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithReranker enables the image analysis stage. Without it every entry is
// scored by the keyword filter alone and no candidate cap applies.
func WithReranker(r Reranker) EngineOption {
	return func(e *Engine) { e.reranker = r }
}

// WithCandidateCap overrides how many candidates reach the rerank stage.
func WithCandidateCap(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.candidateCap = n
		}
	}
}

// WithThreshold overrides the minimum fused score for inclusion.
func WithThreshold(v float64) EngineOption {
	return func(e *Engine) { e.threshold = v }
}

// WithLimits overrides the default and maximum page size applied to queries
// that leave the limit unset or set it too high.
func WithLimits(defaultLimit, maxLimit int) EngineOption {
	return func(e *Engine) {
		if defaultLimit > 0 {
			e.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			e.maxLimit = maxLimit
		}
	}
}

// WithLogger sets a logger for query timing.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a search engine reading from store.
func NewEngine(store *catalog.Store, scorer *ranking.QuickScorer, opts ...EngineOption) *Engine {
	e := &Engine{
		store:        store,
		scorer:       scorer,
		candidateCap: ranking.DefaultCandidateCap,
		threshold:    DefaultThreshold,
		defaultLimit: models.DefaultLimit,
		maxLimit:     models.MaxLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search runs the full pipeline and returns a paginated response. A query
// matching nothing returns an empty well-formed page, never an error.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := query.ValidateWithLimits(e.defaultLimit, e.maxLimit); err != nil {
		return nil, err
	}

	// The catalog pointer is pinned for the whole query: a concurrent
	// rebuild publishes a new catalog without disturbing this one.
	cat := e.store.Current()
	candidates := e.scoreAll(cat, query.Query)

	var scored []rerank.Scored
	if e.reranker != nil {
		selected := ranking.SelectCandidates(candidates, e.candidateCap)
		scored = e.reranker.Rerank(ctx, query.Query, selected)
	} else {
		scored = fastOnly(candidates)
	}
	scored = e.retain(scored)

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Final != scored[j].Final {
			return scored[i].Final > scored[j].Final
		}
		return scored[i].ItemID < scored[j].ItemID
	})

	scored = ApplyFilters(scored, query)
	total := len(scored)
	window := Slice(scored, query.Offset, query.Limit)

	items := make([]*models.SearchResult, 0, len(window))
	for _, s := range window {
		items = append(items, toResult(s))
	}

	elapsed := time.Since(startTime)
	if e.logger != nil {
		e.logger.Debug("search completed",
			zap.String("query", query.Query),
			zap.Int("catalog_items", cat.Len()),
			zap.Int("total_hits", total),
			zap.Duration("elapsed", elapsed))
	}

	return &models.SearchResponse{
		Query:     query.Query,
		Items:     items,
		Page:      PageOf(total, query.Offset, query.Limit),
		QueryTime: elapsed.Milliseconds(),
	}, nil
}

// scoreAll runs the keyword filter over every catalog entry into query-local
// candidates. Shared records are read, never written.
func (e *Engine) scoreAll(cat *catalog.Catalog, query string) []ranking.Candidate {
	items := cat.Items()
	candidates := make([]ranking.Candidate, 0, len(items))
	for _, rec := range items {
		score := e.scorer.Score(rec.Filename, query)
		if score <= 0.01 {
			score = baselineScore
		}
		candidates = append(candidates, ranking.Candidate{
			ItemID: itemid.ForRecord(rec),
			Record: rec,
			Score:  score,
		})
	}
	return candidates
}

// fastOnly wraps keyword-scored candidates as final results when no rerank
// stage is configured.
func fastOnly(candidates []ranking.Candidate) []rerank.Scored {
	scored := make([]rerank.Scored, len(candidates))
	for i, cand := range candidates {
		scored[i] = rerank.Scored{
			Candidate:   cand,
			Final:       cand.Score,
			Description: rerank.DefaultDescription(cand.Record.Location),
		}
	}
	return scored
}

// retain drops items whose fused score does not exceed the threshold.
func (e *Engine) retain(scored []rerank.Scored) []rerank.Scored {
	kept := scored[:0]
	for _, s := range scored {
		if s.Final > e.threshold {
			kept = append(kept, s)
		}
	}
	return kept
}

func toResult(s rerank.Scored) *models.SearchResult {
	rec := s.Record
	imageURL := "/api/v1/images/" + s.ItemID
	return &models.SearchResult{
		ItemID:       s.ItemID,
		Filename:     rec.Filename,
		Location:     rec.Location,
		Weather:      rec.Weather,
		Timestamp:    rec.Timestamp,
		SizeBytes:    rec.SizeBytes,
		Score:        s.Final,
		FastScore:    s.Candidate.Score,
		VLMScore:     s.VLMScore,
		Description:  s.Description,
		Degraded:     s.Degraded,
		ImageURL:     imageURL,
		ThumbnailURL: imageURL + "?size=thumbnail",
	}
}
