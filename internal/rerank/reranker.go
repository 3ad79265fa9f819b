package rerank

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/miru/internal/metrics"
	"github.com/hyperjump/miru/internal/models"
	"github.com/hyperjump/miru/internal/ranking"
	"github.com/hyperjump/miru/pkg/utils"
)

const (
	// DefaultFastWeight and DefaultVLMWeight fuse the keyword score with the
	// model score. The model dominates; the keyword score breaks ties and
	// keeps obviously-named files afloat when the model is unsure.
	DefaultFastWeight = 0.3
	DefaultVLMWeight  = 0.7

	// DefaultTimeout bounds one analysis call. A slow call degrades that
	// item only, never the whole query.
	DefaultTimeout = 30 * time.Second
)

// Fetcher supplies the raw bytes for a catalog item.
type Fetcher interface {
	Fetch(ctx context.Context, itemID string) ([]byte, *models.ItemRecord, error)
}

// Scored is a candidate after rerank: the fused final score plus the model's
// own score and description. Degraded marks items whose analysis failed and
// whose final score therefore falls back to the keyword score alone.
type Scored struct {
	ranking.Candidate
	Final       float64
	VLMScore    float64
	Description string
	Degraded    bool
}

// Reranker runs image analysis over a bounded candidate set. The worker pool
// caps concurrent analysis calls; the default size of 1 keeps at most one
// in-flight request against the model server.
type Reranker struct {
	analyzer   Analyzer
	fetcher    Fetcher
	cache      *AnalysisCache // optional
	pool       *ants.Pool
	fastWeight float64
	vlmWeight  float64
	timeout    time.Duration
	logger     *zap.Logger // optional
}

// RerankerOption configures a Reranker.
type RerankerOption func(*Reranker)

// WithWeights overrides the score fusion weights.
func WithWeights(fast, vlm float64) RerankerOption {
	return func(r *Reranker) {
		r.fastWeight = fast
		r.vlmWeight = vlm
	}
}

// WithTimeout overrides the per-item analysis timeout.
func WithTimeout(d time.Duration) RerankerOption {
	return func(r *Reranker) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithCache enables analysis result caching.
func WithCache(c *AnalysisCache) RerankerOption {
	return func(r *Reranker) { r.cache = c }
}

// WithLogger sets a logger for per-item analysis failures.
func WithLogger(l *zap.Logger) RerankerOption {
	return func(r *Reranker) { r.logger = l }
}

// NewReranker creates a Reranker with workers concurrent analysis slots.
// workers below 1 is treated as 1.
func NewReranker(analyzer Analyzer, fetcher Fetcher, workers int, opts ...RerankerOption) (*Reranker, error) {
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	r := &Reranker{
		analyzer:   analyzer,
		fetcher:    fetcher,
		pool:       pool,
		fastWeight: DefaultFastWeight,
		vlmWeight:  DefaultVLMWeight,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Release frees the worker pool.
func (r *Reranker) Release() {
	r.pool.Release()
}

// Rerank analyzes every candidate and returns them with fused scores, in the
// same order as the input. Per-item failures (fetch error, analysis error,
// timeout) degrade that item to its keyword score; they never fail the call.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []ranking.Candidate) []Scored {
	results := make([]Scored, len(candidates))

	var wg sync.WaitGroup
	for i, cand := range candidates {
		i, cand := i, cand
		wg.Add(1)
		task := func() {
			defer wg.Done()
			results[i] = r.scoreOne(ctx, query, cand)
		}
		if err := r.pool.Submit(task); err != nil {
			// Pool released or overloaded: run inline rather than drop the item.
			task()
		}
	}
	wg.Wait()

	return results
}

func (r *Reranker) scoreOne(ctx context.Context, query string, cand ranking.Candidate) Scored {
	if r.cache != nil {
		if a, ok := r.cache.Get(cand.ItemID, query); ok {
			metrics.AnalysisCacheTotal.WithLabelValues("hit").Inc()
			return r.fuse(cand, a)
		}
		metrics.AnalysisCacheTotal.WithLabelValues("miss").Inc()
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	data, _, err := r.fetcher.Fetch(ctx, cand.ItemID)
	if err != nil {
		return r.degrade(cand, err)
	}
	a, err := r.analyzer.Analyze(ctx, query, cand.Record.Filename, data)
	if err != nil {
		return r.degrade(cand, err)
	}

	if r.cache != nil {
		r.cache.Set(cand.ItemID, query, a)
	}
	metrics.AnalysisRequestsTotal.WithLabelValues("success").Inc()
	return r.fuse(cand, a)
}

func (r *Reranker) fuse(cand ranking.Candidate, a Analysis) Scored {
	desc := a.Description
	if desc == "" {
		desc = DefaultDescription(cand.Record.Location)
	}
	return Scored{
		Candidate:   cand,
		Final:       utils.Clamp01(r.fastWeight*cand.Score + r.vlmWeight*a.Score),
		VLMScore:    a.Score,
		Description: desc,
	}
}

func (r *Reranker) degrade(cand ranking.Candidate, cause error) Scored {
	metrics.AnalysisRequestsTotal.WithLabelValues("degraded").Inc()
	if r.logger != nil {
		r.logger.Warn("image analysis failed, falling back to keyword score",
			zap.String("item_id", cand.ItemID), zap.Error(cause))
	}
	return Scored{
		Candidate:   cand,
		Final:       cand.Score,
		Description: DefaultDescription(cand.Record.Location) + " (analysis degraded)",
		Degraded:    true,
	}
}

// DefaultDescription is used when the model returns no usable description.
func DefaultDescription(location string) string {
	return "CCTV image - " + location
}
