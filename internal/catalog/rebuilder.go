package catalog

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Rebuilder coordinates catalog rebuilds: one rebuild at a time, published
// atomically to the Store, optionally persisted to a Snapshot. Readers keep
// the previous catalog until the new one is complete.
type Rebuilder struct {
	mu       sync.Mutex
	builder  *Builder
	store    *Store
	snapshot *Snapshot // optional
	logger   *zap.Logger

	lastBuilt time.Time
}

// NewRebuilder creates a Rebuilder. snapshot may be nil to disable
// persistence; logger may be nil.
func NewRebuilder(builder *Builder, store *Store, snapshot *Snapshot, logger *zap.Logger) *Rebuilder {
	return &Rebuilder{
		builder:  builder,
		store:    store,
		snapshot: snapshot,
		logger:   logger,
	}
}

// Rebuild scans the corpus, publishes the fresh catalog, and saves it to the
// snapshot when one is configured. Concurrent calls serialize; the store is
// never published with a partial catalog.
func (r *Rebuilder) Rebuild(ctx context.Context) (*Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	c, err := r.builder.Build(ctx)
	if err != nil {
		return nil, err
	}
	r.store.Publish(c)
	r.lastBuilt = time.Now()

	if r.snapshot != nil {
		if err := r.snapshot.Save(ctx, c); err != nil && r.logger != nil {
			r.logger.Warn("failed to save catalog snapshot", zap.Error(err))
		}
	}
	if r.logger != nil {
		r.logger.Info("catalog rebuilt",
			zap.Int("items", c.Len()),
			zap.Duration("elapsed", time.Since(start)))
	}
	return c, nil
}

// Restore loads the snapshot (if configured and non-empty) and publishes it.
// Returns the number of restored items.
func (r *Rebuilder) Restore(ctx context.Context) (int, error) {
	if r.snapshot == nil {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.snapshot.Load(ctx)
	if err != nil {
		return 0, err
	}
	if c.Len() == 0 {
		return 0, nil
	}
	r.store.Publish(c)
	if r.logger != nil {
		r.logger.Info("catalog restored from snapshot", zap.Int("items", c.Len()))
	}
	return c.Len(), nil
}

// LastBuilt returns when the catalog was last rebuilt, or the zero time if it
// has only been restored from a snapshot.
func (r *Rebuilder) LastBuilt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastBuilt
}
