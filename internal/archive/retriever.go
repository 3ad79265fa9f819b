package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/miru/internal/catalog"
	"github.com/hyperjump/miru/internal/models"
)

// Retriever fetches the bytes of a single catalog item. Entries inside a
// container are extracted one at a time; the container is never unpacked.
type Retriever struct {
	store   *catalog.Store
	root    string
	tempDir string
	logger  *zap.Logger // optional
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithLogger sets a logger for fetch events.
func WithLogger(l *zap.Logger) RetrieverOption {
	return func(r *Retriever) { r.logger = l }
}

// WithTempDir overrides the directory used for scoped temporary files.
// Defaults to the system temp directory.
func WithTempDir(dir string) RetrieverOption {
	return func(r *Retriever) { r.tempDir = dir }
}

// WithRoot sets the corpus root that loose-file entry names are relative to.
// Without it, loose entry names are used as paths verbatim.
func WithRoot(dir string) RetrieverOption {
	return func(r *Retriever) { r.root = dir }
}

// NewRetriever creates a Retriever reading item records from store.
func NewRetriever(store *catalog.Store, opts ...RetrieverOption) *Retriever {
	r := &Retriever{store: store, tempDir: os.TempDir()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fetch returns the raw bytes for itemID along with its record.
// Unknown IDs and entries missing from their container return ErrNotFound;
// a container that exists but cannot be read returns ErrStorage.
func (r *Retriever) Fetch(ctx context.Context, itemID string) ([]byte, *models.ItemRecord, error) {
	rec := r.store.Current().Lookup(itemID)
	if rec == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, itemID)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	if rec.ArchivePath == "" {
		path := rec.EntryName
		if r.root != "" && !filepath.IsAbs(path) {
			path = filepath.Join(r.root, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, itemID)
			}
			return nil, nil, fmt.Errorf("%w: read %s: %v", ErrStorage, path, err)
		}
		return data, rec, nil
	}

	data, err := r.readArchiveEntry(rec)
	if err != nil {
		return nil, nil, err
	}
	return data, rec, nil
}

// FetchToFile extracts itemID to a scoped temporary file and returns its
// path, the record, and a cleanup function. The caller must invoke cleanup
// once the path is no longer needed; cleanup is safe to call more than once.
// On error no file is left behind and cleanup is nil.
func (r *Retriever) FetchToFile(ctx context.Context, itemID string) (path string, rec *models.ItemRecord, cleanup func(), err error) {
	data, rec, err := r.Fetch(ctx, itemID)
	if err != nil {
		return "", nil, nil, err
	}

	name := uuid.New().String() + filepath.Ext(rec.Filename)
	path = filepath.Join(r.tempDir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		// A short write can leave a partial file behind; remove it so the
		// error path never leaks temp files.
		_ = os.Remove(path)
		return "", nil, nil, fmt.Errorf("%w: write temp file: %v", ErrStorage, err)
	}

	cleanup = func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) && r.logger != nil {
			r.logger.Warn("failed to remove temp file", zap.String("path", path), zap.Error(rmErr))
		}
	}
	if r.logger != nil {
		r.logger.Debug("extracted entry to temp file",
			zap.String("item_id", itemID), zap.String("path", path))
	}
	return path, rec, cleanup, nil
}

// readArchiveEntry reads one named entry out of the record's container.
func (r *Retriever) readArchiveEntry(rec *models.ItemRecord) ([]byte, error) {
	zr, err := zip.OpenReader(rec.ArchivePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: container %s", ErrNotFound, rec.ArchivePath)
		}
		return nil, fmt.Errorf("%w: open %s: %v", ErrStorage, rec.ArchivePath, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != rec.EntryName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open entry %s: %v", ErrStorage, rec.EntryName, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: read entry %s: %v", ErrStorage, rec.EntryName, err)
		}
		return data, nil
	}
	// The container opened fine but the entry is gone: the catalog is stale.
	return nil, fmt.Errorf("%w: entry %s not in %s", ErrNotFound, rec.EntryName, rec.ArchivePath)
}
