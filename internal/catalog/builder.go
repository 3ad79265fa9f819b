package catalog

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/miru/internal/metadata"
	"github.com/hyperjump/miru/internal/models"
)

// progressInterval controls how often the builder logs scan progress.
const progressInterval = 10000

// defaultExtensions are the image extensions indexed when none are configured.
var defaultExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// Builder scans a corpus root and produces a Catalog. Archive containers are
// indexed from their internal listing alone; no entry is extracted.
type Builder struct {
	root       string
	extensions map[string]bool
	logger     *zap.Logger // optional; when set, logs scan events
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets a logger for scan progress and skip events.
func WithLogger(l *zap.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// WithExtensions overrides the set of indexed image extensions.
// Extensions are matched case-insensitively, with or without a leading dot.
func WithExtensions(exts []string) BuilderOption {
	return func(b *Builder) {
		if len(exts) == 0 {
			return
		}
		b.extensions = make(map[string]bool, len(exts))
		for _, e := range exts {
			b.extensions[normalizeExt(e)] = true
		}
	}
}

// NewBuilder creates a Builder rooted at root.
func NewBuilder(root string, opts ...BuilderOption) *Builder {
	b := &Builder{
		root:       root,
		extensions: make(map[string]bool, len(defaultExtensions)),
	}
	for _, e := range defaultExtensions {
		b.extensions[e] = true
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build walks the corpus root and returns a new Catalog. A missing or empty
// root yields an empty catalog, not an error. Corrupt archives are logged and
// skipped; a single bad entry never aborts the build.
func (b *Builder) Build(ctx context.Context) (*Catalog, error) {
	absRoot, err := filepath.Abs(b.root)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	if _, err := os.Stat(absRoot); err != nil {
		if b.logger != nil {
			b.logger.Warn("corpus root missing, publishing empty catalog", zap.String("root", b.root))
		}
		return New(nil), nil
	}

	var (
		records []*models.ItemRecord
		seen    = make(map[string]bool)
		scanned int
	)
	appendRecord := func(rec *models.ItemRecord) {
		records = append(records, rec)
		scanned++
		if b.logger != nil && scanned%progressInterval == 0 {
			b.logger.Info("catalog scan progress", zap.Int("items", scanned))
		}
	}

	err = filepath.WalkDir(absRoot, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			if b.logger != nil {
				b.logger.Warn("skipping unreadable path", zap.String("path", path), zap.Error(walkErr))
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		absPath, err := filepath.Abs(path)
		if err != nil || seen[absPath] {
			return nil
		}
		seen[absPath] = true

		ext := normalizeExt(filepath.Ext(absPath))
		switch {
		case ext == ".zip":
			for _, rec := range b.scanArchive(absPath) {
				appendRecord(rec)
			}
		case b.extensions[ext]:
			info, statErr := d.Info()
			if statErr != nil {
				return nil
			}
			// Loose files are recorded by their root-relative path so IDs
			// stay unique across subdirectories and stable across hosts.
			entry, relErr := filepath.Rel(absRoot, absPath)
			if relErr != nil {
				entry = absPath
			}
			appendRecord(b.newRecord("", entry, filepath.Base(absPath), info.Size()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if b.logger != nil {
		b.logger.Info("catalog scan complete", zap.Int("items", scanned), zap.String("root", absRoot))
	}
	return New(records), nil
}

// scanArchive lists an archive container without extracting any entry.
// A corrupt archive is logged and skipped in its entirety.
func (b *Builder) scanArchive(archivePath string) []*models.ItemRecord {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		if b.logger != nil {
			b.logger.Warn("skipping unreadable archive", zap.String("archive", archivePath), zap.Error(err))
		}
		return nil
	}
	defer zr.Close()

	var records []*models.ItemRecord
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if !b.extensions[normalizeExt(filepath.Ext(f.Name))] {
			continue
		}
		records = append(records, b.newRecord(archivePath, f.Name, filepath.Base(f.Name), int64(f.UncompressedSize64)))
	}
	return records
}

// newRecord builds an ItemRecord with metadata derived from the filename.
// When the filename alone does not identify a location, the archive name is
// tried as a fallback (per-location containers carry the location in their
// own name).
func (b *Builder) newRecord(archivePath, entryName, filename string, size int64) *models.ItemRecord {
	fields := metadata.Extract(filename)
	if fields.Location == metadata.UnknownLocation && archivePath != "" {
		fields.Location = metadata.Location(filepath.Base(archivePath))
	}
	return &models.ItemRecord{
		ArchivePath: archivePath,
		EntryName:   entryName,
		Filename:    filename,
		Location:    fields.Location,
		Weather:     fields.Weather,
		Timestamp:   fields.Timestamp,
		SizeBytes:   size,
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
