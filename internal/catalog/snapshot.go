package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/miru/internal/itemid"
	"github.com/hyperjump/miru/internal/models"
)

// Snapshot persists a catalog to SQLite so the server can start serving from
// the last known corpus state before the first full rescan completes.
type Snapshot struct {
	db *sql.DB
}

// OpenSnapshot opens or creates a snapshot database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func OpenSnapshot(dbPath string) (*Snapshot, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSnapshotSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Snapshot{db: db}, nil
}

func initSnapshotSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		archive_path TEXT NOT NULL DEFAULT '',
		entry_name TEXT NOT NULL,
		filename TEXT NOT NULL,
		location TEXT NOT NULL,
		weather TEXT NOT NULL DEFAULT '',
		timestamp TIMESTAMP,
		size_bytes INTEGER NOT NULL DEFAULT 0,
		saved_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_items_location ON items(location);
	`
	_, err := db.Exec(schema)
	return err
}

// Save replaces the stored snapshot with the given catalog's records in a
// single transaction.
func (s *Snapshot) Save(ctx context.Context, c *Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO items (id, archive_path, entry_name, filename, location, weather, timestamp, size_bytes, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, item := range c.Items() {
		var ts interface{}
		if item.Timestamp != nil {
			ts = *item.Timestamp
		}
		id := itemid.ForRecord(item)
		if _, err := stmt.ExecContext(ctx, id, item.ArchivePath, item.EntryName, item.Filename,
			item.Location, item.Weather, ts, item.SizeBytes, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Load reads the stored snapshot back into a Catalog. An empty table yields
// an empty catalog.
func (s *Snapshot) Load(ctx context.Context) (*Catalog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT archive_path, entry_name, filename, location, weather, timestamp, size_bytes
		 FROM items ORDER BY location, filename`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.ItemRecord
	for rows.Next() {
		var (
			rec models.ItemRecord
			ts  sql.NullTime
		)
		if err := rows.Scan(&rec.ArchivePath, &rec.EntryName, &rec.Filename,
			&rec.Location, &rec.Weather, &ts, &rec.SizeBytes); err != nil {
			return nil, err
		}
		if ts.Valid {
			t := ts.Time
			rec.Timestamp = &t
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return New(records), nil
}

// Count returns the number of stored items.
func (s *Snapshot) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *Snapshot) Close() error {
	return s.db.Close()
}
