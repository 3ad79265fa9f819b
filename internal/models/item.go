// Package models defines core data structures for catalog items, queries, and search results.
package models

import "time"

// ItemRecord identifies one image in the corpus. Records are owned by the
// catalog and must be treated as immutable after the catalog is built:
// per-query scores live in query-local wrappers, never on the record itself.
type ItemRecord struct {
	// ArchivePath is the path to the owning ZIP container, or empty for a
	// loose file on disk.
	ArchivePath string `json:"archive_path,omitempty"`
	// EntryName is the path inside the archive, or the path relative to the
	// corpus root for loose files. Together with Location it forms the
	// public item ID, so it must be unique per location.
	EntryName string `json:"entry_name"`
	// Filename is the base name of the entry, used for metadata extraction
	// and fast-filter scoring.
	Filename  string     `json:"filename"`
	Location  string     `json:"location"`
	Weather   string     `json:"weather,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	SizeBytes int64      `json:"size_bytes"`
}
