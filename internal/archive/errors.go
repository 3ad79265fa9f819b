// Package archive retrieves single corpus entries on demand, extracting from
// their ZIP container without unpacking anything else.
package archive

import "errors"

var (
	// ErrNotFound reports that the item ID is unknown or the entry is no
	// longer present in its container (stale catalog).
	ErrNotFound = errors.New("item not found")

	// ErrStorage reports that the container exists in the catalog but could
	// not be read. Distinct from ErrNotFound so callers can tell a stale
	// catalog from corrupted storage.
	ErrStorage = errors.New("storage error")
)
