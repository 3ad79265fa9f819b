// Package itemid provides the public identifier for catalog items.
package itemid

import (
	"fmt"
	"strings"

	"github.com/hyperjump/miru/internal/models"
)

// Make returns the public ID for an item: "{location}/{entry}". Same
// location and entry always yield the same ID, so IDs stay stable across
// catalog rebuilds. Locations never contain slashes; the entry part may.
func Make(location, entry string) string {
	return location + "/" + entry
}

// ForRecord returns the public ID for a catalog record. The entry part is
// the full entry name (path inside the container, or path relative to the
// corpus root for loose files), not the base filename: two entries sharing
// a base name in different directories must not collide.
func ForRecord(rec *models.ItemRecord) string {
	return Make(rec.Location, rec.EntryName)
}

// Parse splits an ID back into location and entry. The entry part may
// itself contain slashes; only the first separator is significant.
func Parse(id string) (location, entry string, err error) {
	location, entry, ok := strings.Cut(id, "/")
	if !ok || location == "" || entry == "" {
		return "", "", fmt.Errorf("malformed item id: %q", id)
	}
	return location, entry, nil
}
