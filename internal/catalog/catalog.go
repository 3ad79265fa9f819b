// Package catalog builds and holds the in-memory index of corpus images.
// A Catalog is immutable once built; readers get a consistent view through
// the Store and rebuilds publish a fresh Catalog atomically.
package catalog

import (
	"sort"

	"github.com/hyperjump/miru/internal/itemid"
	"github.com/hyperjump/miru/internal/models"
)

// Catalog is an immutable snapshot of the indexed corpus.
type Catalog struct {
	items      []*models.ItemRecord
	byID       map[string]*models.ItemRecord
	byLocation map[string][]*models.ItemRecord
}

// New builds a Catalog from records. Duplicate IDs keep the first occurrence.
func New(items []*models.ItemRecord) *Catalog {
	c := &Catalog{
		byID:       make(map[string]*models.ItemRecord, len(items)),
		byLocation: make(map[string][]*models.ItemRecord),
	}
	for _, item := range items {
		id := itemid.ForRecord(item)
		if _, exists := c.byID[id]; exists {
			continue
		}
		c.byID[id] = item
		c.items = append(c.items, item)
		c.byLocation[item.Location] = append(c.byLocation[item.Location], item)
	}
	return c
}

// Len returns the number of items in the catalog.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Items returns all records. Callers must not modify the returned slice or
// the records it points to.
func (c *Catalog) Items() []*models.ItemRecord {
	return c.items
}

// Lookup returns the record for a public item ID, or nil when absent.
func (c *Catalog) Lookup(id string) *models.ItemRecord {
	return c.byID[id]
}

// Locations returns per-location item counts sorted by location name.
func (c *Catalog) Locations() []models.LocationCount {
	counts := make([]models.LocationCount, 0, len(c.byLocation))
	for location, items := range c.byLocation {
		counts = append(counts, models.LocationCount{Location: location, Count: len(items)})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Location < counts[j].Location })
	return counts
}
