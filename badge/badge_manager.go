package badge

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/towerkit/towertrack/collection"
)

// Filter names pre-registered by the managers.
const (
	FilterIDs        = "ids"
	FilterName       = "name"
	FilterArea       = "area"
	FilterVariant    = "variant"
	FilterDifficulty = "difficulty"
	FilterAcronym    = "acronym"
)

// BadgeManager indexes badges under their current and historical ids and
// names, their area, variant and difficulty.
type BadgeManager struct {
	col *collection.Collection[Badge]
}

// NewBadgeManager creates an empty badge manager with its fixed filter set.
func NewBadgeManager() *BadgeManager {
	col := collection.New[Badge]()

	// Registrations on a fresh collection cannot fail.
	_ = col.AddFilter(FilterIDs, func(b Badge) []collection.Key {
		keys := make([]collection.Key, 0, 1+len(b.LegacyIDs))
		keys = append(keys, collection.Int(b.ID))
		for _, id := range b.LegacyIDs {
			keys = append(keys, collection.Int(id))
		}
		return keys
	})
	_ = col.AddFilter(FilterName, func(b Badge) []collection.Key {
		keys := make([]collection.Key, 0, 1+len(b.OldNames))
		keys = append(keys, collection.String(b.Name))
		for _, n := range b.OldNames {
			keys = append(keys, collection.String(n))
		}
		return keys
	})
	_ = col.AddFilter(FilterArea, func(b Badge) []collection.Key {
		return collection.KeyOf(collection.String(b.Area))
	})
	_ = col.AddFilter(FilterVariant, func(b Badge) []collection.Key {
		return collection.KeyOf(collection.String(string(b.Variant)))
	})
	// Unknown difficulties are recorded as NaN and skipped from the index.
	_ = col.AddFilter(FilterDifficulty, func(b Badge) []collection.Key {
		return collection.KeyOf(collection.Float(b.Difficulty))
	})

	return &BadgeManager{col: col}
}

// AddBadge validates and inserts a badge, returning its position.
//
// Validation happens before any index is touched, so a rejected badge
// leaves no partial index entries.
func (m *BadgeManager) AddBadge(b Badge) (int, error) {
	if err := validateBadge(b); err != nil {
		return 0, err
	}
	return m.col.Add(b), nil
}

func validateBadge(b Badge) error {
	if b.ID <= 0 {
		return fmt.Errorf("%w: badge id %d", ErrInvalidRecord, b.ID)
	}
	if !b.Variant.known() {
		return fmt.Errorf("%w: badge variant %q", ErrInvalidRecord, b.Variant)
	}
	for _, id := range b.LegacyIDs {
		if id <= 0 {
			return fmt.Errorf("%w: legacy badge id %d", ErrInvalidRecord, id)
		}
	}
	return nil
}

// Keys returns the distinct keys of the named filter in first-insertion
// order.
func (m *BadgeManager) Keys(filter string) ([]collection.Key, error) {
	return m.col.Keys(filter)
}

// Get returns the badges indexed under key by the named filter.
func (m *BadgeManager) Get(filter string, key collection.Key) ([]Badge, error) {
	return m.col.Get(filter, key)
}

// Filter returns a read handle bound to the named filter.
func (m *BadgeManager) Filter(name string) (*collection.Filter[Badge], error) {
	return m.col.Filter(name)
}

// ByID resolves a badge by any of its current or historical ids.
func (m *BadgeManager) ByID(id int64) (Badge, bool) {
	matches, err := m.col.Get(FilterIDs, collection.Int(id))
	if err != nil || len(matches) == 0 {
		return Badge{}, false
	}
	return matches[0], true
}

// ByName returns the badges known under name, current or historical.
func (m *BadgeManager) ByName(name string) []Badge {
	matches, _ := m.col.Get(FilterName, collection.String(name))
	return matches
}

// ByArea returns the badges belonging to the named area, in insertion order.
func (m *BadgeManager) ByArea(area string) []Badge {
	matches, _ := m.col.Get(FilterArea, collection.String(area))
	return matches
}

// ByVariant returns the badges whose variant tag matches v.
func (m *BadgeManager) ByVariant(v Variant) []Badge {
	return m.col.Select(func(b Badge) bool { return b.Variant == v })
}

// Len returns the number of stored badges.
func (m *BadgeManager) Len() int { return m.col.Len() }

// Badges returns a copy of all stored badges in insertion order.
func (m *BadgeManager) Badges() []Badge { return m.col.Items() }

// IDs returns every indexed badge id (current and legacy) in index key
// order.
func (m *BadgeManager) IDs() []int64 {
	keys, _ := m.col.Keys(FilterIDs)
	ids := make([]int64, 0, len(keys))
	for _, k := range keys {
		if id, ok := k.AsInt64(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Uncompleted returns every indexed badge id not present in the completed
// set, in index key order (not necessarily sorted numerically).
func (m *BadgeManager) Uncompleted(completed *roaring64.Bitmap) []int64 {
	ids := m.IDs()
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if completed != nil && completed.Contains(uint64(id)) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// NewCompletion builds a completion set from awarded badge ids.
// Non-positive ids are ignored.
func NewCompletion(ids ...int64) *roaring64.Bitmap {
	bm := roaring64.New()
	for _, id := range ids {
		if id > 0 {
			bm.Add(uint64(id))
		}
	}
	return bm
}

// UnknownDifficulty is the sentinel for badges whose difficulty has not
// been rated yet. The difficulty filter's projection skips it, so unrated
// badges never pollute the difficulty index.
func UnknownDifficulty() float64 { return math.NaN() }
