package badge

import (
	"fmt"

	"github.com/towerkit/towertrack/collection"
)

// AreaManager indexes areas by name and acronym.
type AreaManager struct {
	col *collection.Collection[Area]
}

// NewAreaManager creates an empty area manager with its fixed filter set.
func NewAreaManager() *AreaManager {
	col := collection.New[Area]()

	_ = col.AddFilter(FilterName, func(a Area) []collection.Key {
		return collection.KeyOf(collection.String(a.Name))
	})
	_ = col.AddFilter(FilterAcronym, func(a Area) []collection.Key {
		return collection.KeyOf(collection.String(a.Acronym))
	})

	return &AreaManager{col: col}
}

// AddArea validates and inserts an area, returning its position.
func (m *AreaManager) AddArea(a Area) (int, error) {
	if a.Name == "" {
		return 0, fmt.Errorf("%w: area with empty name", ErrInvalidRecord)
	}
	return m.col.Add(a), nil
}

// ByName resolves an area by name.
func (m *AreaManager) ByName(name string) (Area, bool) {
	matches, err := m.col.Get(FilterName, collection.String(name))
	if err != nil || len(matches) == 0 {
		return Area{}, false
	}
	return matches[0], true
}

// ByAcronym resolves an area by its acronym.
func (m *AreaManager) ByAcronym(acronym string) (Area, bool) {
	matches, err := m.col.Get(FilterAcronym, collection.String(acronym))
	if err != nil || len(matches) == 0 {
		return Area{}, false
	}
	return matches[0], true
}

// Names returns all area names in insertion order.
func (m *AreaManager) Names() []string {
	keys, _ := m.col.Keys(FilterName)
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if s, ok := k.AsString(); ok {
			names = append(names, s)
		}
	}
	return names
}

// Len returns the number of stored areas.
func (m *AreaManager) Len() int { return m.col.Len() }

// Areas returns a copy of all stored areas in insertion order.
func (m *AreaManager) Areas() []Area { return m.col.Items() }
