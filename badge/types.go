// Package badge holds the domain records of the tracker and the managers
// that index them: badges for a tower-climbing game's achievement taxonomy,
// the areas the towers live in, and the users whose completions are tracked.
package badge

import (
	"errors"
	"math"

	json "github.com/goccy/go-json"
)

// ErrInvalidRecord is returned by guarded manager inserts when a record
// does not match the expected shape. The failed insert leaves no partial
// index entries behind.
var ErrInvalidRecord = errors.New("invalid record")

// Variant is the discriminated kind of a badge.
type Variant string

const (
	// VariantTower marks a regular tower completion badge.
	VariantTower Variant = "Tower"
	// VariantCitadel marks a citadel (multi-floor endgame) badge.
	VariantCitadel Variant = "Citadel"
	// VariantOther marks event and miscellaneous badges.
	VariantOther Variant = "Other"
)

// known reports whether v is one of the declared variants.
func (v Variant) known() bool {
	switch v {
	case VariantTower, VariantCitadel, VariantOther:
		return true
	default:
		return false
	}
}

// Badge is a single achievement. A badge keeps every id and name it has
// ever been published under; any of them resolves to the same record.
type Badge struct {
	ID         int64    `json:"id"`
	LegacyIDs  []int64  `json:"legacyIds,omitempty"`
	Name       string   `json:"name"`
	OldNames   []string `json:"oldNames,omitempty"`
	Area       string   `json:"area,omitempty"`
	Variant    Variant  `json:"variant"`
	Difficulty float64  `json:"difficulty,omitempty"`
}

// MarshalJSON encodes an unrated difficulty (NaN) as an absent field,
// since JSON has no NaN literal.
func (b Badge) MarshalJSON() ([]byte, error) {
	type Alias Badge
	aux := struct {
		Alias
		Difficulty *float64 `json:"difficulty,omitempty"`
	}{Alias: Alias(b)}
	if !math.IsNaN(b.Difficulty) {
		aux.Difficulty = &b.Difficulty
	}
	return json.Marshal(aux)
}

// UnmarshalJSON treats an absent or null difficulty as unrated.
func (b *Badge) UnmarshalJSON(data []byte) error {
	type Alias Badge
	aux := struct {
		*Alias
		Difficulty *float64 `json:"difficulty"`
	}{Alias: (*Alias)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Difficulty != nil {
		b.Difficulty = *aux.Difficulty
	} else {
		b.Difficulty = math.NaN()
	}
	return nil
}

// Area is a named region grouping towers, e.g. a ring or zone.
type Area struct {
	Name        string `json:"name"`
	Acronym     string `json:"acronym,omitempty"`
	Requirement int    `json:"requirement,omitempty"`
}

// User is a tracked player. PastNames keeps display names the user was
// previously known under.
type User struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	PastNames []string `json:"pastNames,omitempty"`
}
