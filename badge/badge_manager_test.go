package badge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/towerkit/towertrack/collection"
)

func TestBadgeManager_AddBadgeGuards(t *testing.T) {
	m := NewBadgeManager()

	tests := []struct {
		name  string
		badge Badge
	}{
		{"zero id", Badge{Name: "x", Variant: VariantTower}},
		{"negative id", Badge{ID: -5, Name: "x", Variant: VariantTower}},
		{"unknown variant", Badge{ID: 1, Name: "x", Variant: "Gateway"}},
		{"empty variant", Badge{ID: 1, Name: "x"}},
		{"bad legacy id", Badge{ID: 1, Name: "x", Variant: VariantTower, LegacyIDs: []int64{0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.AddBadge(tt.badge)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}

	// A rejected badge must leave no partial index entries.
	assert.Equal(t, 0, m.Len())
	keys, err := m.Keys(FilterIDs)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestBadgeManager_HistoricalIDsResolve(t *testing.T) {
	m := NewBadgeManager()

	_, err := m.AddBadge(Badge{
		ID:        100,
		LegacyIDs: []int64{42, 43},
		Name:      "Tower of Testing",
		OldNames:  []string{"Tower of Trials"},
		Area:      "Ring 1",
		Variant:   VariantTower,
	})
	require.NoError(t, err)

	for _, id := range []int64{100, 42, 43} {
		b, ok := m.ByID(id)
		require.True(t, ok, "id %d", id)
		assert.Equal(t, int64(100), b.ID)
	}

	for _, name := range []string{"Tower of Testing", "Tower of Trials"} {
		matches := m.ByName(name)
		require.Len(t, matches, 1, "name %q", name)
		assert.Equal(t, int64(100), matches[0].ID)
	}

	_, ok := m.ByID(999)
	assert.False(t, ok)
}

func TestBadgeManager_ByVariantAndArea(t *testing.T) {
	m := NewBadgeManager()

	mustAdd(t, m, Badge{ID: 1, Name: "ToA", Area: "Ring 1", Variant: VariantTower})
	mustAdd(t, m, Badge{ID: 2, Name: "CoB", Area: "Ring 1", Variant: VariantCitadel})
	mustAdd(t, m, Badge{ID: 3, Name: "Event", Variant: VariantOther})
	mustAdd(t, m, Badge{ID: 4, Name: "ToC", Area: "Ring 2", Variant: VariantTower})

	towers := m.ByVariant(VariantTower)
	require.Len(t, towers, 2)
	assert.Equal(t, int64(1), towers[0].ID)
	assert.Equal(t, int64(4), towers[1].ID)

	ring1 := m.ByArea("Ring 1")
	require.Len(t, ring1, 2)

	assert.Empty(t, m.ByVariant("Gateway"))
}

func TestBadgeManager_Uncompleted(t *testing.T) {
	m := NewBadgeManager()
	for _, id := range []int64{1, 2, 3, 4} {
		mustAdd(t, m, Badge{ID: id, Name: "b", Variant: VariantTower})
	}

	got := m.Uncompleted(NewCompletion(1, 3))
	assert.Equal(t, []int64{2, 4}, got)

	// Nil completion set means nothing is completed.
	assert.Equal(t, []int64{1, 2, 3, 4}, m.Uncompleted(nil))

	// Full completion leaves an empty, non-nil slice.
	all := m.Uncompleted(NewCompletion(1, 2, 3, 4))
	require.NotNil(t, all)
	assert.Empty(t, all)
}

func TestBadgeManager_UncompletedCoversLegacyIDs(t *testing.T) {
	m := NewBadgeManager()
	mustAdd(t, m, Badge{ID: 10, LegacyIDs: []int64{5}, Name: "b", Variant: VariantTower})

	// Ids index key order: current id first, then legacy.
	assert.Equal(t, []int64{10, 5}, m.IDs())
	assert.Equal(t, []int64{5}, m.Uncompleted(NewCompletion(10)))
}

func TestBadgeManager_UnknownDifficultySkipped(t *testing.T) {
	m := NewBadgeManager()
	mustAdd(t, m, Badge{ID: 1, Name: "rated", Variant: VariantTower, Difficulty: 4.5})
	mustAdd(t, m, Badge{ID: 2, Name: "unrated", Variant: VariantTower, Difficulty: UnknownDifficulty()})

	keys, err := m.Keys(FilterDifficulty)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	f, ok := keys[0].AsFloat64()
	require.True(t, ok)
	assert.Equal(t, 4.5, f)

	// The unrated badge still resolves through the other filters.
	_, ok = m.ByID(2)
	assert.True(t, ok)
}

func TestBadgeManager_FilterHandle(t *testing.T) {
	m := NewBadgeManager()
	mustAdd(t, m, Badge{ID: 1, Name: "ToA", Area: "Ring 1", Variant: VariantTower})

	f, err := m.Filter(FilterArea)
	require.NoError(t, err)
	assert.Equal(t, []collection.Key{collection.String("Ring 1")}, f.Keys())

	_, err = m.Filter("bogus")
	assert.ErrorIs(t, err, collection.ErrUnknownFilter)
}

func mustAdd(t *testing.T, m *BadgeManager, b Badge) {
	t.Helper()
	_, err := m.AddBadge(b)
	require.NoError(t, err)
}
