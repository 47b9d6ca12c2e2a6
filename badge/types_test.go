package badge

import (
	"math"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgeJSON(t *testing.T) {
	t.Run("UnratedDifficultyOmitted", func(t *testing.T) {
		b := Badge{ID: 3, Name: "Citadel Clear", Variant: VariantCitadel, Difficulty: math.NaN()}

		data, err := json.Marshal(b)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "difficulty")

		var back Badge
		require.NoError(t, json.Unmarshal(data, &back))
		assert.True(t, math.IsNaN(back.Difficulty))
		assert.Equal(t, b.Name, back.Name)
	})

	t.Run("RatedDifficultyRoundTrips", func(t *testing.T) {
		b := Badge{ID: 2, Name: "Floor 25", Variant: VariantTower, Difficulty: 4.5}

		data, err := json.Marshal(b)
		require.NoError(t, err)

		var back Badge
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, 4.5, back.Difficulty)
	})

	t.Run("NullDifficultyIsUnrated", func(t *testing.T) {
		var b Badge
		require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"x","variant":"Tower","difficulty":null}`), &b))
		assert.True(t, math.IsNaN(b.Difficulty))
	})
}
