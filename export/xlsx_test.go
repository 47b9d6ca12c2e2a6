package export

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/towerkit/towertrack/badge"
)

func TestUncompletedReport(t *testing.T) {
	badges := []badge.Badge{
		{ID: 3, Name: "Citadel Clear", Area: "Keep", Variant: badge.VariantCitadel, Difficulty: math.NaN()},
		{ID: 2, Name: "Floor 25", Area: "Spire", Variant: badge.VariantTower, Difficulty: 4.5},
		{ID: 1, Name: "Floor 10", Area: "Spire", Variant: badge.VariantTower, Difficulty: 2},
		{ID: 4, Name: "Keep Gate", Area: "Keep", Variant: badge.VariantTower, Difficulty: 3},
	}

	var buf bytes.Buffer
	require.NoError(t, UncompletedReport(&buf, "climber", badges))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 6)

	assert.Equal(t, "Uncompleted badges for climber", rows[0][0])
	assert.Equal(t, []string{"id", "name", "area", "variant", "difficulty"}, rows[1])

	// Sorted by area, rated before unrated within an area.
	assert.Equal(t, "Keep Gate", rows[2][1])
	assert.Equal(t, "Citadel Clear", rows[3][1])
	assert.Equal(t, "Floor 10", rows[4][1])
	assert.Equal(t, "Floor 25", rows[5][1])

	// Unrated difficulty stays blank.
	if len(rows[3]) > 4 {
		assert.Empty(t, rows[3][4])
	}
}

func TestUncompletedReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, UncompletedReport(&buf, "", nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Uncompleted badges", rows[0][0])
}
