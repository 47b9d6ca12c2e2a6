// Package export renders tracker reports into spreadsheet files.
package export

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/towerkit/towertrack/badge"
)

const sheetName = "Uncompleted"

// UncompletedReport writes an XLSX workbook listing the badges a user has
// not completed, sorted by area and then difficulty. Unrated badges sort
// after rated ones within their area.
func UncompletedReport(w io.Writer, userName string, badges []badge.Badge) error {
	rows := make([]badge.Badge, len(badges))
	copy(rows, badges)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Area != rows[j].Area {
			return rows[i].Area < rows[j].Area
		}
		di, dj := rows[i].Difficulty, rows[j].Difficulty
		if math.IsNaN(di) {
			return false
		}
		if math.IsNaN(dj) {
			return true
		}
		return di < dj
	})

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	// StreamWriter keeps memory flat on large catalogs.
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	title := "Uncompleted badges"
	if userName != "" {
		title = fmt.Sprintf("Uncompleted badges for %s", userName)
	}
	if err := sw.SetRow("A1", []any{title}); err != nil {
		return err
	}
	if err := sw.SetRow("A2", []any{"id", "name", "area", "variant", "difficulty"}); err != nil {
		return err
	}

	for i, b := range rows {
		difficulty := ""
		if !math.IsNaN(b.Difficulty) {
			difficulty = fmt.Sprintf("%g", b.Difficulty)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		row := []any{b.ID, b.Name, b.Area, string(b.Variant), difficulty}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}
