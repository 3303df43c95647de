// Package export writes fetched table pages to spreadsheets.
package export

import (
	"io"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"

	"github.com/iota-uz/staff-console/pkg/columns"
)

const maxSheetName = 31

// XLSX writes a single-sheet workbook with a bold header row.
func XLSX[T columns.Row](w io.Writer, sheet string, layout columns.Layout, rows []T) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = layout.Resource
	}
	if len(sheet) > maxSheetName {
		sheet = sheet[:maxSheetName]
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.Wrap(err, "rename sheet")
	}

	header := make([]any, len(layout.Columns))
	for i, c := range layout.Columns {
		header[i] = c.Title
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "write header")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "header style")
	}
	if len(layout.Columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(layout.Columns), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return errors.Wrap(err, "apply header style")
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := layout.Cells(row)
		record := make([]any, len(values))
		for j, v := range values {
			record[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			return errors.Wrapf(err, "write row %d", i+1)
		}
	}

	for i, c := range layout.Columns {
		if c.Width <= 0 {
			continue
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, float64(c.Width)*1.5); err != nil {
			return errors.Wrap(err, "column width")
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}
