package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/garnizeh/assessboard/internal/models"
)

// SheetName is the worksheet holding exported employees.
const SheetName = "Employees"

// WriteXLSX writes records as a single-sheet workbook with the same columns
// as the CSV export. It returns false without writing for an empty input.
func WriteXLSX(w io.Writer, records []models.Employee) (bool, error) {
	if len(records) == 0 {
		return false, nil
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return false, fmt.Errorf("rename sheet: %w", err)
	}

	rows := make([]Row, len(records))
	for i, e := range records {
		rows[i] = Flatten(e)
	}

	if err := writeRow(f, 1, rows[0].Header()); err != nil {
		return false, err
	}
	for i, r := range rows {
		if err := writeRow(f, i+2, r.Values()); err != nil {
			return false, err
		}
	}

	if err := f.Write(w); err != nil {
		return false, fmt.Errorf("write workbook: %w", err)
	}
	return true, nil
}

func writeRow(f *excelize.File, n int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	vals := make([]any, len(cells))
	for i, c := range cells {
		vals[i] = c
	}
	if err := f.SetSheetRow(SheetName, cell, &vals); err != nil {
		return fmt.Errorf("write row %d: %w", n, err)
	}
	return nil
}
