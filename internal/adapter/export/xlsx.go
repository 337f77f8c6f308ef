package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/domain"
)

const xlsxSheet = "records"

// WriteXLSX renders the dataset as a single-sheet workbook. Ints, floats and
// booleans stay typed cells; timestamps are written as RFC 3339 strings so the
// value survives any locale's date formatting.
func WriteXLSX(path string, ds *domain.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	header := make([]any, len(ds.Columns))
	for i, col := range ds.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for n, rec := range ds.Records {
		row := make([]any, len(ds.Columns))
		for i, cell := range ds.Row(rec) {
			row[i] = xlsxValue(cell)
		}
		addr, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", n, err)
		}
		if err := f.SetSheetRow(xlsxSheet, addr, &row); err != nil {
			return fmt.Errorf("write record %d: %w", rec.Index, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func xlsxValue(c domain.Cell) any {
	switch c.Kind {
	case domain.KindNull:
		return nil
	case domain.KindInt:
		return c.Int
	case domain.KindFloat:
		return c.Num
	case domain.KindBool:
		return c.Bool
	default:
		return c.String()
	}
}
