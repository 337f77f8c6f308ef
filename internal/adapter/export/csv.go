// Package export renders an assembled dataset to CSV, HTML, and XLSX files.
// All formats share one rendering rule: null cells are empty, floats use the
// shortest round-trip form, timestamps are RFC 3339.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/domain"
)

// utf8BOM helps Excel recognize UTF-8 encoded CSV.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOptions configures CSV rendering.
type CSVOptions struct {
	BOMPrefix bool
}

// WriteCSV renders the dataset as CSV: one header row in contract column
// order, then one row per record in dataset order.
func WriteCSV(w io.Writer, ds *domain.Dataset, opts CSVOptions) error {
	if opts.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("write bom: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range ds.Records {
		row := make([]string, len(ds.Columns))
		for i, cell := range ds.Row(rec) {
			row[i] = cell.String()
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %d: %w", rec.Index, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
