package ledger

import "errors"

// ErrStoreUnavailable wraps any failure to reach or persist the backing
// workbook. Callers treat it as fatal to the current step; session state
// is kept so the step can be retried.
var ErrStoreUnavailable = errors.New("ledger store unavailable")

// Store is the row/column-addressed contract the core depends on. Rows
// and columns are 1-indexed to match spreadsheet addressing.
type Store interface {
	// ReadAllRows returns a full snapshot of the sheet, header rows
	// included. Row i of the result is sheet row i+1.
	ReadAllRows(sheet string) ([][]string, error)

	// ReadColumn returns a single column top to bottom.
	ReadColumn(sheet string, col int) ([]string, error)

	// ReadRecords returns data rows keyed by the header row (sheet row 1).
	ReadRecords(sheet string) ([]map[string]string, error)

	// WriteCell sets one cell in place.
	WriteCell(sheet string, row, col int, value string) error

	// WriteRange sets a horizontal run of cells starting at (row, startCol).
	WriteRange(sheet string, row, startCol int, values []string) error

	// AppendRow adds a row after the last populated row.
	AppendRow(sheet string, values []string) error

	// InsertRow inserts a row at the given position, shifting rows down.
	InsertRow(sheet string, values []string, atRow int) error
}
