package ledger

import (
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExcelStore implements Store over a local .xlsx workbook. Every
// operation opens the file, applies the change and saves, so external
// edits between operations are picked up on the next read. A mutex
// serializes operations within the process; cross-process discipline is
// out of scope (see the driver lock for the one hazard that matters).
type ExcelStore struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewExcelStore creates a store over the workbook at path.
func NewExcelStore(path string, logger *zap.Logger) *ExcelStore {
	return &ExcelStore{
		path:   path,
		logger: logger,
	}
}

// EnsureWorkbook creates the workbook with the given sheets when the
// file does not exist yet. Existing workbooks are left untouched.
func (s *ExcelStore) EnsureWorkbook(sheets ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			// Rename the default sheet instead of leaving it behind.
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("%w: rename sheet: %v", ErrStoreUnavailable, err)
			}
			continue
		}
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("%w: create sheet %s: %v", ErrStoreUnavailable, sheet, err)
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("%w: create workbook: %v", ErrStoreUnavailable, err)
	}

	s.logger.Info("Created ledger workbook",
		zap.String("path", s.path),
		zap.Strings("sheets", sheets))
	return nil
}

// ReadAllRows implements Store.
func (s *ExcelStore) ReadAllRows(sheet string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read rows of %s: %v", ErrStoreUnavailable, sheet, err)
	}
	return rows, nil
}

// ReadColumn implements Store.
func (s *ExcelStore) ReadColumn(sheet string, col int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cols, err := f.GetCols(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read column %d of %s: %v", ErrStoreUnavailable, col, sheet, err)
	}
	if col < 1 || col > len(cols) {
		return nil, nil
	}
	return cols[col-1], nil
}

// ReadRecords implements Store. Sheet row 1 is the header row; each
// data row is returned keyed by header text. Cells past the last header
// are ignored, missing trailing cells read as empty strings.
func (s *ExcelStore) ReadRecords(sheet string) ([]map[string]string, error) {
	rows, err := s.ReadAllRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, nil
	}

	headers := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(row) {
				record[header] = row[i]
			} else {
				record[header] = ""
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// WriteCell implements Store.
func (s *ExcelStore) WriteCell(sheet string, row, col int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := s.setCell(f, sheet, row, col, value); err != nil {
		return err
	}
	return s.save(f)
}

// WriteRange implements Store.
func (s *ExcelStore) WriteRange(sheet string, row, startCol int, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	for i, value := range values {
		if err := s.setCell(f, sheet, row, startCol+i, value); err != nil {
			return err
		}
	}
	return s.save(f)
}

// AppendRow implements Store.
func (s *ExcelStore) AppendRow(sheet string, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("%w: read rows of %s: %v", ErrStoreUnavailable, sheet, err)
	}

	row := len(rows) + 1
	for i, value := range values {
		if err := s.setCell(f, sheet, row, i+1, value); err != nil {
			return err
		}
	}
	return s.save(f)
}

// InsertRow implements Store.
func (s *ExcelStore) InsertRow(sheet string, values []string, atRow int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.InsertRows(sheet, atRow, 1); err != nil {
		return fmt.Errorf("%w: insert row %d in %s: %v", ErrStoreUnavailable, atRow, sheet, err)
	}
	for i, value := range values {
		if err := s.setCell(f, sheet, atRow, i+1, value); err != nil {
			return err
		}
	}
	return s.save(f)
}

func (s *ExcelStore) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook %s: %v", ErrStoreUnavailable, s.path, err)
	}
	return f, nil
}

func (s *ExcelStore) setCell(f *excelize.File, sheet string, row, col int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("%w: cell (%d,%d): %v", ErrStoreUnavailable, row, col, err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("%w: set %s!%s: %v", ErrStoreUnavailable, sheet, cell, err)
	}
	return nil
}

func (s *ExcelStore) save(f *excelize.File) error {
	if err := f.Save(); err != nil {
		s.logger.Error("Failed to save workbook", zap.String("path", s.path), zap.Error(err))
		return fmt.Errorf("%w: save workbook: %v", ErrStoreUnavailable, err)
	}
	return nil
}
