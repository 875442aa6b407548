package ledger

import (
	"strconv"
	"strings"

	"github.com/Mustansar840/quick-management/internal/models"
)

// Scanner holds the read-side logic over ledger snapshots. All methods
// are pure: they operate on a [][]string snapshot as returned by
// Store.ReadAllRows and never touch the store themselves. Malformed
// rows (too short, unparsable numbers) are skipped, never an error.
type Scanner struct{}

// NewScanner creates a Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// FindOpenTrip returns the handle of the pending trip for the given
// driver, if one exists. The first matching row top to bottom wins;
// should the one-open-trip invariant ever be violated by outside edits,
// this keeps the result deterministic instead of undefined.
func (s *Scanner) FindOpenTrip(rows [][]string, driverID string) (*models.OpenTrip, bool) {
	for i := models.DataStartRow - 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < models.ColStatus {
			continue
		}
		if strings.TrimSpace(row[models.ColDriverID-1]) != driverID {
			continue
		}
		if !strings.Contains(row[models.ColStatus-1], models.StatusPending) {
			continue
		}

		opening, _ := ParseAmount(row[models.ColOpeningBalance-1])
		return &models.OpenTrip{
			Row:            i + 1,
			DriverID:       driverID,
			DriverName:     row[models.ColDriverName-1],
			Vehicle:        row[models.ColVehicle-1],
			OpeningBalance: opening,
		}, true
	}
	return nil, false
}

// PendingTrips returns the open trip per driver for the whole snapshot,
// used to mark the driver selection grid. First match per driver wins,
// consistent with FindOpenTrip.
func (s *Scanner) PendingTrips(rows [][]string) map[string]*models.OpenTrip {
	pending := make(map[string]*models.OpenTrip)
	for i := models.DataStartRow - 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < models.ColStatus {
			continue
		}
		driverID := strings.TrimSpace(row[models.ColDriverID-1])
		if driverID == "" {
			continue
		}
		if _, seen := pending[driverID]; seen {
			continue
		}
		if !strings.Contains(row[models.ColStatus-1], models.StatusPending) {
			continue
		}

		opening, _ := ParseAmount(row[models.ColOpeningBalance-1])
		pending[driverID] = &models.OpenTrip{
			Row:            i + 1,
			DriverID:       driverID,
			DriverName:     row[models.ColDriverName-1],
			Vehicle:        row[models.ColVehicle-1],
			OpeningBalance: opening,
		}
	}
	return pending
}

// LastClosingBalance returns the closing balance of the driver's most
// recent row regardless of status, scanning bottom to top. It is only a
// suggested default for the next opening balance, so a missing or
// unparsable value yields 0 rather than an error.
func (s *Scanner) LastClosingBalance(rows [][]string, driverID string) float64 {
	for i := len(rows) - 1; i >= models.DataStartRow-1; i-- {
		row := rows[i]
		if len(row) < models.ColDriverID {
			continue
		}
		if strings.TrimSpace(row[models.ColDriverID-1]) != driverID {
			continue
		}
		if len(row) < models.ColClosingBalance {
			return 0
		}
		value, ok := ParseAmount(row[models.ColClosingBalance-1])
		if !ok {
			return 0
		}
		return value
	}
	return 0
}

// Totals sums the net total of closed trips per driver, truncated to
// whole units per row as the legacy display convention dictates. Every
// requested driver appears in the result, zero when nothing closed yet;
// rows with an unparsable net total contribute nothing.
func (s *Scanner) Totals(rows [][]string, driverIDs []string) map[string]int64 {
	totals := make(map[string]int64, len(driverIDs))
	for _, id := range driverIDs {
		totals[id] = 0
	}

	for i := models.DataStartRow - 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < models.ColStatus {
			continue
		}
		driverID := strings.TrimSpace(row[models.ColDriverID-1])
		if _, wanted := totals[driverID]; !wanted {
			continue
		}
		if !strings.Contains(row[models.ColStatus-1], models.StatusDone) {
			continue
		}
		value, ok := ParseAmount(row[models.ColNetTotal-1])
		if !ok {
			continue
		}
		totals[driverID] += int64(value)
	}
	return totals
}

// NextWriteRow returns the sheet row the next trip should be written
// to: the first data row with an empty driver-id cell, or one past the
// last row. Never below the data start row, even on an empty ledger.
func (s *Scanner) NextWriteRow(rows [][]string) int {
	for i := models.DataStartRow - 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < models.ColDriverID || strings.TrimSpace(row[models.ColDriverID-1]) == "" {
			return i + 1
		}
	}
	if len(rows)+1 < models.DataStartRow {
		return models.DataStartRow
	}
	return len(rows) + 1
}

// ParseAmount parses a ledger amount: trimmed, thousands commas
// stripped. The boolean result makes the skip-on-failure policy
// explicit at call sites instead of hiding it in swallowed errors.
func ParseAmount(text string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if cleaned == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
