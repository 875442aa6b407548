package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Mustansar840/quick-management/internal/models"
)

// headerRows builds the five title/header rows above the data area.
func headerRows() [][]string {
	rows := make([][]string, models.DataStartRow-1)
	for i := range rows {
		rows[i] = []string{"Trip Ledger"}
	}
	return rows
}

// tripRow builds a full 15-column row.
func tripRow(seq, driverID, name, car, opening, closing, netTotal, status string) []string {
	return []string{
		seq, driverID, name, car, "2026-08-01",
		opening, closing, "5", "08:00:00", "18:00:00",
		"", "", "", netTotal, status,
	}
}

func TestFindOpenTrip(t *testing.T) {
	scanner := NewScanner()

	rows := append(headerRows(),
		tripRow("1", "1234", "Ali", "LEB-01", "500", "300", "150", "Done"),
		tripRow("2", "1234", "Ali", "LEB-01", "1,000", "", "", "Pending"),
		tripRow("3", "5678", "Bilal", "LEB-02", "700", "", "", "Pending (edited)"),
	)

	t.Run("finds pending row with snapshot values", func(t *testing.T) {
		trip, found := scanner.FindOpenTrip(rows, "1234")
		assert.True(t, found)
		assert.Equal(t, 7, trip.Row)
		assert.Equal(t, "Ali", trip.DriverName)
		assert.Equal(t, "LEB-01", trip.Vehicle)
		assert.Equal(t, 1000.0, trip.OpeningBalance)
	})

	t.Run("status match is substring based", func(t *testing.T) {
		trip, found := scanner.FindOpenTrip(rows, "5678")
		assert.True(t, found)
		assert.Equal(t, 8, trip.Row)
	})

	t.Run("no pending trip", func(t *testing.T) {
		_, found := scanner.FindOpenTrip(rows, "9999")
		assert.False(t, found)
	})

	t.Run("first pending row wins when invariant is violated", func(t *testing.T) {
		corrupt := append(headerRows(),
			tripRow("1", "1234", "Ali", "LEB-01", "100", "", "", "Pending"),
			tripRow("2", "1234", "Ali", "LEB-01", "200", "", "", "Pending"),
		)
		trip, found := scanner.FindOpenTrip(corrupt, "1234")
		assert.True(t, found)
		assert.Equal(t, 6, trip.Row)
		assert.Equal(t, 100.0, trip.OpeningBalance)
	})

	t.Run("short rows are skipped", func(t *testing.T) {
		short := append(headerRows(),
			[]string{"1", "1234", "Ali"},
			tripRow("2", "1234", "Ali", "LEB-01", "400", "", "", "Pending"),
		)
		trip, found := scanner.FindOpenTrip(short, "1234")
		assert.True(t, found)
		assert.Equal(t, 7, trip.Row)
	})

	t.Run("header-only ledger has no open trips", func(t *testing.T) {
		_, found := scanner.FindOpenTrip(headerRows(), "1234")
		assert.False(t, found)
	})
}

func TestPendingTrips(t *testing.T) {
	scanner := NewScanner()

	rows := append(headerRows(),
		tripRow("1", "1234", "Ali", "LEB-01", "100", "", "", "Pending"),
		tripRow("2", "5678", "Bilal", "LEB-02", "200", "150", "30", "Done"),
		tripRow("3", "1234", "Ali", "LEB-01", "300", "", "", "Pending"),
	)

	pending := scanner.PendingTrips(rows)
	assert.Len(t, pending, 1)
	assert.Equal(t, 6, pending["1234"].Row)
}

func TestLastClosingBalance(t *testing.T) {
	scanner := NewScanner()

	rows := append(headerRows(),
		tripRow("1", "1234", "Ali", "LEB-01", "500", "300", "150", "Done"),
		tripRow("2", "1234", "Ali", "LEB-01", "300", "1,250", "80", "Done"),
		tripRow("3", "5678", "Bilal", "LEB-02", "700", "650", "20", "Done"),
	)

	t.Run("most recent row wins, commas stripped", func(t *testing.T) {
		assert.Equal(t, 1250.0, scanner.LastClosingBalance(rows, "1234"))
	})

	t.Run("no prior rows", func(t *testing.T) {
		assert.Equal(t, 0.0, scanner.LastClosingBalance(rows, "9999"))
	})

	t.Run("unparsable value yields zero", func(t *testing.T) {
		open := append(headerRows(),
			tripRow("1", "1234", "Ali", "LEB-01", "500", "300", "150", "Done"),
			tripRow("2", "1234", "Ali", "LEB-01", "300", "", "", "Pending"),
		)
		assert.Equal(t, 0.0, scanner.LastClosingBalance(open, "1234"))
	})
}

func TestTotals(t *testing.T) {
	scanner := NewScanner()

	rows := append(headerRows(),
		tripRow("1", "1234", "Ali", "LEB-01", "500", "300", "150.75", "Done"),
		tripRow("2", "1234", "Ali", "LEB-01", "300", "200", "1,049.9", "Done"),
		tripRow("3", "1234", "Ali", "LEB-01", "200", "", "", "Pending"),
		tripRow("4", "5678", "Bilal", "LEB-02", "700", "650", "garbage", "Done"),
	)

	t.Run("sums done rows truncated per row", func(t *testing.T) {
		totals := scanner.Totals(rows, []string{"1234", "5678", "9999"})
		assert.Equal(t, int64(150+1049), totals["1234"])
		assert.Equal(t, int64(0), totals["5678"], "unparsable net total contributes nothing")
		assert.Equal(t, int64(0), totals["9999"], "drivers without trips stay at zero")
	})

	t.Run("idempotent and order independent", func(t *testing.T) {
		first := scanner.Totals(rows, []string{"1234", "5678"})
		second := scanner.Totals(rows, []string{"5678", "1234"})
		assert.Equal(t, first, second)
		assert.Equal(t, first, scanner.Totals(rows, []string{"1234", "5678"}))
	})
}

func TestNextWriteRow(t *testing.T) {
	scanner := NewScanner()

	t.Run("empty ledger starts at the data row", func(t *testing.T) {
		assert.Equal(t, models.DataStartRow, scanner.NextWriteRow(headerRows()))
		assert.Equal(t, models.DataStartRow, scanner.NextWriteRow(nil))
	})

	t.Run("appends after the last data row", func(t *testing.T) {
		rows := append(headerRows(),
			tripRow("1", "1234", "Ali", "LEB-01", "500", "300", "150", "Done"),
			tripRow("2", "5678", "Bilal", "LEB-02", "700", "", "", "Pending"),
		)
		assert.Equal(t, 8, scanner.NextWriteRow(rows))
	})

	t.Run("first gap wins over later populated rows", func(t *testing.T) {
		rows := append(headerRows(),
			tripRow("1", "1234", "Ali", "LEB-01", "500", "300", "150", "Done"),
			tripRow("2", "1234", "Ali", "LEB-01", "300", "200", "80", "Done"),
			tripRow("3", "5678", "Bilal", "LEB-02", "700", "650", "20", "Done"),
			tripRow("4", "5678", "Bilal", "LEB-02", "650", "600", "10", "Done"),
			[]string{"", "   ", "", ""},
			tripRow("6", "9012", "Chand", "LEB-03", "400", "", "", "Pending"),
		)
		assert.Equal(t, 10, scanner.NextWriteRow(rows))
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{"plain integer", "500", 500, true},
		{"decimal", "123.45", 123.45, true},
		{"thousands commas", "1,234,567.89", 1234567.89, true},
		{"surrounding whitespace", "  42 ", 42, true},
		{"negative", "-100", -100, true},
		{"empty", "", 0, false},
		{"whitespace only", "   ", 0, false},
		{"garbage", "n/a", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
