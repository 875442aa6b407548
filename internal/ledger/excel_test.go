package ledger

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *ExcelStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	store := NewExcelStore(path, zap.NewNop())
	require.NoError(t, store.EnsureWorkbook("Driver Registry", "Trip Ledger"))
	return store
}

func TestExcelStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.WriteRange("Trip Ledger", 6, 1, []string{"1", "1234", "Ali", "LEB-01"}))
	require.NoError(t, store.WriteCell("Trip Ledger", 6, 15, "Pending"))

	rows, err := store.ReadAllRows("Trip Ledger")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "1234", rows[5][1])
	assert.Equal(t, "Pending", rows[5][14])

	col, err := store.ReadColumn("Trip Ledger", 2)
	require.NoError(t, err)
	require.Len(t, col, 6)
	assert.Equal(t, "1234", col[5])
}

func TestExcelStoreAppendAndInsert(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.WriteRange("Trip Ledger", 6, 1, []string{"1", "1234"}))
	require.NoError(t, store.AppendRow("Trip Ledger", []string{"2", "5678"}))

	rows, err := store.ReadAllRows("Trip Ledger")
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, "5678", rows[6][1])

	require.NoError(t, store.InsertRow("Trip Ledger", []string{"x", "9012"}, 7))
	rows, err = store.ReadAllRows("Trip Ledger")
	require.NoError(t, err)
	require.Len(t, rows, 8)
	assert.Equal(t, "9012", rows[6][1])
	assert.Equal(t, "5678", rows[7][1], "insert shifts existing rows down")
}

func TestExcelStoreReadRecords(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.WriteRange("Driver Registry", 1, 1, []string{"Driver ID", "Driver Name", "Car#"}))
	require.NoError(t, store.WriteRange("Driver Registry", 2, 1, []string{"1234", "Ali", "LEB-01"}))
	require.NoError(t, store.WriteRange("Driver Registry", 3, 1, []string{"5678", "Bilal"}))

	records, err := store.ReadRecords("Driver Registry")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1234", records[0]["Driver ID"])
	assert.Equal(t, "LEB-01", records[0]["Car#"])
	assert.Equal(t, "", records[1]["Car#"], "missing trailing cells read empty")
}

func TestExcelStoreUnavailable(t *testing.T) {
	store := NewExcelStore(filepath.Join(t.TempDir(), "missing.xlsx"), zap.NewNop())

	_, err := store.ReadAllRows("Trip Ledger")
	assert.True(t, errors.Is(err, ErrStoreUnavailable))

	err = store.WriteCell("Trip Ledger", 6, 1, "x")
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
}

func TestEnsureWorkbookKeepsExisting(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.WriteCell("Trip Ledger", 6, 2, "1234"))

	// A second ensure must not recreate the file.
	require.NoError(t, store.EnsureWorkbook("Driver Registry", "Trip Ledger"))

	rows, err := store.ReadAllRows("Trip Ledger")
	require.NoError(t, err)
	assert.Equal(t, "1234", rows[5][1])
}
