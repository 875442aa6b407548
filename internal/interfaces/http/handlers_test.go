package http

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Mustansar840/quick-management/internal/ledger"
	"github.com/Mustansar840/quick-management/internal/lock"
	"github.com/Mustansar840/quick-management/internal/registry"
	"github.com/Mustansar840/quick-management/internal/repository"
	"github.com/Mustansar840/quick-management/internal/workflow"
)

type envelope struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
	Error   string                 `json:"error"`
}

type listEnvelope struct {
	Success bool                     `json:"success"`
	Data    []map[string]interface{} `json:"data"`
}

// newTestServer wires a real excel store, audit database and engine
// behind the router, so the whole presentation contract is exercised
// end to end.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	store := ledger.NewExcelStore(filepath.Join(t.TempDir(), "ledger.xlsx"), logger)
	require.NoError(t, store.EnsureWorkbook("Driver Registry", "Trip Ledger"))
	require.NoError(t, store.WriteRange("Driver Registry", 1, 1, []string{"Driver ID", "Driver Name", "Car#"}))
	require.NoError(t, store.WriteRange("Driver Registry", 2, 1, []string{"1234", "Ali", "LEB-01"}))

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(`
		CREATE TABLE audit_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			driver_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			ledger_row INTEGER NOT NULL,
			detail TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	require.NoError(t, err)
	auditRepo := repository.NewAuditRepository(db, logger)

	engine := workflow.NewEngine(
		ledger.NewCachedStore(store, time.Second),
		registry.NewLoader(logger),
		lock.NewMemoryLock(),
		auditRepo,
		workflow.Config{
			RegistrySheet: "Driver Registry",
			TripSheet:     "Trip Ledger",
			LockTTL:       time.Minute,
		},
		logger,
	)

	handlers := NewHandlers(engine, auditRepo, logger)
	return NewServer(ServerConfig{Host: "127.0.0.1", Port: 0}, handlers, logger)
}

func do(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	server.router.ServeHTTP(recorder, req)
	return recorder
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder) envelope {
	t.Helper()
	var resp envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	return resp
}

func TestFullCycleOverHTTP(t *testing.T) {
	server := newTestServer(t)

	// Start flow.
	rec := do(t, server, http.MethodPost, "/api/v1/session/driver", gin.H{"driver_id": "1234"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "START_OPENING_BALANCE", decode(t, rec).Data["step"])

	rec = do(t, server, http.MethodPost, "/api/v1/session/value", gin.H{"value": "1000"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "START_FUEL", decode(t, rec).Data["step"])

	rec = do(t, server, http.MethodPost, "/api/v1/session/value", gin.H{"value": "5"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SELECT_DRIVER", decode(t, rec).Data["step"])

	// The grid now shows the open trip.
	rec = do(t, server, http.MethodGet, "/api/v1/drivers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var board listEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))
	require.Len(t, board.Data, 1)
	assert.NotNil(t, board.Data[0]["open_trip"])

	// Close flow.
	rec = do(t, server, http.MethodPost, "/api/v1/session/driver", gin.H{"driver_id": "1234"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CONFIRM_CLOSE", decode(t, rec).Data["step"])

	rec = do(t, server, http.MethodPost, "/api/v1/session/confirm-close", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, value := range []string{"800", "300", "50"} {
		rec = do(t, server, http.MethodPost, "/api/v1/session/value", gin.H{"value": value})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = do(t, server, http.MethodPost, "/api/v1/session/confirm-close", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	receipt := decode(t, rec)
	assert.Equal(t, "RECEIPT", receipt.Data["step"])

	settlement, ok := receipt.Data["settlement"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 200.0, settlement["id_cost"])
	assert.Equal(t, 150.0, settlement["net_total"])

	rec = do(t, server, http.MethodPost, "/api/v1/session/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SELECT_DRIVER", decode(t, rec).Data["step"])

	// Both writes landed in the audit trail.
	rec = do(t, server, http.MethodGet, "/api/v1/audit?driver_id=1234", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var audit listEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &audit))
	assert.Len(t, audit.Data, 2)
}

func TestHTTPValidation(t *testing.T) {
	server := newTestServer(t)

	t.Run("unknown driver is 404", func(t *testing.T) {
		rec := do(t, server, http.MethodPost, "/api/v1/session/driver", gin.H{"driver_id": "9999"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing body is 400", func(t *testing.T) {
		rec := do(t, server, http.MethodPost, "/api/v1/session/driver", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("garbage amount is 422 and the step stalls", func(t *testing.T) {
		rec := do(t, server, http.MethodPost, "/api/v1/session/driver", gin.H{"driver_id": "1234"})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = do(t, server, http.MethodPost, "/api/v1/session/value", gin.H{"value": "abc"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = do(t, server, http.MethodGet, "/api/v1/session", nil)
		assert.Equal(t, "START_OPENING_BALANCE", decode(t, rec).Data["step"])
	})

	t.Run("confirm without a session is a conflict", func(t *testing.T) {
		fresh := newTestServer(t)
		rec := do(t, fresh, http.MethodPost, "/api/v1/session/confirm-close", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}
