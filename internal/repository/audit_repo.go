package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/Mustansar840/quick-management/internal/models"
)

// AuditRepository persists the append-only trail of ledger writes.
type AuditRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(db *sql.DB, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Record appends one audit event.
func (r *AuditRepository) Record(event *models.AuditEvent) error {
	query := `
		INSERT INTO audit_events (
			session_id, driver_id, event_type, ledger_row, detail
		) VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		event.SessionID,
		event.DriverID,
		event.EventType,
		event.LedgerRow,
		event.Detail,
	)
	if err != nil {
		r.logger.Error("Failed to record audit event", zap.Error(err))
		return fmt.Errorf("failed to record audit event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	event.ID = id
	return nil
}

// ListByDriver returns the most recent events for one driver, newest first.
func (r *AuditRepository) ListByDriver(driverID string, limit int) ([]*models.AuditEvent, error) {
	query := `
		SELECT id, session_id, driver_id, event_type, ledger_row, detail, created_at
		FROM audit_events
		WHERE driver_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	return r.list(query, driverID, limit)
}

// ListRecent returns the most recent events across all drivers, newest first.
func (r *AuditRepository) ListRecent(limit int) ([]*models.AuditEvent, error) {
	query := `
		SELECT id, session_id, driver_id, event_type, ledger_row, detail, created_at
		FROM audit_events
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	return r.list(query, limit)
}

func (r *AuditRepository) list(query string, args ...interface{}) ([]*models.AuditEvent, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list audit events", zap.Error(err))
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	var events []*models.AuditEvent
	for rows.Next() {
		var event models.AuditEvent
		err := rows.Scan(
			&event.ID,
			&event.SessionID,
			&event.DriverID,
			&event.EventType,
			&event.LedgerRow,
			&event.Detail,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		events = append(events, &event)
	}

	return events, rows.Err()
}
