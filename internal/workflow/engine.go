package workflow

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Mustansar840/quick-management/internal/ledger"
	"github.com/Mustansar840/quick-management/internal/lock"
	"github.com/Mustansar840/quick-management/internal/models"
	"github.com/Mustansar840/quick-management/internal/registry"
)

// AuditRecorder receives audit events after successful ledger writes.
// Recording failures are logged and never block the workflow.
type AuditRecorder interface {
	Record(event *models.AuditEvent) error
}

// Config holds workflow engine configuration.
type Config struct {
	RegistrySheet string
	TripSheet     string
	LockTTL       time.Duration
}

// Engine drives the trip lifecycle: one active session at a time moves
// through the start or close flow, and the two ledger writes (new
// pending row, in-place close) happen at the single confirmation points
// the flows define. Every state-changing decision re-reads the ledger
// immediately beforehand; cached snapshots only ever serve display.
type Engine struct {
	store   ledger.Store
	scanner *ledger.Scanner
	loader  *registry.Loader
	locks   lock.DriverLock
	audit   AuditRecorder
	cfg     Config
	logger  *zap.Logger

	mu      sync.Mutex
	session *Session
}

// NewEngine creates a workflow engine.
func NewEngine(
	store ledger.Store,
	loader *registry.Loader,
	locks lock.DriverLock,
	audit AuditRecorder,
	cfg Config,
	logger *zap.Logger,
) *Engine {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Minute
	}
	return &Engine{
		store:   store,
		scanner: ledger.NewScanner(),
		loader:  loader,
		locks:   locks,
		audit:   audit,
		cfg:     cfg,
		logger:  logger,
	}
}

// DriverStatus is one entry of the driver selection grid.
type DriverStatus struct {
	Driver   models.Driver    `json:"driver"`
	OpenTrip *models.OpenTrip `json:"open_trip,omitempty"`
	Total    int64            `json:"total"`
}

// DriverBoard returns every registered driver with their open trip (if
// any) and cumulative closed-trip total, ordered by driver id.
func (e *Engine) DriverBoard(ctx context.Context) ([]DriverStatus, error) {
	drivers, err := e.loadRegistry()
	if err != nil {
		return nil, err
	}

	rows, err := e.store.ReadAllRows(e.cfg.TripSheet)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(drivers))
	for id := range drivers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	pending := e.scanner.PendingTrips(rows)
	totals := e.scanner.Totals(rows, ids)

	board := make([]DriverStatus, 0, len(ids))
	for _, id := range ids {
		board = append(board, DriverStatus{
			Driver:   drivers[id],
			OpenTrip: pending[id],
			Total:    totals[id],
		})
	}
	return board, nil
}

// Session returns a copy of the current session state for display.
func (e *Engine) Session() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.clone()
}

// SelectDriver begins a cycle for the given driver. If the driver has a
// pending trip the session routes to the close flow carrying its handle;
// otherwise to the start flow with the last closing balance suggested
// as the opening default.
func (e *Engine) SelectDriver(ctx context.Context, driverID string) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		return nil, ErrInvalidTransition
	}

	drivers, err := e.loadRegistry()
	if err != nil {
		return nil, err
	}
	driver, ok := drivers[driverID]
	if !ok {
		return nil, ErrUnknownDriver
	}

	acquired, err := e.locks.Acquire(ctx, driverID, e.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrDriverBusy
	}

	rows, err := e.freshRows()
	if err != nil {
		// No session was created; the selection can simply be retried.
		e.releaseLock(ctx, driverID)
		return nil, err
	}

	session := &Session{
		ID:        uuid.New().String(),
		Driver:    driver,
		StartedAt: time.Now(),
	}

	if trip, found := e.scanner.FindOpenTrip(rows, driverID); found {
		session.Step = StepConfirmClose
		session.OpenTrip = trip
		e.logger.Info("Driver has an open trip, entering close flow",
			zap.String("driver_id", driverID),
			zap.Int("row", trip.Row))
	} else {
		session.Step = StepStartOpeningBalance
		session.SuggestedOpening = e.scanner.LastClosingBalance(rows, driverID)
		e.logger.Info("No open trip, entering start flow",
			zap.String("driver_id", driverID),
			zap.Float64("suggested_opening", session.SuggestedOpening))
	}

	e.session = session
	return session.clone(), nil
}

// Confirm advances the two confirmation-only steps of the close flow:
// CONFIRM_CLOSE begins data collection, SETTLE performs the close write
// and moves to the receipt.
func (e *Engine) Confirm(ctx context.Context) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil, ErrNoActiveSession
	}

	switch e.session.Step {
	case StepConfirmClose:
		e.session.Step = StepEndClosingBalance
		return e.session.clone(), nil
	case StepSettle:
		if err := e.writeClose(); err != nil {
			return nil, err
		}
		e.session.Step = StepReceipt
		return e.session.clone(), nil
	default:
		return nil, ErrInvalidTransition
	}
}

// SubmitStepValue feeds one numeric input into the current collection
// step. An unparsable value stalls the step: state is unchanged and the
// same step accepts the next attempt.
func (e *Engine) SubmitStepValue(ctx context.Context, raw string) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil, ErrNoActiveSession
	}

	value, ok := ledger.ParseAmount(raw)
	if !ok {
		return nil, ErrInvalidAmount
	}

	switch e.session.Step {
	case StepStartOpeningBalance:
		e.session.OpeningBalance = value
		e.session.Step = StepStartFuel

	case StepStartFuel:
		e.session.FuelReading = value
		if err := e.writeStart(); err != nil {
			return nil, err
		}
		// Start flow ends without a receipt; the cycle is complete.
		e.resetLocked(ctx)
		return e.session.clone(), nil

	case StepEndClosingBalance:
		e.session.ClosingBalance = value
		e.session.Step = StepEndCash

	case StepEndCash:
		e.session.CashInHand = value
		e.session.Step = StepEndBank

	case StepEndBank:
		e.session.BankDeposit = value
		settlement := Settle(
			e.session.OpenTrip.OpeningBalance,
			e.session.ClosingBalance,
			e.session.CashInHand,
			e.session.BankDeposit,
		)
		e.session.Settlement = &settlement
		e.session.Step = StepSettle

	default:
		return nil, ErrInvalidTransition
	}

	return e.session.clone(), nil
}

// StartNewSession discards all session state and returns the machine to
// driver selection. The next ledger read is fresh, so a just-written
// update is reflected immediately.
func (e *Engine) StartNewSession(ctx context.Context) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked(ctx)
	e.invalidate()
	return e.session.clone()
}

// writeStart writes the new pending row. The write row is located
// against a snapshot read immediately beforehand.
func (e *Engine) writeStart() error {
	rows, err := e.freshRows()
	if err != nil {
		return err
	}

	row := e.scanner.NextWriteRow(rows)
	now := time.Now()
	session := e.session

	values := make([]string, models.ColumnCount)
	values[models.ColSequence-1] = strconv.Itoa(row - models.DataStartRow + 1)
	values[models.ColDriverID-1] = session.Driver.ID
	values[models.ColDriverName-1] = session.Driver.Name
	values[models.ColVehicle-1] = session.Driver.Vehicle
	values[models.ColDate-1] = now.Format("2006-01-02")
	values[models.ColOpeningBalance-1] = formatAmount(session.OpeningBalance)
	values[models.ColFuelReading-1] = formatAmount(session.FuelReading)
	values[models.ColOpeningTime-1] = now.Format("15:04:05")
	values[models.ColStatus-1] = models.StatusPending

	if err := e.store.WriteRange(e.cfg.TripSheet, row, 1, values); err != nil {
		e.logger.Error("Failed to write trip start",
			zap.String("driver_id", session.Driver.ID),
			zap.Int("row", row),
			zap.Error(err))
		return err
	}

	e.logger.Info("Trip started",
		zap.String("driver_id", session.Driver.ID),
		zap.Int("row", row),
		zap.Float64("opening_balance", session.OpeningBalance))

	e.recordAudit(models.EventTripStarted, row, map[string]float64{
		"opening_balance": session.OpeningBalance,
		"fuel_reading":    session.FuelReading,
	})
	return nil
}

// writeClose updates the captured row in place and flips its status to
// done. The row locator is the one captured at selection time; it is
// not re-validated against concurrent external edits.
func (e *Engine) writeClose() error {
	session := e.session
	settlement := session.Settlement
	row := session.OpenTrip.Row
	sheet := e.cfg.TripSheet

	if err := e.store.WriteCell(sheet, row, models.ColClosingBalance, formatAmount(settlement.ClosingBalance)); err != nil {
		return err
	}
	closing := []string{
		time.Now().Format("15:04:05"),
		formatAmount(settlement.IDCost),
		formatAmount(settlement.BankDeposit),
		formatAmount(settlement.CashInHand),
		formatAmount(settlement.NetTotal),
		models.StatusDone,
	}
	if err := e.store.WriteRange(sheet, row, models.ColClosingTime, closing); err != nil {
		e.logger.Error("Failed to write trip close",
			zap.String("driver_id", session.Driver.ID),
			zap.Int("row", row),
			zap.Error(err))
		return err
	}

	e.logger.Info("Trip closed",
		zap.String("driver_id", session.Driver.ID),
		zap.Int("row", row),
		zap.Float64("net_total", settlement.NetTotal))

	e.recordAudit(models.EventTripClosed, row, map[string]float64{
		"closing_balance": settlement.ClosingBalance,
		"cash_in_hand":    settlement.CashInHand,
		"bank_deposit":    settlement.BankDeposit,
		"id_cost":         settlement.IDCost,
		"net_total":       settlement.NetTotal,
	})
	return nil
}

func (e *Engine) loadRegistry() (map[string]models.Driver, error) {
	records, err := e.store.ReadRecords(e.cfg.RegistrySheet)
	if err != nil {
		return nil, err
	}
	return e.loader.Load(records), nil
}

// freshRows invalidates any cached snapshot and reads the trip sheet,
// so read-then-decide operations never act on stale data.
func (e *Engine) freshRows() ([][]string, error) {
	e.invalidate()
	return e.store.ReadAllRows(e.cfg.TripSheet)
}

func (e *Engine) invalidate() {
	if cache, ok := e.store.(interface{ Invalidate() }); ok {
		cache.Invalidate()
	}
}

func (e *Engine) resetLocked(ctx context.Context) {
	if e.session != nil {
		e.releaseLock(ctx, e.session.Driver.ID)
		e.session = nil
	}
}

func (e *Engine) releaseLock(ctx context.Context, driverID string) {
	if err := e.locks.Release(ctx, driverID); err != nil {
		e.logger.Warn("Failed to release driver lock",
			zap.String("driver_id", driverID),
			zap.Error(err))
	}
}

func (e *Engine) recordAudit(eventType string, row int, amounts map[string]float64) {
	if e.audit == nil {
		return
	}
	detail, _ := json.Marshal(amounts)
	event := &models.AuditEvent{
		SessionID: e.session.ID,
		DriverID:  e.session.Driver.ID,
		EventType: eventType,
		LedgerRow: row,
		Detail:    string(detail),
	}
	if err := e.audit.Record(event); err != nil {
		e.logger.Warn("Failed to record audit event",
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}

func formatAmount(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
