package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mustansar840/quick-management/internal/ledger"
	"github.com/Mustansar840/quick-management/internal/models"
	"github.com/Mustansar840/quick-management/internal/repository"
	"github.com/Mustansar840/quick-management/internal/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	engine    *workflow.Engine
	auditRepo *repository.AuditRepository
	logger    *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(engine *workflow.Engine, auditRepo *repository.AuditRepository, logger *zap.Logger) *Handlers {
	return &Handlers{
		engine:    engine,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SelectDriverRequest is the body of POST /api/v1/session/driver
type SelectDriverRequest struct {
	DriverID string `json:"driver_id" binding:"required"`
}

// StepValueRequest is the body of POST /api/v1/session/value
type StepValueRequest struct {
	Value string `json:"value" binding:"required"`
}

// AuditQuery holds the query parameters of GET /api/v1/audit
type AuditQuery struct {
	DriverID string `form:"driver_id"`
	Limit    int    `form:"limit"`
}

// ListDrivers handles GET /api/v1/drivers: the selection grid with open
// trip markers and cumulative totals per driver.
func (h *Handlers) ListDrivers(c *gin.Context) {
	board, err := h.engine.DriverBoard(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: board})
}

// GetSession handles GET /api/v1/session
func (h *Handlers) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: h.engine.Session()})
}

// SelectDriver handles POST /api/v1/session/driver
func (h *Handlers) SelectDriver(c *gin.Context) {
	var req SelectDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "driver_id is required"})
		return
	}

	session, err := h.engine.SelectDriver(c.Request.Context(), req.DriverID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: session})
}

// ConfirmClose handles POST /api/v1/session/confirm-close. It advances
// both confirmation points of the close flow: entering data collection
// and, later, writing the settlement.
func (h *Handlers) ConfirmClose(c *gin.Context) {
	session, err := h.engine.Confirm(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: session})
}

// SubmitStepValue handles POST /api/v1/session/value
func (h *Handlers) SubmitStepValue(c *gin.Context) {
	var req StepValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "value is required"})
		return
	}

	session, err := h.engine.SubmitStepValue(c.Request.Context(), req.Value)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: session})
}

// ResetSession handles POST /api/v1/session/reset
func (h *Handlers) ResetSession(c *gin.Context) {
	session := h.engine.StartNewSession(c.Request.Context())
	c.JSON(http.StatusOK, Response{Success: true, Data: session})
}

// ListAudit handles GET /api/v1/audit
func (h *Handlers) ListAudit(c *gin.Context) {
	var query AuditQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}
	if query.Limit <= 0 || query.Limit > 200 {
		query.Limit = 50
	}

	var (
		events []*models.AuditEvent
		err    error
	)
	if query.DriverID != "" {
		events, err = h.auditRepo.ListByDriver(query.DriverID, query.Limit)
	} else {
		events, err = h.auditRepo.ListRecent(query.Limit)
	}
	if err != nil {
		h.logger.Error("Failed to list audit events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to list audit events"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: events})
}

// fail maps engine errors onto HTTP statuses: validation stalls keep
// the session and return 422, a broken store is 502, everything else
// is a conflict with the current step.
func (h *Handlers) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrStoreUnavailable):
		h.logger.Error("Ledger store unavailable", zap.Error(err))
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: err.Error()})
	case errors.Is(err, workflow.ErrInvalidAmount):
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: err.Error()})
	case errors.Is(err, workflow.ErrUnknownDriver):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, workflow.ErrDriverBusy):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.Is(err, workflow.ErrNoActiveSession), errors.Is(err, workflow.ErrInvalidTransition):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Unexpected error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}
