package workflow

import (
	"time"

	"github.com/Mustansar840/quick-management/internal/models"
)

// Step identifies where a session is in the trip lifecycle.
type Step string

// Lifecycle steps. The start flow runs SELECT_DRIVER →
// START_OPENING_BALANCE → START_FUEL → (write, reset). The close flow
// runs SELECT_DRIVER → CONFIRM_CLOSE → END_CLOSING_BALANCE → END_CASH →
// END_BANK → SETTLE → (write) → RECEIPT → (reset). There are no
// backward transitions.
const (
	StepSelectDriver        Step = "SELECT_DRIVER"
	StepStartOpeningBalance Step = "START_OPENING_BALANCE"
	StepStartFuel           Step = "START_FUEL"
	StepConfirmClose        Step = "CONFIRM_CLOSE"
	StepEndClosingBalance   Step = "END_CLOSING_BALANCE"
	StepEndCash             Step = "END_CASH"
	StepEndBank             Step = "END_BANK"
	StepSettle              Step = "SETTLE"
	StepReceipt             Step = "RECEIPT"
)

// Session is the explicit state carried across one driver interaction
// cycle. It lives for exactly one start or close cycle and is discarded
// whole on reset; nothing about it is persisted.
type Session struct {
	ID     string        `json:"id"`
	Step   Step          `json:"step"`
	Driver models.Driver `json:"driver"`

	// Close flow: the pending row captured at selection time. The close
	// write targets OpenTrip.Row exactly as captured.
	OpenTrip *models.OpenTrip `json:"open_trip,omitempty"`

	// Start flow: non-binding default offered for the opening balance,
	// taken from the driver's most recent closing balance.
	SuggestedOpening float64 `json:"suggested_opening"`

	// Accumulated step inputs.
	OpeningBalance float64 `json:"opening_balance"`
	FuelReading    float64 `json:"fuel_reading"`
	ClosingBalance float64 `json:"closing_balance"`
	CashInHand     float64 `json:"cash_in_hand"`
	BankDeposit    float64 `json:"bank_deposit"`

	// Computed at END_BANK confirmation, displayed from SETTLE onward.
	Settlement *models.Settlement `json:"settlement,omitempty"`

	StartedAt time.Time `json:"started_at"`
}

// clone returns a copy safe to hand to the presentation layer.
func (s *Session) clone() *Session {
	if s == nil {
		return &Session{Step: StepSelectDriver}
	}
	copied := *s
	if s.OpenTrip != nil {
		trip := *s.OpenTrip
		copied.OpenTrip = &trip
	}
	if s.Settlement != nil {
		settlement := *s.Settlement
		copied.Settlement = &settlement
	}
	return &copied
}
