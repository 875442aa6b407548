package workflow

import "github.com/Mustansar840/quick-management/internal/models"

// Settle computes the closing reconciliation for a trip. The id-cost is
// what the trip consumed from the opening balance; a negative id-cost
// (balance topped up mid-trip) is valid and flows through the net total
// arithmetically. Inputs are taken as-is, in one consistent currency
// unit, with no bounds checks or rounding.
func Settle(opening, closing, cash, bank float64) models.Settlement {
	idCost := opening - closing
	return models.Settlement{
		OpeningBalance: opening,
		ClosingBalance: closing,
		CashInHand:     cash,
		BankDeposit:    bank,
		IDCost:         idCost,
		NetTotal:       cash + bank - idCost,
	}
}
