package models

import "time"

// Trip Ledger sheet layout. Columns are 1-indexed and fixed; data rows
// start at DataStartRow, everything above is sheet title and headers.
const (
	ColSequence       = 1
	ColDriverID       = 2
	ColDriverName     = 3
	ColVehicle        = 4
	ColDate           = 5
	ColOpeningBalance = 6
	ColClosingBalance = 7
	ColFuelReading    = 8
	ColOpeningTime    = 9
	ColClosingTime    = 10
	ColIDCost         = 11
	ColBankDeposit    = 12
	ColCashInHand     = 13
	ColNetTotal       = 14
	ColStatus         = 15

	ColumnCount  = 15
	DataStartRow = 6
)

// Status markers. Matching is substring based ("Pending (edited)" still
// counts as pending); writes always emit the bare marker.
const (
	StatusPending = "Pending"
	StatusDone    = "Done"
)

// TripRecord is the in-memory form of one ledger row.
type TripRecord struct {
	Sequence       int       `json:"sequence"`
	DriverID       string    `json:"driver_id"`
	DriverName     string    `json:"driver_name"`
	Vehicle        string    `json:"vehicle"`
	Date           string    `json:"date"`
	OpeningBalance float64   `json:"opening_balance"`
	ClosingBalance float64   `json:"closing_balance"`
	FuelReading    string    `json:"fuel_reading"`
	OpenedAt       time.Time `json:"opened_at"`
	ClosedAt       time.Time `json:"closed_at"`
	IDCost         float64   `json:"id_cost"`
	BankDeposit    float64   `json:"bank_deposit"`
	CashInHand     float64   `json:"cash_in_hand"`
	NetTotal       float64   `json:"net_total"`
	Status         string    `json:"status"`
}

// OpenTrip is the handle captured when a pending row is found for a
// driver. Row is the absolute sheet row, kept so the closing write can
// update the same row in place.
type OpenTrip struct {
	Row            int     `json:"row"`
	DriverID       string  `json:"driver_id"`
	DriverName     string  `json:"driver_name"`
	Vehicle        string  `json:"vehicle"`
	OpeningBalance float64 `json:"opening_balance"`
}

// Settlement is the closing reconciliation for one trip.
type Settlement struct {
	OpeningBalance float64 `json:"opening_balance"`
	ClosingBalance float64 `json:"closing_balance"`
	CashInHand     float64 `json:"cash_in_hand"`
	BankDeposit    float64 `json:"bank_deposit"`
	IDCost         float64 `json:"id_cost"`
	NetTotal       float64 `json:"net_total"`
}
