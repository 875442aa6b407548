package models

// Driver represents one row of the Driver Registry sheet.
// Drivers are managed outside this system and loaded fresh on each
// session start; name and vehicle are denormalized into trip rows at
// trip-start time, so later registry edits never rewrite history.
type Driver struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Vehicle string `json:"vehicle"`
}
