// Package registry loads the driver registry sheet into typed records.
// The sheet has gone through several header renames over the years, so
// each logical field resolves against an ordered list of known aliases
// instead of one fixed header.
package registry

import (
	"strings"

	"github.com/Mustansar840/quick-management/internal/models"
	"go.uber.org/zap"
)

// Header aliases per logical field, highest priority first. The first
// alias present with a non-empty value wins.
var (
	idAliases      = []string{"Driver ID", "ID", "Id"}
	nameAliases    = []string{"Driver Name", "Name"}
	vehicleAliases = []string{"Car#", "Car", "Car Number", "Vehicle"}
)

// Loader builds the driver map from registry records.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a Loader.
func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load transforms header-keyed registry rows into a driver map. Rows
// without a resolvable identifier are skipped; everything is stored as
// a trimmed string, identifiers included, so codes like "0042" survive
// untouched.
func (l *Loader) Load(records []map[string]string) map[string]models.Driver {
	drivers := make(map[string]models.Driver, len(records))
	for _, record := range records {
		id := resolve(record, idAliases)
		if id == "" {
			continue
		}
		drivers[id] = models.Driver{
			ID:      id,
			Name:    resolve(record, nameAliases),
			Vehicle: resolve(record, vehicleAliases),
		}
	}

	l.logger.Debug("Loaded driver registry", zap.Int("drivers", len(drivers)))
	return drivers
}

// resolve returns the first non-empty trimmed value among the aliases.
func resolve(record map[string]string, aliases []string) string {
	for _, alias := range aliases {
		if value := strings.TrimSpace(record[alias]); value != "" {
			return value
		}
	}
	return ""
}
