package database

import (
	"strings"
	"sync"

	"gorm.io/gorm"
)

// The deployed schema drifted across environments: some databases carry an
// is_active column on these tables and some do not. Instead of branching on
// failures per call, capabilities are probed once at startup and cached.
// An unknown-column failure observed later still flips the flag so the
// retried shape is used from then on.

var (
	capMu         sync.RWMutex
	activeColumns = map[string]bool{
		"organizations": true,
		"properties":    true,
		"user_profiles": true,
		"admin_users":   true,
	}
)

// ProbeCapabilities checks which optional columns the live schema has
func ProbeCapabilities(db *gorm.DB) {
	capMu.Lock()
	defer capMu.Unlock()
	for table := range activeColumns {
		activeColumns[table] = db.Migrator().HasColumn(table, "is_active")
	}
}

// HasActiveColumn reports whether the table carries the is_active column
func HasActiveColumn(table string) bool {
	capMu.RLock()
	defer capMu.RUnlock()
	return activeColumns[table]
}

// MarkActiveColumnMissing records that a table turned out not to have the
// is_active column after all
func MarkActiveColumnMissing(table string) {
	capMu.Lock()
	defer capMu.Unlock()
	activeColumns[table] = false
}

// SetActiveColumn overrides a capability flag. Used by tests.
func SetActiveColumn(table string, present bool) {
	capMu.Lock()
	defer capMu.Unlock()
	activeColumns[table] = present
}

// IsUnknownColumnErr reports whether err is the backend complaining about a
// column that does not exist in the live schema (Postgres SQLSTATE 42703)
func IsUnknownColumnErr(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if !strings.Contains(msg, column) {
		return false
	}
	return strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "SQLSTATE 42703") ||
		strings.Contains(strings.ToLower(msg), "unknown column")
}
