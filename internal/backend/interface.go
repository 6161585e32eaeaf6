package backend

import (
	"context"

	"cardcompass/internal/catalog"
)

// Backend bundles every catalog port a running server needs.
type Backend interface {
	catalog.CardLister
	catalog.UserCardStore
	catalog.CatalogReplacer
	catalog.CategoryLister
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// File backend
	DataDirectory string

	// SQLite backend
	SQLiteDBPath string

	// Google Sheets backend
	GoogleSpreadsheetID string
}

// BackendType represents the type of backend
type BackendType string

const (
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case FileBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
