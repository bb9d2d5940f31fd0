// Package sqlite provides the public API for the SQLite Store backend.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/namedseq/internal/sqlite"
	"github.com/mesh-intelligence/namedseq/pkg/types"
)

// Option configures a backend created by NewBackend.
type Option = sqlite.Option

// WithLogger sets the structured logger for store events.
var WithLogger = sqlite.WithLogger

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".namedseq-db",
//	})
//	defer store.Detach()
func NewBackend(opts ...Option) types.Store {
	return sqlite.NewBackend(opts...)
}
