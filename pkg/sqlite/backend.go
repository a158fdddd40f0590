// Package sqlite provides the public constructor for the SQLite development
// backend while keeping its implementation internal.
package sqlite

import (
	"github.com/braude/garage/internal/sqlite"
	"github.com/braude/garage/pkg/types"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: "./data",
//	})
//	defer backend.Detach()
func NewBackend() types.Backend {
	return sqlite.NewBackend()
}

// Seed fills an empty backend with demo data. See the internal package for
// the data set.
func Seed(b types.Backend) (bool, error) {
	return sqlite.Seed(b)
}
