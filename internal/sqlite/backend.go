// Package sqlite implements the development storage backend. SQLite is the
// query engine; one JSONL file per entity is the source of truth and is
// rewritten atomically after every change.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/braude/garage/pkg/types"
)

// dbFile is the query database inside DataDir. It is recreated on Attach.
const dbFile = "garage.db"

// Backend implements types.Backend.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	tables   map[string]*table
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{tables: make(map[string]*table)}
}

// GetTable returns the table for a resource name.
// Returns ErrBackendDetached if the backend is not attached and
// ErrTableNotFound for an unknown name.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrBackendDetached
	}
	t, ok := b.tables[name]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	return t, nil
}

// Attach creates DataDir if needed, builds a fresh query database and loads
// every JSONL file into it.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return fmt.Errorf("create schema: %w", err)
	}
	if err := ensureJSONL(dataDir); err != nil {
		db.Close()
		return err
	}
	if err := loadAll(db, dataDir); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	config.DataDir = dataDir
	b.db = db
	b.config = config
	for _, d := range defs {
		b.tables[d.resource] = &table{def: d, backend: b}
	}
	b.attached = true
	return nil
}

// Detach closes the query database. JSONL files are already current, so
// nothing is flushed. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	b.tables = make(map[string]*table)
	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		if err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}
	return nil
}

// persist rewrites the JSONL file of d from the query table.
// The caller must hold b.mu.
func (b *Backend) persist(q querier, d *entityDef) error {
	rows, err := q.Query(fmt.Sprintf("SELECT %s FROM %s ORDER BY id", d.columnList(), d.table))
	if err != nil {
		return fmt.Errorf("read %s for persist: %w", d.table, err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		e, err := d.scan(rows)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode %s record: %w", d.resource, err)
		}
		records = append(records, raw)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return writeJSONL(filepath.Join(b.config.DataDir, d.file), records)
}
