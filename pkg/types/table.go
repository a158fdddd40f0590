package types

import "errors"

// Table provides uniform CRUD operations for a single entity type.
// Get and Fetch return any; callers type-assert to the concrete entity
// pointer (*Client, *Car or *CarService).
type Table interface {
	// Get retrieves the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Get(id int64) (any, error)

	// Set creates or updates an entity. When id is zero a new row is
	// inserted and the store assigns the ID. Returns the ID used.
	// Returns ErrNotFound when updating an ID that does not exist and
	// ErrInvalidReference when a foreign key names a missing parent.
	Set(id int64, data any) (int64, error)

	// Delete removes the entity with the given ID. References held by
	// child entities are cleared.
	// Returns ErrNotFound if no entity exists with that ID.
	Delete(id int64) error

	// Fetch returns the entities matching q in sort order.
	Fetch(q Query) ([]any, error)

	// Count returns the number of entities matching q, ignoring its
	// offset and limit.
	Count(q Query) (int64, error)
}

// Backend defines backend-agnostic storage access for the development
// server. Callers attach to a backend, access tables by name, and detach
// when done.
type Backend interface {
	// GetTable returns the Table for the given name.
	// Returns ErrTableNotFound if the name is not a standard table.
	GetTable(name string) (Table, error)

	// Attach connects to the backend described by config, creating the
	// DataDir if needed. Returns ErrAlreadyAttached when already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	Detach() error
}

// Table operation errors.
var (
	ErrNotFound         = errors.New("entity not found")
	ErrInvalidID        = errors.New("invalid entity ID")
	ErrInvalidData      = errors.New("invalid entity data")
	ErrInvalidReference = errors.New("referenced entity does not exist")
	ErrInvalidFilter    = errors.New("invalid filter")
	ErrUnknownField     = errors.New("unknown field")
)

// Backend lifecycle errors.
var (
	ErrBackendDetached = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
	ErrTableNotFound   = errors.New("table not found")
)
