// Package database implements coraldb's in-memory storage and indexing
// core: typed tables, per-column indexes, and the Database registry that
// names them. Nothing in this package touches the network or the
// filesystem — it is the part of the system the HTTP façade (internal/api)
// and the search coordinator (internal/search) sit on top of.
package database

import "sync"

const maxTableNameBytes = 128

// Database is a name→table registry guarded by a read/write lock held only
// for create/drop/lookup, per §5's two-level locking discipline. Callers
// that obtain a *Table handle hold a shared reference and no longer need
// the database lock to operate on it.
type Database struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

func NewDatabase() *Database {
	return &Database{tables: make(map[string]*Table)}
}

func validateTableName(name string) *Error {
	if name == "" {
		return errBadRequest("table name must not be empty")
	}
	if len(name) > maxTableNameBytes {
		return errBadRequest("table name exceeds %d bytes", maxTableNameBytes)
	}
	return nil
}

// Create registers a new table under name with the given schema and
// capacity hint. Fails with DuplicateTable if the name is taken.
func (d *Database) Create(name string, schema TableSchema, capacityHint int) (*Table, *Error) {
	if err := validateTableName(name); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.tables[name]; exists {
		return nil, errDuplicateTable(name)
	}

	table, err := NewTable(name, schema, capacityHint)
	if err != nil {
		return nil, err
	}
	d.tables[name] = table
	return table, nil
}

// Drop removes a table from the registry. Queries in flight against a
// *Table handle a caller already holds are unaffected; only future Get
// lookups see UnknownTable.
func (d *Database) Drop(name string) *Error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.tables[name]; !exists {
		return errUnknownTable(name)
	}
	delete(d.tables, name)
	return nil
}

// Get returns the table registered under name, or UnknownTable.
func (d *Database) Get(name string) (*Table, *Error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	table, exists := d.tables[name]
	if !exists {
		return nil, errUnknownTable(name)
	}
	return table, nil
}

// List returns every registered table name. Order is unspecified.
func (d *Database) List() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.tables))
	for name := range d.tables {
		names = append(names, name)
	}
	return names
}
