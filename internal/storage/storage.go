// Package storage persists wizard sessions, per-user coupons, and completed
// quotes in PostgreSQL. Stores are thin sqlx wrappers with no business logic;
// the schema is owned by the migrations directory.
package storage

import "fmt"

// PersistenceError wraps a store failure. The wizard never recovers from it:
// callers decide what to show and leave the previous screen authoritative.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Code exposes a stable error code for handler summary logs.
func (e *PersistenceError) Code() string { return "PERSISTENCE_ERROR" }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
