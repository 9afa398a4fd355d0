// Package store defines the capability contract this service requires from
// its backing document store: point reads, writes, merges, and deletes at a
// hierarchical key path, plus live full-snapshot subscriptions (watch.go).
package store

import (
	"context"
	"fmt"
)

// Store is a key-path-addressable hierarchical document store. Values read
// back are heterogeneous: keyed maps, legacy arrays, or bare scalars.
type Store interface {
	// Get decodes the value at path into v. An absent path leaves v at its
	// zero value and returns nil.
	Get(ctx context.Context, path string, v any) error
	// Push appends a new child under path with a store-assigned identifier
	// and writes value there, returning the new identifier.
	Push(ctx context.Context, path string, value any) (string, error)
	// Set replaces the value at path entirely.
	Set(ctx context.Context, path string, value any) error
	// Update merges the given fields into the value at path, leaving fields
	// not named untouched.
	Update(ctx context.Context, path string, fields map[string]any) error
	// Delete removes the value at path. Deleting an absent path is not an error.
	Delete(ctx context.Context, path string) error
}

// Error annotates store failures with the operation and path involved.
type Error struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrapError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Path: path, Err: err}
}
