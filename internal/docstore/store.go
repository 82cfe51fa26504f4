// Package docstore provides durable collections of records, each backed by a single JSON document.
package docstore

import (
	"context"
)

// Store is an interface for whole-collection storage operations.
// It abstracts the underlying medium, allowing for different implementations (e.g., file, in-memory).
type Store interface {
	// Read decodes the whole collection into out, which must be a pointer to a slice.
	// A missing or zero-length collection leaves out untouched and returns nil.
	// Returns ErrDecode if the stored bytes are not well-formed.
	// Read never waits for writers and never observes a partial write.
	Read(ctx context.Context, collection string, out any) error

	// Replace overwrites the whole collection with records under the exclusive collection lock.
	// Returns ErrLock if the lock cannot be obtained and ErrWrite on I/O failure;
	// the previous contents stay intact in both cases.
	// Replace on its own is last-writer-wins, use Mutate for read-modify-write cycles.
	Replace(ctx context.Context, collection string, records any) error

	// WithLock runs fn while holding the exclusive collection lock.
	// Reads and writes made through tx are serialized against every other writer of the collection.
	WithLock(ctx context.Context, collection string, fn func(tx Tx) error) error
}

// Tx gives access to a collection while its exclusive lock is held.
type Tx interface {
	Read(out any) error
	Write(records any) error
}

// ReadAll reads the whole collection as a slice of T.
// Returns an empty, non-nil slice for a missing or empty collection.
func ReadAll[T any](ctx context.Context, s Store, collection string) ([]T, error) {
	var records []T
	if err := s.Read(ctx, collection, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Mutate reads the collection, applies fn and writes the result back, holding the
// exclusive lock across the whole cycle so concurrent mutations are never lost.
// If fn returns an error nothing is written and the error is returned unchanged.
func Mutate[T any](ctx context.Context, s Store, collection string, fn func(records []T) ([]T, error)) error {
	return s.WithLock(ctx, collection, func(tx Tx) error {
		var records []T
		if err := tx.Read(&records); err != nil {
			return err
		}
		updated, err := fn(records)
		if err != nil {
			return err
		}
		if updated == nil {
			updated = []T{}
		}
		return tx.Write(updated)
	})
}
