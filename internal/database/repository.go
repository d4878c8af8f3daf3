package database

import (
	"context"
)

// DriverReader provides read-only access to the drivers table
type DriverReader interface {
	// ListWithImages returns drivers that have a non-empty image reference, ordered by id
	ListWithImages(ctx context.Context) ([]Driver, error)
	// Close releases the underlying connection pool
	Close() error
}
