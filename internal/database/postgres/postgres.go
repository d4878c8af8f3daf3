// Package postgres reads drivers from a PostgreSQL database.
package postgres

import (
	"context"
	"errors"

	_ "github.com/lib/pq"

	"github.com/kozaktomas/face-auth/internal/database"
)

func init() {
	database.RegisterBackend(open, "postgres", "postgresql")
}

func open(_ context.Context, rawURL string, opts database.PoolOptions) (database.DriverReader, error) {
	reader, err := NewPool(rawURL, opts)
	if err != nil {
		return nil, err
	}
	return reader, nil
}

// NewPool creates a PostgreSQL connection pool and wraps it in a driver reader.
func NewPool(url string, opts database.PoolOptions) (*database.SQLDriverReader, error) {
	if url == "" {
		return nil, errors.New("database URL is required")
	}

	db, err := database.OpenPool("postgres", url, opts)
	if err != nil {
		return nil, err
	}
	return database.NewSQLDriverReader(db), nil
}
