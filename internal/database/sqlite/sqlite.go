// Package sqlite reads drivers from a SQLite file using the pure-Go modernc driver.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver

	"github.com/kozaktomas/face-auth/internal/database"
)

func init() {
	database.RegisterBackend(open, "sqlite", "sqlite3")
}

// Path extracts the file path from "sqlite://path", "sqlite3://path" or a bare path.
func Path(rawURL string) string {
	for _, prefix := range []string{"sqlite://", "sqlite3://"} {
		if strings.HasPrefix(rawURL, prefix) {
			return strings.TrimPrefix(rawURL, prefix)
		}
	}
	return rawURL
}

func open(_ context.Context, rawURL string, opts database.PoolOptions) (database.DriverReader, error) {
	reader, err := Open(Path(rawURL), opts)
	if err != nil {
		return nil, err
	}
	return reader, nil
}

// Open opens the SQLite file at path read-only. A missing file returns database.ErrDatabaseMissing.
func Open(path string, opts database.PoolOptions) (*database.SQLDriverReader, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", database.ErrDatabaseMissing, path)
		}
		return nil, fmt.Errorf("failed to stat sqlite file: %w", err)
	}

	db, err := database.OpenPool("sqlite", "file:"+path+"?mode=ro", opts)
	if err != nil {
		return nil, err
	}
	return database.NewSQLDriverReader(db), nil
}
