package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kozaktomas/face-auth/internal/constants"
)

// OpenPool opens and verifies a database/sql pool.
func OpenPool(driverName, dsn string, opts PoolOptions) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool.
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	// Verify connection.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// SQLDriverReader implements DriverReader over any database/sql backend.
type SQLDriverReader struct {
	db        *sql.DB
	listQuery string
}

// NewSQLDriverReader creates a reader over db.
func NewSQLDriverReader(db *sql.DB) *SQLDriverReader {
	return &SQLDriverReader{
		db: db,
		listQuery: fmt.Sprintf(
			"SELECT id, name, image FROM %s WHERE image IS NOT NULL AND image != '' ORDER BY id", constants.DriversTable),
	}
}

// ListWithImages returns every driver with a non-empty image, ordered by id.
func (r *SQLDriverReader) ListWithImages(ctx context.Context) ([]Driver, error) {
	rows, err := r.db.QueryContext(ctx, r.listQuery)
	if err != nil {
		return nil, fmt.Errorf("query drivers: %w", err)
	}
	defer rows.Close()

	var drivers []Driver
	for rows.Next() {
		var (
			d    Driver
			name sql.NullString
		)
		if err := rows.Scan(&d.ID, &name, &d.Image); err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		d.Name = name.String
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drivers: %w", err)
	}

	return drivers, nil
}

// Close closes the connection pool.
func (r *SQLDriverReader) Close() error {
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}
