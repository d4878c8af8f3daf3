//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kozaktomas/face-auth/internal/database"
)

func setupTestContainer(t *testing.T) (*database.SQLDriverReader, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	repo, err := NewPool(dbURL, database.PoolOptions{MaxOpenConns: 5, MaxIdleConns: 2})
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	seed := []string{
		`CREATE TABLE drivers (id BIGSERIAL PRIMARY KEY, name TEXT NOT NULL, image TEXT)`,
		`INSERT INTO drivers (id, name, image) VALUES
			(1, 'Andi', 'drivers/andi.jpg'),
			(2, 'Budi', NULL),
			(3, 'Citra', ''),
			(4, 'Dewi', 'drivers/dewi.png')`,
	}
	seedDB, err := sql.Open("postgres", dbURL)
	if err != nil {
		repo.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to open seed connection: %v", err)
	}
	defer seedDB.Close()
	for _, s := range seed {
		if _, err := seedDB.ExecContext(ctx, s); err != nil {
			repo.Close()
			container.Terminate(ctx)
			t.Fatalf("Failed to seed: %v", err)
		}
	}

	cleanup := func() {
		repo.Close()
		container.Terminate(ctx)
	}

	return repo, cleanup
}

func TestDriverReader(t *testing.T) {
	repo, cleanup := setupTestContainer(t)
	if repo == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()

	t.Run("ListWithImages", func(t *testing.T) {
		drivers, err := repo.ListWithImages(ctx)
		if err != nil {
			t.Fatalf("Failed to list drivers: %v", err)
		}
		if len(drivers) != 2 {
			t.Fatalf("Expected 2 drivers, got %d", len(drivers))
		}
		if drivers[0].ID != 1 || drivers[1].ID != 4 {
			t.Errorf("Unexpected drivers: %+v", drivers)
		}
	})
}
