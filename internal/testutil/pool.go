package testutil

import (
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool starts a migrated PostgreSQL test container and returns its raw
// connection pool. Tests that need the database skip when Docker is not
// reachable.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if os.Getenv("DOCKER_HOST") == "" {
		if _, err := os.Stat("/var/run/docker.sock"); err != nil {
			t.Skip("docker not available; skipping database test")
		}
	}
	pc := NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return pc.RawPool
}
