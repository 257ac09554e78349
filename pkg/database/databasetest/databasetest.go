// Package databasetest opens throwaway SQLite databases with the service schema.
package databasetest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fekuna/omnipos-menu-service/pkg/database"
	"github.com/jmoiron/sqlx"
)

var seq atomic.Int64

// New returns a migrated in-memory database private to the calling test.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.NewDatabase(&database.Config{
		Driver: database.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=1", name, seq.Add(1)),
		// one connection keeps every statement on the same in-memory database
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}
