package database

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed schema/*.sql
var schemaFS embed.FS

var schemaFiles = map[string]string{
	DriverPostgres: "schema/postgres.sql",
	DriverMySQL:    "schema/mysql.sql",
	DriverSQLite:   "schema/sqlite.sql",
}

// Migrate applies the schema for the connection's driver. Statements are
// executed one by one since not every driver accepts multi-statement Exec.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	name, ok := schemaFiles[db.DriverName()]
	if !ok {
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}

	raw, err := schemaFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	for _, stmt := range strings.Split(string(raw), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema %s: %w", name, err)
		}
	}
	return nil
}
