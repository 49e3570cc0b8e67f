// Package sqlite opens a local SQLite file holding the dataset table. The table
// layout and queries are shared with the Postgres source in adapters/postgres.
package sqlite

import (
	"context"
	"fmt"

	"cardiorisk/internal"
	"cardiorisk/internal/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver registered by go-sqlite3
const DriverName = "sqlite3"

// Open connects to the database file at path. A read-only handle fails when the
// file does not exist; a writable one creates it.
func Open(ctx context.Context, path string, readOnly bool) (*sqlx.DB, error) {
	if path == "" {
		return nil, errors.ConfigInvalid("SQLITE_PATH is required")
	}
	mode := "rwc"
	if readOnly {
		mode = "ro"
	}
	dsn := fmt.Sprintf("file:%s?mode=%s&_busy_timeout=5000", path, mode)

	db, err := sqlx.ConnectContext(ctx, DriverName, dsn)
	if err != nil {
		return nil, errors.DatabaseError(fmt.Sprintf("failed to open sqlite database %s", path), err)
	}
	// a single connection keeps writers from hitting SQLITE_BUSY
	db.SetMaxOpenConns(1)
	internal.DefaultLogger.Named("sqlite").Info("opened %s (mode=%s)", path, mode)
	return db, nil
}
