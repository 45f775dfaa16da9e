// Package database creates and validates the managed SQLite database
// file. The file is treated as an opaque blob by the snapshot engine;
// this package is the only place that opens it as a database.
package database

import (
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/sandpress/sandpress/pkg/errors"
	"github.com/sandpress/sandpress/pkg/logging"
)

var log = logging.GetLogger("database")

// Ensure creates a valid SQLite database at path if none exists, with a
// small metadata table recording when provisioning happened. Rollback
// journal mode is forced to DELETE so all state lives in the single
// database file: WAL side files would escape the snapshot engine's
// byte-for-byte copies.
func Ensure(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrDatabase, "cannot open database %s", path)
	}
	defer func() { _ = db.Close() }()

	// SQLite only allows one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = DELETE"); err != nil {
		return errors.Wrap(err, errors.ErrDatabase, "cannot set journal mode")
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS _sandpress_meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		return errors.Wrapf(err, errors.ErrDatabase, "cannot initialize database %s", path)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO _sandpress_meta (key, value)
		VALUES ('provisioned_at', datetime('now'))`)
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabase, "cannot record provisioning time")
	}

	log.Debug().Str("path", path).Msg("Database file ready")
	return nil
}

// Verify opens the database at path and runs a quick integrity check.
func Verify(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrDatabase, "cannot open database %s", path)
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA quick_check").Scan(&result); err != nil {
		return errors.Wrapf(err, errors.ErrDatabase, "integrity check failed for %s", path)
	}
	if result != "ok" {
		return errors.Newf(errors.ErrDatabase, "database %s is corrupt: %s", path, result)
	}
	return nil
}
