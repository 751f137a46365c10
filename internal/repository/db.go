package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store-level sentinel errors.
var (
	// ErrAlreadyInFlight is returned by EnqueueRun when the label already
	// has a queued or running pipeline run.
	ErrAlreadyInFlight = errors.New("pipeline run already in flight")

	// ErrInvalidTransition is returned when a compare-and-swap state change
	// does not match the expected current state.
	ErrInvalidTransition = errors.New("invalid run state transition")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
)

type DB struct {
	*sqlx.DB
}

func NewSQLiteDB(dsn string) (*DB, error) {
	// Pragmas ride on the DSN so the driver applies them to every pooled
	// connection, not just whichever one a startup Exec happens to grab.
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(30000)&_pragma=foreign_keys(1)"

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	// Apply schema
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{db}, nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// noRows maps sql.ErrNoRows onto the store's not-found sentinel.
func noRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
