package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// pragma is a connection setting and the value SQLite reports once applied.
type pragma struct {
	name  string
	value string
	want  string
}

// journalPragmas configure the journal database. WAL lets the trace command
// read while a run is still appending.
var journalPragmas = []pragma{
	{name: "journal_mode", value: "WAL", want: "wal"},
	{name: "synchronous", value: "NORMAL", want: "1"},
	{name: "busy_timeout", value: "5000", want: "5000"},
	{name: "foreign_keys", value: "ON", want: "1"},
}

// migrations upgrade journals created by older builds. migrations[i] moves
// user_version from i to i+1; schema.sql alone is version 0.
var migrations = []func(*sql.Tx) error{
	// v1: trace --kind filters events by (run_id, kind).
	func(tx *sql.Tx) error {
		_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_events_run_kind ON events(run_id, kind)`)
		return err
	},
}

// schemaVersion is the user_version of a fully migrated journal.
var schemaVersion = len(migrations)

// Store is the SQLite transition journal: one row per run and one per
// trace event.
type Store struct {
	db *sql.DB
}

// Open opens or creates the journal at path, then applies pragmas, the
// schema and pending migrations. ":memory:" gives a private in-memory
// journal. Opening an existing journal is safe.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	// One connection: SQLite has a single writer, and an in-memory database
	// exists only on the connection that created it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := prepare(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func prepare(db *sql.DB) error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	for _, p := range journalPragmas {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("pragma %s: %w", p.name, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return migrate(db)
}

// migrate runs every migration above the journal's user_version, each in
// its own transaction together with the version bump.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("journal schema v%d is newer than supported v%d", version, schemaVersion)
	}

	for v := version; v < schemaVersion; v++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
		if err := migrations[v](tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
	}
	return nil
}

// Close closes the journal. Closing a zero Store is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// checkPragmas reports every pragma whose value differs from journalPragmas.
func (s *Store) checkPragmas() error {
	var bad []string
	for _, p := range journalPragmas {
		var got string
		if err := s.db.QueryRow("PRAGMA " + p.name).Scan(&got); err != nil {
			return fmt.Errorf("read pragma %s: %w", p.name, err)
		}
		if got != p.want {
			bad = append(bad, fmt.Sprintf("%s = %q, want %q", p.name, got, p.want))
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("pragmas: %s", strings.Join(bad, "; "))
	}
	return nil
}
