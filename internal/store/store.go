// Package store persists a chip database to SQLite. A save replaces the
// whole file contents inside one transaction; a load rebuilds the
// in-memory chip from scratch. IDs are not stable across a roundtrip,
// names and topology are.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/phuslu/log"
)

// Store is the SQLite persistence layer for a chip database.
type Store struct {
	db     *sql.DB
	logger log.Logger
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{
		db:     db,
		logger: log.Logger{Level: log.InfoLevel},
	}, nil
}

// SetLogger replaces the store's logger.
func (s *Store) SetLogger(logger log.Logger) {
	s.logger = logger
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS meta (
  key             TEXT PRIMARY KEY,
  value           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS layers (
  id              INTEGER PRIMARY KEY,
  idx             INTEGER NOT NULL,
  datatype        INTEGER NOT NULL,
  name            TEXT NOT NULL DEFAULT '',
  UNIQUE(idx, datatype)
);

CREATE TABLE IF NOT EXISTS cells (
  id              INTEGER PRIMARY KEY,
  name            TEXT NOT NULL UNIQUE
);

-- kind: 'plain' for ordinary nets, 'low'/'high' for the implicit
-- constant nets every cell carries.
CREATE TABLE IF NOT EXISTS nets (
  id              INTEGER PRIMARY KEY,
  cell_id         INTEGER NOT NULL REFERENCES cells(id),
  name            TEXT NOT NULL DEFAULT '',
  kind            TEXT NOT NULL DEFAULT 'plain'
);

CREATE TABLE IF NOT EXISTS pins (
  id              INTEGER PRIMARY KEY,
  cell_id         INTEGER NOT NULL REFERENCES cells(id),
  name            TEXT NOT NULL,
  direction       TEXT NOT NULL,
  ordinal         INTEGER NOT NULL,
  net_id          INTEGER REFERENCES nets(id)
);

CREATE TABLE IF NOT EXISTS instances (
  id              INTEGER PRIMARY KEY,
  parent_id       INTEGER NOT NULL REFERENCES cells(id),
  template_id     INTEGER NOT NULL REFERENCES cells(id),
  name            TEXT NOT NULL DEFAULT '',
  mirror          BOOLEAN NOT NULL DEFAULT FALSE,
  rotation        INTEGER NOT NULL DEFAULT 0,
  magnification   INTEGER NOT NULL DEFAULT 1,
  dx              INTEGER NOT NULL DEFAULT 0,
  dy              INTEGER NOT NULL DEFAULT 0
);

-- One row per connected pin instance, addressed by pin ordinal.
CREATE TABLE IF NOT EXISTS pin_connections (
  instance_id     INTEGER NOT NULL REFERENCES instances(id),
  ordinal         INTEGER NOT NULL,
  net_id          INTEGER NOT NULL REFERENCES nets(id),
  PRIMARY KEY(instance_id, ordinal)
);

CREATE TABLE IF NOT EXISTS shapes (
  id              INTEGER PRIMARY KEY,
  cell_id         INTEGER NOT NULL REFERENCES cells(id),
  layer_id        INTEGER NOT NULL REFERENCES layers(id),
  geometry        TEXT NOT NULL,
  net_id          INTEGER REFERENCES nets(id),
  pin_id          INTEGER REFERENCES pins(id)
);

-- owner_kind: 'chip', 'cell' or 'instance'. owner_id is 0 for the chip.
CREATE TABLE IF NOT EXISTS properties (
  owner_kind      TEXT NOT NULL,
  owner_id        INTEGER NOT NULL,
  key             TEXT NOT NULL,
  type            TEXT NOT NULL,
  string_val      TEXT,
  bytes_val       BLOB,
  int_val         INTEGER,
  float_val       REAL,
  PRIMARY KEY(owner_kind, owner_id, key)
);

CREATE INDEX IF NOT EXISTS idx_nets_cell ON nets(cell_id);
CREATE INDEX IF NOT EXISTS idx_pins_cell ON pins(cell_id);
CREATE INDEX IF NOT EXISTS idx_instances_parent ON instances(parent_id);
CREATE INDEX IF NOT EXISTS idx_instances_template ON instances(template_id);
CREATE INDEX IF NOT EXISTS idx_shapes_cell ON shapes(cell_id);
CREATE INDEX IF NOT EXISTS idx_shapes_layer ON shapes(layer_id);
`

// StoredHash returns the content hash recorded by the last Save, or an
// empty string for a fresh database. Callers compare it against the
// chip's current hash to skip redundant saves.
func (s *Store) StoredHash() (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = 'content_hash'").Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("stored hash: %w", err)
	}
	return value, nil
}

// tables lists every table in delete order for a full replace.
var tables = []string{
	"properties",
	"shapes",
	"pin_connections",
	"instances",
	"pins",
	"nets",
	"cells",
	"layers",
	"meta",
}
