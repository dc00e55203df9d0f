package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const defaultSQLiteTable = "prefs_documents"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteStore keeps the document as one row of a table keyed by name.
type SQLiteStore struct {
	db    *sqlx.DB
	table string
	key   string
	owned bool
}

// NewSQLiteStore wraps an open database and ensures the table exists.
func NewSQLiteStore(ctx context.Context, db *sql.DB, table, key string) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("store: sqlite db is nil")
	}
	if table == "" {
		table = defaultSQLiteTable
	}
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("store: invalid sqlite table name %q", table)
	}
	if key == "" {
		return nil, fmt.Errorf("store: sqlite key is required")
	}
	s := &SQLiteStore{db: sqlx.NewDb(db, "sqlite"), table: table, key: key}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenSQLiteStore opens the database file at path. Close releases it.
func OpenSQLiteStore(ctx context.Context, path, table, key string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s, err := NewSQLiteStore(ctx, db, table, key)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS ` + s.table + ` (
    name       TEXT PRIMARY KEY,
    data       BLOB NOT NULL,
    updated_at TIMESTAMP NOT NULL
);`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("store: sqlite schema: %w", err)
	}
	return nil
}

type sqliteRow struct {
	Name      string    `db:"name"`
	Data      []byte    `db:"data"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (s *SQLiteStore) Load(ctx context.Context) ([]byte, bool, error) {
	var data []byte
	err := s.db.GetContext(ctx, &data, `SELECT data FROM `+s.table+` WHERE name = ?`, s.key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: sqlite load: %w", err)
	}
	return data, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO `+s.table+` (name, data, updated_at) VALUES (:name, :data, :updated_at)
ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		sqliteRow{Name: s.key, Data: data, UpdatedAt: time.Now().UTC()},
	)
	if err != nil {
		return fmt.Errorf("store: sqlite save: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Describe() string {
	return fmt.Sprintf("sqlite:%s/%s", s.table, s.key)
}

func (s *SQLiteStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
