// Package sqlstore serves localized resources from a relational table.
//
// The table holds one row per (base_path, culture, resource_key) triple. The
// invariant culture is stored as an empty culture column.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/pitabwire/lingua/culture"
	"github.com/pitabwire/lingua/provider"
)

// DefaultTable is the table used when no other is configured.
const DefaultTable = "localized_resources"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Option configures a Store.
type Option func(*Store)

// WithTable selects the table holding resources.
func WithTable(name string) Option {
	return func(s *Store) {
		s.table = name
	}
}

// WithPlaceholder switches the bind variable style, for example to "$%d" on
// postgres. The default is "?".
func WithPlaceholder(format string) Option {
	return func(s *Store) {
		s.placeholder = format
	}
}

// Store is a provider backed by database/sql.
type Store struct {
	db          *sql.DB
	table       string
	placeholder string

	openQuery   string
	existsQuery string
}

// New prepares the queries for db. The caller keeps ownership of db.
func New(db *sql.DB, opts ...Option) (*Store, error) {
	s := &Store{db: db, table: DefaultTable, placeholder: "?"}
	for _, opt := range opts {
		opt(s)
	}

	if !tableName.MatchString(s.table) {
		return nil, fmt.Errorf("invalid resource table name %q", s.table)
	}

	s.openQuery = fmt.Sprintf(
		"SELECT content FROM %s WHERE base_path = %s AND culture = %s AND resource_key = %s",
		s.table, s.bind(1), s.bind(2), s.bind(3),
	)
	s.existsQuery = fmt.Sprintf(
		"SELECT 1 FROM %s WHERE base_path = %s AND culture = %s LIMIT 1",
		s.table, s.bind(1), s.bind(2),
	)
	return s, nil
}

func (s *Store) bind(n int) string {
	if s.placeholder == "?" {
		return "?"
	}
	return fmt.Sprintf(s.placeholder, n)
}

// CreateTable creates the resource table when it does not exist yet.
func (s *Store) CreateTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	base_path    TEXT NOT NULL,
	culture      TEXT NOT NULL,
	resource_key TEXT NOT NULL,
	content      BLOB NOT NULL,
	PRIMARY KEY (base_path, culture, resource_key)
)`, s.table))
	return err
}

// Put inserts or replaces a resource.
func (s *Store) Put(ctx context.Context, basePath string, tag culture.Tag, key string, content []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE base_path = %s AND culture = %s AND resource_key = %s",
			s.table, s.bind(1), s.bind(2), s.bind(3)),
		basePath, tag.String(), key)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (base_path, culture, resource_key, content) VALUES (%s, %s, %s, %s)",
			s.table, s.bind(1), s.bind(2), s.bind(3), s.bind(4)),
		basePath, tag.String(), key, content)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Open loads the resource content for the triple.
func (s *Store) Open(ctx context.Context, basePath string, tag culture.Tag, key string) ([]byte, error) {
	var content []byte
	err := s.db.QueryRowContext(ctx, s.openQuery, basePath, tag.String(), key).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", provider.ErrNotFound, provider.ObjectPath(basePath, tag, key))
	}
	if err != nil {
		return nil, err
	}
	return content, nil
}

// Exists reports whether any row is stored for the culture under basePath.
func (s *Store) Exists(ctx context.Context, basePath string, tag culture.Tag) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, s.existsQuery, basePath, tag.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
