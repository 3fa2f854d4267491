package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/agenda/internal/constants"
	"github.com/julianstephens/agenda/internal/migration"
	"github.com/julianstephens/agenda/internal/storage"
	"github.com/julianstephens/agenda/internal/storage/sqlstore"
	"github.com/julianstephens/agenda/migrations"
)

// Store is a storage.Provider backed by a single SQLite file.
type Store struct {
	*sqlstore.Queries

	path string
	db   *sqlx.DB
}

var _ storage.Provider = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{path: path}
}

func dsn(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
}

func (s *Store) open() error {
	db, err := sqlx.Open("sqlite", dsn(s.path))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	s.Queries = sqlstore.New(db, sqlstore.SQLite)
	return nil
}

func (s *Store) Init(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	_, err := s.Migrate(ctx)
	return err
}

// Migrate applies pending migrations and returns how many ran.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	if s.db == nil {
		if err := s.Load(ctx); err != nil && !errors.Is(err, migration.ErrSchemaTooNew) {
			return 0, err
		}
	}
	n, err := migration.NewRunner(s.db, migrations.SQLite()).Apply(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}
	return n, nil
}

func (s *Store) Load(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
	}
	if err := s.open(); err != nil {
		return err
	}
	return migration.NewRunner(s.db, migrations.SQLite()).ValidateVersion(ctx)
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) Describe() string {
	return "sqlite:" + s.path
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}
