package postgres

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/julianstephens/agenda/internal/constants"
	"github.com/julianstephens/agenda/internal/logger"
	"github.com/julianstephens/agenda/internal/migration"
	"github.com/julianstephens/agenda/internal/storage"
	"github.com/julianstephens/agenda/internal/storage/sqlstore"
	"github.com/julianstephens/agenda/migrations"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// PoolConfig sizes the connection pool owned by a Store.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

var DefaultPool = PoolConfig{
	MaxOpenConns:    25,
	MaxIdleConns:    25,
	ConnMaxLifetime: 5 * time.Minute,
}

// Store is a storage.Provider backed by PostgreSQL. Tables live in the
// schema named after the application.
type Store struct {
	*sqlstore.Queries

	connStr string
	pool    PoolConfig
	db      *sqlx.DB
}

var _ storage.Provider = (*Store)(nil)

func New(connStr string) *Store {
	return &Store{
		connStr: withSearchPath(connStr),
		pool:    DefaultPool,
	}
}

// WithPool overrides the pool configuration. It must be called before Init or Load.
func (s *Store) WithPool(p PoolConfig) *Store {
	s.pool = p
	return s
}

func isURL(connStr string) bool {
	return strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://")
}

// withSearchPath pins search_path to the application schema unless the
// connection string already sets one.
func withSearchPath(connStr string) string {
	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			logger.Warn("Failed to parse Postgres connection string", "error", err)
			return connStr
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
		}
		return u.String()
	}
	if dsnParam(connStr, "search_path") {
		return connStr
	}
	return strings.TrimSpace(connStr) + " search_path=" + constants.AppName
}

// dsnParam reports whether a key=value style DSN sets key (case-insensitive).
func dsnParam(connStr, key string) bool {
	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], key) {
			return true
		}
	}
	return false
}

func hasSSLMode(connStr string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for key := range u.Query() {
			if strings.EqualFold(key, "sslmode") {
				return true
			}
		}
	}
	return dsnParam(connStr, "sslmode")
}

// ValidateConnString checks that connStr is a PostgreSQL URL or DSN and
// carries no password. Passwords belong in ~/.pgpass or PGPASSWORD.
func ValidateConnString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := pq.NewConnector(connStr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}

	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
		}
		if _, isSet := u.User.Password(); isSet {
			return ErrEmbeddedCredentials
		}
		if u.Host == "" && u.User == nil && (u.Path == "" || u.Path == "/") {
			return fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
		return nil
	}

	if dsnParam(connStr, "password") {
		return ErrEmbeddedCredentials
	}
	return nil
}

// IsConnString reports whether target looks like a PostgreSQL connection
// string rather than a file path.
func IsConnString(target string) bool {
	return isURL(target) || dsnParam(target, "host") || dsnParam(target, "dbname")
}

func (s *Store) open(ctx context.Context) error {
	db, err := sqlx.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(s.pool.MaxOpenConns)
	db.SetMaxIdleConns(s.pool.MaxIdleConns)
	db.SetConnMaxLifetime(s.pool.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	s.db = db
	s.Queries = sqlstore.New(db, sqlstore.Postgres)
	return nil
}

func (s *Store) Init(ctx context.Context) error {
	if err := ValidateConnString(s.connStr); err != nil {
		return err
	}
	if s.db == nil {
		if err := s.open(ctx); err != nil {
			return err
		}
	}
	if _, err := s.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+constants.AppName); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	_, err := s.Migrate(ctx)
	return err
}

// Migrate applies pending migrations and returns how many ran.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	if s.db == nil {
		if err := ValidateConnString(s.connStr); err != nil {
			return 0, err
		}
		if err := s.open(ctx); err != nil {
			return 0, err
		}
	}
	n, err := migration.NewRunner(s.db, migrations.Postgres()).Apply(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}
	return n, nil
}

func (s *Store) Load(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	if err := ValidateConnString(s.connStr); err != nil {
		return err
	}
	if err := s.open(ctx); err != nil {
		return err
	}
	return migration.NewRunner(s.db, migrations.Postgres()).ValidateVersion(ctx)
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Describe returns the connection target with any user info removed.
func (s *Store) Describe() string {
	if isURL(s.connStr) {
		if u, err := url.Parse(s.connStr); err == nil {
			u.User = nil
			u.RawQuery = ""
			return u.String()
		}
	}
	var kept []string
	for _, part := range strings.Fields(s.connStr) {
		key := strings.ToLower(strings.SplitN(part, "=", 2)[0])
		if key == "host" || key == "port" || key == "dbname" {
			kept = append(kept, part)
		}
	}
	return "postgres: " + strings.Join(kept, " ")
}
