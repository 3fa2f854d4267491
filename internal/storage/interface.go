package storage

import (
	"context"

	"github.com/julianstephens/agenda/internal/models"
)

// DateOp compares an occurrence date against a bound.
type DateOp string

const (
	OnOrAfter DateOp = "on-or-after"
	After     DateOp = "after"
	Before    DateOp = "before"
)

// DateBound restricts a match to dates relative to Date (YYYY-MM-DD).
type DateBound struct {
	Op   DateOp
	Date string
}

// Content identifies rows by text. Name matches exactly: nil only matches
// rows without a name.
type Content struct {
	Description string
	Name        *string
}

// OccurrenceMatch selects occurrences for bulk deletion. Nil fields do not
// constrain the match; at least one must be set.
type OccurrenceMatch struct {
	SeriesID *string
	Kind     *models.Kind
	Content  *Content
	Date     *DateBound
}

// OccurrenceFilter selects occurrences for listing. Empty fields are ignored.
type OccurrenceFilter struct {
	Date     string
	From     string
	To       string
	Query    string // case-insensitive substring of description or name
	Kind     *models.Kind
	Status   *models.Status
	SeriesID *string
}

// Store is the durable record of occurrences, series and backups. Missing
// rows yield errors.ErrNotFound; driver failures yield *errors.StoreError.
type Store interface {
	// Occurrences
	InsertOccurrence(ctx context.Context, occ models.Occurrence) (string, error)
	FindOccurrenceID(ctx context.Context, date string, content Content) (string, error)
	GetOccurrence(ctx context.Context, id string) (models.Occurrence, error)
	UpdateOccurrence(ctx context.Context, id string, update models.OccurrenceUpdate) error
	UpdateOccurrenceStatus(ctx context.Context, id string, status models.Status) error
	DeleteOccurrence(ctx context.Context, id string) error
	DeleteOccurrences(ctx context.Context, match OccurrenceMatch) (int64, error)
	ListOccurrences(ctx context.Context, filter OccurrenceFilter) ([]models.Occurrence, error)

	// Series
	InsertSeries(ctx context.Context, series models.Series) (string, error)
	GetSeries(ctx context.Context, id string) (models.Series, error)
	UpdateSeries(ctx context.Context, id string, fields models.SeriesFields) error
	DeleteSeries(ctx context.Context, id string) error
	SetSeriesActive(ctx context.Context, id string, active bool, closedAt *string) error
	FindSeriesByContent(ctx context.Context, content Content) (models.Series, error)
	ListActiveSeries(ctx context.Context, asOf string) ([]models.Series, error)
	ListSeries(ctx context.Context) ([]models.Series, error)

	// Retention
	DeleteStaleEventOccurrences(ctx context.Context, before string) (int64, error)

	// Backups
	SaveBackup(ctx context.Context, payload []byte) (models.Backup, error)
	ListBackups(ctx context.Context) ([]models.Backup, error)
	GetBackupPayload(ctx context.Context, id string) ([]byte, error)
	PruneBackups(ctx context.Context, keep int) (int64, error)

	// Atomic runs fn against a Store bound to one transaction, committing
	// when fn returns nil. Calls made on a transactional Store reuse it.
	Atomic(ctx context.Context, fn func(Store) error) error
}

// Provider is a Store with a lifecycle.
type Provider interface {
	Store

	// Init creates the database if needed and applies migrations.
	Init(ctx context.Context) error
	// Load opens an initialized database and checks its schema version.
	Load(ctx context.Context) error
	// Migrate applies pending migrations to an existing database.
	Migrate(ctx context.Context) (int, error)
	Close() error
	// Describe names the database without exposing credentials.
	Describe() string
}
