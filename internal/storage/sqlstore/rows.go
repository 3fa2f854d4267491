package sqlstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/agenda/internal/models"
)

// timestampLayout has fixed-width fractions so stored timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		// rows written by hand or by older tools
		return time.Parse(time.RFC3339Nano, s)
	}
	return t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullPriority(p *models.Priority) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*p), Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func encodeDays(days []models.Weekday) (string, error) {
	if days == nil {
		days = []models.Weekday{}
	}
	b, err := json.Marshal(days)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeDays(s string) ([]models.Weekday, error) {
	if s == "" {
		return nil, nil
	}
	var days []models.Weekday
	if err := json.Unmarshal([]byte(s), &days); err != nil {
		return nil, fmt.Errorf("invalid recurrence_days %q: %w", s, err)
	}
	if len(days) == 0 {
		return nil, nil
	}
	return days, nil
}

var occurrenceColumns = []string{
	"id", "date", "description", "name", "kind", "priority",
	"recurrence_days", "status", "series_id", "created_at",
}

type occurrenceRow struct {
	ID             string         `db:"id"`
	Date           string         `db:"date"`
	Description    string         `db:"description"`
	Name           sql.NullString `db:"name"`
	Kind           string         `db:"kind"`
	Priority       sql.NullString `db:"priority"`
	RecurrenceDays string         `db:"recurrence_days"`
	Status         string         `db:"status"`
	SeriesID       sql.NullString `db:"series_id"`
	CreatedAt      string         `db:"created_at"`
}

func (r occurrenceRow) model() (models.Occurrence, error) {
	days, err := decodeDays(r.RecurrenceDays)
	if err != nil {
		return models.Occurrence{}, err
	}
	created, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return models.Occurrence{}, fmt.Errorf("invalid created_at on occurrence %s: %w", r.ID, err)
	}

	occ := models.Occurrence{
		ID:             r.ID,
		Date:           r.Date,
		Description:    r.Description,
		Name:           stringPtr(r.Name),
		Kind:           models.Kind(r.Kind),
		RecurrenceDays: days,
		Status:         models.Status(r.Status),
		SeriesID:       stringPtr(r.SeriesID),
		CreatedAt:      created,
	}
	if r.Priority.Valid {
		p := models.Priority(r.Priority.String)
		occ.Priority = &p
	}
	return occ, nil
}

var seriesColumns = []string{
	"id", "description", "name", "recurrence_days", "active", "closed_at", "created_at",
}

type seriesRow struct {
	ID             string         `db:"id"`
	Description    string         `db:"description"`
	Name           sql.NullString `db:"name"`
	RecurrenceDays string         `db:"recurrence_days"`
	Active         bool           `db:"active"`
	ClosedAt       sql.NullString `db:"closed_at"`
	CreatedAt      string         `db:"created_at"`
}

func (r seriesRow) model() (models.Series, error) {
	days, err := decodeDays(r.RecurrenceDays)
	if err != nil {
		return models.Series{}, err
	}
	created, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return models.Series{}, fmt.Errorf("invalid created_at on series %s: %w", r.ID, err)
	}
	return models.Series{
		ID:             r.ID,
		Description:    r.Description,
		Name:           stringPtr(r.Name),
		RecurrenceDays: days,
		Active:         r.Active,
		ClosedAt:       stringPtr(r.ClosedAt),
		CreatedAt:      created,
	}, nil
}

type backupRow struct {
	ID        string `db:"id"`
	CreatedAt string `db:"created_at"`
	Size      int64  `db:"size"`
}

func (r backupRow) model() (models.Backup, error) {
	created, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return models.Backup{}, fmt.Errorf("invalid created_at on backup %s: %w", r.ID, err)
	}
	return models.Backup{ID: r.ID, CreatedAt: created, Size: r.Size}, nil
}
