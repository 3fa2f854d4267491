package models

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a three-letter weekday tag.
type Weekday string

const (
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
	Saturday  Weekday = "sat"
	Sunday    Weekday = "sun"
)

// Weekdays lists every tag, Monday first.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (w Weekday) Valid() bool {
	for _, known := range Weekdays {
		if w == known {
			return true
		}
	}
	return false
}

// FormatWeekdays renders days as a comma-separated list.
func FormatWeekdays(days []Weekday) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, string(d))
	}
	return strings.Join(parts, ",")
}

// Series is a recurring weekly event definition. Its occurrences are
// materialized ahead of time as Occurrence rows of KindEvent.
type Series struct {
	ID             string    `json:"id" yaml:"id"`
	Description    string    `json:"description" yaml:"description"`
	Name           *string   `json:"name" yaml:"name"`
	RecurrenceDays []Weekday `json:"recurrence_days" yaml:"recurrence_days"`
	Active         bool      `json:"active" yaml:"active"`
	ClosedAt       *string   `json:"closed_at" yaml:"closed_at"` // YYYY-MM-DD format
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
}

// SeriesFields are the user-editable parts of a series.
type SeriesFields struct {
	Description    string
	Name           *string
	RecurrenceDays []Weekday
}

func (f SeriesFields) Validate() error {
	if strings.TrimSpace(f.Description) == "" {
		return fmt.Errorf("description must not be empty")
	}
	if len(f.RecurrenceDays) == 0 {
		return fmt.Errorf("at least one recurrence day is required")
	}
	for _, d := range f.RecurrenceDays {
		if !d.Valid() {
			return fmt.Errorf("invalid weekday %q", d)
		}
	}
	return nil
}

// Fields returns the editable fields of s.
func (s Series) Fields() SeriesFields {
	return SeriesFields{
		Description:    s.Description,
		Name:           s.Name,
		RecurrenceDays: s.RecurrenceDays,
	}
}

// Apply returns a copy of s with f's fields applied.
func (s Series) Apply(f SeriesFields) Series {
	s.Description = f.Description
	s.Name = f.Name
	s.RecurrenceDays = f.RecurrenceDays
	return s
}

// Closed reports whether the series has been closed.
func (s Series) Closed() bool {
	return !s.Active
}

// Snapshot is the full content of the store, used for export and backups.
type Snapshot struct {
	TakenAt     time.Time    `json:"taken_at" yaml:"taken_at"`
	Occurrences []Occurrence `json:"occurrences" yaml:"occurrences"`
	Series      []Series     `json:"series" yaml:"series"`
}

// Backup describes a stored backup blob.
type Backup struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Size      int64     `json:"size"`
}
