package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/agenda/internal/constants"
)

// Kind tags what an occurrence row represents. Exactly one kind applies to a row.
type Kind string

const (
	KindTask        Kind = "task"
	KindAppointment Kind = "appointment"
	KindEvent       Kind = "event"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindTask, KindAppointment, KindEvent:
		return true
	}
	return false
}

// ParseKind parses a kind name, accepting a few common aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "task", "tasks":
		return KindTask, nil
	case "appointment", "appointments", "appt":
		return KindAppointment, nil
	case "event", "events":
		return KindEvent, nil
	}
	return "", fmt.Errorf("invalid kind: %q", s)
}

type Priority string

const (
	PriorityVeryImportant Priority = "very-important"
	PriorityImportant     Priority = "important"
	PriorityMedium        Priority = "medium"
	PrioritySimple        Priority = "simple"
)

// Priorities lists the priorities from most to least important.
var Priorities = []Priority{PriorityVeryImportant, PriorityImportant, PriorityMedium, PrioritySimple}

func (p Priority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePriority parses a priority name. An empty string yields nil.
func ParsePriority(s string) (*Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, nil
	}
	p := Priority(s)
	if !p.Valid() {
		return nil, fmt.Errorf("invalid priority: %q (expected one of very-important, important, medium, simple)", s)
	}
	return &p, nil
}

type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusDone
}

// Occurrence is one dated row: a plain task, an appointment, or a materialized
// instance of an event series.
type Occurrence struct {
	ID             string    `json:"id" yaml:"id"`
	Date           string    `json:"date" yaml:"date"` // YYYY-MM-DD format
	Description    string    `json:"description" yaml:"description"`
	Name           *string   `json:"name" yaml:"name"`
	Kind           Kind      `json:"kind" yaml:"kind"`
	Priority       *Priority `json:"priority" yaml:"priority"`
	RecurrenceDays []Weekday `json:"recurrence_days,omitempty" yaml:"recurrence_days,omitempty"`
	Status         Status    `json:"status" yaml:"status"`
	SeriesID       *string   `json:"series_id,omitempty" yaml:"series_id,omitempty"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
}

// Validate checks the per-kind invariants of an occurrence before it is stored.
func (o Occurrence) Validate() error {
	if strings.TrimSpace(o.Description) == "" {
		return fmt.Errorf("description must not be empty")
	}
	if _, err := time.Parse(constants.DateFormat, o.Date); err != nil {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", o.Date)
	}
	if !o.Kind.Valid() {
		return fmt.Errorf("invalid kind %q", o.Kind)
	}
	if o.Status != "" && !o.Status.Valid() {
		return fmt.Errorf("invalid status %q", o.Status)
	}
	if o.Priority != nil && !o.Priority.Valid() {
		return fmt.Errorf("invalid priority %q", *o.Priority)
	}

	switch o.Kind {
	case KindEvent:
		if o.Priority != nil {
			return fmt.Errorf("event occurrences cannot carry a priority")
		}
		if len(o.RecurrenceDays) == 0 {
			return fmt.Errorf("event occurrences must carry recurrence days")
		}
	default:
		if len(o.RecurrenceDays) > 0 {
			return fmt.Errorf("%s rows cannot carry recurrence days", o.Kind)
		}
		if o.SeriesID != nil {
			return fmt.Errorf("%s rows cannot belong to a series", o.Kind)
		}
	}
	return nil
}

// Label returns the name when present, otherwise the description.
func (o Occurrence) Label() string {
	if o.Name != nil && *o.Name != "" {
		return *o.Name
	}
	return o.Description
}

// OccurrenceUpdate holds the content fields that may be edited on an existing row.
type OccurrenceUpdate struct {
	Description string
	Name        *string
	Priority    *Priority
}

// NameEquals compares two optional names exactly: nil only equals nil, and
// a non-nil name only equals the same string.
func NameEquals(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
