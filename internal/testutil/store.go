// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/agenda/internal/storage/sqlite"
)

// NewTestStore creates a migrated SQLite store in a temporary directory.
// It is closed when the test completes.
func NewTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s := sqlite.NewStore(filepath.Join(t.TempDir(), "agenda.db"))
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})
	return s
}

// Date parses a YYYY-MM-DD date or fails the test.
func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

// FixedClock returns a clock that always reports the given date at noon UTC.
func FixedClock(t *testing.T, date string) func() time.Time {
	d := Date(t, date).Add(12 * time.Hour)
	return func() time.Time { return d }
}
