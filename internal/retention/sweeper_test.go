package retention

import (
	"context"
	"testing"

	"github.com/julianstephens/agenda/internal/models"
	"github.com/julianstephens/agenda/internal/recurrence"
	"github.com/julianstephens/agenda/internal/storage"
	"github.com/julianstephens/agenda/internal/testutil"
)

func TestSweep(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTestStore(t)
	engine := recurrence.New(14)
	start := testutil.Date(t, "2026-10-05")

	add := func(desc string) string {
		t.Helper()
		series := models.Series{Description: desc, RecurrenceDays: []models.Weekday{models.Monday, models.Thursday}, Active: true}
		id, err := store.InsertSeries(ctx, series)
		if err != nil {
			t.Fatal(err)
		}
		series.ID = id
		if _, err := engine.Expand(ctx, store, series, start); err != nil {
			t.Fatal(err)
		}
		return id
	}

	// 2026-10-05, 08, 12, 15 for each
	stale := add("closed last week")
	closedToday := add("closed today")
	active := add("still running")

	if err := store.SetSeriesActive(ctx, stale, false, models.StringPtr("2026-10-09")); err != nil {
		t.Fatal(err)
	}
	if err := store.SetSeriesActive(ctx, closedToday, false, models.StringPtr("2026-10-12")); err != nil {
		t.Fatal(err)
	}
	standalone, err := store.InsertOccurrence(ctx, models.Occurrence{
		Date: "2026-10-01", Description: "old task", Kind: models.KindTask,
	})
	if err != nil {
		t.Fatal(err)
	}

	sweeper := New(store, testutil.FixedClock(t, "2026-10-12"))
	removed, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 4 {
		t.Errorf("Sweep() removed %d, want 4", removed)
	}

	count := func(seriesID string) int {
		t.Helper()
		kind := models.KindEvent
		occs, err := store.ListOccurrences(ctx, storage.OccurrenceFilter{Kind: &kind})
		if err != nil {
			t.Fatal(err)
		}
		n := 0
		for _, occ := range occs {
			if occ.SeriesID != nil && *occ.SeriesID == seriesID {
				n++
			}
		}
		return n
	}
	if got := count(stale); got != 0 {
		t.Errorf("stale series kept %d rows", got)
	}
	if got := count(closedToday); got != 4 {
		t.Errorf("series closed today has %d rows, want 4", got)
	}
	if got := count(active); got != 4 {
		t.Errorf("active series has %d rows, want 4", got)
	}
	if _, err := store.GetOccurrence(ctx, standalone); err != nil {
		t.Errorf("standalone task was swept: %v", err)
	}
	if _, err := store.GetSeries(ctx, stale); err != nil {
		t.Errorf("series row itself should remain: %v", err)
	}

	again, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if again != 0 {
		t.Errorf("second Sweep() removed %d, want 0", again)
	}
}

func TestSweepEmptyStore(t *testing.T) {
	sweeper := New(testutil.NewTestStore(t), testutil.FixedClock(t, "2026-10-12"))
	removed, err := sweeper.Sweep(context.Background())
	if err != nil || removed != 0 {
		t.Errorf("Sweep() = %d, %v", removed, err)
	}
}
