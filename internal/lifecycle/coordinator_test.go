package lifecycle

import (
	"context"
	"reflect"
	"testing"

	"github.com/julianstephens/agenda/internal/errors"
	"github.com/julianstephens/agenda/internal/models"
	"github.com/julianstephens/agenda/internal/recurrence"
	"github.com/julianstephens/agenda/internal/storage"
	"github.com/julianstephens/agenda/internal/storage/sqlite"
	"github.com/julianstephens/agenda/internal/testutil"
)

// 2026-10-12 is a Monday.
const monday = "2026-10-12"

type fixture struct {
	ctx    context.Context
	store  *sqlite.Store
	engine *recurrence.Engine
	coord  *Coordinator
}

func newFixture(t *testing.T, today string, horizon int) *fixture {
	t.Helper()
	store := testutil.NewTestStore(t)
	engine := recurrence.New(horizon)
	return &fixture{
		ctx:    context.Background(),
		store:  store,
		engine: engine,
		coord:  New(store, engine, testutil.FixedClock(t, today)),
	}
}

func (f *fixture) addSeries(t *testing.T, today, desc string, name *string, days ...models.Weekday) models.Series {
	t.Helper()
	series := models.Series{Description: desc, Name: name, RecurrenceDays: days, Active: true}
	id, err := f.store.InsertSeries(f.ctx, series)
	if err != nil {
		t.Fatal(err)
	}
	series.ID = id
	if _, err := f.engine.Expand(f.ctx, f.store, series, testutil.Date(t, today)); err != nil {
		t.Fatal(err)
	}
	return series
}

func (f *fixture) dates(t *testing.T, kind models.Kind) []string {
	t.Helper()
	occs, err := f.store.ListOccurrences(f.ctx, storage.OccurrenceFilter{Kind: &kind})
	if err != nil {
		t.Fatal(err)
	}
	var out []string
	for _, occ := range occs {
		out = append(out, occ.Date)
	}
	return out
}

func (f *fixture) series(t *testing.T, id string) models.Series {
	t.Helper()
	s, err := f.store.GetSeries(f.ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestCloseEvent(t *testing.T) {
	f := newFixture(t, "2026-10-14", 14)
	series := f.addSeries(t, monday, "gym", nil, models.Monday, models.Wednesday)

	if err := f.coord.CloseEvent(f.ctx, series.ID); err != nil {
		t.Fatal(err)
	}

	got := f.series(t, series.ID)
	if got.Active || got.ClosedAt == nil || *got.ClosedAt != "2026-10-14" {
		t.Errorf("series after close = %+v", got)
	}
	if want := []string{monday}; !reflect.DeepEqual(f.dates(t, models.KindEvent), want) {
		t.Errorf("remaining dates = %v, want %v", f.dates(t, models.KindEvent), want)
	}
}

func TestCloseEventTwiceKeepsFirstClose(t *testing.T) {
	f := newFixture(t, monday, 14)
	series := f.addSeries(t, monday, "gym", nil, models.Friday)
	if err := f.coord.CloseEvent(f.ctx, series.ID); err != nil {
		t.Fatal(err)
	}

	later := New(f.store, f.engine, testutil.FixedClock(t, "2026-10-20"))
	if err := later.CloseEvent(f.ctx, series.ID); err != nil {
		t.Fatal(err)
	}
	if got := f.series(t, series.ID); *got.ClosedAt != monday {
		t.Errorf("ClosedAt = %s, want %s", *got.ClosedAt, monday)
	}
}

func TestCloseEventPullsLaterCloseBackToToday(t *testing.T) {
	f := newFixture(t, "2026-10-14", 14)
	series := f.addSeries(t, monday, "run", nil, models.Monday, models.Thursday)

	// completing next Monday closes the series in the future
	if err := f.coord.SetOccurrenceDone(f.ctx, "2026-10-19", storage.Content{Description: "run"}, true); err != nil {
		t.Fatal(err)
	}
	if want := []string{monday, "2026-10-15", "2026-10-19"}; !reflect.DeepEqual(f.dates(t, models.KindEvent), want) {
		t.Fatalf("dates after completion = %v, want %v", f.dates(t, models.KindEvent), want)
	}

	if err := f.coord.CloseEvent(f.ctx, series.ID); err != nil {
		t.Fatal(err)
	}
	got := f.series(t, series.ID)
	if got.Active || got.ClosedAt == nil || *got.ClosedAt != "2026-10-14" {
		t.Errorf("series after close = %+v", got)
	}
	if want := []string{monday}; !reflect.DeepEqual(f.dates(t, models.KindEvent), want) {
		t.Errorf("remaining dates = %v, want %v", f.dates(t, models.KindEvent), want)
	}
}

func TestCloseEventMissingSeries(t *testing.T) {
	f := newFixture(t, monday, 14)
	err := f.coord.CloseEvent(f.ctx, "nope")
	if !errors.IsNotFound(err) {
		t.Errorf("CloseEvent() error = %v, want not found", err)
	}
}

func TestCompletingEventClosesSeries(t *testing.T) {
	f := newFixture(t, monday, 7)
	series := f.addSeries(t, monday, "yoga", nil, models.Monday, models.Wednesday, models.Saturday)
	if want := []string{monday, "2026-10-14", "2026-10-17"}; !reflect.DeepEqual(f.dates(t, models.KindEvent), want) {
		t.Fatalf("expanded dates = %v, want %v", f.dates(t, models.KindEvent), want)
	}

	content := storage.Content{Description: "yoga"}
	if err := f.coord.SetOccurrenceDone(f.ctx, "2026-10-14", content, true); err != nil {
		t.Fatal(err)
	}

	got := f.series(t, series.ID)
	if got.Active || got.ClosedAt == nil || *got.ClosedAt != "2026-10-14" {
		t.Errorf("series after completion = %+v", got)
	}
	if want := []string{monday, "2026-10-14"}; !reflect.DeepEqual(f.dates(t, models.KindEvent), want) {
		t.Errorf("remaining dates = %v, want %v", f.dates(t, models.KindEvent), want)
	}

	id, err := f.store.FindOccurrenceID(f.ctx, "2026-10-14", content)
	if err != nil {
		t.Fatal(err)
	}
	occ, _ := f.store.GetOccurrence(f.ctx, id)
	if occ.Status != models.StatusDone {
		t.Errorf("Status = %s, want done", occ.Status)
	}

	// un-marking restores nothing
	if err := f.coord.SetOccurrenceDone(f.ctx, "2026-10-14", content, false); err != nil {
		t.Fatal(err)
	}
	if got := f.series(t, series.ID); got.Active {
		t.Error("un-marking re-activated the series")
	}
	if got := len(f.dates(t, models.KindEvent)); got != 2 {
		t.Errorf("un-marking changed row count to %d", got)
	}
}

func TestCompletionTakesEarliestClosedAt(t *testing.T) {
	f := newFixture(t, monday, 14)
	series := f.addSeries(t, monday, "run", nil, models.Monday)
	if err := f.coord.CloseEvent(f.ctx, series.ID); err != nil {
		t.Fatal(err)
	}
	// the row for today was removed by the close; add a historical one back
	_, err := f.store.InsertOccurrence(f.ctx, models.Occurrence{
		Date: "2026-10-05", Description: "run", Kind: models.KindEvent,
		RecurrenceDays: []models.Weekday{models.Monday}, SeriesID: &series.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.coord.SetOccurrenceDone(f.ctx, "2026-10-05", storage.Content{Description: "run"}, true); err != nil {
		t.Fatal(err)
	}
	if got := f.series(t, series.ID); *got.ClosedAt != "2026-10-05" {
		t.Errorf("ClosedAt = %s, want the earlier completion date", *got.ClosedAt)
	}
}

func TestCompletionFallsBackToContent(t *testing.T) {
	f := newFixture(t, monday, 14)
	name := "leg day"
	series := f.addSeries(t, monday, "gym", &name, models.Monday)

	// a detached row with the same content, e.g. restored from an old export
	_, err := f.store.InsertOccurrence(f.ctx, models.Occurrence{
		Date: "2026-10-13", Description: "gym", Name: &name, Kind: models.KindEvent,
		RecurrenceDays: []models.Weekday{models.Tuesday},
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = f.store.InsertOccurrence(f.ctx, models.Occurrence{
		Date: "2026-10-20", Description: "gym", Name: &name, Kind: models.KindEvent,
		RecurrenceDays: []models.Weekday{models.Tuesday},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := f.coord.SetOccurrenceDone(f.ctx, "2026-10-13", storage.Content{Description: "gym", Name: &name}, true); err != nil {
		t.Fatal(err)
	}
	if got := f.series(t, series.ID); got.Active || *got.ClosedAt != "2026-10-13" {
		t.Errorf("series after completion = %+v", got)
	}
	if want := []string{monday, "2026-10-13"}; !reflect.DeepEqual(f.dates(t, models.KindEvent), want) {
		t.Errorf("remaining dates = %v, want %v", f.dates(t, models.KindEvent), want)
	}
}

func TestCompletionPrefersSeriesIDOverContent(t *testing.T) {
	f := newFixture(t, monday, 14)
	evening := "evening"
	gym := f.addSeries(t, monday, "gym", nil, models.Friday)
	swim := f.addSeries(t, monday, "swim", &evening, models.Tuesday)

	// a gym row carrying the swim series' content
	_, err := f.store.InsertOccurrence(f.ctx, models.Occurrence{
		Date: "2026-10-14", Description: "swim", Name: &evening, Kind: models.KindEvent,
		RecurrenceDays: []models.Weekday{models.Friday}, SeriesID: &gym.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := f.coord.SetOccurrenceDone(f.ctx, "2026-10-14", storage.Content{Description: "swim", Name: &evening}, true); err != nil {
		t.Fatal(err)
	}
	if got := f.series(t, gym.ID); got.Active || *got.ClosedAt != "2026-10-14" {
		t.Errorf("gym series = %+v, want closed on 2026-10-14", got)
	}
	if got := f.series(t, swim.ID); !got.Active {
		t.Errorf("swim series closed through a content match: %+v", got)
	}
}

func TestCompletionWithoutSeries(t *testing.T) {
	f := newFixture(t, monday, 14)
	_, err := f.store.InsertOccurrence(f.ctx, models.Occurrence{
		Date: monday, Description: "orphan", Kind: models.KindEvent,
		RecurrenceDays: []models.Weekday{models.Monday},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.coord.SetOccurrenceDone(f.ctx, monday, storage.Content{Description: "orphan"}, true); err != nil {
		t.Errorf("SetOccurrenceDone() error = %v", err)
	}
}

func TestCompletingAppointmentCancelsLaterOnes(t *testing.T) {
	f := newFixture(t, monday, 14)
	dentist := "Dr. Lee"
	add := func(date string, name *string) {
		t.Helper()
		_, err := f.store.InsertOccurrence(f.ctx, models.Occurrence{
			Date: date, Description: "dentist", Name: name, Kind: models.KindAppointment,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	add("2026-10-10", &dentist)
	add(monday, &dentist)
	add("2026-11-02", &dentist)
	add("2026-11-09", nil)

	if err := f.coord.SetOccurrenceDone(f.ctx, monday, storage.Content{Description: "dentist", Name: &dentist}, true); err != nil {
		t.Fatal(err)
	}
	want := []string{"2026-10-10", monday, "2026-11-09"}
	if got := f.dates(t, models.KindAppointment); !reflect.DeepEqual(got, want) {
		t.Errorf("appointments = %v, want %v", got, want)
	}
}

func TestSetOccurrenceDoneNotFound(t *testing.T) {
	f := newFixture(t, monday, 14)
	err := f.coord.SetOccurrenceDone(f.ctx, monday, storage.Content{Description: "ghost"}, true)
	if !errors.IsNotFound(err) {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestEditEventRegenerates(t *testing.T) {
	f := newFixture(t, monday, 14)
	series := f.addSeries(t, "2026-10-05", "swim", nil, models.Monday)

	updated, err := f.coord.EditEvent(f.ctx, series.ID, models.SeriesFields{
		Description:    "swim laps",
		RecurrenceDays: []models.Weekday{models.Thursday, models.Tuesday, models.Tuesday},
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := []models.Weekday{models.Tuesday, models.Thursday}; !reflect.DeepEqual(updated.RecurrenceDays, want) {
		t.Errorf("RecurrenceDays = %v, want %v", updated.RecurrenceDays, want)
	}
	if stored := f.series(t, series.ID); stored.Description != "swim laps" {
		t.Errorf("stored description = %q", stored.Description)
	}

	want := []string{"2026-10-05", "2026-10-13", "2026-10-15", "2026-10-20", "2026-10-22"}
	if got := f.dates(t, models.KindEvent); !reflect.DeepEqual(got, want) {
		t.Errorf("dates = %v, want %v", got, want)
	}
}

func TestEditClosedEventStaysClosed(t *testing.T) {
	f := newFixture(t, monday, 14)
	series := f.addSeries(t, monday, "swim", nil, models.Monday, models.Tuesday)
	if err := f.coord.CloseEvent(f.ctx, series.ID); err != nil {
		t.Fatal(err)
	}

	updated, err := f.coord.EditEvent(f.ctx, series.ID, models.SeriesFields{
		Description:    "swim",
		RecurrenceDays: []models.Weekday{models.Monday},
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Active || *updated.ClosedAt != monday {
		t.Errorf("edited series = %+v", updated)
	}
	if got := f.dates(t, models.KindEvent); len(got) != 0 {
		t.Errorf("editing a closed series materialized %v", got)
	}
}

func TestEditEventAfterCompletionKeepsDoneRows(t *testing.T) {
	f := newFixture(t, monday, 7)
	series := f.addSeries(t, monday, "yoga", nil, models.Monday, models.Wednesday, models.Saturday)
	if err := f.coord.SetOccurrenceDone(f.ctx, "2026-10-17", storage.Content{Description: "yoga"}, true); err != nil {
		t.Fatal(err)
	}

	_, err := f.coord.EditEvent(f.ctx, series.ID, models.SeriesFields{
		Description:    "pilates",
		RecurrenceDays: []models.Weekday{models.Monday},
	})
	if err != nil {
		t.Fatal(err)
	}

	got := f.series(t, series.ID)
	if got.Active || got.ClosedAt == nil || *got.ClosedAt != "2026-10-17" {
		t.Errorf("series after edit = %+v", got)
	}

	occs, err := f.store.ListOccurrences(f.ctx, storage.OccurrenceFilter{From: monday, SeriesID: &series.ID})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]models.Status{
		monday:       models.StatusPending,
		"2026-10-17": models.StatusDone,
	}
	if len(occs) != len(want) {
		t.Fatalf("occurrences = %+v, want dates %v", occs, want)
	}
	for _, occ := range occs {
		if occ.Description != "pilates" {
			t.Errorf("%s description = %q, want pilates", occ.Date, occ.Description)
		}
		if !reflect.DeepEqual(occ.RecurrenceDays, []models.Weekday{models.Monday}) {
			t.Errorf("%s recurrence days = %v", occ.Date, occ.RecurrenceDays)
		}
		if status, ok := want[occ.Date]; !ok || occ.Status != status {
			t.Errorf("%s status = %s, want %s", occ.Date, occ.Status, status)
		}
	}
}

func TestEditEventKeepsDoneStatusOnSameDate(t *testing.T) {
	f := newFixture(t, monday, 7)
	series := f.addSeries(t, monday, "yoga", nil, models.Monday, models.Saturday)
	if err := f.coord.SetOccurrenceDone(f.ctx, "2026-10-17", storage.Content{Description: "yoga"}, true); err != nil {
		t.Fatal(err)
	}

	if _, err := f.coord.EditEvent(f.ctx, series.ID, models.SeriesFields{
		Description:    "yoga",
		RecurrenceDays: []models.Weekday{models.Wednesday, models.Saturday},
	}); err != nil {
		t.Fatal(err)
	}

	if want := []string{"2026-10-14", "2026-10-17"}; !reflect.DeepEqual(f.dates(t, models.KindEvent), want) {
		t.Fatalf("dates = %v, want %v", f.dates(t, models.KindEvent), want)
	}
	id, err := f.store.FindOccurrenceID(f.ctx, "2026-10-17", storage.Content{Description: "yoga"})
	if err != nil {
		t.Fatal(err)
	}
	occ, _ := f.store.GetOccurrence(f.ctx, id)
	if occ.Status != models.StatusDone {
		t.Errorf("Status = %s, want done", occ.Status)
	}
}

func TestEditEventValidation(t *testing.T) {
	f := newFixture(t, monday, 14)
	series := f.addSeries(t, monday, "swim", nil, models.Monday)

	_, err := f.coord.EditEvent(f.ctx, series.ID, models.SeriesFields{Description: "swim"})
	if !errors.IsValidation(err) {
		t.Errorf("error = %v, want validation", err)
	}
	if got := len(f.dates(t, models.KindEvent)); got != 2 {
		t.Errorf("rejected edit changed rows: %d", got)
	}
}
