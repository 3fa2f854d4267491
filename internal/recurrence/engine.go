// Package recurrence materializes weekly series into dated event occurrences
// over a rolling horizon.
package recurrence

import (
	"context"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/julianstephens/agenda/internal/constants"
	"github.com/julianstephens/agenda/internal/errors"
	"github.com/julianstephens/agenda/internal/logger"
	"github.com/julianstephens/agenda/internal/models"
	"github.com/julianstephens/agenda/internal/storage"
	"github.com/julianstephens/agenda/internal/utils"
)

var byDay = map[models.Weekday]rrule.Weekday{
	models.Monday:    rrule.MO,
	models.Tuesday:   rrule.TU,
	models.Wednesday: rrule.WE,
	models.Thursday:  rrule.TH,
	models.Friday:    rrule.FR,
	models.Saturday:  rrule.SA,
	models.Sunday:    rrule.SU,
}

// Engine expands series over HorizonDays days starting today.
type Engine struct {
	HorizonDays int
}

// New returns an engine with the given horizon. Non-positive values fall
// back to the default of 90 days.
func New(horizonDays int) *Engine {
	if horizonDays <= 0 {
		horizonDays = constants.DefaultHorizonDays
	}
	return &Engine{HorizonDays: horizonDays}
}

func (e *Engine) horizon() int {
	if e == nil || e.HorizonDays <= 0 {
		return constants.DefaultHorizonDays
	}
	return e.HorizonDays
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Rule builds the weekly rule for series starting at today. It returns nil
// when the series has nothing left to materialize.
func (e *Engine) Rule(series models.Series, today time.Time) (*rrule.RRule, error) {
	var weekdays []rrule.Weekday
	for _, d := range series.RecurrenceDays {
		if wd, ok := byDay[d]; ok {
			weekdays = append(weekdays, wd)
		}
	}
	// WEEKLY without BYDAY would fall back to the DTSTART weekday.
	if len(weekdays) == 0 {
		return nil, nil
	}

	start := civil(today)
	until := start.AddDate(0, 0, e.horizon()-1)
	if series.ClosedAt != nil {
		closed, err := utils.ParseDate(*series.ClosedAt)
		if err != nil {
			return nil, errors.Validation("series %s has a malformed closed_at: %v", series.ID, err)
		}
		if closed.Before(start) {
			return nil, nil
		}
		if closed.Before(until) {
			until = closed
		}
	}

	return rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Wkst:      rrule.MO,
		Dtstart:   start,
		Until:     until,
		Byweekday: weekdays,
	})
}

// Dates lists the dates series occupies in [today, today+horizon), cut off
// after closed_at.
func (e *Engine) Dates(series models.Series, today time.Time) ([]string, error) {
	rule, err := e.Rule(series, today)
	if err != nil || rule == nil {
		return nil, err
	}
	times := rule.All()
	dates := make([]string, 0, len(times))
	for _, t := range times {
		dates = append(dates, utils.FormatDate(t))
	}
	return dates, nil
}

// Expand inserts one pending event occurrence per date of series. It does not
// look for existing rows; callers clear the window first when re-expanding.
func (e *Engine) Expand(ctx context.Context, store storage.Store, series models.Series, today time.Time) (int, error) {
	if series.ID == "" {
		return 0, errors.Validation("cannot expand a series without an id")
	}
	dates, err := e.Dates(series, today)
	if err != nil {
		return 0, err
	}
	if len(dates) == 0 {
		return 0, nil
	}

	seriesID := series.ID
	err = store.Atomic(ctx, func(tx storage.Store) error {
		for _, date := range dates {
			_, err := tx.InsertOccurrence(ctx, models.Occurrence{
				Date:           date,
				Description:    series.Description,
				Name:           series.Name,
				Kind:           models.KindEvent,
				RecurrenceDays: series.RecurrenceDays,
				Status:         models.StatusPending,
				SeriesID:       &seriesID,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Debug("Expanded series", "series", series.ID, "occurrences", len(dates))
	return len(dates), nil
}

// Regenerate replaces the series' occurrences dated today or later with a
// fresh expansion. Earlier rows are kept as history.
func (e *Engine) Regenerate(ctx context.Context, store storage.Store, series models.Series, today time.Time) (int, error) {
	seriesID := series.ID
	var created int
	err := store.Atomic(ctx, func(tx storage.Store) error {
		removed, err := tx.DeleteOccurrences(ctx, storage.OccurrenceMatch{
			SeriesID: &seriesID,
			Date:     &storage.DateBound{Op: storage.OnOrAfter, Date: utils.FormatDate(today)},
		})
		if err != nil {
			return err
		}
		logger.Debug("Cleared series window", "series", series.ID, "removed", removed)

		created, err = e.Expand(ctx, tx, series, today)
		return err
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
