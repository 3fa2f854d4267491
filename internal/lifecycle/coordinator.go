// Package lifecycle applies the cross-entity state changes of a series:
// closing it, editing it, and completing one of its occurrences.
package lifecycle

import (
	"context"
	"time"

	"github.com/julianstephens/agenda/internal/errors"
	"github.com/julianstephens/agenda/internal/logger"
	"github.com/julianstephens/agenda/internal/models"
	"github.com/julianstephens/agenda/internal/recurrence"
	"github.com/julianstephens/agenda/internal/storage"
	"github.com/julianstephens/agenda/internal/utils"
)

// Coordinator runs every transition inside a single store transaction.
type Coordinator struct {
	store  storage.Store
	engine *recurrence.Engine
	today  func() time.Time
}

// New returns a coordinator. today reports the current civil date.
func New(store storage.Store, engine *recurrence.Engine, today func() time.Time) *Coordinator {
	if engine == nil {
		engine = recurrence.New(0)
	}
	if today == nil {
		today = func() time.Time { return utils.Today(time.Local) }
	}
	return &Coordinator{store: store, engine: engine, today: today}
}

// CloseEvent deactivates the series as of today and removes its occurrences
// dated today or later. A series already closed on or before today is left
// alone; one closed at a later date is pulled back to today.
func (c *Coordinator) CloseEvent(ctx context.Context, seriesID string) error {
	today := utils.FormatDate(c.today())

	return c.store.Atomic(ctx, func(tx storage.Store) error {
		series, err := tx.GetSeries(ctx, seriesID)
		if err != nil {
			return err
		}
		if series.Closed() && series.ClosedAt != nil && *series.ClosedAt <= today {
			logger.Info("Series already closed", "series", seriesID, "closed_at", *series.ClosedAt)
			return nil
		}

		if err := tx.SetSeriesActive(ctx, seriesID, false, &today); err != nil {
			return err
		}
		removed, err := tx.DeleteOccurrences(ctx, storage.OccurrenceMatch{
			SeriesID: &seriesID,
			Date:     &storage.DateBound{Op: storage.OnOrAfter, Date: today},
		})
		if err != nil {
			return err
		}
		logger.Info("Closed series", "series", seriesID, "closed_at", today, "removed", removed)
		return nil
	})
}

// EditEvent replaces the series definition and regenerates its occurrences
// from today, up to closed_at for a closed series. Rows already marked done
// keep their status and take the new content. A closed series with nothing
// left from today has only its definition updated.
func (c *Coordinator) EditEvent(ctx context.Context, seriesID string, fields models.SeriesFields) (models.Series, error) {
	if err := fields.Validate(); err != nil {
		return models.Series{}, errors.Validation("%v", err)
	}
	fields.RecurrenceDays = normalizeDays(fields.RecurrenceDays)
	today := c.today()

	var updated models.Series
	err := c.store.Atomic(ctx, func(tx storage.Store) error {
		series, err := tx.GetSeries(ctx, seriesID)
		if err != nil {
			return err
		}
		if err := tx.UpdateSeries(ctx, seriesID, fields); err != nil {
			return err
		}
		updated = series.Apply(fields)

		upcoming, err := tx.ListOccurrences(ctx, storage.OccurrenceFilter{
			From:     utils.FormatDate(today),
			SeriesID: &seriesID,
		})
		if err != nil {
			return err
		}
		if updated.Closed() && len(upcoming) == 0 {
			logger.Debug("Edited closed series with no upcoming occurrences", "series", seriesID)
			return nil
		}

		n, err := c.engine.Regenerate(ctx, tx, updated, today)
		if err != nil {
			return err
		}
		if err := c.restoreDone(ctx, tx, updated, today, upcoming); err != nil {
			return err
		}
		logger.Info("Regenerated series", "series", seriesID, "occurrences", n)
		return nil
	})
	if err != nil {
		return models.Series{}, err
	}
	return updated, nil
}

// restoreDone carries the done rows found before a regeneration over to the
// new expansion. A date the expansion no longer covers gets its row back with
// the series' new content.
func (c *Coordinator) restoreDone(ctx context.Context, tx storage.Store, series models.Series, today time.Time, before []models.Occurrence) error {
	var done []models.Occurrence
	for _, occ := range before {
		if occ.Status == models.StatusDone {
			done = append(done, occ)
		}
	}
	if len(done) == 0 {
		return nil
	}

	fresh, err := tx.ListOccurrences(ctx, storage.OccurrenceFilter{
		From:     utils.FormatDate(today),
		SeriesID: &series.ID,
	})
	if err != nil {
		return err
	}
	byDate := make(map[string]string, len(fresh))
	for _, occ := range fresh {
		byDate[occ.Date] = occ.ID
	}

	for _, old := range done {
		if id, ok := byDate[old.Date]; ok {
			if err := tx.UpdateOccurrenceStatus(ctx, id, models.StatusDone); err != nil {
				return err
			}
			continue
		}
		occ := old
		occ.ID = ""
		occ.Description = series.Description
		occ.Name = series.Name
		occ.RecurrenceDays = series.RecurrenceDays
		if _, err := tx.InsertOccurrence(ctx, occ); err != nil {
			return err
		}
		logger.Debug("Kept done occurrence off the new pattern", "series", series.ID, "date", old.Date)
	}
	return nil
}

// SetOccurrenceDone sets the status of the occurrence identified by date and
// content. Marking an event occurrence done closes its series after that
// date; marking an appointment done cancels later appointments with the
// same content. Un-marking never restores anything.
func (c *Coordinator) SetOccurrenceDone(ctx context.Context, date string, content storage.Content, done bool) error {
	status := models.StatusPending
	if done {
		status = models.StatusDone
	}

	return c.store.Atomic(ctx, func(tx storage.Store) error {
		id, err := tx.FindOccurrenceID(ctx, date, content)
		if err != nil {
			return err
		}
		occ, err := tx.GetOccurrence(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.UpdateOccurrenceStatus(ctx, id, status); err != nil {
			return err
		}
		if !done {
			return nil
		}

		switch occ.Kind {
		case models.KindEvent:
			return c.closeFromCompletion(ctx, tx, occ)
		case models.KindAppointment:
			kind := models.KindAppointment
			removed, err := tx.DeleteOccurrences(ctx, storage.OccurrenceMatch{
				Kind:    &kind,
				Content: &content,
				Date:    &storage.DateBound{Op: storage.After, Date: occ.Date},
			})
			if err != nil {
				return err
			}
			if removed > 0 {
				logger.Info("Cancelled later appointments", "description", occ.Description, "after", occ.Date, "removed", removed)
			}
		}
		return nil
	})
}

func (c *Coordinator) closeFromCompletion(ctx context.Context, tx storage.Store, occ models.Occurrence) error {
	content := storage.Content{Description: occ.Description, Name: occ.Name}

	var series *models.Series
	if occ.SeriesID != nil {
		s, err := tx.GetSeries(ctx, *occ.SeriesID)
		switch {
		case err == nil:
			series = &s
			if s.Description != occ.Description || !models.NameEquals(s.Name, occ.Name) {
				logger.Warn("Occurrence content differs from its series",
					"occurrence", occ.ID, "series", s.ID, "description", occ.Description, "series_description", s.Description)
			}
		case errors.IsNotFound(err):
			logger.Warn("Occurrence references a missing series", "occurrence", occ.ID, "series", *occ.SeriesID)
		default:
			return err
		}
	}

	if series == nil {
		byContent, err := tx.FindSeriesByContent(ctx, content)
		switch {
		case err == nil:
			series = &byContent
		case errors.IsNotFound(err):
		default:
			return err
		}
	}

	if series == nil {
		logger.Warn("No series found for completed occurrence, skipping close", "occurrence", occ.ID, "description", occ.Description)
		return nil
	}

	closedAt := occ.Date
	if series.ClosedAt != nil && *series.ClosedAt < closedAt {
		closedAt = *series.ClosedAt
	}
	if err := tx.SetSeriesActive(ctx, series.ID, false, &closedAt); err != nil {
		return err
	}

	match := storage.OccurrenceMatch{
		SeriesID: &series.ID,
		Date:     &storage.DateBound{Op: storage.After, Date: occ.Date},
	}
	if occ.SeriesID == nil {
		kind := models.KindEvent
		match = storage.OccurrenceMatch{
			Kind:    &kind,
			Content: &content,
			Date:    &storage.DateBound{Op: storage.After, Date: occ.Date},
		}
	}
	removed, err := tx.DeleteOccurrences(ctx, match)
	if err != nil {
		return err
	}
	logger.Info("Closed series on completion", "series", series.ID, "closed_at", closedAt, "removed", removed)
	return nil
}

func normalizeDays(days []models.Weekday) []models.Weekday {
	set := make(map[models.Weekday]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	return utils.NormalizeWeekdays(set)
}
