// Package agenda is the entry point callers use: it wires the store, the
// recurrence engine, the lifecycle coordinator and the retention sweeper.
package agenda

import (
	"context"
	"strings"
	"time"

	"github.com/julianstephens/agenda/internal/constants"
	"github.com/julianstephens/agenda/internal/errors"
	"github.com/julianstephens/agenda/internal/lifecycle"
	"github.com/julianstephens/agenda/internal/logger"
	"github.com/julianstephens/agenda/internal/models"
	"github.com/julianstephens/agenda/internal/recurrence"
	"github.com/julianstephens/agenda/internal/retention"
	"github.com/julianstephens/agenda/internal/storage"
	"github.com/julianstephens/agenda/internal/utils"
)

// Options tune a Service. The zero value uses the defaults.
type Options struct {
	HorizonDays int
	Location    *time.Location
	// Now overrides the wall clock, mostly for tests.
	Now func() time.Time
}

type Service struct {
	store   storage.Store
	engine  *recurrence.Engine
	coord   *lifecycle.Coordinator
	sweeper *retention.Sweeper
	loc     *time.Location
	now     func() time.Time
}

func New(store storage.Store, opts Options) *Service {
	s := &Service{
		store:  store,
		engine: recurrence.New(opts.HorizonDays),
		loc:    opts.Location,
		now:    opts.Now,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.coord = lifecycle.New(store, s.engine, s.Today)
	s.sweeper = retention.New(store, s.Today)
	return s
}

// Today is the current civil date in the service's location, at midnight UTC.
func (s *Service) Today() time.Time {
	return utils.CivilDate(s.now(), s.loc)
}

func (s *Service) today() string {
	return utils.FormatDate(s.Today())
}

// AddTask stores a pending task and returns its id.
func (s *Service) AddTask(ctx context.Context, date, description string, priority *models.Priority, name *string) (string, error) {
	return s.addDated(ctx, models.KindTask, date, description, priority, name)
}

// AddAppointment stores a pending appointment and returns its id.
func (s *Service) AddAppointment(ctx context.Context, date, description string, priority *models.Priority, name *string) (string, error) {
	return s.addDated(ctx, models.KindAppointment, date, description, priority, name)
}

func (s *Service) addDated(ctx context.Context, kind models.Kind, date, description string, priority *models.Priority, name *string) (string, error) {
	occ := models.Occurrence{
		Date:        date,
		Description: description,
		Name:        name,
		Kind:        kind,
		Priority:    priority,
		Status:      models.StatusPending,
	}
	if err := occ.Validate(); err != nil {
		return "", errors.Validation("%v", err)
	}

	id, err := s.store.InsertOccurrence(ctx, occ)
	if err != nil {
		return "", err
	}
	logger.Debug("Added occurrence", "kind", kind, "id", id, "date", date)
	return id, nil
}

// AddEvent creates an active series and materializes it from today. Both
// happen in one transaction.
func (s *Service) AddEvent(ctx context.Context, fields models.SeriesFields) (models.Series, error) {
	if err := fields.Validate(); err != nil {
		return models.Series{}, errors.Validation("%v", err)
	}
	set := make(map[models.Weekday]bool, len(fields.RecurrenceDays))
	for _, d := range fields.RecurrenceDays {
		set[d] = true
	}

	series := models.Series{
		Description:    fields.Description,
		Name:           fields.Name,
		RecurrenceDays: utils.NormalizeWeekdays(set),
		Active:         true,
	}
	today := s.Today()

	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		id, err := tx.InsertSeries(ctx, series)
		if err != nil {
			return err
		}
		series.ID = id
		n, err := s.engine.Expand(ctx, tx, series, today)
		if err != nil {
			return err
		}
		logger.Info("Added series", "series", id, "occurrences", n)
		return nil
	})
	if err != nil {
		return models.Series{}, err
	}
	return s.store.GetSeries(ctx, series.ID)
}

func (s *Service) CloseEvent(ctx context.Context, seriesID string) error {
	return s.coord.CloseEvent(ctx, seriesID)
}

func (s *Service) EditEvent(ctx context.Context, seriesID string, fields models.SeriesFields) (models.Series, error) {
	return s.coord.EditEvent(ctx, seriesID, fields)
}

func (s *Service) SetOccurrenceDone(ctx context.Context, date string, content storage.Content, done bool) error {
	return s.coord.SetOccurrenceDone(ctx, date, content, done)
}

// SweepStale removes occurrences of series closed before today.
func (s *Service) SweepStale(ctx context.Context) (int64, error) {
	return s.sweeper.Sweep(ctx)
}

// FindOccurrenceID resolves an occurrence by date and exact content.
func (s *Service) FindOccurrenceID(ctx context.Context, date string, content storage.Content) (string, error) {
	return s.store.FindOccurrenceID(ctx, date, content)
}

// DeleteOccurrence removes the single occurrence with the given date and content.
func (s *Service) DeleteOccurrence(ctx context.Context, date string, content storage.Content) error {
	return s.store.Atomic(ctx, func(tx storage.Store) error {
		id, err := tx.FindOccurrenceID(ctx, date, content)
		if err != nil {
			return err
		}
		return tx.DeleteOccurrence(ctx, id)
	})
}

// EditOccurrence rewrites the content of one occurrence. Event occurrences
// follow their series, so only their priority-free content may change here.
func (s *Service) EditOccurrence(ctx context.Context, date string, content storage.Content, update models.OccurrenceUpdate) error {
	if strings.TrimSpace(update.Description) == "" {
		return errors.Validation("description must not be empty")
	}
	if update.Priority != nil && !update.Priority.Valid() {
		return errors.Validation("invalid priority %q", *update.Priority)
	}

	return s.store.Atomic(ctx, func(tx storage.Store) error {
		id, err := tx.FindOccurrenceID(ctx, date, content)
		if err != nil {
			return err
		}
		occ, err := tx.GetOccurrence(ctx, id)
		if err != nil {
			return err
		}
		if occ.Kind == models.KindEvent && update.Priority != nil {
			return errors.Validation("event occurrences cannot carry a priority")
		}
		return tx.UpdateOccurrence(ctx, id, update)
	})
}

// DeleteEvent removes a series and its occurrences from today on. Earlier
// occurrences stay as history without a series.
func (s *Service) DeleteEvent(ctx context.Context, seriesID string) error {
	today := s.today()
	return s.store.Atomic(ctx, func(tx storage.Store) error {
		if _, err := tx.GetSeries(ctx, seriesID); err != nil {
			return err
		}
		removed, err := tx.DeleteOccurrences(ctx, storage.OccurrenceMatch{
			SeriesID: &seriesID,
			Date:     &storage.DateBound{Op: storage.OnOrAfter, Date: today},
		})
		if err != nil {
			return err
		}
		if err := tx.DeleteSeries(ctx, seriesID); err != nil {
			return err
		}
		logger.Info("Deleted series", "series", seriesID, "removed", removed)
		return nil
	})
}

// DayFilter narrows a day listing. A non-empty Query searches every date.
type DayFilter struct {
	Query  string
	Kind   *models.Kind
	Status *models.Status
}

// Day lists the occurrences visible on date.
func (s *Service) Day(ctx context.Context, date string, filter DayFilter) ([]models.Occurrence, error) {
	f := storage.OccurrenceFilter{
		Query:  filter.Query,
		Kind:   filter.Kind,
		Status: filter.Status,
	}
	if strings.TrimSpace(filter.Query) == "" {
		if _, err := utils.ParseDate(date); err != nil {
			return nil, errors.Validation("%v", err)
		}
		f.Date = date
	}
	return s.store.ListOccurrences(ctx, f)
}

// ActiveEvents lists series that are active or were closed today or later.
func (s *Service) ActiveEvents(ctx context.Context) ([]models.Series, error) {
	return s.store.ListActiveSeries(ctx, s.today())
}

// Occurrence returns one occurrence by id.
func (s *Service) Occurrence(ctx context.Context, id string) (models.Occurrence, error) {
	return s.store.GetOccurrence(ctx, id)
}

// Series returns one series by id.
func (s *Service) Series(ctx context.Context, id string) (models.Series, error) {
	return s.store.GetSeries(ctx, id)
}

// UpcomingAppointments lists pending appointments from today through the
// next days days. Non-positive values use the configured alert window.
func (s *Service) UpcomingAppointments(ctx context.Context, days int) ([]models.Occurrence, error) {
	if days <= 0 {
		days = constants.DefaultAlertDays
	}
	today := s.Today()
	return s.pendingAppointments(ctx, utils.FormatDate(today), utils.FormatDate(today.AddDate(0, 0, days)))
}

// ListDueAppointments lists pending appointments dated between now and
// now+window.
func (s *Service) ListDueAppointments(ctx context.Context, window time.Duration) ([]models.Occurrence, error) {
	if window <= 0 {
		window = constants.DefaultNotifyWindow
	}
	now := s.now()
	from := utils.FormatDate(utils.CivilDate(now, s.loc))
	to := utils.FormatDate(utils.CivilDate(now.Add(window), s.loc))
	return s.pendingAppointments(ctx, from, to)
}

func (s *Service) pendingAppointments(ctx context.Context, from, to string) ([]models.Occurrence, error) {
	kind := models.KindAppointment
	status := models.StatusPending
	return s.store.ListOccurrences(ctx, storage.OccurrenceFilter{
		From:   from,
		To:     to,
		Kind:   &kind,
		Status: &status,
	})
}

// Snapshot reads the whole store.
func (s *Service) Snapshot(ctx context.Context) (models.Snapshot, error) {
	snap := models.Snapshot{TakenAt: s.now().UTC()}
	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		occs, err := tx.ListOccurrences(ctx, storage.OccurrenceFilter{})
		if err != nil {
			return err
		}
		series, err := tx.ListSeries(ctx)
		if err != nil {
			return err
		}
		snap.Occurrences = occs
		snap.Series = series
		return nil
	})
	return snap, err
}
