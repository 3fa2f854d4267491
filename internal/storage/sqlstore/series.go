package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/Masterminds/squirrel"

	"github.com/julianstephens/agenda/internal/errors"
	"github.com/julianstephens/agenda/internal/models"
	"github.com/julianstephens/agenda/internal/storage"
)

func (q *Queries) InsertSeries(ctx context.Context, series models.Series) (string, error) {
	if err := series.Fields().Validate(); err != nil {
		return "", errors.Validation("%v", err)
	}
	days, err := encodeDays(series.RecurrenceDays)
	if err != nil {
		return "", errors.Store("insert series", err)
	}

	id := q.newID()
	_, err = q.exec(ctx, "insert series", q.sb.Insert("series").
		Columns(seriesColumns...).
		Values(
			id, series.Description, nullString(series.Name), days,
			series.Active, nullString(series.ClosedAt), formatTimestamp(q.now()),
		))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (q *Queries) GetSeries(ctx context.Context, id string) (models.Series, error) {
	return q.getSeries(ctx, "get series", q.sb.Select(seriesColumns...).
		From("series").
		Where(squirrel.Eq{"id": id}),
		"series %s", id)
}

// FindSeriesByContent prefers an active series, then the newest one, when
// several share the same text.
func (q *Queries) FindSeriesByContent(ctx context.Context, content storage.Content) (models.Series, error) {
	return q.getSeries(ctx, "find series", q.sb.Select(seriesColumns...).
		From("series").
		Where(contentCond(content)).
		OrderBy("active DESC", "created_at DESC", "id").
		Limit(1),
		"series %q", content.Description)
}

func (q *Queries) getSeries(ctx context.Context, op string, b sqlizer, notFound string, args ...interface{}) (models.Series, error) {
	var row seriesRow
	err := q.get(ctx, op, &row, b)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.Series{}, errors.NotFound(notFound, args...)
	}
	if err != nil {
		return models.Series{}, err
	}
	s, err := row.model()
	if err != nil {
		return models.Series{}, errors.Store(op, err)
	}
	return s, nil
}

func (q *Queries) UpdateSeries(ctx context.Context, id string, fields models.SeriesFields) error {
	if err := fields.Validate(); err != nil {
		return errors.Validation("%v", err)
	}
	days, err := encodeDays(fields.RecurrenceDays)
	if err != nil {
		return errors.Store("update series", err)
	}
	n, err := q.exec(ctx, "update series", q.sb.Update("series").
		Set("description", fields.Description).
		Set("name", nullString(fields.Name)).
		Set("recurrence_days", days).
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFound("series %s", id)
	}
	return nil
}

// DeleteSeries removes the series row. Remaining occurrences keep their
// content and lose the back-reference.
func (q *Queries) DeleteSeries(ctx context.Context, id string) error {
	n, err := q.exec(ctx, "delete series", q.sb.Delete("series").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFound("series %s", id)
	}
	return nil
}

func (q *Queries) SetSeriesActive(ctx context.Context, id string, active bool, closedAt *string) error {
	n, err := q.exec(ctx, "set series active", q.sb.Update("series").
		Set("active", active).
		Set("closed_at", nullString(closedAt)).
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFound("series %s", id)
	}
	return nil
}

// ListActiveSeries returns series that are active or were closed on or after asOf.
func (q *Queries) ListActiveSeries(ctx context.Context, asOf string) ([]models.Series, error) {
	return q.listSeries(ctx, "list active series", q.sb.Select(seriesColumns...).
		From("series").
		Where(squirrel.Or{
			squirrel.Eq{"active": true},
			squirrel.GtOrEq{"closed_at": asOf},
		}).
		OrderBy("created_at", "id"))
}

func (q *Queries) ListSeries(ctx context.Context) ([]models.Series, error) {
	return q.listSeries(ctx, "list series", q.sb.Select(seriesColumns...).
		From("series").
		OrderBy("created_at", "id"))
}

func (q *Queries) listSeries(ctx context.Context, op string, b sqlizer) ([]models.Series, error) {
	var rows []seriesRow
	if err := q.selectAll(ctx, op, &rows, b); err != nil {
		return nil, err
	}
	out := make([]models.Series, 0, len(rows))
	for _, row := range rows {
		s, err := row.model()
		if err != nil {
			return nil, errors.Store(op, err)
		}
		out = append(out, s)
	}
	return out, nil
}
