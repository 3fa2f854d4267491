package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/julianstephens/agenda/internal/errors"
	"github.com/julianstephens/agenda/internal/models"
	"github.com/julianstephens/agenda/internal/storage"
)

func (q *Queries) InsertOccurrence(ctx context.Context, occ models.Occurrence) (string, error) {
	if occ.Status == "" {
		occ.Status = models.StatusPending
	}
	if err := occ.Validate(); err != nil {
		return "", errors.Validation("%v", err)
	}
	days, err := encodeDays(occ.RecurrenceDays)
	if err != nil {
		return "", errors.Store("insert occurrence", err)
	}

	id := q.newID()
	insert := q.sb.Insert("occurrences").
		Columns(occurrenceColumns...).
		Values(
			id, occ.Date, occ.Description, nullString(occ.Name), string(occ.Kind),
			nullPriority(occ.Priority), days, string(occ.Status), nullString(occ.SeriesID),
			formatTimestamp(q.now()),
		)
	if _, err := q.exec(ctx, "insert occurrence", insert); err != nil {
		return "", err
	}
	return id, nil
}

func (q *Queries) FindOccurrenceID(ctx context.Context, date string, content storage.Content) (string, error) {
	var id string
	err := q.get(ctx, "find occurrence", &id, q.sb.Select("id").
		From("occurrences").
		Where(squirrel.Eq{"date": date}).
		Where(contentCond(content)).
		OrderBy("created_at", "id").
		Limit(1))
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", errors.NotFound("no item %q on %s", content.Description, date)
	}
	return id, err
}

func (q *Queries) GetOccurrence(ctx context.Context, id string) (models.Occurrence, error) {
	var row occurrenceRow
	err := q.get(ctx, "get occurrence", &row, q.sb.Select(occurrenceColumns...).
		From("occurrences").
		Where(squirrel.Eq{"id": id}))
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.Occurrence{}, errors.NotFound("occurrence %s", id)
	}
	if err != nil {
		return models.Occurrence{}, err
	}
	occ, err := row.model()
	if err != nil {
		return models.Occurrence{}, errors.Store("get occurrence", err)
	}
	return occ, nil
}

func (q *Queries) UpdateOccurrence(ctx context.Context, id string, update models.OccurrenceUpdate) error {
	if strings.TrimSpace(update.Description) == "" {
		return errors.Validation("description must not be empty")
	}
	if update.Priority != nil && !update.Priority.Valid() {
		return errors.Validation("invalid priority %q", *update.Priority)
	}
	n, err := q.exec(ctx, "update occurrence", q.sb.Update("occurrences").
		Set("description", update.Description).
		Set("name", nullString(update.Name)).
		Set("priority", nullPriority(update.Priority)).
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFound("occurrence %s", id)
	}
	return nil
}

func (q *Queries) UpdateOccurrenceStatus(ctx context.Context, id string, status models.Status) error {
	if !status.Valid() {
		return errors.Validation("invalid status %q", status)
	}
	n, err := q.exec(ctx, "update occurrence status", q.sb.Update("occurrences").
		Set("status", string(status)).
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFound("occurrence %s", id)
	}
	return nil
}

func (q *Queries) DeleteOccurrence(ctx context.Context, id string) error {
	n, err := q.exec(ctx, "delete occurrence", q.sb.Delete("occurrences").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFound("occurrence %s", id)
	}
	return nil
}

func dateCond(b storage.DateBound) (squirrel.Sqlizer, error) {
	switch b.Op {
	case storage.OnOrAfter:
		return squirrel.GtOrEq{"date": b.Date}, nil
	case storage.After:
		return squirrel.Gt{"date": b.Date}, nil
	case storage.Before:
		return squirrel.Lt{"date": b.Date}, nil
	}
	return nil, errors.Validation("unknown date operator %q", b.Op)
}

func (q *Queries) DeleteOccurrences(ctx context.Context, match storage.OccurrenceMatch) (int64, error) {
	if match.SeriesID == nil && match.Kind == nil && match.Content == nil && match.Date == nil {
		return 0, errors.Validation("refusing to delete occurrences without a condition")
	}

	del := q.sb.Delete("occurrences")
	if match.SeriesID != nil {
		del = del.Where(squirrel.Eq{"series_id": *match.SeriesID})
	}
	if match.Kind != nil {
		del = del.Where(squirrel.Eq{"kind": string(*match.Kind)})
	}
	if match.Content != nil {
		del = del.Where(contentCond(*match.Content))
	}
	if match.Date != nil {
		cond, err := dateCond(*match.Date)
		if err != nil {
			return 0, err
		}
		del = del.Where(cond)
	}
	return q.exec(ctx, "delete occurrences", del)
}

func (q *Queries) ListOccurrences(ctx context.Context, filter storage.OccurrenceFilter) ([]models.Occurrence, error) {
	sel := q.sb.Select(occurrenceColumns...).From("occurrences")
	if filter.Date != "" {
		sel = sel.Where(squirrel.Eq{"date": filter.Date})
	}
	if filter.From != "" {
		sel = sel.Where(squirrel.GtOrEq{"date": filter.From})
	}
	if filter.To != "" {
		sel = sel.Where(squirrel.LtOrEq{"date": filter.To})
	}
	if filter.Kind != nil {
		sel = sel.Where(squirrel.Eq{"kind": string(*filter.Kind)})
	}
	if filter.Status != nil {
		sel = sel.Where(squirrel.Eq{"status": string(*filter.Status)})
	}
	if filter.SeriesID != nil {
		sel = sel.Where(squirrel.Eq{"series_id": *filter.SeriesID})
	}
	if query := strings.TrimSpace(filter.Query); query != "" {
		sel = sel.Where(q.dialect.contains(query, "description", "name"))
	}
	sel = sel.OrderBy("date", "created_at", "id")

	var rows []occurrenceRow
	if err := q.selectAll(ctx, "list occurrences", &rows, sel); err != nil {
		return nil, err
	}
	out := make([]models.Occurrence, 0, len(rows))
	for _, row := range rows {
		occ, err := row.model()
		if err != nil {
			return nil, errors.Store("list occurrences", err)
		}
		out = append(out, occ)
	}
	return out, nil
}

func (q *Queries) DeleteStaleEventOccurrences(ctx context.Context, before string) (int64, error) {
	return q.exec(ctx, "delete stale event occurrences", q.sb.Delete("occurrences").
		Where(squirrel.Eq{"kind": string(models.KindEvent)}).
		Where(squirrel.Expr("series_id IN (SELECT id FROM series WHERE active = ? AND closed_at < ?)", false, before)))
}
