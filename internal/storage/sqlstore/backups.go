package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/Masterminds/squirrel"

	"github.com/julianstephens/agenda/internal/errors"
	"github.com/julianstephens/agenda/internal/models"
)

func (q *Queries) SaveBackup(ctx context.Context, payload []byte) (models.Backup, error) {
	b := models.Backup{
		ID:        q.newID(),
		CreatedAt: q.now().UTC(),
		Size:      int64(len(payload)),
	}
	_, err := q.exec(ctx, "save backup", q.sb.Insert("backups").
		Columns("id", "created_at", "size", "payload").
		Values(b.ID, formatTimestamp(b.CreatedAt), b.Size, payload))
	if err != nil {
		return models.Backup{}, err
	}
	// match the precision that comes back from ListBackups
	b.CreatedAt, _ = parseTimestamp(formatTimestamp(b.CreatedAt))
	return b, nil
}

// ListBackups returns backup metadata, newest first.
func (q *Queries) ListBackups(ctx context.Context) ([]models.Backup, error) {
	var rows []backupRow
	err := q.selectAll(ctx, "list backups", &rows, q.sb.Select("id", "created_at", "size").
		From("backups").
		OrderBy("created_at DESC", "id DESC"))
	if err != nil {
		return nil, err
	}
	out := make([]models.Backup, 0, len(rows))
	for _, row := range rows {
		b, err := row.model()
		if err != nil {
			return nil, errors.Store("list backups", err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (q *Queries) GetBackupPayload(ctx context.Context, id string) ([]byte, error) {
	var payload []byte
	err := q.get(ctx, "get backup", &payload, q.sb.Select("payload").
		From("backups").
		Where(squirrel.Eq{"id": id}))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("backup %s", id)
	}
	return payload, err
}

// PruneBackups keeps the newest keep backups and deletes the rest.
func (q *Queries) PruneBackups(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	backups, err := q.ListBackups(ctx)
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}

	ids := make([]string, 0, len(backups)-keep)
	for _, b := range backups[keep:] {
		ids = append(ids, b.ID)
	}
	return q.exec(ctx, "prune backups", q.sb.Delete("backups").Where(squirrel.Eq{"id": ids}))
}
