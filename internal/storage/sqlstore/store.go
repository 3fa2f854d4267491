// Package sqlstore implements storage.Store over any database/sql driver
// supported by sqlx, building queries with squirrel.
package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/julianstephens/agenda/internal/errors"
	"github.com/julianstephens/agenda/internal/logger"
	"github.com/julianstephens/agenda/internal/storage"
)

// Queries is a storage.Store bound either to a database handle or, inside
// Atomic, to a single transaction.
type Queries struct {
	db      *sqlx.DB // nil inside a transaction
	ext     sqlx.ExtContext
	dialect Dialect
	sb      squirrel.StatementBuilderType

	now   func() time.Time
	newID func() string
}

var _ storage.Store = (*Queries)(nil)

// New returns a store using db. The caller owns db and closes it.
func New(db *sqlx.DB, dialect Dialect) *Queries {
	return &Queries{
		db:      db,
		ext:     db,
		dialect: dialect,
		sb:      squirrel.StatementBuilder.PlaceholderFormat(dialect.Placeholder),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (q *Queries) withTx(tx *sqlx.Tx) *Queries {
	clone := *q
	clone.db = nil
	clone.ext = tx
	return &clone
}

// Atomic implements storage.Store.
func (q *Queries) Atomic(ctx context.Context, fn func(storage.Store) error) (err error) {
	if q.db == nil {
		return fn(q)
	}

	tx, err := q.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Store("begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !stderrors.Is(rbErr, sql.ErrTxDone) {
				logger.Error("Failed to roll back transaction", "error", rbErr)
			}
		}
	}()

	if err = fn(q.withTx(tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Store("commit transaction", err)
	}
	return nil
}

type sqlizer interface {
	ToSql() (string, []interface{}, error)
}

func (q *Queries) exec(ctx context.Context, op string, b sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, errors.Store(op, err)
	}
	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Store(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Store(op, err)
	}
	return n, nil
}

func (q *Queries) get(ctx context.Context, op string, dest interface{}, b sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Store(op, err)
	}
	if err := sqlx.GetContext(ctx, q.ext, dest, query, args...); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return errors.Store(op, err)
	}
	return nil
}

func (q *Queries) selectAll(ctx context.Context, op string, dest interface{}, b sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Store(op, err)
	}
	if err := sqlx.SelectContext(ctx, q.ext, dest, query, args...); err != nil {
		return errors.Store(op, err)
	}
	return nil
}

// contentCond matches description exactly and name on its exact tri-state.
func contentCond(c storage.Content) squirrel.And {
	name := squirrel.Eq{"name": nil}
	if c.Name != nil {
		name = squirrel.Eq{"name": *c.Name}
	}
	return squirrel.And{squirrel.Eq{"description": c.Description}, name}
}
