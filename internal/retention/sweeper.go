// Package retention removes the materialized occurrences of series that
// were closed on an earlier day.
package retention

import (
	"context"
	"time"

	"github.com/julianstephens/agenda/internal/logger"
	"github.com/julianstephens/agenda/internal/storage"
	"github.com/julianstephens/agenda/internal/utils"
)

type Sweeper struct {
	store storage.Store
	today func() time.Time
}

func New(store storage.Store, today func() time.Time) *Sweeper {
	if today == nil {
		today = func() time.Time { return utils.Today(time.Local) }
	}
	return &Sweeper{store: store, today: today}
}

// Sweep deletes every event occurrence whose series is inactive with a
// closed_at before today and returns how many rows went. Running it again
// the same day removes nothing.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	before := utils.FormatDate(s.today())

	var removed int64
	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		n, err := tx.DeleteStaleEventOccurrences(ctx, before)
		removed = n
		return err
	})
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		logger.Info("Swept stale event occurrences", "removed", removed, "closed_before", before)
	} else {
		logger.Debug("Nothing to sweep", "closed_before", before)
	}
	return removed, nil
}
