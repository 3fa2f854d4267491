package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/agenda/internal/cli"
	"github.com/julianstephens/agenda/internal/storage/sqlite"
)

type InitCmd struct {
	Force bool `help:"Delete an existing SQLite database before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		store, ok := ctx.Store.(*sqlite.Store)
		if !ok {
			return fmt.Errorf("--force is only supported for SQLite storage")
		}
		if _, err := os.Stat(store.Path()); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			for _, suffix := range []string{"", "-wal", "-shm"} {
				if err := os.Remove(store.Path() + suffix); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("failed to delete existing database: %w", err)
				}
			}
			fmt.Fprintf(ctx.Writer(), "Deleted existing database at: %s\n", store.Path())
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(ctx.Context()); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Writer(), "Initialized agenda storage at: %s\n", ctx.Store.Describe())
	return nil
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	count, err := ctx.Store.Migrate(ctx.Context())
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if count == 0 {
		fmt.Fprintln(ctx.Writer(), "No migrations to apply. Database is up to date.")
	} else {
		fmt.Fprintf(ctx.Writer(), "Successfully applied %d migration(s).\n", count)
	}
	return nil
}

// SweepCmd prunes occurrences of series closed before today.
type SweepCmd struct{}

func (c *SweepCmd) Run(ctx *cli.Context) error {
	removed, err := ctx.Service.SweepStale(ctx.Context())
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	fmt.Fprintf(ctx.Writer(), "Removed %d stale event occurrence(s).\n", removed)
	return nil
}
