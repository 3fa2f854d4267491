package backups

import (
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/agenda/internal/backup"
	"github.com/julianstephens/agenda/internal/cli"
)

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	b, err := ctx.Backups().Create(ctx.Context())
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	fmt.Fprintf(ctx.Writer(), "Backup created: %s (%d bytes)\n", b.ID, b.Size)
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	backups, err := ctx.Backups().List(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	cli.RenderBackups(ctx.Writer(), backups)
	return nil
}

// BackupShowCmd prints the content of a stored backup.
type BackupShowCmd struct {
	ID     string `arg:"" help:"Backup ID."`
	Format string `short:"f" help:"Output format (json|yaml)." default:"json"`
}

func (c *BackupShowCmd) Run(ctx *cli.Context) error {
	format, err := backup.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	snap, err := ctx.Backups().Read(ctx.Context(), c.ID)
	if err != nil {
		return err
	}
	return backup.Export(ctx.Writer(), snap, format)
}

// ExportCmd writes everything in the store to stdout or a file.
type ExportCmd struct {
	Format string `short:"f" help:"Output format (json|yaml)." default:"json"`
	Out    string `short:"o" help:"Write to this file instead of stdout." type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	format, err := backup.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	snap, err := ctx.Service.Snapshot(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to read store: %w", err)
	}

	var w io.Writer = ctx.Writer()
	if c.Out != "" {
		f, err := os.OpenFile(c.Out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := backup.Export(w, snap, format); err != nil {
		return err
	}
	if c.Out != "" {
		fmt.Fprintf(ctx.Writer(), "Exported %d occurrence(s) and %d event(s) to %s\n", len(snap.Occurrences), len(snap.Series), c.Out)
	}
	return nil
}
