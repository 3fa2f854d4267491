package tasks

import (
	"fmt"

	"github.com/julianstephens/agenda/internal/cli"
)

// TaskDoneCmd marks an item done. Completing an event occurrence ends its
// series; completing an appointment drops later copies of it.
type TaskDoneCmd struct {
	cli.ContentFlags `embed:""`
}

func (c *TaskDoneCmd) Run(ctx *cli.Context) error {
	return setDone(ctx, c.ContentFlags, true)
}

type TaskUndoCmd struct {
	cli.ContentFlags `embed:""`
}

func (c *TaskUndoCmd) Run(ctx *cli.Context) error {
	return setDone(ctx, c.ContentFlags, false)
}

func setDone(ctx *cli.Context, flags cli.ContentFlags, done bool) error {
	date, err := ctx.ResolveDate(flags.Date)
	if err != nil {
		return err
	}
	if err := ctx.Service.SetOccurrenceDone(ctx.Context(), date, flags.Content(), done); err != nil {
		return err
	}

	state := "done"
	if !done {
		state = "pending"
	}
	fmt.Fprintf(ctx.Writer(), "Marked %s on %s as %s\n", contentLabel(flags.Content()), date, state)
	return nil
}
