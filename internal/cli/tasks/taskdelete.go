package tasks

import (
	"fmt"

	"github.com/julianstephens/agenda/internal/cli"
)

type TaskDeleteCmd struct {
	cli.ContentFlags `embed:""`

	Yes bool `short:"y" help:"Do not ask for confirmation."`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	label := contentLabel(c.Content())

	ok, err := cli.Confirm(fmt.Sprintf("Delete %s on %s?", label, date), c.Yes)
	if err != nil || !ok {
		return err
	}

	if err := ctx.Service.DeleteOccurrence(ctx.Context(), date, c.Content()); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	fmt.Fprintf(ctx.Writer(), "Deleted: %s on %s\n", label, date)
	return nil
}
