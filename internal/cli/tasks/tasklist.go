package tasks

import (
	"fmt"

	"github.com/julianstephens/agenda/internal/agenda"
	"github.com/julianstephens/agenda/internal/cli"
	"github.com/julianstephens/agenda/internal/models"
)

// TaskListCmd shows everything scheduled on a day, or every match of a query.
type TaskListCmd struct {
	Date    string `arg:"" optional:"" help:"Date (YYYY-MM-DD, today, tomorrow)." default:"today"`
	Query   string `short:"q" help:"Search descriptions and names across all dates."`
	Kind    string `short:"k" help:"Only show one kind (task|appointment|event)."`
	Status  string `short:"s" help:"Only show one status (pending|done)."`
	ShowIDs bool   `help:"Show item IDs." name:"show-ids"`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	filter := agenda.DayFilter{Query: c.Query}
	if c.Kind != "" {
		kind, err := models.ParseKind(c.Kind)
		if err != nil {
			return err
		}
		filter.Kind = &kind
	}
	if c.Status != "" {
		status := models.Status(c.Status)
		if !status.Valid() {
			return fmt.Errorf("invalid status %q (expected pending or done)", c.Status)
		}
		filter.Status = &status
	}

	date := ""
	if c.Query == "" {
		var err error
		if date, err = ctx.ResolveDate(c.Date); err != nil {
			return err
		}
	}

	occs, err := ctx.Service.Day(ctx.Context(), date, filter)
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}
	if date != "" {
		fmt.Fprintf(ctx.Writer(), "Agenda for %s\n", date)
	}
	cli.RenderOccurrences(ctx.Writer(), occs, c.ShowIDs)
	return nil
}
