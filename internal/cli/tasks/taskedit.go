package tasks

import (
	"fmt"

	"github.com/julianstephens/agenda/internal/cli"
	"github.com/julianstephens/agenda/internal/models"
	"github.com/julianstephens/agenda/internal/storage"
)

type TaskEditCmd struct {
	cli.ContentFlags `embed:""`

	SetDescription string  `help:"New description."`
	SetName        *string `help:"New name."`
	ClearName      bool    `help:"Remove the name."`
	Priority       string  `short:"p" help:"New priority (very-important|important|medium|simple)."`
}

func (c *TaskEditCmd) Validate() error {
	if c.ClearName && c.SetName != nil {
		return fmt.Errorf("--set-name and --clear-name cannot be used together")
	}
	return nil
}

func (c *TaskEditCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	id, err := ctx.Service.FindOccurrenceID(ctx.Context(), date, c.Content())
	if err != nil {
		return err
	}
	current, err := ctx.Service.Occurrence(ctx.Context(), id)
	if err != nil {
		return err
	}

	update := models.OccurrenceUpdate{
		Description: current.Description,
		Name:        current.Name,
		Priority:    current.Priority,
	}
	if c.SetDescription != "" {
		update.Description = c.SetDescription
	}
	if c.SetName != nil {
		update.Name = c.SetName
	}
	if c.ClearName {
		update.Name = nil
	}
	if c.Priority != "" {
		if update.Priority, err = cli.ParsePriority(c.Priority); err != nil {
			return err
		}
	}

	if err := ctx.Service.EditOccurrence(ctx.Context(), date, c.Content(), update); err != nil {
		return fmt.Errorf("failed to edit item: %w", err)
	}
	fmt.Fprintf(ctx.Writer(), "Updated: %s on %s\n", update.Description, date)
	return nil
}

func contentLabel(content storage.Content) string {
	if content.Name != nil {
		return fmt.Sprintf("%s (%s)", content.Description, *content.Name)
	}
	return content.Description
}
