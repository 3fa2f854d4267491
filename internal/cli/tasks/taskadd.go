package tasks

import (
	"fmt"

	"github.com/julianstephens/agenda/internal/cli"
)

type TaskAddCmd struct {
	Description string  `arg:"" help:"Task description."`
	Date        string  `short:"d" help:"Date (YYYY-MM-DD, today, tomorrow)." default:"today"`
	Name        *string `short:"n" help:"Optional short name."`
	Priority    string  `short:"p" help:"Priority (very-important|important|medium|simple)."`
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	priority, err := cli.ParsePriority(c.Priority)
	if err != nil {
		return err
	}

	id, err := ctx.Service.AddTask(ctx.Context(), date, c.Description, priority, c.Name)
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}
	fmt.Fprintf(ctx.Writer(), "Added task: %s on %s (ID: %s)\n", c.Description, date, id)
	return nil
}
