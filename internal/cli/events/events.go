package events

import (
	"fmt"

	"github.com/julianstephens/agenda/internal/cli"
	"github.com/julianstephens/agenda/internal/models"
	"github.com/julianstephens/agenda/internal/utils"
)

type EventAddCmd struct {
	Description string  `arg:"" help:"Event description."`
	Name        *string `short:"n" help:"Optional short name."`
	Days        string  `short:"w" help:"Comma-separated weekdays, e.g. mon,wed,fri." required:""`
}

func (c *EventAddCmd) Run(ctx *cli.Context) error {
	days, err := utils.ParseWeekdays(c.Days)
	if err != nil {
		return err
	}

	series, err := ctx.Service.AddEvent(ctx.Context(), models.SeriesFields{
		Description:    c.Description,
		Name:           c.Name,
		RecurrenceDays: days,
	})
	if err != nil {
		return fmt.Errorf("failed to add event: %w", err)
	}
	fmt.Fprintf(ctx.Writer(), "Added event: %s on %s (ID: %s)\n", series.Description, models.FormatWeekdays(series.RecurrenceDays), series.ID)
	return nil
}

// EventEditCmd changes a series and rebuilds its occurrences from today.
type EventEditCmd struct {
	ID          string  `arg:"" help:"Event ID."`
	Description string  `help:"New description."`
	Name        *string `short:"n" help:"New name."`
	ClearName   bool    `help:"Remove the name."`
	Days        string  `short:"w" help:"New comma-separated weekdays."`
}

func (c *EventEditCmd) Run(ctx *cli.Context) error {
	series, err := ctx.Service.Series(ctx.Context(), c.ID)
	if err != nil {
		return err
	}

	fields := series.Fields()
	if c.Description != "" {
		fields.Description = c.Description
	}
	if c.Name != nil {
		fields.Name = c.Name
	}
	if c.ClearName {
		fields.Name = nil
	}
	if c.Days != "" {
		if fields.RecurrenceDays, err = utils.ParseWeekdays(c.Days); err != nil {
			return err
		}
	}

	updated, err := ctx.Service.EditEvent(ctx.Context(), c.ID, fields)
	if err != nil {
		return fmt.Errorf("failed to edit event: %w", err)
	}
	fmt.Fprintf(ctx.Writer(), "Updated event: %s on %s\n", updated.Description, models.FormatWeekdays(updated.RecurrenceDays))
	if updated.Closed() {
		fmt.Fprintln(ctx.Writer(), "Event is closed; no new occurrences were scheduled.")
	}
	return nil
}

type EventCloseCmd struct {
	ID  string `arg:"" help:"Event ID."`
	Yes bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *EventCloseCmd) Run(ctx *cli.Context) error {
	series, err := ctx.Service.Series(ctx.Context(), c.ID)
	if err != nil {
		return err
	}
	ok, err := cli.Confirm(fmt.Sprintf("Close %s? Occurrences from today on will be removed.", series.Description), c.Yes)
	if err != nil || !ok {
		return err
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Service.CloseEvent(ctx.Context(), c.ID); err != nil {
		return fmt.Errorf("failed to close event: %w", err)
	}
	fmt.Fprintf(ctx.Writer(), "Closed event: %s\n", series.Description)
	return nil
}

type EventDeleteCmd struct {
	ID  string `arg:"" help:"Event ID."`
	Yes bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *EventDeleteCmd) Run(ctx *cli.Context) error {
	series, err := ctx.Service.Series(ctx.Context(), c.ID)
	if err != nil {
		return err
	}
	ok, err := cli.Confirm(fmt.Sprintf("Delete %s? Past occurrences are kept.", series.Description), c.Yes)
	if err != nil || !ok {
		return err
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Service.DeleteEvent(ctx.Context(), c.ID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	fmt.Fprintf(ctx.Writer(), "Deleted event: %s\n", series.Description)
	return nil
}

type EventListCmd struct{}

func (c *EventListCmd) Run(ctx *cli.Context) error {
	series, err := ctx.Service.ActiveEvents(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}
	cli.RenderSeries(ctx.Writer(), series)
	return nil
}
