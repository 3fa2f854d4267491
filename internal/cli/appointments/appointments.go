package appointments

import (
	"fmt"

	"github.com/julianstephens/agenda/internal/cli"
)

type AppointmentAddCmd struct {
	Description string  `arg:"" help:"Appointment description."`
	Date        string  `short:"d" help:"Date (YYYY-MM-DD, today, tomorrow)." required:""`
	Name        *string `short:"n" help:"Optional short name, e.g. who the appointment is with."`
	Priority    string  `short:"p" help:"Priority (very-important|important|medium|simple)."`
}

func (c *AppointmentAddCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	priority, err := cli.ParsePriority(c.Priority)
	if err != nil {
		return err
	}

	id, err := ctx.Service.AddAppointment(ctx.Context(), date, c.Description, priority, c.Name)
	if err != nil {
		return fmt.Errorf("failed to add appointment: %w", err)
	}
	fmt.Fprintf(ctx.Writer(), "Added appointment: %s on %s (ID: %s)\n", c.Description, date, id)
	return nil
}

// AppointmentUpcomingCmd lists pending appointments in the alert window.
type AppointmentUpcomingCmd struct {
	Days    int  `help:"Days ahead to look. Defaults to the configured alert_days."`
	ShowIDs bool `help:"Show item IDs." name:"show-ids"`
}

func (c *AppointmentUpcomingCmd) Run(ctx *cli.Context) error {
	days := c.Days
	if days <= 0 {
		days = ctx.Config.AlertDays
	}
	occs, err := ctx.Service.UpcomingAppointments(ctx.Context(), days)
	if err != nil {
		return fmt.Errorf("failed to list appointments: %w", err)
	}
	fmt.Fprintf(ctx.Writer(), "Appointments in the next %d days\n", days)
	cli.RenderOccurrences(ctx.Writer(), occs, c.ShowIDs)
	return nil
}
