package main

import (
	"context"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/agenda/internal/cli"
	"github.com/julianstephens/agenda/internal/cli/appointments"
	"github.com/julianstephens/agenda/internal/cli/backups"
	"github.com/julianstephens/agenda/internal/cli/events"
	"github.com/julianstephens/agenda/internal/cli/system"
	"github.com/julianstephens/agenda/internal/cli/tasks"
	"github.com/julianstephens/agenda/internal/config"
	"github.com/julianstephens/agenda/internal/constants"
	"github.com/julianstephens/agenda/internal/errors"
	"github.com/julianstephens/agenda/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Config file path." type:"path" default:"~/.config/agenda/config.yaml"`
	Database string `help:"SQLite path or PostgreSQL connection string. Overrides the config file. PostgreSQL credentials must NOT be embedded; use the OS keyring or .pgpass."`
	Debug    bool   `help:"Enable debug logging."`

	Init    system.InitCmd    `cmd:"" help:"Initialize agenda storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Sweep   system.SweepCmd   `cmd:"" help:"Remove occurrences of events closed before today."`
	Watch   system.WatchCmd   `cmd:"" help:"Send reminders for upcoming appointments until interrupted."`
	Tui     system.TuiCmd     `cmd:"" help:"Browse the agenda interactively."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
	Task struct {
		Add    tasks.TaskAddCmd    `cmd:"" help:"Add a new task."`
		Edit   tasks.TaskEditCmd   `cmd:"" help:"Edit an item by date and content."`
		Delete tasks.TaskDeleteCmd `cmd:"" help:"Delete an item by date and content."`
		Done   tasks.TaskDoneCmd   `cmd:"" help:"Mark an item done."`
		Undo   tasks.TaskUndoCmd   `cmd:"" help:"Mark an item pending again."`
		List   tasks.TaskListCmd   `cmd:"" help:"Show the agenda for a day." default:"withargs"`
	} `cmd:"" help:"Manage tasks and other dated items."`
	Appointment struct {
		Add      appointments.AppointmentAddCmd      `cmd:"" help:"Add an appointment."`
		Upcoming appointments.AppointmentUpcomingCmd `cmd:"" help:"List upcoming appointments." default:"1"`
	} `cmd:"" aliases:"appt" help:"Manage appointments."`
	Event struct {
		Add    events.EventAddCmd    `cmd:"" help:"Add a weekly recurring event."`
		Edit   events.EventEditCmd   `cmd:"" help:"Edit an event and reschedule it from today."`
		Close  events.EventCloseCmd  `cmd:"" help:"Stop an event from today on."`
		Delete events.EventDeleteCmd `cmd:"" help:"Delete an event, keeping past occurrences."`
		List   events.EventListCmd   `cmd:"" help:"List current events." default:"1"`
	} `cmd:"" help:"Manage recurring events."`
	Export backups.ExportCmd `cmd:"" help:"Export all data as JSON or YAML."`
	Backup struct {
		Create backups.BackupCreateCmd `cmd:"" help:"Create a backup." default:"1"`
		List   backups.BackupListCmd   `cmd:"" help:"List available backups."`
		Show   backups.BackupShowCmd   `cmd:"" help:"Print the content of a backup."`
	} `cmd:"" help:"Manage backups."`
}

// needsStore reports whether command works on an opened store.
func needsStore(command string) bool {
	return !strings.HasPrefix(command, "keyring") && !strings.HasPrefix(command, "init")
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Tasks, appointments and weekly events in one agenda"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.Database != "" {
		cfg.Database = CLI.Database
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.ConfigDir, Level: cfg.LogLevel}); err != nil {
		errors.Fatalf("failed to initialize logger: %v", err)
	}

	appCtx := &cli.Context{
		Ctx:    context.Background(),
		Config: cfg,
		Out:    os.Stdout,
	}

	command := kctx.Command()
	if strings.HasPrefix(command, "keyring") {
		errors.Fatal(kctx.Run(appCtx))
		return
	}

	target, err := cfg.ResolveDatabase()
	if err != nil {
		errors.Fatal(err)
	}
	store, err := cli.NewProvider(target)
	if err != nil {
		errors.Fatal(err)
	}
	defer store.Close()
	appCtx.Store = store

	if _, err := appCtx.NewService(); err != nil {
		errors.Fatal(err)
	}

	if needsStore(command) {
		if err := store.Load(appCtx.Context()); err != nil {
			errors.Fatal(err)
		}
		logger.Debug("Opened store", "store", store.Describe())

		if !strings.HasPrefix(command, "migrate") && !strings.HasPrefix(command, "sweep") {
			if _, err := appCtx.Service.SweepStale(appCtx.Context()); err != nil {
				logger.Warn("Startup sweep failed", "error", err)
			}
		}
	}

	if err := kctx.Run(appCtx); err != nil {
		store.Close()
		errors.Fatal(err)
	}
}
