// Package cli holds the state shared by every command.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/agenda/internal/agenda"
	"github.com/julianstephens/agenda/internal/backup"
	"github.com/julianstephens/agenda/internal/config"
	"github.com/julianstephens/agenda/internal/logger"
	"github.com/julianstephens/agenda/internal/models"
	"github.com/julianstephens/agenda/internal/storage"
	"github.com/julianstephens/agenda/internal/storage/postgres"
	"github.com/julianstephens/agenda/internal/storage/sqlite"
	"github.com/julianstephens/agenda/internal/utils"
)

type Context struct {
	Ctx     context.Context
	Config  *config.Config
	Store   storage.Provider
	Service *agenda.Service
	Out     io.Writer
}

// NewProvider picks the storage backend for target: PostgreSQL for a
// connection string, SQLite for anything else.
func NewProvider(target string) (storage.Provider, error) {
	if postgres.IsConnString(target) {
		if err := postgres.ValidateConnString(target); err != nil {
			return nil, err
		}
		return postgres.New(target), nil
	}
	return sqlite.NewStore(config.ExpandHome(target)), nil
}

// NewService builds the agenda service over c.Store using the configured
// horizon and timezone.
func (c *Context) NewService() (*agenda.Service, error) {
	loc, err := utils.LoadLocation(c.Config.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Config.Timezone, err)
	}
	c.Service = agenda.New(c.Store, agenda.Options{
		HorizonDays: c.Config.HorizonDays,
		Location:    loc,
	})
	return c.Service, nil
}

func (c *Context) Writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// Backups returns a backup manager over the open store.
func (c *Context) Backups() *backup.Manager {
	return backup.NewManager(c.Store, c.Service, c.Config.Backup.MaxBackups)
}

// PerformAutomaticBackup creates a backup before a destructive change and
// only logs failures.
func (c *Context) PerformAutomaticBackup() {
	if _, err := c.Backups().Create(c.Context()); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Today returns today's date as YYYY-MM-DD.
func (c *Context) Today() string {
	return utils.FormatDate(c.Service.Today())
}

// ResolveDate accepts YYYY-MM-DD, "today", "tomorrow" and "yesterday".
// Empty means today.
func (c *Context) ResolveDate(s string) (string, error) {
	today := c.Today()
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "tomorrow":
		return utils.AddDays(today, 1)
	case "yesterday":
		return utils.AddDays(today, -1)
	}
	if _, err := utils.ParseDate(s); err != nil {
		return "", err
	}
	return s, nil
}

// Confirm asks a yes/no question unless assumeYes is set.
func Confirm(title string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(huh.ThemeBase()).Run()
	if err != nil {
		return false, fmt.Errorf("interactive form error: %w", err)
	}
	return ok, nil
}

// ParsePriority parses an optional priority flag.
func ParsePriority(s string) (*models.Priority, error) {
	return models.ParsePriority(s)
}
