// Package tui is the interactive agenda browser.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/agenda/internal/agenda"
	"github.com/julianstephens/agenda/internal/models"
	"github.com/julianstephens/agenda/internal/storage"
	"github.com/julianstephens/agenda/internal/tui/components/daylist"
	"github.com/julianstephens/agenda/internal/tui/components/events"
	"github.com/julianstephens/agenda/internal/utils"
)

// Service is the part of the agenda service the browser drives.
type Service interface {
	Today() time.Time
	Day(ctx context.Context, date string, filter agenda.DayFilter) ([]models.Occurrence, error)
	UpcomingAppointments(ctx context.Context, days int) ([]models.Occurrence, error)
	ActiveEvents(ctx context.Context) ([]models.Series, error)
	SetOccurrenceDone(ctx context.Context, date string, content storage.Content, done bool) error
	DeleteOccurrence(ctx context.Context, date string, content storage.Content) error
}

type SessionState int

const (
	StateDay SessionState = iota
	StateAppointments
	StateEvents
	StateConfirmDelete
)

const tabCount = 3

type loadedMsg struct {
	date   string
	day    []models.Occurrence
	appts  []models.Occurrence
	series []models.Series
}

type changedMsg struct {
	status string
}

type errMsg struct {
	err error
}

type Model struct {
	ctx           context.Context
	svc           Service
	alertDays     int
	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model
	date          string
	dayList       daylist.Model
	apptList      daylist.Model
	eventsModel   events.Model
	pendingDelete *models.Occurrence
	status        string
	err           error
	quitting      bool
	width         int
	height        int
}

func New(ctx context.Context, svc Service, alertDays int) Model {
	return Model{
		ctx:         ctx,
		svc:         svc,
		alertDays:   alertDays,
		state:       StateDay,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		date:        utils.FormatDate(svc.Today()),
		dayList:     daylist.New("Nothing on this day.", false, 0, 0),
		apptList:    daylist.New("No upcoming appointments.", true, 0, 0),
		eventsModel: events.New(0, 0),
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == StateDay {
		keys = append(keys, m.keys.PrevDay, m.keys.NextDay, m.keys.Today)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.PrevDay, m.keys.NextDay, m.keys.Today}
	actions := []key.Binding{daylist.DefaultKeyMap().Toggle, daylist.DefaultKeyMap().Delete}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return m.load(m.date)
}

// Date is the day shown on the day tab.
func (m Model) Date() string {
	return m.date
}

func (m Model) State() SessionState {
	return m.state
}

func (m Model) load(date string) tea.Cmd {
	ctx, svc, alertDays := m.ctx, m.svc, m.alertDays
	return func() tea.Msg {
		day, err := svc.Day(ctx, date, agenda.DayFilter{})
		if err != nil {
			return errMsg{err}
		}
		appts, err := svc.UpcomingAppointments(ctx, alertDays)
		if err != nil {
			return errMsg{err}
		}
		series, err := svc.ActiveEvents(ctx)
		if err != nil {
			return errMsg{err}
		}
		return loadedMsg{date: date, day: day, appts: appts, series: series}
	}
}

func content(occ models.Occurrence) storage.Content {
	return storage.Content{Description: occ.Description, Name: occ.Name}
}

func (m Model) toggle(occ models.Occurrence) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	done := occ.Status != models.StatusDone
	return func() tea.Msg {
		if err := svc.SetOccurrenceDone(ctx, occ.Date, content(occ), done); err != nil {
			return errMsg{err}
		}
		if done {
			return changedMsg{status: fmt.Sprintf("Marked %q done", occ.Label())}
		}
		return changedMsg{status: fmt.Sprintf("Marked %q pending", occ.Label())}
	}
}

func (m Model) remove(occ models.Occurrence) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		if err := svc.DeleteOccurrence(ctx, occ.Date, content(occ)); err != nil {
			return errMsg{err}
		}
		return changedMsg{status: fmt.Sprintf("Deleted %q", occ.Label())}
	}
}
