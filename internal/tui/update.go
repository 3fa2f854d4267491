package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/agenda/internal/tui/components/daylist"
	"github.com/julianstephens/agenda/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h := max(msg.Height-5, 0)
		m.dayList.SetSize(msg.Width, h)
		m.apptList.SetSize(msg.Width, h)
		m.eventsModel.SetSize(msg.Width, h)
		return m, nil

	case loadedMsg:
		m.date = msg.date
		m.err = nil
		m.dayList.SetOccurrences(msg.day)
		m.apptList.SetOccurrences(msg.appts)
		m.eventsModel.SetSeries(msg.series)
		return m, nil

	case changedMsg:
		m.status = msg.status
		return m, m.load(m.date)

	case errMsg:
		m.err = msg.err
		return m, nil

	case daylist.ToggleDoneMsg:
		return m, m.toggle(msg.Occurrence)

	case daylist.DeleteMsg:
		occ := msg.Occurrence
		m.pendingDelete = &occ
		m.previousState = m.state
		m.state = StateConfirmDelete
		return m, nil

	case tea.KeyMsg:
		if m.state == StateConfirmDelete {
			return m.updateConfirmDelete(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load(m.date)
		}
		if m.state == StateDay {
			switch {
			case key.Matches(msg, m.keys.PrevDay):
				return m, m.shiftDay(-1)
			case key.Matches(msg, m.keys.NextDay):
				return m, m.shiftDay(1)
			case key.Matches(msg, m.keys.Today):
				return m, m.load(utils.FormatDate(m.svc.Today()))
			}
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateDay:
		m.dayList, cmd = m.dayList.Update(msg)
	case StateAppointments:
		m.apptList, cmd = m.apptList.Update(msg)
	case StateEvents:
		m.eventsModel, cmd = m.eventsModel.Update(msg)
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		occ := *m.pendingDelete
		m.pendingDelete = nil
		m.state = m.previousState
		return m, m.remove(occ)
	case key.Matches(msg, m.keys.Cancel):
		m.pendingDelete = nil
		m.state = m.previousState
	}
	return m, nil
}

func (m Model) shiftDay(n int) tea.Cmd {
	date, err := utils.AddDays(m.date, n)
	if err != nil {
		return func() tea.Msg { return errMsg{err} }
	}
	return m.load(date)
}
