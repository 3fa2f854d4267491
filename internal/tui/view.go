package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateDay:
		content = docStyle.Render(m.dayList.View())
	case StateAppointments:
		content = docStyle.Render(m.apptList.View())
	case StateEvents:
		content = docStyle.Render(m.eventsModel.View())
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.viewHeader(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	active := m.state
	if active == StateConfirmDelete {
		active = m.previousState
	}
	var tabs []string
	for i, title := range []string{"Day", "Appointments", "Events"} {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewHeader() string {
	switch m.state {
	case StateAppointments:
		return headerStyle.Render(fmt.Sprintf("Next %d days", m.alertDays))
	case StateEvents:
		return headerStyle.Render("Active events")
	}
	return headerStyle.Render(m.date)
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return dangerStyle.Render(" Error: " + m.err.Error())
	}
	return statusStyle.Render(m.status)
}

func (m Model) viewConfirmDelete() string {
	label := ""
	if m.pendingDelete != nil {
		label = m.pendingDelete.Label()
	}
	return lipgloss.Place(m.width, max(m.height-5, 5),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %q?", label)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
