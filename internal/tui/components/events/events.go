package events

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/agenda/internal/models"
)

var (
	daysStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(16)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Model shows the active event series in a scrollable viewport.
type Model struct {
	viewport viewport.Model
	series   []models.Series
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m *Model) SetSeries(series []models.Series) {
	m.series = series
	m.viewport.SetContent(m.render())
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.series) == 0 {
		return "\n  No active events."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.viewport.SetContent(m.render())
}

func (m Model) render() string {
	var b strings.Builder
	for _, s := range m.series {
		line := daysStyle.Render(models.FormatWeekdays(s.RecurrenceDays)) + " " + titleStyle.Render(s.Description)
		if s.Name != nil {
			line += " " + nameStyle.Render(fmt.Sprintf("(%s)", *s.Name))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
