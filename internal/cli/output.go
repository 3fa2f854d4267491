package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/agenda/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	doneStyle   = cellStyle.Foreground(lipgloss.Color("8")).Strikethrough(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func priorityString(p *models.Priority) string {
	if p == nil {
		return "-"
	}
	return string(*p)
}

// RenderOccurrences prints occurrences as a table.
func RenderOccurrences(w io.Writer, occs []models.Occurrence, showIDs bool) {
	if len(occs) == 0 {
		fmt.Fprintln(w, "Nothing scheduled")
		return
	}

	headers := []string{"Date", "Kind", "Description", "Name", "Priority", "Status"}
	if showIDs {
		headers = append(headers, "ID")
	}
	t := newTable(headers...)
	for _, occ := range occs {
		row := []string{occ.Date, string(occ.Kind), occ.Description, orDash(occ.Name), priorityString(occ.Priority), string(occ.Status)}
		if showIDs {
			row = append(row, occ.ID)
		}
		t.Row(row...)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if row >= 0 && row < len(occs) && occs[row].Status == models.StatusDone {
			return doneStyle
		}
		return cellStyle
	})
	fmt.Fprintln(w, t.Render())
}

// RenderSeries prints series as a table.
func RenderSeries(w io.Writer, series []models.Series) {
	if len(series) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}

	t := newTable("ID", "Description", "Name", "Days", "State")
	for _, s := range series {
		state := "active"
		if s.Closed() {
			state = "closed " + orDash(s.ClosedAt)
		}
		t.Row(s.ID, s.Description, orDash(s.Name), models.FormatWeekdays(s.RecurrenceDays), state)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		return cellStyle
	})
	fmt.Fprintln(w, t.Render())
}

// RenderBackups prints backup metadata as a table.
func RenderBackups(w io.Writer, backups []models.Backup) {
	if len(backups) == 0 {
		fmt.Fprintln(w, "No backups found")
		return
	}

	t := newTable("ID", "Created", "Size")
	for _, b := range backups {
		t.Row(b.ID, b.CreatedAt.Local().Format("2006-01-02 15:04:05"), fmt.Sprintf("%.1f KB", float64(b.Size)/1024))
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		return cellStyle
	})
	fmt.Fprintln(w, t.Render())
}
