package daylist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/agenda/internal/models"
)

// ToggleDoneMsg asks the parent to flip the status of an occurrence.
type ToggleDoneMsg struct {
	Occurrence models.Occurrence
}

type DeleteMsg struct {
	Occurrence models.Occurrence
}

type Item struct {
	Occurrence models.Occurrence
}

func (i Item) Title() string {
	mark := "[ ]"
	if i.Occurrence.Status == models.StatusDone {
		mark = "[x]"
	}
	return mark + " " + i.Occurrence.Description
}

func (i Item) Description() string {
	desc := fmt.Sprintf("%s | %s", i.Occurrence.Date, i.Occurrence.Kind)
	if i.Occurrence.Name != nil {
		desc += " | " + *i.Occurrence.Name
	}
	if i.Occurrence.Priority != nil {
		desc += " | " + string(*i.Occurrence.Priority)
	}
	return desc
}

func (i Item) FilterValue() string { return i.Occurrence.Label() }

type KeyMap struct {
	Toggle key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle done"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list     list.Model
	keys     KeyMap
	empty    string
	readOnly bool
}

// New builds a list. A read-only list only toggles status and never deletes.
func New(empty string, readOnly bool, width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		if readOnly {
			return []key.Binding{keys.Toggle}
		}
		return []key.Binding{keys.Toggle, keys.Delete}
	}

	return Model{list: l, keys: keys, empty: empty, readOnly: readOnly}
}

func (m *Model) SetOccurrences(occs []models.Occurrence) {
	items := make([]list.Item, len(occs))
	for i, occ := range occs {
		items[i] = Item{Occurrence: occ}
	}
	m.list.SetItems(items)
}

func (m Model) Len() int {
	return len(m.list.Items())
}

// Selected returns the occurrence under the cursor.
func (m Model) Selected() (models.Occurrence, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Occurrence, ok
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Toggle):
			if occ, ok := m.Selected(); ok {
				return m, func() tea.Msg { return ToggleDoneMsg{Occurrence: occ} }
			}
		case key.Matches(msg, m.keys.Delete) && !m.readOnly:
			if occ, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteMsg{Occurrence: occ} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  " + m.empty
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
