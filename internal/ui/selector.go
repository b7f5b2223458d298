package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

type selectorKeys struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	AllSafe key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

var defaultSelectorKeys = selectorKeys{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
	AllSafe: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "select safe")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "clean selected")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "cancel")),
}

// SelectorModel is the bubbletea model for picking suggestions to clean.
// Safe suggestions start selected.
type SelectorModel struct {
	suggestions []domain.Suggestion
	selected    map[int]bool
	cursor      int
	keys        selectorKeys
	confirmed   bool
	quitting    bool
}

// NewSelectorModel creates a selector over sugs.
func NewSelectorModel(sugs []domain.Suggestion) SelectorModel {
	m := SelectorModel{
		suggestions: sugs,
		selected:    make(map[int]bool),
		keys:        defaultSelectorKeys,
	}
	m.selectSafe()
	return m
}

func (m *SelectorModel) selectSafe() {
	for i, s := range m.suggestions {
		if s.Safety == domain.SafetySafe {
			m.selected[i] = true
		}
	}
}

func (m SelectorModel) Init() tea.Cmd {
	return nil
}

func (m SelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Confirm):
		m.confirmed = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.suggestions)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Toggle):
		if len(m.suggestions) > 0 {
			m.selected[m.cursor] = !m.selected[m.cursor]
		}
	case key.Matches(keyMsg, m.keys.AllSafe):
		m.selected = make(map[int]bool)
		m.selectSafe()
	}
	return m, nil
}

func (m SelectorModel) View() string {
	if m.quitting || m.confirmed {
		return ""
	}

	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	muted := lipgloss.NewStyle().Foreground(ColorMuted)
	cursor := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	b.WriteString(title.Render("=== Select suggestions to clean ==="))
	b.WriteString("\n\n")

	for i, s := range m.suggestions {
		pointer := "  "
		if i == m.cursor {
			pointer = cursor.Render("> ")
		}
		check := "[ ]"
		if m.selected[i] {
			check = "[x]"
		}
		fmt.Fprintf(&b, "%s%s %-28s %10s  %s\n", pointer, check, s.Description, FormatSize(s.TotalSize), muted.Render(s.Safety.String()))
	}

	fmt.Fprintf(&b, "\nSelected: %s\n", FormatSize(m.selectedSize()))
	var help []string
	for _, k := range []key.Binding{m.keys.Up, m.keys.Down, m.keys.Toggle, m.keys.AllSafe, m.keys.Confirm, m.keys.Quit} {
		help = append(help, k.Help().Key+" "+k.Help().Desc)
	}
	b.WriteString(muted.Render(strings.Join(help, " • ")))
	b.WriteString("\n")
	return b.String()
}

func (m SelectorModel) selectedSize() int64 {
	var total int64
	for _, s := range m.Selected() {
		total += s.TotalSize
	}
	return total
}

// Selected returns the chosen suggestions in list order.
func (m SelectorModel) Selected() []domain.Suggestion {
	var out []domain.Suggestion
	for i, s := range m.suggestions {
		if m.selected[i] {
			out = append(out, s)
		}
	}
	return out
}

// Confirmed reports whether the user accepted the selection.
func (m SelectorModel) Confirmed() bool {
	return m.confirmed
}

// RunSelector shows the selector and returns the confirmed suggestions.
// Cancelling returns nil.
func RunSelector(sugs []domain.Suggestion, in io.Reader, out io.Writer) ([]domain.Suggestion, error) {
	p := tea.NewProgram(NewSelectorModel(sugs), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("selector failed: %w", err)
	}
	m, ok := final.(SelectorModel)
	if !ok || !m.Confirmed() {
		return nil, nil
	}
	return m.Selected(), nil
}
