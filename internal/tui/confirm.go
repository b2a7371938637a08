package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Choice is the user's answer to the apply prompt.
type Choice int

const (
	Apply Choice = iota
	ShowDiff
	Cancel
)

func (c Choice) String() string {
	switch c {
	case Apply:
		return "apply"
	case ShowDiff:
		return "show diff"
	case Cancel:
		return "cancel"
	default:
		return "unknown"
	}
}

var (
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("white")).Bold(true)
)

// Confirm asks whether to write the repaired schema. Quitting the menu
// counts as Cancel.
func Confirm(path string, removed int) (Choice, error) {
	final, err := tea.NewProgram(newConfirmModel(path, removed)).Run()
	if err != nil {
		return Cancel, fmt.Errorf("failed to show menu: %w", err)
	}

	m := final.(confirmModel)
	if m.selected == nil {
		return Cancel, nil
	}
	return *m.selected, nil
}

type confirmModel struct {
	path     string
	removed  int
	choices  []Choice
	cursor   int
	selected *Choice
}

func newConfirmModel(path string, removed int) confirmModel {
	return confirmModel{
		path:    path,
		removed: removed,
		choices: []Choice{Apply, ShowDiff, Cancel},
	}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case "y":
		return m.choose(Apply)
	case "d":
		return m.choose(ShowDiff)
	case "n":
		return m.choose(Cancel)
	case "enter":
		return m.choose(m.choices[m.cursor])
	}
	return m, nil
}

func (m confirmModel) choose(c Choice) (tea.Model, tea.Cmd) {
	m.selected = &c
	return m, tea.Quit
}

func (m confirmModel) View() string {
	var b strings.Builder

	noun := "lines"
	if m.removed == 1 {
		noun = "line"
	}
	b.WriteString(warningStyle.Render("⚠️  Malformed relation fields in ") + titleStyle.Render(m.path) + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("    %d %s will be removed", m.removed, noun)) + "\n\n")
	b.WriteString(mutedStyle.Render("    [↑/↓] Navigate    [Enter] Select    [y/d/n] Shortcut    [q] Cancel") + "\n\n")

	labels := map[Choice]string{
		Apply:    "Apply fix (rewrite schema)",
		ShowDiff: "Show diff and decide",
		Cancel:   "Cancel (leave schema unchanged)",
	}
	for i, c := range m.choices {
		if i == m.cursor {
			b.WriteString("    " + selectedStyle.Render("> "+labels[c]) + "\n")
		} else {
			b.WriteString("      " + labels[c] + "\n")
		}
	}
	return b.String()
}
