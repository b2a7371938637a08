package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PagerThreshold is the number of lines above which a diff is shown in the
// full-screen pager instead of printed inline.
const PagerThreshold = 20

var borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

// Page shows body in a scrollable full-screen viewport until the user quits.
func Page(title, body string) error {
	if _, err := tea.NewProgram(newPagerModel(title, body), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to show diff: %w", err)
	}
	return nil
}

// NeedsPager reports whether body is too long to print inline.
func NeedsPager(body string) bool {
	return strings.Count(body, "\n") > PagerThreshold
}

type pagerModel struct {
	title    string
	body     string
	viewport viewport.Model
	ready    bool
}

func newPagerModel(title, body string) pagerModel {
	return pagerModel{title: title, body: body}
}

func (m pagerModel) Init() tea.Cmd {
	return nil
}

func (m pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		const chrome = 2 // header and footer rows
		width, height := max(msg.Width, 1), max(msg.Height-chrome, 1)
		if !m.ready {
			m.viewport = viewport.New(width, height)
			m.viewport.SetContent(m.body)
			m.ready = true
		} else {
			m.viewport.Width = width
			m.viewport.Height = height
		}
	}

	if !m.ready {
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m pagerModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := borderStyle.Render(fmt.Sprintf("── Diff: %s ", m.title))
	footer := borderStyle.Render(fmt.Sprintf("── %3.f%%  [↑/↓] Scroll  [q] Back ", m.viewport.ScrollPercent()*100))
	return header + "\n" + m.viewport.View() + "\n" + footer
}
