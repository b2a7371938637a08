package diff

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultContext is the number of unchanged lines kept around each change.
const DefaultContext = 3

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	hunkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	insertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("22"))
	deleteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("52"))
)

// Hunk is a run of changes with surrounding context.
type Hunk struct {
	OldStart, OldCount int
	NewStart, NewCount int
	Lines              []Line
}

// Header returns the "@@ -a,b +c,d @@" line for the hunk.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
}

// Hunks groups an edit script into hunks. Changes separated by no more than
// 2*context unchanged lines share a hunk.
func Hunks(script []Line, context int) []Hunk {
	if context < 0 {
		context = 0
	}

	var hunks []Hunk
	for i := 0; i < len(script); {
		if script[i].Op == Equal {
			i++
			continue
		}

		start := max(0, i-context)
		last := i
		for j := i + 1; j < len(script); j++ {
			if j-last-1 > 2*context {
				break
			}
			if script[j].Op != Equal {
				last = j
			}
		}
		end := min(len(script), last+context+1)

		hunks = append(hunks, newHunk(script[start:end]))
		i = end
	}
	return hunks
}

func newHunk(lines []Line) Hunk {
	h := Hunk{Lines: lines}
	for _, l := range lines {
		if l.Old > 0 && h.OldStart == 0 {
			h.OldStart = l.Old
		}
		if l.New > 0 && h.NewStart == 0 {
			h.NewStart = l.New
		}
		switch l.Op {
		case Equal:
			h.OldCount++
			h.NewCount++
		case Delete:
			h.OldCount++
		case Insert:
			h.NewCount++
		}
	}
	return h
}

// Renderer formats unified diffs.
type Renderer struct {
	// Context is the number of unchanged lines around changes.
	// Zero means DefaultContext.
	Context int

	// Color styles the output with lipgloss. Leave false when the output is
	// not a terminal.
	Color bool
}

// Unified renders a unified diff between two documents. Identical documents
// render as "".
func (r Renderer) Unified(oldName, newName, before, after string) string {
	if before == after {
		return ""
	}
	if isBinary(before) || isBinary(after) {
		return "Binary files differ\n"
	}

	context := r.Context
	if context == 0 {
		context = DefaultContext
	}

	hunks := Hunks(Compute(splitLines(before), splitLines(after)), context)
	if len(hunks) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(r.style(headerStyle, "--- "+oldName) + "\n")
	b.WriteString(r.style(headerStyle, "+++ "+newName) + "\n")

	for _, h := range hunks {
		b.WriteString(r.style(hunkStyle, h.Header()) + "\n")
		for _, l := range h.Lines {
			switch l.Op {
			case Insert:
				b.WriteString(r.style(insertStyle, "+"+l.Text))
			case Delete:
				b.WriteString(r.style(deleteStyle, "-"+l.Text))
			default:
				b.WriteString(" " + l.Text)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (r Renderer) style(s lipgloss.Style, text string) string {
	if !r.Color {
		return text
	}
	return s.Render(text)
}

// splitLines splits on newlines. A trailing newline does not produce an
// empty final line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// isBinary reports whether s has a NUL byte in its first 8KB.
func isBinary(s string) bool {
	n := min(len(s), 8192)
	return strings.IndexByte(s[:n], 0) != -1
}
