// Package output prints styled status lines for the prismafix CLI.
//
// It follows the Firebird Suite's output vocabulary (Success, Error, Info,
// Step, Verbose) so prismafix reads like the rest of the suite's tools.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var (
	mu      sync.Mutex
	out     io.Writer = os.Stdout
	errOut  io.Writer = os.Stderr
	verbose bool
)

// SetVerbose enables Verbose messages. Called when --verbose is set.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// SetOutput redirects standard and error output. It returns a function that
// restores the previous writers.
func SetOutput(stdout, stderr io.Writer) (restore func()) {
	mu.Lock()
	defer mu.Unlock()

	prevOut, prevErr := out, errOut
	out, errOut = stdout, stderr
	return func() {
		mu.Lock()
		defer mu.Unlock()
		out, errOut = prevOut, prevErr
	}
}

// Success prints a completed operation.
//
//	output.Success("Fixed relation fields in apps/api/prisma/schema.prisma")
func Success(msg string) {
	write(out, successStyle, "🔥 "+msg)
}

// Error prints a failure to standard error.
func Error(msg string) {
	write(errOut, errorStyle, "❌ "+msg)
}

// Warn prints something the user should look at but that did not fail.
func Warn(msg string) {
	write(out, warnStyle, "⚠️  "+msg)
}

// Info prints a status update.
func Info(msg string) {
	write(out, infoStyle, "ℹ️  "+msg)
}

// Step prints an indented sub-item in gray.
func Step(msg string) {
	write(out, stepStyle, "   "+msg)
}

// Verbose prints msg only in verbose mode.
func Verbose(msg string) {
	mu.Lock()
	v := verbose
	mu.Unlock()
	if v {
		write(out, stepStyle, "🔍 "+msg)
	}
}

// Plain writes text as-is, for diffs and other preformatted blocks.
func Plain(text string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprint(out, text)
}

// IsTerminal reports whether standard output is an interactive terminal.
// Redirected output never is.
func IsTerminal() bool {
	mu.Lock()
	w := out
	mu.Unlock()

	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width, or 80 when it cannot be detected.
func Width() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

func write(w io.Writer, style lipgloss.Style, text string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(w, style.Render(text))
}
