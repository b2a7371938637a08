package repair

import (
	"strings"
	"unicode"
)

// RemovedLine is a line stripped from the input, numbered from 1.
type RemovedLine struct {
	Number int
	Text   string
}

// Repair removes every line matching one of rules, then collapses each run
// of blank lines to a single one. With no rules, DefaultRules is used.
//
// A line is blank when it holds only whitespace, so "\r\n" and "  \n" count
// as blank. The first line of a run is kept as written, line ending
// included. Lines that match no rule are returned unchanged and in order.
// Applying Repair to its own output is a no-op.
func Repair(src string, rules ...Rule) (string, []RemovedLine) {
	if len(rules) == 0 {
		rules = DefaultRules()
	}

	var (
		b         strings.Builder
		removed   []RemovedLine
		prevBlank bool
	)
	b.Grow(len(src))

	// SplitAfter keeps each line's newline, so dropping a segment drops the
	// line together with its terminator.
	for i, segment := range strings.SplitAfter(src, "\n") {
		if segment == "" {
			continue
		}
		line := strings.TrimSuffix(segment, "\n")
		if matchesAny(line, rules) {
			removed = append(removed, RemovedLine{Number: i + 1, Text: strings.TrimRight(line, "\r")})
			continue
		}

		blank := isBlank(line)
		if blank && prevBlank {
			continue
		}
		prevBlank = blank
		b.WriteString(segment)
	}

	return b.String(), removed
}

func matchesAny(line string, rules []Rule) bool {
	for _, r := range rules {
		if r.Matches(line) {
			return true
		}
	}
	return false
}

func isBlank(line string) bool {
	return strings.TrimFunc(line, unicode.IsSpace) == ""
}
