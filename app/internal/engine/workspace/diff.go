package workspace

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/marketconnect/llm-session-bridge/app/internal/engine"
)

// renderDiff renders a line diff of one edit in unified style, without hunks.
func renderDiff(e engine.Edit) string {
	var sb strings.Builder
	sb.WriteString("--- a/" + e.Path + "\n")
	sb.WriteString("+++ b/" + e.Path + "\n")

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(e.Original, e.Updated)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range splitLines(d.Text) {
			sb.WriteString(prefix + line)
		}
	}
	return sb.String()
}

// splitLines splits text after each newline; the last line always ends in one.
func splitLines(text string) []string {
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if n := len(lines); n > 0 && !strings.HasSuffix(lines[n-1], "\n") {
		lines[n-1] += "\n"
	}
	return lines
}
