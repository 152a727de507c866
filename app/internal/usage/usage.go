// Package usage extracts token and cost telemetry from engine output.
package usage

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/marketconnect/llm-session-bridge/app/domain/entities"
)

// usageLine matches a usage report that ends its line, together with the
// line terminator, e.g.
//
//	Tokens: 1,204 sent, 87 received. Cost: $0.01 request, $0.02 session.
//
// The report may follow other output on the same line when fragments were
// written without a separating newline. Group 5 is the terminator.
var usageLine = regexp.MustCompile(
	`(?m)[ \t]*Tokens: ([\d,]+) sent, ([\d,]+) received\. ` +
		`Cost: \$([\d,]+(?:\.\d+)?) request, \$([\d,]+(?:\.\d+)?) session\.?[ \t]*(\r?\n|\r?$)`)

// Extract sums every usage line found in text. Text without usage lines
// yields a zero record.
func Extract(text string) entities.UsageRecord {
	var total entities.UsageRecord
	for _, m := range usageLine.FindAllStringSubmatch(text, -1) {
		total = total.Add(entities.UsageRecord{
			TokensSent:     parseInt(m[1]),
			TokensReceived: parseInt(m[2]),
			CostCall:       parseFloat(m[3]),
			CostSession:    parseFloat(m[4]),
		})
	}
	return total
}

// StripUsageLines removes every usage report from text. A report that fills
// its whole line is removed with its terminator; one that trails other output
// leaves that output and the terminator in place. All other text is left
// untouched.
func StripUsageLines(text string) string {
	matches := usageLine.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		b.WriteString(text[last:start])
		if start > 0 && text[start-1] != '\n' {
			b.WriteString(text[m[10]:m[11]])
		}
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

// Count returns the number of usage reports in text.
func Count(text string) int {
	return len(usageLine.FindAllStringIndex(text, -1))
}

func parseInt(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		// only reachable on overflow
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}
