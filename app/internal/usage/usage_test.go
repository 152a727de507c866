package usage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marketconnect/llm-session-bridge/app/domain/entities"
	"github.com/marketconnect/llm-session-bridge/app/internal/usage"
)

const line = "Tokens: 10 sent, 5 received. Cost: $0.01 request, $0.02 session"

func TestExtract_NoUsageLines(t *testing.T) {
	texts := []string{"", "hello\nworld\n", "Tokens: lots sent", "Cost: $1 request"}
	for _, text := range texts {
		assert.Equal(t, entities.UsageRecord{}, usage.Extract(text), text)
		assert.Equal(t, text, usage.StripUsageLines(text), text)
	}
}

func TestExtract_SingleLine(t *testing.T) {
	got := usage.Extract(line)
	assert.Equal(t, 10, got.TokensSent)
	assert.Equal(t, 5, got.TokensReceived)
	assert.InDelta(t, 0.01, got.CostCall, 1e-9)
	assert.InDelta(t, 0.02, got.CostSession, 1e-9)
	assert.Equal(t, "", usage.StripUsageLines(line))
}

func TestExtract_SumsAcrossLines(t *testing.T) {
	text := "Applied edit to foo.py\n" +
		"Tokens: 1,200 sent, 300 received. Cost: $0.50 request, $1.00 session.\n" +
		"Retrying with more context\n" +
		"Tokens: 800 sent, 1,000 received. Cost: $0.25 request, $1,250.75 session.\n"

	got := usage.Extract(text)
	assert.Equal(t, 2000, got.TokensSent)
	assert.Equal(t, 1300, got.TokensReceived)
	assert.InDelta(t, 0.75, got.CostCall, 1e-9)
	assert.InDelta(t, 1251.75, got.CostSession, 1e-9)
	assert.Equal(t, 2, usage.Count(text))
}

func TestStripUsageLines_LeavesOtherTextAlone(t *testing.T) {
	text := "first\n" + line + "\nsecond\r\n" + line + "\r\nthird"

	stripped := usage.StripUsageLines(text)
	assert.Equal(t, "first\nsecond\r\nthird", stripped)
	assert.NotContains(t, stripped, line)
}

func TestStripUsageLines_ConsecutiveLines(t *testing.T) {
	text := line + "\n" + line + "\n" + line
	assert.Equal(t, "", usage.StripUsageLines(text))
	assert.Equal(t, 30, usage.Extract(text).TokensSent)
}

func TestExtract_MidLineMentionIgnored(t *testing.T) {
	text := "the engine prints " + line + " after each call"
	assert.Equal(t, entities.UsageRecord{}, usage.Extract(text))
	assert.Equal(t, text, usage.StripUsageLines(text))
}

func TestExtract_TrailingReportOnSharedLine(t *testing.T) {
	text := "done" + line + "\nnext step\n" + "applied  " + line + "."

	got := usage.Extract(text)
	assert.Equal(t, 20, got.TokensSent)
	assert.Equal(t, 10, got.TokensReceived)
	assert.Equal(t, 2, usage.Count(text))
	assert.Equal(t, "done\nnext step\napplied", usage.StripUsageLines(text))
}

func TestStripUsageLines_SharedLineKeepsCRLF(t *testing.T) {
	text := "ok " + line + "\r\nbye"
	assert.Equal(t, "ok\r\nbye", usage.StripUsageLines(text))
}
