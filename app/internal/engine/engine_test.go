package engine_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marketconnect/llm-session-bridge/app/internal/capture"
	"github.com/marketconnect/llm-session-bridge/app/internal/engine"
)

func TestWriter(t *testing.T) {
	buf := capture.NewBuffer()
	w := engine.Writer(buf, engine.SourceTool)

	n, err := fmt.Fprintf(w, "exit %d\n", 0)
	assert.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, "exit 0\n", buf.Read(engine.SourceTool))
	assert.Equal(t, "", buf.Read(engine.SourceAssistant))
}

func TestArgumentf(t *testing.T) {
	err := fmt.Errorf("handle: %w", engine.Argumentf("unknown command %s", "/foo"))

	var argErr *engine.ArgumentError
	assert.True(t, errors.As(err, &argErr))
	assert.Equal(t, "unknown command /foo", argErr.Reason)
}
