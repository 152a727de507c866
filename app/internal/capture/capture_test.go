package capture_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marketconnect/llm-session-bridge/app/internal/capture"
)

func TestBuffer_ClearThenDrainIsEmpty(t *testing.T) {
	b := capture.NewBuffer()
	b.Append("assistant", "stale")

	b.Clear()
	assert.Equal(t, "", b.Drain())

	b.Clear()
	b.Clear()
	assert.Equal(t, "", b.Drain())
	assert.Equal(t, 0, b.Len())
}

func TestBuffer_DrainKeepsAppendOrder(t *testing.T) {
	b := capture.NewBuffer()
	b.Append("x", "a")
	b.Append("x", "b")
	b.Append("y", "c")

	out := b.Drain()
	assert.Equal(t, "abc", out)
	assert.Equal(t, "ab", b.Read("x"))
	assert.Equal(t, "c", b.Read("y"))
	assert.Equal(t, []string{"a", "b"}, b.Fragments("x"))
}

func TestBuffer_DrainDoesNotClear(t *testing.T) {
	b := capture.NewBuffer()
	b.Append("assistant", "hello")

	assert.Equal(t, "hello", b.Drain())
	assert.Equal(t, "hello", b.Drain())
}

func TestBuffer_InterleavedSourcesUseArrivalOrder(t *testing.T) {
	b := capture.NewBuffer()
	b.Append("assistant", "1")
	b.Append("tool", "2")
	b.Append("assistant", "3")

	assert.Equal(t, "123", b.Drain())
	assert.Equal(t, "13", b.Read("assistant"))
}

func TestBuffer_UnknownSource(t *testing.T) {
	b := capture.NewBuffer()
	assert.Equal(t, "", b.Read("missing"))
	assert.Empty(t, b.Fragments("missing"))
}

func TestBuffer_ConcurrentAppend(t *testing.T) {
	b := capture.NewBuffer()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Append("tool", "x")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, b.Len())
	assert.Len(t, b.Drain(), 50)
}
