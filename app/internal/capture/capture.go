// Package capture collects the output an engine session writes while it
// handles one command.
package capture

import (
	"strings"
	"sync"
)

type fragment struct {
	source string
	text   string
}

// Buffer is a thread-safe, source-tagged output sink.
type Buffer struct {
	mu        sync.Mutex
	fragments []fragment
	bySource  map[string][]string
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{bySource: make(map[string][]string)}
}

// Append records text produced by source.
func (b *Buffer) Append(source, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.fragments = append(b.fragments, fragment{source: source, text: text})
	b.bySource[source] = append(b.bySource[source], text)
}

// Clear discards the fragments of every source.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.fragments = nil
	b.bySource = make(map[string][]string)
}

// Drain returns all text appended since the last Clear in arrival order.
// It does not clear the buffer.
func (b *Buffer) Drain() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var sb strings.Builder
	for _, f := range b.fragments {
		sb.WriteString(f.text)
	}
	return sb.String()
}

// Read returns the text appended by a single source. Unknown sources yield "".
func (b *Buffer) Read(source string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return strings.Join(b.bySource[source], "")
}

// Fragments returns a copy of the fragments appended by source.
func (b *Buffer) Fragments(source string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, len(b.bySource[source]))
	copy(out, b.bySource[source])
	return out
}

// Len returns the number of fragments held.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.fragments)
}
