// Package engine defines the contract between the bridge and the assistant
// engine that interprets commands and edits files.
package engine

import (
	"fmt"
	"io"

	"github.com/marketconnect/llm-session-bridge/app/domain/entities"
)

// Output receives text the engine produces while handling a command.
type Output interface {
	Append(source, text string)
}

// Source tags used by engines when appending output.
const (
	SourceAssistant = "assistant"
	SourceTool      = "tool"
)

// Engine creates sessions rooted in a working directory.
type Engine interface {
	Initialize(workDir string, out Output) (Session, error)
}

// Session is one running assistant instance.
type Session interface {
	// Handle runs a single command. Output goes to the Output the session
	// was initialized with.
	Handle(command string) error
	// PendingEdits returns the files changed by the most recent Handle call.
	PendingEdits() []Edit
}

// UsageReporter is implemented by sessions that report usage as structured
// data instead of, or in addition to, usage lines in their output.
type UsageReporter interface {
	LastUsage() (entities.UsageRecord, bool)
}

// Edit is a file modified while handling a command.
type Edit struct {
	Path     string
	Original string
	Updated  string
}

// ArgumentError signals that the engine rejected the command's arguments.
type ArgumentError struct {
	Reason string
}

func (e *ArgumentError) Error() string {
	return e.Reason
}

// Argumentf builds an ArgumentError from a format string.
func Argumentf(format string, args ...any) error {
	return &ArgumentError{Reason: fmt.Sprintf(format, args...)}
}

// Writer adapts out to an io.Writer that appends everything written under source.
func Writer(out Output, source string) io.Writer {
	return outputWriter{out: out, source: source}
}

type outputWriter struct {
	out    Output
	source string
}

func (w outputWriter) Write(p []byte) (int, error) {
	w.out.Append(w.source, string(p))
	return len(p), nil
}
