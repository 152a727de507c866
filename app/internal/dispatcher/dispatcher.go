// Package dispatcher turns external commands into CommandResponses by running
// them against the active engine session, one at a time.
package dispatcher

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/marketconnect/llm-session-bridge/app/domain/entities"
	"github.com/marketconnect/llm-session-bridge/app/internal/edits"
	"github.com/marketconnect/llm-session-bridge/app/internal/engine"
	"github.com/marketconnect/llm-session-bridge/app/internal/logger"
	"github.com/marketconnect/llm-session-bridge/app/internal/session"
	"github.com/marketconnect/llm-session-bridge/app/internal/usage"
)

// SessionManager resolves and replaces the active session.
type SessionManager interface {
	Current() (*session.Binding, error)
	Bind(workDir string) (*session.Binding, error)
	RecordUsage(sessionID string, usage entities.UsageRecord) (*entities.SessionData, error)
}

// Buffer is the output sink shared with the engine sessions.
type Buffer interface {
	Clear()
	Drain() string
}

// Queue serializes work. Jobs must not call Do themselves.
type Queue interface {
	Do(fn func()) error
}

var errBindAborted = errors.New("bind aborted before completing")

// Dispatcher runs commands and binds on a single queue so that neither ever
// overlaps a command in flight.
type Dispatcher struct {
	sessions SessionManager
	buffer   Buffer
	queue    Queue
	log      *log.Logger
}

// NewDispatcher creates a Dispatcher with injected dependencies
func NewDispatcher(sessions SessionManager, buffer Buffer, queue Queue) *Dispatcher {
	return &Dispatcher{
		sessions: sessions,
		buffer:   buffer,
		queue:    queue,
		log:      logger.WithPrefix("dispatcher"),
	}
}

// Dispatch runs cmd against the active session. It never panics and never
// returns an error: every failure becomes an error response.
func (d *Dispatcher) Dispatch(cmd entities.Command) entities.CommandResponse {
	if cmd == nil {
		return entities.ErrorResponse("no command")
	}
	var resp entities.CommandResponse
	err := d.queue.Do(func() {
		resp = d.run(cmd)
	})
	if err != nil {
		return entities.ErrorResponse(err.Error())
	}
	return resp
}

// Bind switches the active session to workDir once no command is in flight.
func (d *Dispatcher) Bind(workDir string) (*session.Binding, error) {
	var (
		b       *session.Binding
		bindErr error
	)
	err := d.queue.Do(func() {
		b, bindErr = d.sessions.Bind(workDir)
	})
	if err != nil {
		return nil, err
	}
	if b == nil && bindErr == nil {
		return nil, &entities.BindError{WorkDir: workDir, Err: errBindAborted}
	}
	return b, bindErr
}

func (d *Dispatcher) run(cmd entities.Command) (resp entities.CommandResponse) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("engine panicked", "kind", cmd.Kind(), "panic", r)
			resp = entities.ErrorResponse(fmt.Sprint(r))
		}
	}()

	b, err := d.sessions.Current()
	if err != nil {
		if errors.Is(err, entities.ErrNotBound) {
			return entities.ErrorResponse(entities.ErrNotBound.Error())
		}
		return entities.ErrorResponse(err.Error())
	}

	d.buffer.Clear()

	text := Format(cmd)
	d.log.Debug("handling command", "kind", cmd.Kind(), "session_id", b.ID)

	if err := b.Session.Handle(text); err != nil {
		var argErr *engine.ArgumentError
		if errors.As(err, &argErr) {
			d.log.Warn("invalid arguments", "kind", cmd.Kind(), "err", err)
			return entities.ErrorResponse("Invalid arguments: " + argErr.Reason)
		}
		d.log.Error("command failed", "kind", cmd.Kind(), "err", err)
		return entities.ErrorResponse(err.Error())
	}

	fullOutput := d.buffer.Drain()
	used := extractUsage(b.Session, fullOutput)
	message := usage.StripUsageLines(fullOutput)
	changes := edits.Collect(b.Session)
	d.log.Debug("command finished", "kind", cmd.Kind(), "session_id", b.ID,
		"usage_reports", usage.Count(fullOutput), "file_changes", len(changes))

	if _, err := d.sessions.RecordUsage(b.ID, used); err != nil {
		d.log.Warn("failed to record usage", "session_id", b.ID, "err", err)
	}

	return entities.CommandResponse{
		Message:     message,
		Status:      entities.StatusSuccess,
		FileChanges: changes,
		Usage:       &used,
	}
}

// extractUsage prefers structured usage reported by the session and falls
// back to scanning the output text.
func extractUsage(s engine.Session, output string) entities.UsageRecord {
	if r, ok := s.(engine.UsageReporter); ok {
		if u, ok := r.LastUsage(); ok {
			return u
		}
	}
	return usage.Extract(output)
}
