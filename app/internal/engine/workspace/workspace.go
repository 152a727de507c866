// Package workspace is the engine the bridge runs by default. It keeps the
// set of files in the chat, answers the slash commands itself and hands
// messages to an external assistant process, tracking which chat files that
// process changed.
package workspace

import (
	"errors"
	"fmt"
	"os"

	"github.com/kballard/go-shellquote"

	"github.com/marketconnect/llm-session-bridge/app/internal/engine"
)

// Engine creates workspace sessions.
type Engine struct {
	argv []string
}

// New creates an Engine running command, a shell-quoted argv prefix, for
// every message. An empty command is allowed: slash commands still work and
// messages fail with an engine error.
func New(command string) (*Engine, error) {
	argv, err := shellquote.Split(command)
	if err != nil {
		return nil, fmt.Errorf("invalid engine command: %w", err)
	}
	return &Engine{argv: argv}, nil
}

// NewWithArgs creates an Engine from an already split argv prefix.
func NewWithArgs(argv []string) *Engine {
	return &Engine{argv: append([]string(nil), argv...)}
}

// Initialize starts a session rooted in workDir.
func (e *Engine) Initialize(workDir string, out engine.Output) (engine.Session, error) {
	info, err := os.Stat(workDir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("root is not a directory")
	}
	return &Session{
		root: workDir,
		out:  out,
		argv: e.argv,
	}, nil
}
