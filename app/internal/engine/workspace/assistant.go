package workspace

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/marketconnect/llm-session-bridge/app/internal/engine"
)

const (
	modeCode = "code"
	modeAsk  = "ask"
)

// ErrNoAssistant is returned for messages when no assistant command is configured.
var ErrNoAssistant = errors.New("no assistant command configured (set ENGINE_COMMAND)")

type fileState struct {
	content string
	exists  bool
}

// runAssistant runs the assistant process with message as its last
// argument and records which chat files it changed.
func (s *Session) runAssistant(mode, message string) error {
	if len(s.argv) == 0 {
		return ErrNoAssistant
	}

	before := s.snapshot()

	args := append(append([]string(nil), s.argv[1:]...), message)
	cmd := exec.Command(s.argv[0], args...)
	cmd.Dir = s.root
	cmd.Env = append(os.Environ(),
		"BRIDGE_MODE="+mode,
		"BRIDGE_CHAT_FILES="+strings.Join(s.chat, " "),
	)
	cmd.Stdout = engine.Writer(s.out, engine.SourceAssistant)
	cmd.Stderr = engine.Writer(s.out, engine.SourceTool)

	runErr := cmd.Run()

	s.pending = s.changedSince(before)
	if len(s.pending) > 0 {
		s.previous = s.pending
	}

	if runErr != nil {
		return fmt.Errorf("assistant command failed: %w", runErr)
	}
	return nil
}

func (s *Session) snapshot() map[string]fileState {
	states := make(map[string]fileState, len(s.chat))
	for _, f := range s.chat {
		states[f] = s.read(f)
	}
	return states
}

func (s *Session) read(rel string) fileState {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil {
		return fileState{}
	}
	return fileState{content: string(data), exists: true}
}

func (s *Session) changedSince(before map[string]fileState) []engine.Edit {
	var changed []engine.Edit
	for _, f := range s.chat {
		old, tracked := before[f]
		if !tracked {
			continue
		}
		now := s.read(f)
		if now == old {
			continue
		}
		changed = append(changed, engine.Edit{Path: f, Original: old.content, Updated: now.content})
	}
	return changed
}
