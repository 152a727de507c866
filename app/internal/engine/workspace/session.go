package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/marketconnect/llm-session-bridge/app/internal/engine"
)

// Session is a workspace session rooted in one directory.
type Session struct {
	root string
	out  engine.Output
	argv []string

	// chat holds slash-separated paths relative to root, in insertion order.
	chat []string
	// pending are the edits of the last Handle call, previous those of the
	// last call that produced any.
	pending  []engine.Edit
	previous []engine.Edit
}

// Handle runs one command.
func (s *Session) Handle(command string) error {
	s.pending = nil

	trimmed := strings.TrimSpace(command)
	if !strings.HasPrefix(trimmed, "/") {
		if trimmed == "" {
			return engine.Argumentf("empty message")
		}
		return s.runAssistant(modeCode, command)
	}

	name, rest, _ := strings.Cut(trimmed, " ")
	rest = strings.TrimSpace(rest)
	switch name {
	case "/add":
		return s.add(strings.Fields(rest))
	case "/drop":
		return s.drop(strings.Fields(rest))
	case "/diff":
		return s.diff()
	case "/ask":
		if rest == "" {
			return engine.Argumentf("/ask requires a question")
		}
		return s.runAssistant(modeAsk, rest)
	}
	return engine.Argumentf("unknown command %s", name)
}

// PendingEdits returns the chat files changed by the last command.
func (s *Session) PendingEdits() []engine.Edit {
	return s.pending
}

// ChatFiles returns the files currently in the chat.
func (s *Session) ChatFiles() []string {
	return slices.Clone(s.chat)
}

func (s *Session) say(format string, args ...any) {
	s.out.Append(engine.SourceTool, fmt.Sprintf(format, args...)+"\n")
}

// relative resolves p against the root and rejects paths outside it.
func (s *Session) relative(p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.root, p)
	}
	rel, err := filepath.Rel(s.root, filepath.Clean(p))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", engine.Argumentf("%s is not inside %s", p, s.root)
	}
	return filepath.ToSlash(rel), nil
}

func (s *Session) add(patterns []string) error {
	if len(patterns) == 0 {
		return engine.Argumentf("/add requires at least one file")
	}

	var matched []string
	for _, pattern := range patterns {
		rel, err := s.relative(pattern)
		if err != nil {
			return err
		}
		files, err := s.expand(rel)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			s.say("No files matched '%s'", pattern)
			continue
		}
		matched = append(matched, files...)
	}

	for _, f := range matched {
		if slices.Contains(s.chat, f) {
			s.say("%s is already in the chat", f)
			continue
		}
		s.chat = append(s.chat, f)
		s.say("Added %s to the chat", f)
	}
	return nil
}

// expand turns a root-relative pattern into the files it names. Literal
// paths that don't exist yet are kept so the assistant can create them.
func (s *Session) expand(rel string) ([]string, error) {
	fsys := os.DirFS(s.root)

	if !doublestar.ValidatePattern(rel) {
		return nil, engine.Argumentf("invalid pattern %q", rel)
	}
	if hasMeta(rel) {
		return s.walk(fsys, rel)
	}

	info, err := fs.Stat(fsys, rel)
	switch {
	case err != nil:
		return []string{rel}, nil
	case info.IsDir():
		return s.walk(fsys, rel+"/**")
	default:
		return []string{rel}, nil
	}
}

func (s *Session) walk(fsys fs.FS, pattern string) ([]string, error) {
	var files []string
	err := doublestar.GlobWalk(fsys, pattern, func(path string, d fs.DirEntry) error {
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to expand %q: %w", pattern, err)
	}
	return files, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, `*?[{\`)
}

func (s *Session) drop(patterns []string) error {
	if len(patterns) == 0 {
		s.chat = nil
		s.say("Dropping all files from the chat session.")
		return nil
	}

	for _, pattern := range patterns {
		rel, err := s.relative(pattern)
		if err != nil {
			s.say("%s is not in the chat", pattern)
			continue
		}
		kept := s.chat[:0:0]
		removed := 0
		for _, f := range s.chat {
			if ok, _ := doublestar.Match(rel, f); ok {
				s.say("Removed %s from the chat", f)
				removed++
				continue
			}
			kept = append(kept, f)
		}
		s.chat = kept
		if removed == 0 {
			s.say("%s is not in the chat", pattern)
		}
	}
	return nil
}

func (s *Session) diff() error {
	if len(s.previous) == 0 {
		s.say("No changes to display.")
		return nil
	}
	for _, e := range s.previous {
		s.out.Append(engine.SourceAssistant, renderDiff(e))
	}
	return nil
}
