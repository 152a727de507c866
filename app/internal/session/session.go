package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/marketconnect/llm-session-bridge/app/domain/entities"
	"github.com/marketconnect/llm-session-bridge/app/internal/engine"
	"github.com/marketconnect/llm-session-bridge/app/internal/logger"
)

type Repository interface {
	Close() error
	GetSession(sessionID string) (*entities.SessionData, error)
	CreateSession(sessionID, workDir string) (*entities.SessionData, error)
	RecordUsage(sessionID string, usage entities.UsageRecord) (*entities.SessionData, error)
	ListSessions() (map[string]*entities.SessionData, error)
}

// Binding is the active engine session together with the directory it is rooted in.
type Binding struct {
	ID      string
	WorkDir string
	Session engine.Session
}

// SessionManager owns the single active engine session. It is either
// unbound (no session) or bound to exactly one working directory.
type SessionManager struct {
	engine         engine.Engine
	output         engine.Output
	repository     Repository
	defaultWorkDir string

	mu     sync.Mutex
	active *Binding
}

// Option configures a SessionManager.
type Option func(*SessionManager)

// WithDefaultWorkDir makes Current bind lazily to dir while unbound.
func WithDefaultWorkDir(dir string) Option {
	return func(sm *SessionManager) {
		sm.defaultWorkDir = dir
	}
}

// NewSessionManager creates an unbound SessionManager. Sessions it creates
// write their output to out. repo may be nil.
func NewSessionManager(eng engine.Engine, out engine.Output, repo Repository, opts ...Option) *SessionManager {
	sm := &SessionManager{
		engine:     eng,
		output:     out,
		repository: repo,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// Bind enters workDir and starts a fresh engine session there, replacing the
// current one. The swap is atomic: if anything fails the previous binding and
// process working directory are kept.
func (sm *SessionManager) Bind(workDir string) (*Binding, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.bindLocked(workDir)
}

func (sm *SessionManager) bindLocked(workDir string) (*Binding, error) {
	fail := func(err error) (*Binding, error) {
		return nil, &entities.BindError{WorkDir: workDir, Err: err}
	}

	if workDir == "" {
		return fail(errors.New("working directory is required"))
	}
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return fail(err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fail(err)
	}
	if !info.IsDir() {
		return fail(fmt.Errorf("%s is not a directory", abs))
	}

	prev, _ := os.Getwd()
	if err := os.Chdir(abs); err != nil {
		return fail(err)
	}

	sess, err := sm.initialize(abs)
	if err != nil {
		if prev != "" {
			if cdErr := os.Chdir(prev); cdErr != nil {
				logger.Error("failed to restore working directory", "dir", prev, "err", cdErr)
			}
		}
		return fail(fmt.Errorf("engine initialization failed: %w", err))
	}

	b := &Binding{ID: ulid.Make().String(), WorkDir: abs, Session: sess}
	if sm.repository != nil {
		if _, err := sm.repository.CreateSession(b.ID, abs); err != nil {
			logger.Warn("failed to create ledger row", "session_id", b.ID, "err", err)
		}
	}

	old := sm.active
	sm.active = b
	if old != nil {
		closeBinding(old)
	}

	logger.Info("session bound", "session_id", b.ID, "work_dir", abs)
	return b, nil
}

// initialize starts an engine session in dir. A panic in the engine is
// returned as an error so the caller can restore the working directory.
func (sm *SessionManager) initialize(dir string) (sess engine.Session, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("engine panicked during initialization", "work_dir", dir, "panic", r)
			sess, err = nil, fmt.Errorf("engine panicked: %v", r)
		}
	}()
	return sm.engine.Initialize(dir, sm.output)
}

// Current returns the active binding, or entities.ErrNotBound.
func (sm *SessionManager) Current() (*Binding, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.active != nil {
		return sm.active, nil
	}
	if sm.defaultWorkDir == "" {
		return nil, entities.ErrNotBound
	}

	b, err := sm.bindLocked(sm.defaultWorkDir)
	if err != nil {
		logger.Warn("lazy bind failed", "err", err)
		return nil, entities.ErrNotBound
	}
	return b, nil
}

// Close discards the active session and closes the underlying repository.
func (sm *SessionManager) Close() error {
	sm.mu.Lock()
	if sm.active != nil {
		closeBinding(sm.active)
		sm.active = nil
	}
	sm.mu.Unlock()

	if sm.repository != nil {
		return sm.repository.Close()
	}
	return nil
}

// RecordUsage adds one command's usage to the ledger row of a session.
func (sm *SessionManager) RecordUsage(sessionID string, usage entities.UsageRecord) (*entities.SessionData, error) {
	if sm.repository == nil {
		return nil, nil
	}
	return sm.repository.RecordUsage(sessionID, usage)
}

// GetSession retrieves the ledger row for a given session ID
func (sm *SessionManager) GetSession(sessionID string) (*entities.SessionData, error) {
	if sm.repository == nil {
		return nil, entities.ErrSessionNotFound
	}
	return sm.repository.GetSession(sessionID)
}

// ListSessions returns all ledger rows
func (sm *SessionManager) ListSessions() (map[string]*entities.SessionData, error) {
	if sm.repository == nil {
		return map[string]*entities.SessionData{}, nil
	}
	return sm.repository.ListSessions()
}

func closeBinding(b *Binding) {
	c, ok := b.Session.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		logger.Warn("failed to close session", "session_id", b.ID, "err", err)
	}
}
