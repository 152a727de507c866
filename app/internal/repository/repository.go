package repository

import (
	"github.com/marketconnect/llm-session-bridge/app/domain/entities"
)

// Repository is the usage ledger: one row per bound session with the usage
// accumulated by its commands. Backends are in-memory and SQLite.
type Repository interface {
	// Init opens connections and creates tables where the backend needs them.
	Init() error
	Close() error

	GetSession(sessionID string) (*entities.SessionData, error)
	CreateSession(sessionID, workDir string) (*entities.SessionData, error)
	RecordUsage(sessionID string, usage entities.UsageRecord) (*entities.SessionData, error)
	ListSessions() (map[string]*entities.SessionData, error)
}
