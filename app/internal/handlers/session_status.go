package handlers

import (
	"errors"
	"net/http"

	"github.com/marketconnect/llm-session-bridge/app/domain/entities"
	"github.com/marketconnect/llm-session-bridge/app/internal/logger"
)

type SessionLedger interface {
	GetSession(sessionID string) (*entities.SessionData, error)
	ListSessions() (map[string]*entities.SessionData, error)
}

// SessionStatusHandler serves the usage ledger
type SessionStatusHandler struct {
	ledger SessionLedger
}

// NewSessionStatusHandler creates a new SessionStatusHandler with injected dependencies
func NewSessionStatusHandler(ledger SessionLedger) *SessionStatusHandler {
	return &SessionStatusHandler{
		ledger: ledger,
	}
}

// HandleSingle handles GET /sessions/{id}/status
func (ssh *SessionStatusHandler) HandleSingle(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	sessionData, err := ssh.ledger.GetSession(sessionID)
	if err != nil {
		if errors.Is(err, entities.ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
		} else {
			logger.Error("failed to get session", "session_id", sessionID, "err", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, sessionData)
}

// HandleList handles GET /sessions/status
func (ssh *SessionStatusHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	allSessions, err := ssh.ledger.ListSessions()
	if err != nil {
		logger.Error("failed to list sessions", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, allSessions)
}
