package repository

import (
	"sync"

	"github.com/marketconnect/llm-session-bridge/app/domain/entities"
)

// MemoryRepository keeps the usage ledger in process memory. Rows are stored
// by value so callers always receive their own copy.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]entities.SessionData
}

// NewMemoryRepository creates an empty in-memory ledger.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]entities.SessionData)}
}

// Init is a no-op.
func (r *MemoryRepository) Init() error { return nil }

// Close is a no-op.
func (r *MemoryRepository) Close() error { return nil }

func (r *MemoryRepository) GetSession(sessionID string) (*entities.SessionData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[sessionID]
	if !ok {
		return nil, entities.ErrSessionNotFound
	}
	return &row, nil
}

// CreateSession registers a freshly bound session. An existing row is
// returned unchanged, including its original work dir.
func (r *MemoryRepository) CreateSession(sessionID, workDir string) (*entities.SessionData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[sessionID]
	if !ok {
		row = entities.SessionData{SessionID: sessionID, WorkDir: workDir}
		r.rows[sessionID] = row
	}
	return &row, nil
}

// RecordUsage folds one command's usage into the session row, creating the
// row when the session was never registered.
func (r *MemoryRepository) RecordUsage(sessionID string, usage entities.UsageRecord) (*entities.SessionData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[sessionID]
	if !ok {
		row.SessionID = sessionID
	}
	row.TokensSent += usage.TokensSent
	row.TokensReceived += usage.TokensReceived
	row.TotalCost += usage.CostCall
	row.RequestCount++
	r.rows[sessionID] = row

	return &row, nil
}

func (r *MemoryRepository) ListSessions() (map[string]*entities.SessionData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*entities.SessionData, len(r.rows))
	for id, row := range r.rows {
		out[id] = &row
	}
	return out, nil
}
