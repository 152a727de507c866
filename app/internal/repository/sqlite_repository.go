package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/marketconnect/llm-session-bridge/app/domain/entities"
	"github.com/marketconnect/llm-session-bridge/app/internal/logger"
)

const selectColumns = `session_id, work_dir, tokens_sent, tokens_received, total_cost, request_count`

// SQLiteRepository implements the Repository interface using an SQLite database.
type SQLiteRepository struct {
	db  *sql.DB
	dsn string
}

// NewSQLiteRepository creates a new SQLiteRepository.
// The DSN is the data source name for the SQLite database.
func NewSQLiteRepository(dsn string) (*SQLiteRepository, error) {
	// The driver "sqlite3" must be registered by the application importing this package,
	// typically by a blank import like `_ "github.com/mattn/go-sqlite3"`.
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return &SQLiteRepository{db: db, dsn: dsn}, nil
}

// Init creates the ledger table if it doesn't exist.
func (r *SQLiteRepository) Init() error {
	query := `
    CREATE TABLE IF NOT EXISTS sessions (
        session_id TEXT PRIMARY KEY,
        work_dir TEXT NOT NULL DEFAULT '',
        tokens_sent INTEGER DEFAULT 0,
        tokens_received INTEGER DEFAULT 0,
        total_cost REAL DEFAULT 0,
        request_count INTEGER DEFAULT 0
    );`

	_, err := r.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	logger.Info("SQLite sessions table initialized", "dsn", r.dsn)
	return nil
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*entities.SessionData, error) {
	var sess entities.SessionData
	err := row.Scan(
		&sess.SessionID,
		&sess.WorkDir,
		&sess.TokensSent,
		&sess.TokensReceived,
		&sess.TotalCost,
		&sess.RequestCount,
	)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// GetSession retrieves the ledger row for a given session ID.
func (r *SQLiteRepository) GetSession(sessionID string) (*entities.SessionData, error) {
	query := `SELECT ` + selectColumns + ` FROM sessions WHERE session_id = ?;`

	sess, err := scanSession(r.db.QueryRow(query, sessionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, nil
}

// CreateSession creates a ledger row for a session bound to workDir.
// If the session already exists, it returns the existing row.
func (r *SQLiteRepository) CreateSession(sessionID, workDir string) (*entities.SessionData, error) {
	ctx := context.Background()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	queryInsert := `
    INSERT INTO sessions (session_id, work_dir, tokens_sent, tokens_received, total_cost, request_count)
    VALUES (?, ?, 0, 0, 0, 0)
    ON CONFLICT(session_id) DO NOTHING;`

	if _, err = tx.ExecContext(ctx, queryInsert, sessionID, workDir); err != nil {
		return nil, fmt.Errorf("failed to insert or ignore session: %w", err)
	}

	querySelect := `SELECT ` + selectColumns + ` FROM sessions WHERE session_id = ?;`
	sess, err := scanSession(tx.QueryRowContext(ctx, querySelect, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to select session after create: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return sess, nil
}

// RecordUsage adds the usage of one command to a session.
// If the session does not exist, it creates it with the given usage.
func (r *SQLiteRepository) RecordUsage(sessionID string, usage entities.UsageRecord) (*entities.SessionData, error) {
	ctx := context.Background()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryUpsert := `
    INSERT INTO sessions (session_id, work_dir, tokens_sent, tokens_received, total_cost, request_count)
    VALUES (?, '', ?, ?, ?, 1)
    ON CONFLICT(session_id) DO UPDATE SET
        tokens_sent = sessions.tokens_sent + excluded.tokens_sent,
        tokens_received = sessions.tokens_received + excluded.tokens_received,
        total_cost = sessions.total_cost + excluded.total_cost,
        request_count = sessions.request_count + 1;`

	_, err = tx.ExecContext(ctx, queryUpsert, sessionID, usage.TokensSent, usage.TokensReceived, usage.CostCall)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert session usage: %w", err)
	}

	querySelect := `SELECT ` + selectColumns + ` FROM sessions WHERE session_id = ?;`
	sess, err := scanSession(tx.QueryRowContext(ctx, querySelect, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to select session after update: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return sess, nil
}

// ListSessions returns all ledger rows.
func (r *SQLiteRepository) ListSessions() (map[string]*entities.SessionData, error) {
	rows, err := r.db.Query(`SELECT ` + selectColumns + ` FROM sessions;`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessionsMap := make(map[string]*entities.SessionData)
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessionsMap[sess.SessionID] = sess
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}
	return sessionsMap, nil
}
