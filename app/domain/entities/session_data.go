package entities

// SessionData holds the usage ledger row for one bound session
type SessionData struct {
	SessionID      string  `json:"session_id"`
	WorkDir        string  `json:"work_dir"`
	TokensSent     int     `json:"tokens_sent"`
	TokensReceived int     `json:"tokens_received"`
	TotalCost      float64 `json:"total_cost"`
	RequestCount   int     `json:"request_count"`
}
