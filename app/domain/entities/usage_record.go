package entities

// UsageRecord is the token and cost telemetry reported for one command.
type UsageRecord struct {
	TokensSent     int     `json:"tokens_sent"`
	TokensReceived int     `json:"tokens_received"`
	CostCall       float64 `json:"cost_call"`
	CostSession    float64 `json:"cost_session"`
}

// Add returns the field-wise sum of u and other.
func (u UsageRecord) Add(other UsageRecord) UsageRecord {
	return UsageRecord{
		TokensSent:     u.TokensSent + other.TokensSent,
		TokensReceived: u.TokensReceived + other.TokensReceived,
		CostCall:       u.CostCall + other.CostCall,
		CostSession:    u.CostSession + other.CostSession,
	}
}

