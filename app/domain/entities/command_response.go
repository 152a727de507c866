package entities

// Status is the outcome reported to the caller of a command.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// FileChange is a file the session modified while handling the last command.
type FileChange struct {
	Path       string `json:"filename"`
	NewContent string `json:"content"`
}

// CommandResponse is the structured result of dispatching one command.
type CommandResponse struct {
	Message     string       `json:"message"`
	Status      Status       `json:"status"`
	FileChanges []FileChange `json:"fileChanges,omitempty"`
	Usage       *UsageRecord `json:"usage,omitempty"`
}

// ErrorResponse builds an error response without file changes or usage.
func ErrorResponse(message string) CommandResponse {
	return CommandResponse{Message: message, Status: StatusError}
}
