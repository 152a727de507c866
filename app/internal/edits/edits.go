// Package edits turns the edits a session reports into file change records.
package edits

import (
	"github.com/marketconnect/llm-session-bridge/app/domain/entities"
	"github.com/marketconnect/llm-session-bridge/app/internal/engine"
)

// Collect returns one FileChange per file the session edited during its
// last command. The original content is dropped.
func Collect(s engine.Session) []entities.FileChange {
	reported := s.PendingEdits()
	changes := make([]entities.FileChange, 0, len(reported))
	for _, e := range reported {
		changes = append(changes, entities.FileChange{Path: e.Path, NewContent: e.Updated})
	}
	return changes
}
