package dispatcher

import (
	"fmt"
	"strings"

	"github.com/marketconnect/llm-session-bridge/app/domain/entities"
)

// Format renders a command as the text handed to the engine session.
func Format(cmd entities.Command) string {
	switch c := cmd.(type) {
	case entities.Code:
		return c.Message
	case entities.Ask:
		return withArgs("/ask", c.Message)
	case entities.AddFiles:
		return withArgs("/add", c.Files...)
	case entities.DropFiles:
		return withArgs("/drop", c.Files...)
	case entities.ShowDiff:
		return "/diff"
	}
	panic(fmt.Sprintf("dispatcher: unhandled command %T", cmd))
}

func withArgs(keyword string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, keyword)
	for _, a := range args {
		if a != "" {
			parts = append(parts, a)
		}
	}
	return strings.Join(parts, " ")
}
