package handlers

import "net/http"

// Register mounts all endpoints on mux
func Register(mux *http.ServeMux, commands *CommandHandler, status *SessionStatusHandler) {
	mux.HandleFunc("GET /health", handleHealth)

	mux.HandleFunc("POST /startup", commands.HandleStartup)
	mux.HandleFunc("POST /aider/ask", commands.HandleAsk)
	mux.HandleFunc("POST /aider/code", commands.HandleCode)
	mux.HandleFunc("POST /aider/add", commands.HandleAdd)
	mux.HandleFunc("POST /aider/drop", commands.HandleDrop)
	mux.HandleFunc("POST /aider/diff", commands.HandleDiff)

	mux.HandleFunc("GET /sessions/status", status.HandleList)
	mux.HandleFunc("GET /sessions/{id}/status", status.HandleSingle)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
