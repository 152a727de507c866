package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/marketconnect/llm-session-bridge/app/domain/entities"
	"github.com/marketconnect/llm-session-bridge/app/internal/logger"
	"github.com/marketconnect/llm-session-bridge/app/internal/session"
)

type Dispatcher interface {
	Dispatch(cmd entities.Command) entities.CommandResponse
	Bind(workDir string) (*session.Binding, error)
}

type startupRequest struct {
	RootDir string `json:"root_dir"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type filesRequest struct {
	Files []string `json:"files"`
}

type statusResponse struct {
	Status  entities.Status `json:"status"`
	Message string          `json:"message"`
}

// CommandHandler exposes session binding and commands over HTTP
type CommandHandler struct {
	dispatcher Dispatcher
}

// NewCommandHandler creates a new CommandHandler with injected dependencies
func NewCommandHandler(dispatcher Dispatcher) *CommandHandler {
	return &CommandHandler{dispatcher: dispatcher}
}

// HandleStartup binds the session to the requested root directory
func (h *CommandHandler) HandleStartup(w http.ResponseWriter, r *http.Request) {
	var req startupRequest
	if !decode(w, r, &req) {
		return
	}

	b, err := h.dispatcher.Bind(req.RootDir)
	if err != nil {
		logger.Error("bind failed", "root_dir", req.RootDir, "err", err)
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: entities.StatusError, Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Status:  entities.StatusSuccess,
		Message: fmt.Sprintf("Session %s started in %s", b.ID, b.WorkDir),
	})
}

func (h *CommandHandler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if decode(w, r, &req) {
		h.dispatch(w, entities.Ask{Message: req.Message})
	}
}

func (h *CommandHandler) HandleCode(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if decode(w, r, &req) {
		h.dispatch(w, entities.Code{Message: req.Message})
	}
}

func (h *CommandHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req filesRequest
	if decode(w, r, &req) {
		h.dispatch(w, entities.AddFiles{Files: req.Files})
	}
}

func (h *CommandHandler) HandleDrop(w http.ResponseWriter, r *http.Request) {
	var req filesRequest
	if decode(w, r, &req) {
		h.dispatch(w, entities.DropFiles{Files: req.Files})
	}
}

func (h *CommandHandler) HandleDiff(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, entities.ShowDiff{})
}

func (h *CommandHandler) dispatch(w http.ResponseWriter, cmd entities.Command) {
	resp := h.dispatcher.Dispatch(cmd)
	logger.Debug("command dispatched", "kind", cmd.Kind(), "status", resp.Status)
	writeJSON(w, http.StatusOK, resp)
}

// decode reads a JSON body into v. An empty body leaves v zeroed.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "err", err)
	}
}
