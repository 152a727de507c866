package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketconnect/llm-session-bridge/app/domain/entities"
	"github.com/marketconnect/llm-session-bridge/app/internal/session"
)

type mockDispatcher struct {
	DispatchFunc func(cmd entities.Command) entities.CommandResponse
	BindFunc     func(workDir string) (*session.Binding, error)
	dispatched   []entities.Command
}

func (m *mockDispatcher) Dispatch(cmd entities.Command) entities.CommandResponse {
	m.dispatched = append(m.dispatched, cmd)
	if m.DispatchFunc != nil {
		return m.DispatchFunc(cmd)
	}
	return entities.CommandResponse{Status: entities.StatusSuccess}
}

func (m *mockDispatcher) Bind(workDir string) (*session.Binding, error) {
	if m.BindFunc != nil {
		return m.BindFunc(workDir)
	}
	return nil, errors.New("BindFunc not implemented")
}

func newTestMux(d *mockDispatcher) *http.ServeMux {
	mux := http.NewServeMux()
	Register(mux, NewCommandHandler(d), NewSessionStatusHandler(&mockSessionLedger{}))
	return mux
}

func post(t *testing.T, mux http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestCommandHandler_RoutesCommands(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		want entities.Command
	}{
		{"ask", "/aider/ask", `{"message":"explain foo.py"}`, entities.Ask{Message: "explain foo.py"}},
		{"code", "/aider/code", `{"message":"add tests"}`, entities.Code{Message: "add tests"}},
		{"add", "/aider/add", `{"files":["a.py","b.py"]}`, entities.AddFiles{Files: []string{"a.py", "b.py"}}},
		{"drop", "/aider/drop", `{"files":["a.py"]}`, entities.DropFiles{Files: []string{"a.py"}}},
		{"diff", "/aider/diff", ``, entities.ShowDiff{}},
		{"empty body", "/aider/ask", ``, entities.Ask{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &mockDispatcher{}
			rr := post(t, newTestMux(d), tt.path, tt.body)

			assert.Equal(t, http.StatusOK, rr.Code)
			require.Len(t, d.dispatched, 1)
			assert.Equal(t, tt.want, d.dispatched[0])
		})
	}
}

func TestCommandHandler_ResponseShape(t *testing.T) {
	d := &mockDispatcher{DispatchFunc: func(entities.Command) entities.CommandResponse {
		return entities.CommandResponse{
			Message:     "",
			Status:      entities.StatusSuccess,
			FileChanges: []entities.FileChange{{Path: "foo.py", NewContent: "# explained"}},
			Usage:       &entities.UsageRecord{TokensSent: 10, TokensReceived: 5, CostCall: 0.01, CostSession: 0.02},
		}
	}}

	rr := post(t, newTestMux(d), "/aider/ask", `{"message":"explain foo.py"}`)

	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"message": "",
		"status": "success",
		"fileChanges": [{"filename": "foo.py", "content": "# explained"}],
		"usage": {"tokens_sent": 10, "tokens_received": 5, "cost_call": 0.01, "cost_session": 0.02}
	}`, rr.Body.String())
}

func TestCommandHandler_ErrorResponseOmitsOptionalFields(t *testing.T) {
	d := &mockDispatcher{DispatchFunc: func(entities.Command) entities.CommandResponse {
		return entities.ErrorResponse("Invalid arguments: /ask requires a question")
	}}

	rr := post(t, newTestMux(d), "/aider/ask", `{"message":""}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Invalid arguments: /ask requires a question","status":"error"}`, rr.Body.String())
}

func TestCommandHandler_BadBody(t *testing.T) {
	d := &mockDispatcher{}
	rr := post(t, newTestMux(d), "/aider/add", `{"files": "a.py"`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, d.dispatched)
}

func TestCommandHandler_MethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/aider/ask", nil)
	rr := httptest.NewRecorder()
	newTestMux(&mockDispatcher{}).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestCommandHandler_Startup(t *testing.T) {
	d := &mockDispatcher{BindFunc: func(dir string) (*session.Binding, error) {
		if dir == "/repo" {
			return &session.Binding{ID: "01J", WorkDir: "/repo"}, nil
		}
		return nil, &entities.BindError{WorkDir: dir, Err: errors.New("no such file or directory")}
	}}
	mux := newTestMux(d)

	rr := post(t, mux, "/startup", `{"root_dir":"/repo"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	var ok statusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ok))
	assert.Equal(t, entities.StatusSuccess, ok.Status)
	assert.Contains(t, ok.Message, "/repo")

	rr = post(t, mux, "/startup", `{"root_dir":"/missing"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	var failed statusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &failed))
	assert.Equal(t, entities.StatusError, failed.Status)
	assert.Contains(t, failed.Message, "no such file or directory")

	rr = post(t, mux, "/startup", `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	newTestMux(&mockDispatcher{}).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
