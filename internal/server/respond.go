package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/arin/gptchat/internal/ai"
	"github.com/arin/gptchat/internal/chat"
	"github.com/arin/gptchat/internal/credential"
)

type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) errorResponse {
	return errorResponse{
		Error: apiError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

// updateEvent is the data payload of one SSE "update" event.
type updateEvent struct {
	History chat.Conversation `json:"history"`
	Status  string            `json:"status"`
	Done    bool              `json:"done"`
	Code    string            `json:"code,omitempty"`
}

// eventWriter writes Server-Sent Events and flushes after each one.
type eventWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func newEventWriter(w http.ResponseWriter) *eventWriter {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	return &eventWriter{w: w, rc: http.NewResponseController(w)}
}

func (ew *eventWriter) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(ew.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	if err := ew.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}

// errorCode maps a failure emission to a stable machine-readable code.
func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, chat.ErrEmptyPrompt):
		return "EMPTY_PROMPT"
	case errors.Is(err, chat.ErrInvalidSettings):
		return "INVALID_SETTINGS"
	case errors.Is(err, chat.ErrBusy):
		return "BUSY"
	case errors.Is(err, credential.ErrMissing):
		return "MISSING_CREDENTIAL"
	case errors.Is(err, ai.ErrClientInit):
		return "CLIENT_INIT"
	default:
		return "STREAM_ERROR"
	}
}
