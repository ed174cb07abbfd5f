package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/arin/gptchat/internal/chat"
)

type bounds[T int | float64] struct {
	Min     T `json:"min"`
	Max     T `json:"max"`
	Step    T `json:"step"`
	Default T `json:"default"`
}

type modelsResponse struct {
	Models       []string        `json:"models"`
	DefaultModel string          `json:"default_model"`
	MaxTokens    bounds[int]     `json:"max_tokens"`
	Temperature  bounds[float64] `json:"temperature"`
}

type sessionResponse struct {
	ID        string            `json:"id"`
	Created   time.Time         `json:"created"`
	History   chat.Conversation `json:"history"`
	Exchanges int               `json:"exchanges"`
	Status    string            `json:"status"`
	Prompt    string            `json:"prompt"`
	Busy      bool              `json:"busy"`
}

// generateRequest leaves every field optional. Missing settings fall back
// to the server defaults and a missing prompt uses the session's draft.
type generateRequest struct {
	Prompt      *string  `json:"prompt"`
	Model       *string  `json:"model"`
	MaxTokens   *int     `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) listModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, modelsResponse{
		Models:       chat.Models,
		DefaultModel: s.defaults.Model,
		MaxTokens: bounds[int]{
			Min: chat.MinMaxTokens, Max: chat.MaxMaxTokens,
			Step: chat.MaxTokensStep, Default: s.defaults.MaxTokens,
		},
		Temperature: bounds[float64]{
			Min: chat.MinTemperature, Max: chat.MaxTemperature,
			Step: chat.TemperatureStep, Default: s.defaults.Temperature,
		},
	})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess := s.store.Create()
	s.log.Info("session created", zap.String("session", sess.ID))
	writeJSON(w, http.StatusCreated, map[string]string{"id": sess.ID})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*chat.Session, bool) {
	sess, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return nil, false
	}
	return sess, true
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	history := sess.History()
	writeJSON(w, http.StatusOK, sessionResponse{
		ID:        sess.ID,
		Created:   sess.Created,
		History:   history,
		Exchanges: history.Exchanges(),
		Status:    sess.Status(),
		Prompt:    sess.Prompt(),
		Busy:      sess.Busy(),
	})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.store.Delete(id) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}
	s.log.Info("session deleted", zap.String("session", id))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	settings := s.defaults
	if req.Model != nil {
		settings.Model = *req.Model
	}
	if req.MaxTokens != nil {
		settings.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		settings.Temperature = *req.Temperature
	}
	prompt := sess.Prompt()
	if req.Prompt != nil {
		prompt = *req.Prompt
	}

	log := s.log.With(zap.String("session", sess.ID), zap.String("model", settings.Model))
	ew := newEventWriter(w)
	for u := range sess.Generate(r.Context(), prompt, settings) {
		if err := ew.send("update", updateEvent{
			History: u.History,
			Status:  u.Status,
			Done:    u.Done,
			Code:    errorCode(u.Err),
		}); err != nil {
			log.Debug("client went away", zap.Error(err))
			return
		}
		if u.Err != nil {
			log.Warn("generation failed", zap.Error(u.Err))
		}
	}
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	history, status := sess.Clear()
	writeJSON(w, http.StatusOK, map[string]any{"history": history, "status": status})
}

func (s *Server) setPrompt(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	sess.SetPrompt(req.Prompt)
	writeJSON(w, http.StatusOK, map[string]string{"prompt": sess.Prompt()})
}

func (s *Server) clearPrompt(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"prompt": sess.ClearPrompt()})
}

func (s *Server) sessionStats(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Stats())
}
