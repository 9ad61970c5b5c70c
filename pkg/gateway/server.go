// Package gateway exposes the persona engine over HTTP. It is a thin JSON
// binding; all behavior lives in the persona, insights, history, and
// engine packages.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shadowlink/afterlife/pkg/engine"
	"github.com/shadowlink/afterlife/pkg/history"
	"github.com/shadowlink/afterlife/pkg/insights"
	"github.com/shadowlink/afterlife/pkg/logger"
	"github.com/shadowlink/afterlife/pkg/persona"
)

// Server handles the HTTP surface. History may be nil; /ingest then
// returns 503.
type Server struct {
	store     *persona.Store
	generator *engine.Generator
	history   *history.Store
	addr      string
	httpSrv   *http.Server
}

// NewServer wires the handlers. addr is host:port.
func NewServer(addr string, store *persona.Store, gen *engine.Generator, hist *history.Store) *Server {
	s := &Server{store: store, generator: gen, history: hist, addr: addr}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /personas", s.handleListPersonas)
	mux.HandleFunc("GET /personas/{id}", s.handleGetPersona)
	mux.HandleFunc("POST /personas/{id}/reload", s.handleReloadPersona)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /ingest", s.handleIngest)

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the route mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	logger.InfoCF("gateway", "HTTP gateway listening", map[string]interface{}{"addr": s.addr})
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"personas": s.store.ListAvailable(),
	})
}

func (s *Server) handleGetPersona(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.Load(r.PathValue("id"))
	if err != nil {
		writePersonaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleReloadPersona(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.Reload(r.PathValue("id"))
	if err != nil {
		writePersonaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded": cfg.ID,
	})
}

type chatRequest struct {
	PersonaID string `json:"persona_id"`
	Message   string `json:"message"`
	Context   string `json:"context,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.PersonaID == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "persona_id and message are required")
		return
	}

	resp := s.generator.Respond(r.Context(), engine.Request{
		PersonaID: req.PersonaID,
		UserInput: req.Message,
		Context:   req.Context,
		SessionID: req.SessionID,
	})
	writeJSON(w, http.StatusOK, resp)
}

type ingestRequest struct {
	Text      string `json:"text"`
	Bio       string `json:"bio,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type ingestResponse struct {
	SessionID string               `json:"session_id"`
	Profile   insights.TextProfile `json:"profile"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "ingestion storage not configured")
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Text == "" && req.Bio == "" {
		writeError(w, http.StatusBadRequest, "text or bio is required")
		return
	}

	profile := insights.BuildProfile(req.Text, req.Bio)
	sessionID, err := s.history.RecordIngestion(r.Context(), req.SessionID, &profile)
	if err != nil {
		logger.ErrorCF("gateway", "Failed to record ingestion", map[string]interface{}{
			"error": err.Error(),
		})
		writeError(w, http.StatusInternalServerError, "failed to store profile")
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{SessionID: sessionID, Profile: profile})
}

func writePersonaError(w http.ResponseWriter, err error) {
	if errors.Is(err, persona.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WarnCF("gateway", "Failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
