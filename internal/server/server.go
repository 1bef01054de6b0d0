// Package server exposes the HTTP relay: the chatbot endpoint, liveness,
// and the conversation memory controls.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/emyai/server/internal/chat/completion"
	"github.com/emyai/server/internal/chat/memory"
	"github.com/emyai/server/internal/chat/model"
	"github.com/emyai/server/internal/chat/resolver"
	errx "github.com/emyai/server/internal/core/error"
	logx "github.com/emyai/server/pkg/logger"
)

// ServiceName identifies this service in the health response.
const ServiceName = "emyAI-chatbot"

// busyMessage is returned when a session already has a request in flight.
const busyMessage = "I'm still working on your previous message. Please wait for that response before sending another."

// Server wires the resolver, memory manager and completion client behind
// the HTTP surface.
type Server struct {
	resolver   *resolver.Resolver
	memory     *memory.Manager
	completion *completion.Client
	cfg        model.ServerConfig

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New builds the server. Requests are otherwise stateless; the only
// cross-request state is the per-session in-flight guard.
func New(res *resolver.Resolver, mem *memory.Manager, comp *completion.Client, cfg model.ServerConfig) *Server {
	return &Server{
		resolver:   res,
		memory:     mem,
		completion: comp,
		cfg:        cfg,
		inflight:   make(map[string]struct{}),
	}
}

// Handler returns the routed HTTP handler with the recover middleware
// applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /getChatbotResponse", s.handleChat)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /clearConversation", s.handleClear)
	mux.HandleFunc("GET /conversationStats", s.handleStats)
	return s.recoverer(mux)
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logx.Info().Int("port", s.cfg.Port).Msg("server listening")
	return srv.ListenAndServe()
}

// recoverer converts an escaped panic into a 500 with the same safe body
// shape the chat endpoint uses. Raw detail stays in the log.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logx.Error().Any("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				writeJSON(w, http.StatusInternalServerError, chatResponse{
					ChatbotResponse: errx.FallbackMessage,
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// acquire marks a session as having a request in flight. It reports false
// when one already is.
func (s *Server) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[sessionID]; busy {
		return false
	}
	s.inflight[sessionID] = struct{}{}
	return true
}

func (s *Server) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, sessionID)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   ServiceName,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logx.Error().Err(err).Msg("failed to encode response body")
	}
}
