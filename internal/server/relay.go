package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/emyai/server/internal/chat/compose"
	"github.com/emyai/server/internal/chat/memory"
	"github.com/emyai/server/internal/chat/model"
	errx "github.com/emyai/server/internal/core/error"
	logx "github.com/emyai/server/pkg/logger"
)

// chatRequest is the relay endpoint's body. The server-side store is
// authoritative for history; ConversationHistory is advisory and only
// seeds a session the server has nothing for.
type chatRequest struct {
	UserMessage         string          `json:"userMessage"`
	HasImage            bool            `json:"hasImage"`
	ImageData           string          `json:"imageData"`
	SelectedModel       string          `json:"selectedModel"`
	ConversationHistory []model.Message `json:"conversationHistory"`
	SessionID           string          `json:"sessionId"`
}

type chatResponse struct {
	ChatbotResponse string `json:"chatbotResponse"`
	SessionID       string `json:"sessionId,omitempty"`
}

// handleChat runs the full relay sequence: resolve, load history, compose,
// complete, append and persist. Every handled failure still answers with
// HTTP 200 and a user-safe chat string.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Warn().Err(err).Msg("malformed chat request body")
		writeJSON(w, http.StatusBadRequest, chatResponse{ChatbotResponse: errx.FallbackMessage})
		return
	}

	ctx := r.Context()
	sessionID := strings.TrimSpace(req.SessionID)

	var conv *memory.Conversation
	if sessionID != "" {
		if !s.acquire(sessionID) {
			writeJSON(w, http.StatusOK, chatResponse{ChatbotResponse: busyMessage, SessionID: sessionID})
			return
		}
		defer s.release(sessionID)
		conv = s.memory.Load(ctx, sessionID)
	} else {
		conv = s.memory.NewConversation()
		sessionID = conv.SessionID()
	}

	if conv.Len() == 0 && len(req.ConversationHistory) > 0 {
		conv.Seed(req.ConversationHistory)
	}

	var image *model.Part
	if req.HasImage && req.ImageData != "" {
		part, err := model.ParseImageData(req.ImageData)
		if err != nil {
			logx.Warn().Err(err).Str("session_id", sessionID).Msg("rejecting malformed image payload")
			bad := errx.New(err, errx.KindBadRequest)
			writeJSON(w, http.StatusOK, chatResponse{ChatbotResponse: bad.Message, SessionID: sessionID})
			return
		}
		image = &part
	}

	profile := s.resolver.Resolve(req.SelectedModel)

	outReq, err := compose.Compose(ctx, req.UserMessage, image, profile, conv)
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to compose request")
		writeJSON(w, http.StatusOK, chatResponse{ChatbotResponse: errx.UserMessage(err), SessionID: sessionID})
		return
	}

	cctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	text, err := s.completion.Complete(cctx, outReq)
	if err != nil {
		// Already classified and logged by the completion client; the
		// user-safe message becomes the chat response.
		text = errx.UserMessage(err)
	}

	conv.Append(model.RoleUser, compose.BuildUserContent(req.UserMessage, image))
	conv.Append(model.RoleAssistant, model.TextContent(text))
	if err := s.memory.Persist(ctx, conv); err != nil {
		// Persistence failures are recovered locally; the conversation
		// continues in memory only for the rest of the session.
		logx.Warn().Str("session_id", sessionID).Msg("continuing without persisted history")
	}

	writeJSON(w, http.StatusOK, chatResponse{ChatbotResponse: text, SessionID: sessionID})
}

type clearRequest struct {
	SessionID string `json:"sessionId"`
}

// handleClear empties a session's history and hands back the replacement
// session id.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req clearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.SessionID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sessionId is required"})
		return
	}

	conv, err := s.memory.Clear(r.Context(), req.SessionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to clear conversation"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"sessionId": conv.SessionID()})
}

// handleStats reports the memory counters for a session.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("sessionId"))
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sessionId is required"})
		return
	}

	conv := s.memory.Load(r.Context(), sessionID)
	writeJSON(w, http.StatusOK, conv.Stats())
}
