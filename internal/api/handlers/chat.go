package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/conversation"
	"github.com/jason-slatt/cameroon-voice-ai/pkg/logger"
)

// ChatHandler handles the conversational endpoints
type ChatHandler struct {
	manager *conversation.Manager
	logger  *logger.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(m *conversation.Manager, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		manager: m,
		logger:  log.WithComponent("chat"),
	}
}

// ChatRequest is the body of POST /api/v1/chat. ConversationID is optional;
// a fresh one is minted when absent and returned in the reply.
type ChatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	UserID         string `json:"user_id"`
	PhoneNumber    string `json:"phone_number"`
	Message        string `json:"message"`
}

// OTPRequest is the body of POST /api/v1/chat/otp.
type OTPRequest struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	Code           string `json:"code"`
}

// Message handles POST /api/v1/chat
func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		h.respondError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.PhoneNumber == "" {
		h.respondError(w, http.StatusBadRequest, "phone_number is required")
		return
	}
	if req.ConversationID == "" {
		req.ConversationID = uuid.NewString()
	}

	reply, err := h.manager.ProcessMessage(r.Context(), req.ConversationID, req.UserID, req.PhoneNumber, req.Message)
	if err != nil {
		h.logger.Error().Err(err).Str("conversation_id", req.ConversationID).Msg("failed to process message")
		h.respondError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	h.respondJSON(w, http.StatusOK, reply)
}

// VerifyOTP handles POST /api/v1/chat/otp
func (h *ChatHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req OTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ConversationID == "" || req.UserID == "" || req.Code == "" {
		h.respondError(w, http.StatusBadRequest, "conversation_id, user_id and code are required")
		return
	}

	reply, err := h.manager.VerifyOTP(r.Context(), req.ConversationID, req.UserID, req.Code)
	if err != nil {
		h.logger.Error().Err(err).Str("conversation_id", req.ConversationID).Msg("failed to verify otp")
		h.respondError(w, http.StatusInternalServerError, "failed to verify code")
		return
	}

	h.respondJSON(w, http.StatusOK, reply)
}

// respondJSON sends a JSON response
func (h *ChatHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func (h *ChatHandler) respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
