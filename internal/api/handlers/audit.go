package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/audit"
	"github.com/jason-slatt/cameroon-voice-ai/pkg/logger"
)

// AuditHandler exposes the per-user audit trail
type AuditHandler struct {
	audit  audit.Logger
	logger *logger.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(a audit.Logger, log *logger.Logger) *AuditHandler {
	return &AuditHandler{
		audit:  a,
		logger: log.WithComponent("audit"),
	}
}

// UserTrail handles GET /api/v1/audit/{user_id}
func (h *AuditHandler) UserTrail(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		h.respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	entries, err := h.audit.GetUserTrail(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to load audit trail")
		h.respondError(w, http.StatusInternalServerError, "failed to load audit trail")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"entries": entries,
		"count":   len(entries),
	})
}

// respondJSON sends a JSON response
func (h *AuditHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func (h *AuditHandler) respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
