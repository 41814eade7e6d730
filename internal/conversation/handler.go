package conversation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/omnidesk/omnidesk-core/internal/operators"
	"github.com/omnidesk/omnidesk-core/internal/tenancy"
	"github.com/omnidesk/omnidesk-core/pkg/logging"
)

// Handler exposes the conversation surface to the operator UI.
type Handler struct {
	controller *ModeController
	logger     *logging.Logger
}

// NewHandler creates a conversation HTTP handler.
func NewHandler(controller *ModeController, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{controller: controller, logger: logger}
}

// Takeover handles POST /conversations/{id}/takeover. Idempotent: a repeat
// call returns the current owner with 200 rather than an error.
func (h *Handler) Takeover(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	op, ok := operators.FromContext(r.Context())
	if !ok {
		http.Error(w, "operator identity required", http.StatusUnauthorized)
		return
	}

	conv, err := h.controller.Takeover(r.Context(), id, op.ID)
	if err != nil {
		h.writeError(w, "takeover failed", err)
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

// OperatorMessageRequest is the body for POST /conversations/{id}/operator-message.
type OperatorMessageRequest struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// OperatorMessage handles POST /conversations/{id}/operator-message.
func (h *Handler) OperatorMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	op, ok := operators.FromContext(r.Context())
	if !ok {
		http.Error(w, "operator identity required", http.StatusUnauthorized)
		return
	}

	var req OperatorMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.controller.PostOperatorMessage(r.Context(), id, op.ID, op.Name, req.Content, req.Metadata)
	if err != nil {
		h.writeError(w, "operator message failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// ListActiveResponse is the body for GET /conversations/active.
type ListActiveResponse struct {
	Conversations []Conversation `json:"conversations"`
	Count         int            `json:"count"`
}

// ListActive handles GET /conversations/active for the calling company.
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenancy.CompanyIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing company context", http.StatusBadRequest)
		return
	}

	convs, err := h.controller.ListActive(r.Context(), companyID)
	if err != nil {
		h.logger.Error("failed to list conversations", "error", err, "company_id", companyID)
		http.Error(w, "failed to list conversations", http.StatusInternalServerError)
		return
	}
	if convs == nil {
		convs = []Conversation{}
	}

	writeJSON(w, http.StatusOK, ListActiveResponse{Conversations: convs, Count: len(convs)})
}

// GetConversationResponse is the body for GET /conversations/{id}.
type GetConversationResponse struct {
	Conversation *Conversation `json:"conversation"`
	Messages     []Message     `json:"messages"`
}

// GetConversation handles GET /conversations/{id}, returning the thread and
// its message history.
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	conv, err := h.controller.GetConversation(r.Context(), id)
	if err != nil {
		h.writeError(w, "get conversation failed", err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	msgs, err := h.controller.ListMessages(r.Context(), id, limit)
	if err != nil {
		h.logger.Error("failed to load messages", "error", err, "conversation_id", id)
		http.Error(w, "failed to load messages", http.StatusInternalServerError)
		return
	}
	if msgs == nil {
		msgs = []Message{}
	}

	writeJSON(w, http.StatusOK, GetConversationResponse{Conversation: conv, Messages: msgs})
}

func (h *Handler) writeError(w http.ResponseWriter, logMsg string, err error) {
	switch {
	case errors.Is(err, ErrConversationNotFound):
		http.Error(w, "conversation not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidState):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrEmptyContent), errors.Is(err, ErrMissingOperator):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error(logMsg, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
