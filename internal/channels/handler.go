package channels

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/omnidesk/omnidesk-core/internal/conversation"
	"github.com/omnidesk/omnidesk-core/internal/customers"
	"github.com/omnidesk/omnidesk-core/internal/identity"
	"github.com/omnidesk/omnidesk-core/internal/tenancy"
	"github.com/omnidesk/omnidesk-core/pkg/logging"
)

// Handler is the boundary where channel adapters hand the core raw contact
// data. It resolves the customer, ensures a conversation thread, and records
// the message.
type Handler struct {
	resolver   *customers.Resolver
	controller *conversation.ModeController
	logger     *logging.Logger
}

// NewHandler creates a channel boundary handler.
func NewHandler(resolver *customers.Resolver, controller *conversation.ModeController, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{resolver: resolver, controller: controller, logger: logger}
}

// InboundRequest is the body for POST /channels/{channel}/inbound.
type InboundRequest struct {
	Contact  identity.RawContact   `json:"contact"`
	Profile  customers.Profile     `json:"profile"`
	Content  string                `json:"content"`
	Metadata conversation.Metadata `json:"metadata"`
}

// InboundResponse reports the resolved customer and the conversation the
// message landed in.
type InboundResponse struct {
	Customer     *customers.Customer        `json:"customer"`
	Identifiers  identity.Identifiers       `json:"identifiers"`
	Conversation *conversation.Conversation `json:"conversation"`
	Message      *conversation.Message      `json:"message,omitempty"`
}

// Inbound handles POST /channels/{channel}/inbound.
func (h *Handler) Inbound(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")
	companyID, ok := tenancy.CompanyIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing company context", http.StatusBadRequest)
		return
	}

	var req InboundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	customer, ids, err := h.resolver.Resolve(r.Context(), companyID, req.Contact, req.Profile)
	if err != nil {
		h.writeResolveError(w, channel, err)
		return
	}

	conv, err := h.controller.StartConversation(r.Context(), companyID, channel, customer.ID)
	if err != nil {
		h.logger.Error("failed to ensure conversation",
			"error", err, "channel", channel, "customer_id", customer.ID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := InboundResponse{Customer: customer, Identifiers: ids, Conversation: conv}
	if req.Content != "" {
		msg, err := h.controller.PostCustomerMessage(r.Context(), conv.ID, req.Content, req.Metadata)
		if err != nil {
			h.logger.Error("failed to record customer message",
				"error", err, "conversation_id", conv.ID)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		resp.Message = msg
	}

	writeJSON(w, http.StatusOK, resp)
}

// AgentMessageRequest is the body for POST /channels/{channel}/agent-message.
type AgentMessageRequest struct {
	ConversationID string                `json:"conversation_id"`
	Content        string                `json:"content"`
	Metadata       conversation.Metadata `json:"metadata"`
}

// AgentMessage handles POST /channels/{channel}/agent-message. The agent
// collaborator records its reply here; appends are not gated on mode so a
// reply generated before a takeover still lands in the thread.
func (h *Handler) AgentMessage(w http.ResponseWriter, r *http.Request) {
	var req AgentMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ConversationID == "" {
		http.Error(w, "conversation_id is required", http.StatusBadRequest)
		return
	}

	msg, err := h.controller.PostAgentMessage(r.Context(), req.ConversationID, req.Content, req.Metadata)
	if err != nil {
		switch {
		case errors.Is(err, conversation.ErrConversationNotFound):
			http.Error(w, "conversation not found", http.StatusNotFound)
		case errors.Is(err, conversation.ErrEmptyContent):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to record agent message",
				"error", err, "conversation_id", req.ConversationID)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

func (h *Handler) writeResolveError(w http.ResponseWriter, channel string, err error) {
	var conflict *customers.ConflictError
	switch {
	case errors.Is(err, customers.ErrNoIdentifiers):
		http.Error(w, "no usable identifiers in contact payload", http.StatusBadRequest)
	case errors.As(err, &conflict):
		h.logger.Warn("identifier conflict on inbound contact",
			"channel", channel,
			"first_customer_id", conflict.FirstID,
			"second_customer_id", conflict.SecondID,
		)
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("identity resolution failed", "error", err, "channel", channel)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
