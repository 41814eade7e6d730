package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/omnidesk/omnidesk-core/internal/observability/metrics"
	"github.com/omnidesk/omnidesk-core/pkg/logging"
)

// ModeController arbitrates who may write to a conversation. Customer and
// agent messages append in any mode; operator messages are legal only after
// a takeover. Takeover itself is idempotent so retries from callers unaware
// of a prior success cannot corrupt state.
type ModeController struct {
	store      Store
	transcript *TranscriptStore
	metrics    *metrics.ConversationMetrics
	logger     *logging.Logger
}

// NewModeController creates the controller. transcript and m may be nil.
func NewModeController(store Store, transcript *TranscriptStore, m *metrics.ConversationMetrics, logger *logging.Logger) *ModeController {
	if logger == nil {
		logger = logging.Default()
	}
	return &ModeController{store: store, transcript: transcript, metrics: m, logger: logger}
}

// StartConversation opens (or returns) the active ai-mode thread for a
// customer on a channel.
func (mc *ModeController) StartConversation(ctx context.Context, companyID, channel, customerID string) (*Conversation, error) {
	return mc.store.EnsureConversation(ctx, companyID, channel, customerID)
}

// GetConversation returns one conversation.
func (mc *ModeController) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	return mc.store.GetConversation(ctx, id)
}

// ListActive returns a company's active conversations.
func (mc *ModeController) ListActive(ctx context.Context, companyID string) ([]Conversation, error) {
	return mc.store.ListActive(ctx, companyID)
}

// ListMessages returns a conversation's history, preferring the transcript
// cache and falling back to the store.
func (mc *ModeController) ListMessages(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	if mc.transcript != nil {
		if msgs, err := mc.transcript.List(ctx, conversationID, int64(limit)); err == nil && len(msgs) > 0 {
			return msgs, nil
		}
	}
	return mc.store.ListMessages(ctx, conversationID, limit)
}

// Takeover moves a conversation from ai to human control. It is idempotent:
// when the conversation is already operator-controlled it returns current
// ownership instead of failing, and the first writer wins under concurrency.
func (mc *ModeController) Takeover(ctx context.Context, conversationID, operatorID string) (*Conversation, error) {
	if strings.TrimSpace(operatorID) == "" {
		return nil, ErrMissingOperator
	}

	start := time.Now()
	conv, changed, err := mc.store.SetMode(ctx, conversationID, ModeHuman, operatorID)
	if err != nil {
		return nil, err
	}

	outcome := "won"
	if !changed {
		outcome = "already_taken"
	}
	mc.metrics.ObserveTakeover(outcome, time.Since(start).Seconds())

	if changed {
		mc.logger.Info("conversation taken over",
			"conversation_id", conversationID,
			"operator_id", operatorID,
		)
	} else {
		mc.logger.Info("takeover already done, returning current ownership",
			"conversation_id", conversationID,
			"requested_by", operatorID,
			"owned_by", conv.TakenOverBy,
		)
	}
	return conv, nil
}

// PostOperatorMessage appends an operator message. Legal only in human
// mode; in ai mode it fails with ErrInvalidState and nothing is written.
func (mc *ModeController) PostOperatorMessage(ctx context.Context, conversationID, operatorID, operatorName, content string, meta Metadata) (*Message, error) {
	if strings.TrimSpace(operatorID) == "" {
		return nil, ErrMissingOperator
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	conv, err := mc.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.Mode != ModeHuman {
		mc.metrics.ObserveRejectedWrite()
		mc.logger.Warn("operator message rejected in ai mode",
			"conversation_id", conversationID,
			"operator_id", operatorID,
		)
		return nil, ErrInvalidState
	}

	return mc.append(ctx, Message{
		ConversationID: conversationID,
		Role:           RoleOperator,
		Content:        content,
		OperatorName:   operatorName,
		Metadata:       meta,
	})
}

// PostAgentMessage appends an automated-agent message. The controller does
// not gate these; an agent still talking after a takeover is the agent
// collaborator's bug to fix.
func (mc *ModeController) PostAgentMessage(ctx context.Context, conversationID, content string, meta Metadata) (*Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	return mc.append(ctx, Message{
		ConversationID: conversationID,
		Role:           RoleAgent,
		Content:        content,
		Metadata:       meta,
	})
}

// PostCustomerMessage appends an inbound customer message in any mode.
func (mc *ModeController) PostCustomerMessage(ctx context.Context, conversationID, content string, meta Metadata) (*Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	return mc.append(ctx, Message{
		ConversationID: conversationID,
		Role:           RoleCustomer,
		Content:        content,
		Metadata:       meta,
	})
}

func (mc *ModeController) append(ctx context.Context, msg Message) (*Message, error) {
	stored, err := mc.store.AppendMessage(ctx, msg)
	if err != nil {
		return nil, err
	}
	mc.metrics.ObserveMessage(stored.Role)

	// The transcript cache is best effort; the store row is the record.
	if mc.transcript != nil {
		if err := mc.transcript.Append(ctx, stored.ConversationID, *stored); err != nil {
			mc.logger.Warn("transcript append failed",
				"conversation_id", stored.ConversationID,
				"error", err,
			)
		}
	}
	return stored, nil
}
