package conversation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the conversation persistence contract. SetMode must be atomic:
// under concurrent takeover attempts exactly one caller observes
// changed=true and everyone reads the same winner afterwards.
type Store interface {
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	ListActive(ctx context.Context, companyID string) ([]Conversation, error)

	// EnsureConversation returns the active conversation for (company,
	// channel, customer), creating it in ai mode on first contact.
	EnsureConversation(ctx context.Context, companyID, channel, customerID string) (*Conversation, error)

	// AppendMessage persists a message. Messages are immutable once written.
	AppendMessage(ctx context.Context, msg Message) (*Message, error)
	ListMessages(ctx context.Context, conversationID string, limit int) ([]Message, error)

	// SetMode performs the guarded ai->human transition. changed is false
	// when the conversation was already in the requested mode; the returned
	// conversation always reflects current state.
	SetMode(ctx context.Context, id string, mode Mode, operatorID string) (conv *Conversation, changed bool, err error)
}

// InMemoryStore keeps conversations and messages in memory, serialized by
// one lock. Tests and local development use it; it honors the same
// atomicity contract as the Postgres store.
type InMemoryStore struct {
	mu            sync.Mutex
	conversations map[string]*Conversation
	messages      map[string][]Message
	byKey         map[convKey]string
}

type convKey struct {
	companyID  string
	channel    string
	customerID string
}

// NewInMemoryStore creates an empty in-memory conversation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		conversations: make(map[string]*Conversation),
		messages:      make(map[string][]Message),
		byKey:         make(map[convKey]string),
	}
}

// GetConversation returns a copy of the conversation.
func (s *InMemoryStore) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	out := *c
	return &out, nil
}

// ListActive returns active conversations for a company, most recently
// updated first.
func (s *InMemoryStore) ListActive(ctx context.Context, companyID string) ([]Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Conversation
	for _, c := range s.conversations {
		if c.CompanyID == companyID && c.Status == StatusActive {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// EnsureConversation finds or creates the active thread for a customer on
// a channel.
func (s *InMemoryStore) EnsureConversation(ctx context.Context, companyID, channel, customerID string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := convKey{companyID, channel, customerID}
	if id, ok := s.byKey[key]; ok {
		if c := s.conversations[id]; c.Status == StatusActive {
			out := *c
			return &out, nil
		}
	}

	now := time.Now().UTC()
	c := &Conversation{
		ID:         uuid.NewString(),
		CompanyID:  companyID,
		Channel:    channel,
		CustomerID: customerID,
		Status:     StatusActive,
		Mode:       ModeAI,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.conversations[c.ID] = c
	s.byKey[key] = c.ID

	out := *c
	return &out, nil
}

// AppendMessage stores a message and bumps the conversation's updated time.
func (s *InMemoryStore) AppendMessage(ctx context.Context, msg Message) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[msg.ConversationID]
	if !ok {
		return nil, ErrConversationNotFound
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], msg)
	c.UpdatedAt = msg.CreatedAt

	out := msg
	return &out, nil
}

// ListMessages returns messages in append order, capped at limit when
// limit > 0.
func (s *InMemoryStore) ListMessages(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[conversationID]; !ok {
		return nil, ErrConversationNotFound
	}
	msgs := s.messages[conversationID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// SetMode performs the one-way ai->human edge under the store lock.
func (s *InMemoryStore) SetMode(ctx context.Context, id string, mode Mode, operatorID string) (*Conversation, bool, error) {
	if mode != ModeHuman {
		return nil, false, ErrIllegalTransition
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[id]
	if !ok {
		return nil, false, ErrConversationNotFound
	}

	if c.Mode == ModeHuman {
		out := *c
		return &out, false, nil
	}

	now := time.Now().UTC()
	c.Mode = ModeHuman
	c.TakenOverBy = operatorID
	c.TakenOverAt = &now
	c.UpdatedAt = now

	out := *c
	return &out, true, nil
}
