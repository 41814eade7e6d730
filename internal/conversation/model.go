package conversation

import (
	"fmt"
	"time"
)

// Mode says who controls a conversation. It is a closed two-variant type;
// anything else fails ParseMode.
type Mode string

const (
	// ModeAI is the initial mode: the automated agent answers.
	ModeAI Mode = "ai"
	// ModeHuman means an operator has taken over. There is no transition
	// back within this core.
	ModeHuman Mode = "human"
)

// Valid reports whether m is one of the two known modes.
func (m Mode) Valid() bool {
	return m == ModeAI || m == ModeHuman
}

// ParseMode converts a stored string into a Mode, rejecting unknown values.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.Valid() {
		return "", fmt.Errorf("conversation: unknown mode %q", s)
	}
	return m, nil
}

// Conversation statuses. Status is lifecycle bookkeeping (open/closed);
// Mode is the control arbiter.
const (
	StatusActive = "active"
	StatusClosed = "closed"
)

// Message roles.
const (
	RoleCustomer = "customer"
	RoleAgent    = "agent"
	RoleOperator = "operator"
)

// Conversation is one customer thread on one channel.
type Conversation struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"company_id"`
	Channel     string     `json:"channel"`
	CustomerID  string     `json:"customer_id"`
	Status      string     `json:"status"`
	Mode        Mode       `json:"mode"`
	TakenOverBy string     `json:"taken_over_by,omitempty"`
	TakenOverAt *time.Time `json:"taken_over_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TakenOver reports whether an operator controls the conversation. The
// invariant is that TakenOverBy and TakenOverAt are both set exactly when
// Mode is human.
func (c *Conversation) TakenOver() bool {
	return c.Mode == ModeHuman
}

// Metadata is the open extension bag on a message. ProductImage is the one
// key with a typed field; everything else rides in Extra.
type Metadata struct {
	ProductImage string            `json:"product_image,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// Empty reports whether there is nothing to persist.
func (m Metadata) Empty() bool {
	return m.ProductImage == "" && len(m.Extra) == 0
}

// Message is one append-only entry in a conversation. OperatorName is
// required when Role is operator.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	OperatorName   string    `json:"operator_name,omitempty"`
	Metadata       Metadata  `json:"metadata,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
