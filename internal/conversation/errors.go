package conversation

import "errors"

var (
	// ErrConversationNotFound is returned when the id matches nothing
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrInvalidState is returned when an operator message targets a
	// conversation the agent still controls
	ErrInvalidState = errors.New("conversation is agent-controlled; take it over first")

	// ErrEmptyContent is returned for blank message bodies
	ErrEmptyContent = errors.New("message content is required")

	// ErrMissingOperator is returned when an operator-originated write
	// carries no operator identity
	ErrMissingOperator = errors.New("operator id is required")

	// ErrIllegalTransition is returned by stores asked to set a mode the
	// state machine has no edge for
	ErrIllegalTransition = errors.New("illegal conversation mode transition")
)
