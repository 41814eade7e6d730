package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the store needs; pgxmock satisfies it
// in tests.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore persists conversations and messages. The takeover edge is
// a single guarded UPDATE so concurrent attempts serialize in the database:
// one row changes, every other caller re-reads the winner.
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a conversation store backed by pgx.
func NewPostgresStore(db DB) *PostgresStore {
	if db == nil {
		panic("conversation: pgx pool required")
	}
	return &PostgresStore{db: db}
}

const conversationColumns = `
	id, company_id, channel, customer_id, status, mode,
	COALESCE(taken_over_by, ''), taken_over_at, created_at, updated_at
`

// GetConversation fetches one conversation by id.
func (s *PostgresStore) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE id = $1`, id)
	c, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("conversation: select: %w", err)
	}
	return c, nil
}

// ListActive returns a company's active conversations, most recently
// updated first.
func (s *PostgresStore) ListActive(ctx context.Context, companyID string) ([]Conversation, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+conversationColumns+` FROM conversations
		 WHERE company_id = $1 AND status = $2
		 ORDER BY updated_at DESC`, companyID, StatusActive)
	if err != nil {
		return nil, fmt.Errorf("conversation: list active: %w", err)
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("conversation: scan: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// EnsureConversation returns the active thread for (company, channel,
// customer), creating one in ai mode on first contact. A partial unique
// index on active threads absorbs the concurrent-first-contact race.
func (s *PostgresStore) EnsureConversation(ctx context.Context, companyID, channel, customerID string) (*Conversation, error) {
	for attempt := 0; attempt < 2; attempt++ {
		row := s.db.QueryRow(ctx,
			`SELECT `+conversationColumns+` FROM conversations
			 WHERE company_id = $1 AND channel = $2 AND customer_id = $3 AND status = $4`,
			companyID, channel, customerID, StatusActive)
		c, err := scanConversation(row)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("conversation: select existing: %w", err)
		}

		id := uuid.New()
		row = s.db.QueryRow(ctx, `
			INSERT INTO conversations (id, company_id, channel, customer_id, status, mode)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+conversationColumns,
			id, companyID, channel, customerID, StatusActive, string(ModeAI))
		c, err = scanConversation(row)
		if err == nil {
			return c, nil
		}
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("conversation: insert: %w", err)
		}
		// Lost the first-contact race; re-read the winner.
	}
	return nil, fmt.Errorf("conversation: ensure did not converge for customer %s", customerID)
}

// AppendMessage inserts an immutable message row and bumps the thread.
func (s *PostgresStore) AppendMessage(ctx context.Context, msg Message) (*Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	var meta []byte
	if !msg.Metadata.Empty() {
		var err error
		meta, err = json.Marshal(msg.Metadata)
		if err != nil {
			return nil, fmt.Errorf("conversation: marshal metadata: %w", err)
		}
	}

	tag, err := s.db.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, operator_name, metadata, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7
		WHERE EXISTS (SELECT 1 FROM conversations WHERE id = $2)
	`, msg.ID, msg.ConversationID, msg.Role, msg.Content, msg.OperatorName, meta, msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("conversation: insert message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrConversationNotFound
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE conversations SET updated_at = $1 WHERE id = $2`,
		msg.CreatedAt, msg.ConversationID); err != nil {
		return nil, fmt.Errorf("conversation: touch conversation: %w", err)
	}

	out := msg
	return &out, nil
}

// ListMessages returns the oldest-first message history.
func (s *PostgresStore) ListMessages(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	query := `
		SELECT id, conversation_id, role, content, COALESCE(operator_name, ''), metadata, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC`
	args := []any{conversationID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("conversation: list messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var meta []byte
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.OperatorName, &meta, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("conversation: scan message: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &m.Metadata); err != nil {
				return nil, fmt.Errorf("conversation: unmarshal metadata: %w", err)
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SetMode performs the guarded ai->human transition. The UPDATE's WHERE
// clause is the compare-and-set; when zero rows change the current row is
// re-read and returned with changed=false.
func (s *PostgresStore) SetMode(ctx context.Context, id string, mode Mode, operatorID string) (*Conversation, bool, error) {
	if mode != ModeHuman {
		return nil, false, ErrIllegalTransition
	}

	row := s.db.QueryRow(ctx, `
		UPDATE conversations
		SET mode = $2, taken_over_by = $3, taken_over_at = now(), updated_at = now()
		WHERE id = $1 AND mode = $4
		RETURNING `+conversationColumns,
		id, string(ModeHuman), operatorID, string(ModeAI))
	c, err := scanConversation(row)
	if err == nil {
		return c, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("conversation: takeover update: %w", err)
	}

	// Either already human or missing; read to tell which.
	c, err = s.GetConversation(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return c, false, nil
}

func scanConversation(row pgx.Row) (*Conversation, error) {
	var c Conversation
	var mode string
	var takenOverAt *time.Time
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.Channel, &c.CustomerID, &c.Status, &mode,
		&c.TakenOverBy, &takenOverAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	parsed, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	c.Mode = parsed
	c.TakenOverAt = takenOverAt
	return &c, nil
}

// isUniqueViolation reports a Postgres unique constraint failure (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
