package customers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/omnidesk/omnidesk-core/internal/identity"
)

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies
// it in tests.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores customers in the relational database. Identifier
// rows live in customer_identifiers with a unique (company_id, kind, value)
// index, which is what makes FindOrCreate safe under concurrent first contact.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("customers: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

const selectCustomerByIdentifier = `
	SELECT c.id, c.company_id, c.name, c.kind, c.trade_name,
	       c.phone, c.email, c.cpf, c.cnpj,
	       c.order_count, c.total_spent_cents,
	       c.street, c.number, c.complement, c.district, c.city, c.state, c.zip_code,
	       c.created_at, c.updated_at
	FROM customers c
	JOIN customer_identifiers ci ON ci.customer_id = c.id
	WHERE ci.company_id = $1 AND ci.kind = $2 AND ci.value = $3
`

// FindByIdentifier fetches a customer matching one canonical identifier.
func (r *PostgresRepository) FindByIdentifier(ctx context.Context, companyID string, kind identity.Kind, value string) (*Customer, error) {
	if value == "" {
		return nil, ErrCustomerNotFound
	}
	row := r.db.QueryRow(ctx, selectCustomerByIdentifier, companyID, string(kind), value)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("customers: select by identifier: %w", err)
	}
	return c, nil
}

// FindOrCreate returns the customer matching any of ids in priority order,
// creating one keyed by the full canonical set when none matches. Losers of
// a concurrent first-contact race land on the unique identifier index and
// retry the lookup, so exactly one customer exists per canonical key.
func (r *PostgresRepository) FindOrCreate(ctx context.Context, companyID string, ids identity.Identifiers, profile Profile) (*Customer, error) {
	if ids.Empty() {
		return nil, ErrNoIdentifiers
	}

	for attempt := 0; attempt < 2; attempt++ {
		for _, p := range ids.Pairs() {
			c, err := r.FindByIdentifier(ctx, companyID, p.Kind, p.Value)
			if err == nil {
				return c, nil
			}
			if !errors.Is(err, ErrCustomerNotFound) {
				return nil, err
			}
		}

		c, err := r.create(ctx, companyID, ids, profile)
		if err == nil {
			return c, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
		// Another first contact won the race; loop back to the lookup.
	}

	return nil, fmt.Errorf("customers: find-or-create did not converge for company %s", companyID)
}

func (r *PostgresRepository) create(ctx context.Context, companyID string, ids identity.Identifiers, profile Profile) (*Customer, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("customers: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	kind := profile.Kind
	if kind == "" {
		kind = KindIndividual
	}

	id := uuid.New()
	var createdAt, updatedAt time.Time
	err = tx.QueryRow(ctx, `
		INSERT INTO customers (id, company_id, name, kind, trade_name, phone, email, cpf, cnpj)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, id, companyID, profile.Name, string(kind), profile.TradeName,
		ids.Phone, ids.Email, ids.CPF, ids.CNPJ,
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("customers: insert customer: %w", err)
	}

	for _, p := range ids.Pairs() {
		if _, err := tx.Exec(ctx, `
			INSERT INTO customer_identifiers (customer_id, company_id, kind, value)
			VALUES ($1, $2, $3, $4)
		`, id, companyID, string(p.Kind), p.Value); err != nil {
			return nil, fmt.Errorf("customers: insert identifier %s: %w", p.Kind, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("customers: commit: %w", err)
	}

	return &Customer{
		ID:          id.String(),
		CompanyID:   companyID,
		Name:        profile.Name,
		Kind:        kind,
		TradeName:   profile.TradeName,
		Identifiers: ids,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	var kind string
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.Name, &kind, &c.TradeName,
		&c.Identifiers.Phone, &c.Identifiers.Email, &c.Identifiers.CPF, &c.Identifiers.CNPJ,
		&c.OrderCount, &c.TotalSpentCents,
		&c.Address.Street, &c.Address.Number, &c.Address.Complement, &c.Address.District,
		&c.Address.City, &c.Address.State, &c.Address.ZipCode,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Kind = CustomerKind(kind)
	return &c, nil
}

// isUniqueViolation reports a Postgres unique constraint failure (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
