package customers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/omnidesk/omnidesk-core/internal/identity"
)

// Repository is the customer store contract. FindOrCreate must be atomic
// per canonical key: two concurrent first contacts with the same identity
// produce exactly one customer.
type Repository interface {
	// FindByIdentifier returns the customer matching one canonical
	// identifier, or ErrCustomerNotFound.
	FindByIdentifier(ctx context.Context, companyID string, kind identity.Kind, value string) (*Customer, error)

	// FindOrCreate returns the existing customer matching any of ids, or
	// creates one keyed by the full canonical set.
	FindOrCreate(ctx context.Context, companyID string, ids identity.Identifiers, profile Profile) (*Customer, error)
}

// InMemoryRepository keeps customers in memory. Used in tests and local
// development; the serialization lock gives it the same find-or-create
// atomicity the Postgres store gets from its unique index.
type InMemoryRepository struct {
	mu    sync.Mutex
	index map[indexKey]string // (kind, value) -> customer id
	byID  map[string]*Customer
}

type indexKey struct {
	companyID string
	kind      identity.Kind
	value     string
}

// NewInMemoryRepository creates an empty in-memory customer store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		index: make(map[indexKey]string),
		byID:  make(map[string]*Customer),
	}
}

// FindByIdentifier looks up a customer by a single canonical identifier.
func (r *InMemoryRepository) FindByIdentifier(ctx context.Context, companyID string, kind identity.Kind, value string) (*Customer, error) {
	if value == "" {
		return nil, ErrCustomerNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findLocked(companyID, kind, value)
}

func (r *InMemoryRepository) findLocked(companyID string, kind identity.Kind, value string) (*Customer, error) {
	id, ok := r.index[indexKey{companyID, kind, value}]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	c := *r.byID[id]
	return &c, nil
}

// FindOrCreate returns the customer matching any identifier in priority
// order, creating one when nothing matches.
func (r *InMemoryRepository) FindOrCreate(ctx context.Context, companyID string, ids identity.Identifiers, profile Profile) (*Customer, error) {
	if ids.Empty() {
		return nil, ErrNoIdentifiers
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range ids.Pairs() {
		if c, err := r.findLocked(companyID, p.Kind, p.Value); err == nil {
			return c, nil
		}
	}

	now := time.Now().UTC()
	c := &Customer{
		ID:          uuid.NewString(),
		CompanyID:   companyID,
		Name:        profile.Name,
		Kind:        profile.Kind,
		TradeName:   profile.TradeName,
		Identifiers: ids,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.Kind == "" {
		c.Kind = KindIndividual
	}

	r.byID[c.ID] = c
	for _, p := range ids.Pairs() {
		r.index[indexKey{companyID, p.Kind, p.Value}] = c.ID
	}

	out := *c
	return &out, nil
}
