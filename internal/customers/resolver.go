package customers

import (
	"context"
	"errors"

	"github.com/omnidesk/omnidesk-core/internal/identity"
	"github.com/omnidesk/omnidesk-core/internal/observability/metrics"
	"github.com/omnidesk/omnidesk-core/pkg/logging"
)

// Resolver turns a raw contact payload into exactly one customer record.
// It normalizes and validates the contact fields, matches against the store
// in fixed priority order (phone, email, cpf, cnpj), and falls back to an
// atomic find-or-create when nothing matches.
type Resolver struct {
	repo    Repository
	logger  *logging.Logger
	metrics *metrics.IdentityMetrics
}

// NewResolver creates a resolver backed by the given customer store.
func NewResolver(repo Repository, m *metrics.IdentityMetrics, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{repo: repo, logger: logger, metrics: m}
}

// Resolve matches or creates the customer for a raw contact. Every supplied
// identifier is checked: when two of them point at two different existing
// customers the resolver reports a ConflictError instead of picking one.
func (r *Resolver) Resolve(ctx context.Context, companyID string, raw identity.RawContact, profile Profile) (*Customer, identity.Identifiers, error) {
	ids := identity.Normalize(raw)
	if ids.Empty() {
		r.metrics.ObserveResolution("no_identifiers")
		return nil, ids, ErrNoIdentifiers
	}

	var matched *Customer
	var matchedKind identity.Kind
	for _, p := range ids.Pairs() {
		c, err := r.repo.FindByIdentifier(ctx, companyID, p.Kind, p.Value)
		if errors.Is(err, ErrCustomerNotFound) {
			continue
		}
		if err != nil {
			r.metrics.ObserveResolution("error")
			return nil, ids, err
		}
		if matched == nil {
			matched = c
			matchedKind = p.Kind
			continue
		}
		if c.ID != matched.ID {
			r.metrics.ObserveResolution("conflict")
			r.logger.Warn("identifier conflict while resolving customer",
				"company_id", companyID,
				"first_kind", string(matchedKind),
				"first_customer", matched.ID,
				"second_kind", string(p.Kind),
				"second_customer", c.ID,
			)
			return nil, ids, &ConflictError{
				FirstID:    matched.ID,
				FirstKind:  string(matchedKind),
				SecondID:   c.ID,
				SecondKind: string(p.Kind),
			}
		}
	}
	if matched != nil {
		r.metrics.ObserveResolution("matched")
		return matched, ids, nil
	}

	c, err := r.repo.FindOrCreate(ctx, companyID, ids, profile)
	if err != nil {
		r.metrics.ObserveResolution("error")
		return nil, ids, err
	}
	r.metrics.ObserveResolution("created")
	r.logger.Info("customer created from first contact",
		"company_id", companyID,
		"customer_id", c.ID,
	)
	return c, ids, nil
}
