package customers

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/omnidesk/omnidesk-core/internal/identity"
	"github.com/omnidesk/omnidesk-core/pkg/logging"
)

const testCompany = "acme-001"

func newTestResolver(repo Repository) *Resolver {
	return NewResolver(repo, nil, logging.Default())
}

func TestResolveCreatesOnFirstContact(t *testing.T) {
	repo := NewInMemoryRepository()
	resolver := newTestResolver(repo)

	c, ids, err := resolver.Resolve(context.Background(), testCompany, identity.RawContact{
		Phone: "+55 11 98765-4321",
		Email: "Ana@Example.com",
	}, Profile{Name: "Ana Silva"})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if ids.Phone != "11987654321" {
		t.Errorf("canonical phone = %q, want 11987654321", ids.Phone)
	}
	if c.Name != "Ana Silva" {
		t.Errorf("name = %q, want Ana Silva", c.Name)
	}
	if c.Kind != KindIndividual {
		t.Errorf("kind = %q, want default individual", c.Kind)
	}
}

func TestResolveMatchesAcrossChannels(t *testing.T) {
	repo := NewInMemoryRepository()
	resolver := newTestResolver(repo)
	ctx := context.Background()

	// First contact over web chat supplies a formatted phone.
	first, _, err := resolver.Resolve(ctx, testCompany, identity.RawContact{
		Phone: "(11) 98765-4321",
	}, Profile{Name: "Ana"})
	if err != nil {
		t.Fatalf("first Resolve() error: %v", err)
	}

	// Second contact arrives from a messaging app with the E.164 form.
	second, _, err := resolver.Resolve(ctx, testCompany, identity.RawContact{
		Phone: "+5511987654321",
	}, Profile{Name: "A. Silva"})
	if err != nil {
		t.Fatalf("second Resolve() error: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("cross-channel contact produced two customers: %s vs %s", first.ID, second.ID)
	}
}

func TestResolveMatchesByLowerPriorityIdentifier(t *testing.T) {
	repo := NewInMemoryRepository()
	resolver := newTestResolver(repo)
	ctx := context.Background()

	created, _, err := resolver.Resolve(ctx, testCompany, identity.RawContact{
		CPF: "111.444.777-35",
	}, Profile{Name: "Ana"})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	// New channel supplies a phone (no match) plus the same CPF.
	matched, _, err := resolver.Resolve(ctx, testCompany, identity.RawContact{
		Phone: "+55 21 99999-0000",
		CPF:   "11144477735",
	}, Profile{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if matched.ID != created.ID {
		t.Errorf("expected CPF match to reuse customer %s, got %s", created.ID, matched.ID)
	}
}

func TestResolveNoIdentifiers(t *testing.T) {
	resolver := newTestResolver(NewInMemoryRepository())

	_, _, err := resolver.Resolve(context.Background(), testCompany, identity.RawContact{
		Phone: "123",            // too short
		CPF:   "12345678900",    // checksum fails
		CNPJ:  "11111111111111", // repeated digits
	}, Profile{})
	if !errors.Is(err, ErrNoIdentifiers) {
		t.Fatalf("err = %v, want ErrNoIdentifiers", err)
	}
}

func TestResolveReportsConflict(t *testing.T) {
	repo := NewInMemoryRepository()
	resolver := newTestResolver(repo)
	ctx := context.Background()

	phoneOwner, _, err := resolver.Resolve(ctx, testCompany, identity.RawContact{
		Phone: "11987654321",
	}, Profile{Name: "Ana"})
	if err != nil {
		t.Fatal(err)
	}
	emailOwner, _, err := resolver.Resolve(ctx, testCompany, identity.RawContact{
		Email: "bruno@example.com",
	}, Profile{Name: "Bruno"})
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = resolver.Resolve(ctx, testCompany, identity.RawContact{
		Phone: "11987654321",
		Email: "bruno@example.com",
	}, Profile{})
	if !IsConflict(err) {
		t.Fatalf("err = %v, want ConflictError", err)
	}

	var ce *ConflictError
	errors.As(err, &ce)
	if ce.FirstID != phoneOwner.ID || ce.SecondID != emailOwner.ID {
		t.Errorf("conflict ids = (%s, %s), want (%s, %s)", ce.FirstID, ce.SecondID, phoneOwner.ID, emailOwner.ID)
	}
}

func TestResolveScopedByCompany(t *testing.T) {
	repo := NewInMemoryRepository()
	resolver := newTestResolver(repo)
	ctx := context.Background()

	a, _, err := resolver.Resolve(ctx, "company-a", identity.RawContact{Phone: "11987654321"}, Profile{})
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := resolver.Resolve(ctx, "company-b", identity.RawContact{Phone: "11987654321"}, Profile{})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == b.ID {
		t.Error("same phone in different companies must not share a customer record")
	}
}

func TestFindOrCreateConcurrentFirstContact(t *testing.T) {
	repo := NewInMemoryRepository()
	ids := identity.Normalize(identity.RawContact{Phone: "11987654321"})

	const n = 16
	results := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := repo.FindOrCreate(context.Background(), testCompany, ids, Profile{Name: "Ana"})
			if err != nil {
				t.Errorf("FindOrCreate error: %v", err)
				return
			}
			results[i] = c.ID
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Fatalf("concurrent first contact created multiple customers: %s vs %s", results[0], results[i])
		}
	}
}
