package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/omnidesk/omnidesk-core/internal/tenancy"
)

func TestCompanyScopeSetsContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/channels/whatsapp/inbound", nil)
	req.Header.Set("X-Company-Id", "acme-001")
	rec := httptest.NewRecorder()

	called := false
	CompanyScope(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		companyID, ok := tenancy.CompanyIDFromContext(r.Context())
		if !ok || companyID != "acme-001" {
			t.Errorf("company id = %q, want acme-001", companyID)
		}
	})).ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected handler to be called")
	}
}

func TestCompanyScopeRejectsMissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/channels/whatsapp/inbound", nil)
	rec := httptest.NewRecorder()

	CompanyScope(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be called without a company header")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
