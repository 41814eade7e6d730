package middleware

import (
	"net/http"
	"strings"

	"github.com/omnidesk/omnidesk-core/internal/tenancy"
)

// CompanyScope reads the X-Company-Id header on channel webhook routes and
// places the company scope on the request context. Operator routes get their
// scope from the JWT instead.
func CompanyScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		companyID := strings.TrimSpace(r.Header.Get("X-Company-Id"))
		if companyID == "" {
			http.Error(w, "missing X-Company-Id header", http.StatusBadRequest)
			return
		}
		ctx := tenancy.WithCompanyID(r.Context(), companyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
