package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/omnidesk/omnidesk-core/internal/operators"
	"github.com/omnidesk/omnidesk-core/internal/tenancy"
)

// OperatorClaims are the claims carried by operator console tokens.
type OperatorClaims struct {
	jwt.RegisteredClaims
	Name      string `json:"name"`
	CompanyID string `json:"company_id"`
}

// OperatorJWT enforces an HMAC-signed JWT on operator endpoints and places
// the operator identity and company scope on the request context.
func OperatorJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "operator auth disabled", http.StatusUnauthorized)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := &OperatorClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			}, jwt.WithExpirationRequired())
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if claims.Subject == "" || claims.CompanyID == "" {
				http.Error(w, "token missing operator or company", http.StatusUnauthorized)
				return
			}

			ctx := operators.WithOperator(r.Context(), operators.Operator{
				ID:   claims.Subject,
				Name: claims.Name,
			})
			ctx = tenancy.WithCompanyID(ctx, claims.CompanyID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
