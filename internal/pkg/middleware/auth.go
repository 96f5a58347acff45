package middleware

import (
	"context"
	"net/http"

	"gofulfil/internal/domain"
	apperror "gofulfil/internal/errors"
	"gofulfil/internal/pkg/token"
)

// ContextKey is the type for context keys set by the middlewares.
// A dedicated type guarantees the keys never collide with string keys
// set elsewhere.
type ContextKey int

const (
	OperatorClaimsKey ContextKey = iota
)

// OperatorClaims carries the operator data extracted from the JWT, attached
// to the request context.
type OperatorClaims struct {
	OperatorID string
	Role       domain.OperatorRole
}

// TokenService defines the validation contract the middleware needs.
type TokenService interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// NewAuthMiddleware builds a middleware that validates a Bearer JWT and
// attaches the claims (OperatorID and Role) to the request context.
func NewAuthMiddleware(tokenSvc TokenService) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {

			// 1. Extract the token from the Authorization: Bearer <token> header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || len(authHeader) < 7 || authHeader[:7] != "Bearer " {
				http.Error(w, apperror.NewUnauthorizedError("Authorization token missing or malformed.").Error(), http.StatusUnauthorized)
				return
			}

			tokenString := authHeader[7:]

			// 2. Validate the token
			claims, err := tokenSvc.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, apperror.NewUnauthorizedError("Invalid or expired token.").Error(), http.StatusUnauthorized)
				return
			}

			// 3. Attach claims to the context
			operatorClaims := OperatorClaims{
				OperatorID: claims.OperatorID,
				Role:       domain.OperatorRole(claims.Role),
			}

			ctx := context.WithValue(r.Context(), OperatorClaimsKey, operatorClaims)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}
