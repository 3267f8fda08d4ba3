// internal/auth/middleware.go
// Bearer token middleware. Tokens are issued by the identity service;
// this service only validates them.

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kurtgav/wizardmatch-sub001/internal/common/utils"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	emailKey  contextKey = "email"
)

// AdminChecker decides whether an email belongs to an administrator.
type AdminChecker interface {
	IsAdmin(email string) bool
}

// Middleware provides authentication middleware
type Middleware struct {
	jwtSecret string
	admins    AdminChecker
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(jwtSecret string, admins AdminChecker) *Middleware {
	return &Middleware{
		jwtSecret: jwtSecret,
		admins:    admins,
	}
}

// Authenticate verifies the JWT and adds the caller to the request context
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}

		claims, err := utils.ValidateJWT(token, m.jwtSecret)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.UserID, claims.Email)))
	})
}

// RequireAdmin must run after Authenticate.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, _ := EmailFromContext(r.Context())
		if m.admins == nil || !m.admins.IsAdmin(email) {
			utils.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractToken extracts the JWT token from the Authorization header
// Supports "Bearer <token>" format
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

// WithUser stores the caller identity on ctx.
func WithUser(ctx context.Context, userID uuid.UUID, email string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, emailKey, strings.ToLower(email))
}

// UserIDFromContext extracts user ID from request context
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}

// EmailFromContext extracts email from request context
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok
}
