package middleware

import (
	"net/http"
	"strings"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/google/uuid"
)

// Identity headers set by the upstream auth gateway.
const (
	UserIDHeader   = "X-User-ID"
	UserRoleHeader = "X-User-Role"
)

// WithUser reads the caller identity from the gateway headers and adds it to
// the request context. Requests without a valid user ID continue anonymously.
func WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			next.ServeHTTP(w, r)
			return
		}

		role := domain.RoleCustomer
		if strings.EqualFold(strings.TrimSpace(r.Header.Get(UserRoleHeader)), domain.RoleAdmin) {
			role = domain.RoleAdmin
		}

		ctx := domain.NewContextWithUser(r.Context(), &domain.User{ID: id, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser rejects anonymous requests with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserFromContext(r) == nil {
			respondUnauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r)
		if user == nil {
			respondUnauthorized(w, r)
			return
		}
		if !user.IsAdmin() {
			respondForbidden(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext returns the authenticated user, or nil for anonymous requests.
func GetUserFromContext(r *http.Request) *domain.User {
	return domain.UserFromContext(r.Context())
}
