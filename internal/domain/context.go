// Package domain provides core business types, error taxonomy, and context helpers for Mercato.
package domain

import (
	"context"

	"github.com/google/uuid"
)

type contextKey int

const (
	userContextKey contextKey = iota
	requestIDContextKey
)

// Role values carried on an authenticated caller.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is the authenticated caller as resolved by the auth middleware.
type User struct {
	ID   uuid.UUID
	Role string
}

// IsAdmin reports whether the caller may use administrative product operations.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// --- User Context Helpers ---

func NewContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the user from context.
// Returns nil if no user is present.
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(userContextKey).(*User)
	return user
}

// UserIDFromContext returns uuid.Nil if no user is present.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if user := UserFromContext(ctx); user != nil {
		return user.ID
	}
	return uuid.Nil
}

// RequireUserID retrieves the user ID from context, panicking if not present.
// Handlers behind RequireUser middleware may rely on it.
func RequireUserID(ctx context.Context) uuid.UUID {
	id := UserIDFromContext(ctx)
	if id == uuid.Nil {
		panic("user_id required in context but not found")
	}
	return id
}

// --- Request ID Context Helpers ---

func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext returns "" if no request ID is present.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey).(string)
	return requestID
}
