package auth

import (
	"context"

	"github.com/lyceum-sis/lyceum/internal/shared"
)

// Context is the resolved identity for one request: who is calling and with
// which role. It is derived from the bearer token on every request, never
// persisted, and read-only to handlers.
type Context struct {
	UserID shared.ID
	Role   shared.Role
}

type authContextKey struct{}

// WithContext stores the resolved identity in the request context.
func WithContext(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, authContextKey{}, ac)
}

// FromContext extracts the resolved identity. Absence is a distinguishable
// error, not a panic: anonymous requests reach handlers without a Context and
// handlers that need one fail with ErrMissingContext.
func FromContext(ctx context.Context) (Context, error) {
	ac, ok := ctx.Value(authContextKey{}).(Context)
	if !ok {
		return Context{}, ErrMissingContext
	}
	return ac, nil
}
