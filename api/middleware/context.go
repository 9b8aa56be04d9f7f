package middleware

import (
	"context"

	"github.com/wardstockhq/wardstock-backend/pkg/models"
)

type ctxKey int

const (
	ctxIdentity ctxKey = iota
)

// WithIdentity stores the resolved actor on the context.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, ctxIdentity, identity)
}

// IdentityFrom returns the actor seeded by the Auth middleware.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(ctxIdentity).(models.Identity)
	return identity, ok
}
