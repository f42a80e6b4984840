package api

import (
	"context"

	"github.com/rpupo63/portfolio-backend/services"
)

type keyType string

const (
	principalKey keyType = "principal"
)

// ctxWithPrincipal adds the session principal to the context
func ctxWithPrincipal(ctx context.Context, principal *services.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// ctxGetPrincipal returns the session principal, or nil for anonymous requests
func ctxGetPrincipal(ctx context.Context) *services.Principal {
	principal, _ := ctx.Value(principalKey).(*services.Principal)
	return principal
}
