package auth

import (
	"context"

	"github.com/google/uuid"

	"autoparts/internal/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Identity is the verified caller attached to a request by Authenticate.
type Identity struct {
	UserID uuid.UUID
	Role   models.Role
}

func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the caller identity, or false for anonymous requests.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

func Subject(ctx context.Context) uuid.UUID {
	id, _ := FromContext(ctx)
	return id.UserID
}
