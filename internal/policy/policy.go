// Package policy decides per request whether the caller may perform an
// operation. Policies are stateless values; nothing is cached between
// requests.
package policy

import (
	"fmt"
	"net/http"
	"strings"

	"autoparts/internal/auth"
	"autoparts/internal/models"
)

type Operation uint8

const (
	Read Operation = iota + 1
	Write
)

func (op Operation) String() string {
	if op == Read {
		return "read"
	}
	return "write"
}

// OperationFor classifies an HTTP method. Safe methods read, everything else
// writes.
func OperationFor(method string) Operation {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return Read
	}
	return Write
}

// Policy returns nil to permit, an error wrapping models.ErrUnauthorized when
// there is no caller, or models.ErrForbidden when the role is insufficient.
// id is nil for anonymous callers.
type Policy interface {
	Authorize(id *auth.Identity, op Operation, resource string) error
}

type PolicyFunc func(id *auth.Identity, op Operation, resource string) error

func (f PolicyFunc) Authorize(id *auth.Identity, op Operation, resource string) error {
	return f(id, op, resource)
}

var (
	// AdminOnly permits admins and nobody else.
	AdminOnly Policy = PolicyFunc(adminOnly)
	// AdminOrReadOnly lets any authenticated caller read and admins write.
	AdminOrReadOnly Policy = PolicyFunc(adminOrReadOnly)
)

func adminOnly(id *auth.Identity, op Operation, resource string) error {
	if id == nil {
		return auth.ErrMissingToken
	}
	if !id.IsAdmin() {
		return fmt.Errorf("%w: admin role required to %s %s", models.ErrForbidden, op, resource)
	}
	return nil
}

func adminOrReadOnly(id *auth.Identity, op Operation, resource string) error {
	if id == nil {
		return auth.ErrMissingToken
	}
	if op == Read {
		return nil
	}
	return adminOnly(id, op, resource)
}

// Mode selects the policy guarding parts and car models.
type Mode string

const (
	ModeDefault Mode = "default"
	// ModeStrict restricts every catalog operation, reads included, to admins.
	ModeStrict Mode = "strict"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeDefault:
		return ModeDefault, nil
	case ModeStrict:
		return ModeStrict, nil
	}
	return "", fmt.Errorf("%w: unknown policy mode %q", models.ErrValidation, s)
}

func (m Mode) Catalog() Policy {
	if m == ModeStrict {
		return AdminOnly
	}
	return AdminOrReadOnly
}
