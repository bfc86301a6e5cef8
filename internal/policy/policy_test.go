package policy

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoparts/internal/auth"
	"autoparts/internal/models"
)

func identity(role models.Role) *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), Role: role}
}

func TestPolicies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		policy Policy
		id     *auth.Identity
		op     Operation
		want   error
	}{
		{name: "read-only anonymous read", policy: AdminOrReadOnly, op: Read, want: models.ErrUnauthorized},
		{name: "read-only anonymous write", policy: AdminOrReadOnly, op: Write, want: models.ErrUnauthorized},
		{name: "read-only user read", policy: AdminOrReadOnly, id: identity(models.RoleUser), op: Read},
		{name: "read-only user write", policy: AdminOrReadOnly, id: identity(models.RoleUser), op: Write, want: models.ErrForbidden},
		{name: "read-only admin write", policy: AdminOrReadOnly, id: identity(models.RoleAdmin), op: Write},
		{name: "admin-only anonymous", policy: AdminOnly, op: Read, want: models.ErrUnauthorized},
		{name: "admin-only user read", policy: AdminOnly, id: identity(models.RoleUser), op: Read, want: models.ErrForbidden},
		{name: "admin-only admin read", policy: AdminOnly, id: identity(models.RoleAdmin), op: Read},
		{name: "admin-only admin write", policy: AdminOnly, id: identity(models.RoleAdmin), op: Write},
		{name: "zero role is not admin", policy: AdminOnly, id: identity(0), op: Write, want: models.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.policy.Authorize(tt.id, tt.op, "associations")
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOperationFor(t *testing.T) {
	t.Parallel()
	for method, want := range map[string]Operation{
		http.MethodGet:     Read,
		http.MethodHead:    Read,
		http.MethodOptions: Read,
		http.MethodPost:    Write,
		http.MethodPut:     Write,
		http.MethodPatch:   Write,
		http.MethodDelete:  Write,
	} {
		assert.Equal(t, want, OperationFor(method), method)
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeDefault, m)
	assert.Equal(t, AdminOrReadOnly.Authorize(identity(models.RoleUser), Read, "parts"),
		m.Catalog().Authorize(identity(models.RoleUser), Read, "parts"))

	m, err = ParseMode(" STRICT ")
	require.NoError(t, err)
	assert.ErrorIs(t, m.Catalog().Authorize(identity(models.RoleUser), Read, "parts"), models.ErrForbidden)

	_, err = ParseMode("lenient")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestRequire(t *testing.T) {
	t.Parallel()
	h := Require(AdminOrReadOnly, "associations")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		method string
		id     *auth.Identity
		status int
	}{
		{name: "anonymous", method: http.MethodGet, status: http.StatusUnauthorized},
		{name: "user reads", method: http.MethodGet, id: identity(models.RoleUser), status: http.StatusNoContent},
		{name: "user puts", method: http.MethodPut, id: identity(models.RoleUser), status: http.StatusForbidden},
		{name: "admin deletes", method: http.MethodDelete, id: identity(models.RoleAdmin), status: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/part-car-models/1", nil)
			if tt.id != nil {
				req = req.WithContext(auth.WithIdentity(req.Context(), *tt.id))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
