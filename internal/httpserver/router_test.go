package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"autoparts/internal/auth"
	"autoparts/internal/models"
	"autoparts/internal/policy"
	"autoparts/internal/services/catalog"
	"autoparts/internal/services/identity"
	"autoparts/internal/store/memory"
)

type fixture struct {
	handler http.Handler
	tokens  *auth.Manager
	admin   string
	user    string
}

func newFixture(t *testing.T, mode policy.Mode) *fixture {
	t.Helper()
	lg := zap.NewNop().Sugar()
	repo := memory.New()
	tokens := auth.NewManager("router-test-secret-123", time.Minute, time.Hour)

	f := &fixture{
		tokens: tokens,
		handler: NewRouter(Options{
			Catalog:    catalog.NewService(repo, lg, catalog.Options{PageSize: 10, MaxPageSize: 100}),
			Identity:   identity.NewService(repo, tokens, lg),
			Tokens:     tokens,
			Logger:     lg,
			Ready:      repo.Ping,
			PolicyMode: mode,
		}),
	}
	f.admin = f.token(t, models.RoleAdmin)
	f.user = f.token(t, models.RoleUser)
	return f
}

func (f *fixture) token(t *testing.T, role models.Role) string {
	t.Helper()
	tok, err := f.tokens.Issue(uuid.New(), role, auth.AccessToken)
	require.NoError(t, err)
	return tok.Value
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// seed creates n parts and m car models as admin.
func (f *fixture) seed(t *testing.T, n, m int) {
	t.Helper()
	for i := range n {
		rec := f.do(t, http.MethodPost, "/v1/parts", f.admin, map[string]any{
			"part_number": fmt.Sprintf("PN-%03d", i+1),
			"name":        fmt.Sprintf("Part %d", i+1),
			"price":       "19.90",
			"quantity":    3,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	for i := range m {
		rec := f.do(t, http.MethodPost, "/v1/car-models", f.admin, map[string]any{
			"name":         fmt.Sprintf("Model %d", i+1),
			"manufacturer": "Acme",
			"year":         2000 + i,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
}

func TestAssociationAccessPolicy(t *testing.T) {
	t.Parallel()
	f := newFixture(t, policy.ModeDefault)
	f.seed(t, 1, 1)
	rec := f.do(t, http.MethodPost, "/v1/part-car-models/associate", f.admin,
		map[string]any{"part_ids": []int64{1}, "car_model_ids": []int64{1}})
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{name: "anonymous list", method: http.MethodGet, path: "/v1/part-car-models", status: http.StatusUnauthorized},
		{name: "anonymous put", method: http.MethodPut, path: "/v1/part-car-models/1", status: http.StatusUnauthorized},
		{name: "user list", method: http.MethodGet, path: "/v1/part-car-models", token: f.user, status: http.StatusOK},
		{name: "user get", method: http.MethodGet, path: "/v1/part-car-models/1", token: f.user, status: http.StatusOK},
		{name: "user put", method: http.MethodPut, path: "/v1/part-car-models/1", token: f.user, status: http.StatusForbidden},
		{name: "user associate", method: http.MethodPost, path: "/v1/part-car-models/associate", token: f.user, status: http.StatusForbidden},
		{name: "user delete", method: http.MethodDelete, path: "/v1/part-car-models/1", token: f.user, status: http.StatusForbidden},
		{name: "admin put", method: http.MethodPut, path: "/v1/part-car-models/1", token: f.admin, status: http.StatusMethodNotAllowed},
		{name: "admin patch", method: http.MethodPatch, path: "/v1/part-car-models/1", token: f.admin, status: http.StatusMethodNotAllowed},
		{name: "bad token", method: http.MethodGet, path: "/v1/part-car-models", token: "garbage", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	rec = f.do(t, http.MethodDelete, "/v1/part-car-models/1", f.admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodDelete, "/v1/part-car-models/1", f.admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssociateEndpoint(t *testing.T) {
	t.Parallel()
	f := newFixture(t, policy.ModeDefault)
	f.seed(t, 4, 2)

	body := map[string]any{"part_ids": []int64{3, 4}, "car_model_ids": []int64{2}}
	rec := f.do(t, http.MethodPost, "/v1/part-car-models/associate", f.admin, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[[]models.PartCarModel](t, rec)
	require.Len(t, created, 2)
	assert.Equal(t, int64(3), created[0].PartID)
	assert.Equal(t, int64(2), created[0].CarModelID)

	rec = f.do(t, http.MethodPost, "/v1/part-car-models/associate", f.admin, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	list := decode[models.PageResult[models.PartCarModel]](t,
		f.do(t, http.MethodGet, "/v1/part-car-models", f.user, nil))
	assert.EqualValues(t, 2, list.Count)

	rec = f.do(t, http.MethodPost, "/v1/part-car-models/associate", f.admin,
		map[string]any{"part_ids": []int64{999}, "car_model_ids": []int64{2}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"part not found"}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/v1/part-car-models/associate", f.admin,
		map[string]any{"part_ids": []int64{1}, "car_model_ids": []int64{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "car_model_ids")

	rec = f.do(t, http.MethodPost, "/v1/part-car-models/associate", f.admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReverseLookups(t *testing.T) {
	t.Parallel()
	f := newFixture(t, policy.ModeDefault)
	f.seed(t, 2, 2)
	rec := f.do(t, http.MethodPost, "/v1/part-car-models/associate", f.admin,
		map[string]any{"part_ids": []int64{1, 2}, "car_model_ids": []int64{1}})
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name   string
		path   string
		status int
		count  int
	}{
		{name: "by car model", path: "/v1/part-car-models/by-car-model?car_model_id=1", status: http.StatusOK, count: 2},
		{name: "by part", path: "/v1/part-car-models/by-part?part_id=2", status: http.StatusOK, count: 1},
		{name: "car model without parts", path: "/v1/part-car-models/by-car-model?car_model_id=2", status: http.StatusNotFound},
		{name: "unknown car model", path: "/v1/part-car-models/by-car-model?car_model_id=999", status: http.StatusNotFound},
		{name: "missing car model param", path: "/v1/part-car-models/by-car-model", status: http.StatusBadRequest},
		{name: "missing part param", path: "/v1/part-car-models/by-part", status: http.StatusBadRequest},
		{name: "non numeric param", path: "/v1/part-car-models/by-part?part_id=abc", status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, tt.path, f.user, nil)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status == http.StatusOK {
				assert.Len(t, decode[[]models.PartCarModel](t, rec), tt.count)
			}
		})
	}
}

func TestCatalogPolicyModes(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		mode     policy.Mode
		userRead int
	}{
		{mode: policy.ModeDefault, userRead: http.StatusOK},
		{mode: policy.ModeStrict, userRead: http.StatusForbidden},
	} {
		t.Run(string(tt.mode), func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, tt.mode)
			f.seed(t, 1, 1)

			assert.Equal(t, tt.userRead, f.do(t, http.MethodGet, "/v1/parts", f.user, nil).Code)
			assert.Equal(t, tt.userRead, f.do(t, http.MethodGet, "/v1/car-models/1", f.user, nil).Code)
			assert.Equal(t, http.StatusForbidden,
				f.do(t, http.MethodPost, "/v1/parts", f.user, map[string]any{"name": "x"}).Code)
			assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/v1/parts", "", nil).Code)
			// associations stay readable by users in every mode
			assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/v1/part-car-models", f.user, nil).Code)
		})
	}
}

func TestPartEndpoints(t *testing.T) {
	t.Parallel()
	f := newFixture(t, policy.ModeDefault)
	f.seed(t, 1, 2)
	rec := f.do(t, http.MethodPost, "/v1/part-car-models/associate", f.admin,
		map[string]any{"part_ids": []int64{1}, "car_model_ids": []int64{1, 2}})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/parts", f.admin, map[string]any{"part_number": "X", "name": "Y", "price": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "price")

	rec = f.do(t, http.MethodPatch, "/v1/parts/1", f.admin, map[string]any{"quantity": 0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0, decode[models.Part](t, rec).Quantity)

	rec = f.do(t, http.MethodPut, "/v1/parts/1", f.admin,
		map[string]any{"part_number": "PN-NEW", "name": "Replaced", "price": "5.00", "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	part := decode[models.Part](t, f.do(t, http.MethodGet, "/v1/parts/1", f.user, nil))
	assert.Equal(t, "Replaced", part.Name)

	cms := decode[[]models.CarModel](t, f.do(t, http.MethodGet, "/v1/parts/1/car-models", f.user, nil))
	assert.Len(t, cms, 2)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/v1/parts/abc", f.user, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/v1/parts/42", f.user, nil).Code)

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/v1/parts/1", f.admin, nil).Code)
	list := decode[models.PageResult[models.PartCarModel]](t,
		f.do(t, http.MethodGet, "/v1/part-car-models", f.admin, nil))
	assert.Zero(t, list.Count)
}

func TestCarModelFilters(t *testing.T) {
	t.Parallel()
	f := newFixture(t, policy.ModeDefault)
	f.seed(t, 0, 3)

	res := decode[models.PageResult[models.CarModel]](t,
		f.do(t, http.MethodGet, "/v1/car-models?year=2001&manufacturer=Acme", f.user, nil))
	require.EqualValues(t, 1, res.Count)
	assert.Equal(t, "Model 2", res.Results[0].Name)

	res = decode[models.PageResult[models.CarModel]](t,
		f.do(t, http.MethodGet, "/v1/car-models?page=2&page_size=2", f.user, nil))
	assert.EqualValues(t, 3, res.Count)
	assert.Len(t, res.Results, 1)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/v1/car-models?year=soon", f.user, nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/v1/car-models?page=0", f.user, nil).Code)
}

func TestAuthFlow(t *testing.T) {
	t.Parallel()
	f := newFixture(t, policy.ModeDefault)

	creds := map[string]any{"email": "Jane@Example.com", "username": "jane", "password": "s3cretpass"}
	rec := f.do(t, http.MethodPost, "/v1/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	rec = f.do(t, http.MethodPost, "/v1/auth/register", "", creds)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/auth/register", "",
		map[string]any{"email": "boss@example.com", "password": "s3cretpass", "role": "admin"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = f.do(t, http.MethodPost, "/v1/auth/register", f.user,
		map[string]any{"email": "boss@example.com", "password": "s3cretpass", "role": "admin"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/auth/login", "", map[string]any{"email": "jane@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/auth/login", "", map[string]any{"email": "jane@example.com", "password": "s3cretpass"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	pair := decode[identity.TokenPair](t, rec)

	me := decode[models.User](t, f.do(t, http.MethodGet, "/v1/me", pair.Access, nil))
	assert.Equal(t, "jane@example.com", me.Email)
	assert.Equal(t, models.RoleUser, me.Role)

	rec = f.do(t, http.MethodPost, "/v1/auth/refresh", "", map[string]any{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodPost, "/v1/auth/logout", "", map[string]any{"refresh": pair.Refresh}).Code)
	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodPost, "/v1/auth/logout", pair.Access, map[string]any{"refresh": pair.Refresh}).Code)

	rec = f.do(t, http.MethodPost, "/v1/auth/refresh", "", map[string]any{"refresh": pair.Refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	logs := decode[[]models.AuditLog](t, f.do(t, http.MethodGet, "/v1/logs", pair.Access, nil))
	assert.NotEmpty(t, logs)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/v1/me", "", nil).Code)
}

func TestStaleTokenOnPublicAuthEndpoints(t *testing.T) {
	t.Parallel()
	f := newFixture(t, policy.ModeDefault)
	stale, err := auth.NewManager("rotated-away-secret-1", time.Minute, time.Hour).Issue(uuid.New(), models.RoleAdmin, auth.AccessToken)
	require.NoError(t, err)

	creds := map[string]any{"email": "kim@example.com", "username": "kim", "password": "s3cretpass"}
	rec := f.do(t, http.MethodPost, "/v1/auth/register", stale.Value, creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/v1/auth/register", stale.Value,
		map[string]any{"email": "boss2@example.com", "password": "s3cretpass", "role": "admin"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/auth/login", stale.Value, map[string]any{"email": "kim@example.com", "password": "s3cretpass"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	pair := decode[identity.TokenPair](t, rec)

	rec = f.do(t, http.MethodPost, "/v1/auth/refresh", stale.Value, map[string]any{"refresh": pair.Refresh})
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/v1/parts", stale.Value, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodPost, "/v1/auth/logout", stale.Value, map[string]any{"refresh": pair.Refresh}).Code)
}

func TestAdminUsers(t *testing.T) {
	t.Parallel()
	f := newFixture(t, policy.ModeDefault)

	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/v1/admin/users", f.user, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/v1/admin/users", "", nil).Code)

	rec := f.do(t, http.MethodPost, "/v1/admin/users", f.admin,
		map[string]any{"email": "ops@example.com", "password": "s3cretpass", "role": "admin"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.User](t, rec)
	assert.Equal(t, models.RoleAdmin, created.Role)

	rec = f.do(t, http.MethodPatch, "/v1/admin/users/"+created.ID.String(), f.admin, map[string]any{"role": "user"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.RoleUser, decode[models.User](t, rec).Role)

	rec = f.do(t, http.MethodPatch, "/v1/admin/users/"+created.ID.String(), f.admin, map[string]any{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	list := decode[models.PageResult[models.User]](t, f.do(t, http.MethodGet, "/v1/admin/users", f.admin, nil))
	assert.EqualValues(t, 1, list.Count)

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/v1/admin/users/"+created.ID.String(), f.admin, nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodDelete, "/v1/admin/users/not-a-uuid", f.admin, nil).Code)
}

func TestOpsEndpoints(t *testing.T) {
	t.Parallel()
	f := newFixture(t, policy.ModeDefault)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/readyz", "", nil).Code)
	rec := f.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "autoparts_http_request_duration_seconds")

	down := NewRouter(Options{
		Tokens: f.tokens,
		Logger: zap.NewNop().Sugar(),
		Ready:  func(context.Context) error { return fmt.Errorf("db down") },
	})
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
