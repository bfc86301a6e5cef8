package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "memory://")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")

	cfg, err := Load("testdata/missing.env")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, "default", cfg.PolicyMode)
	assert.Equal(t, "admin", cfg.SuperuserUsername)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing database url", env: map[string]string{"JWT_SECRET": "0123456789abcdef0123"}},
		{name: "short secret", env: map[string]string{"DATABASE_URL": "memory://", "JWT_SECRET": "short"}},
		{
			name: "page size above max",
			env: map[string]string{
				"DATABASE_URL": "memory://", "JWT_SECRET": "0123456789abcdef0123",
				"PAGE_SIZE": "50", "MAX_PAGE_SIZE": "20",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			t.Setenv("JWT_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("testdata/missing.env")
			assert.Error(t, err)
		})
	}
}
