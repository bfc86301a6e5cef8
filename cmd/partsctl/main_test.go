package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoparts/internal/config"
)

func TestSuperuserCredentials(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{SuperuserEmail: "root@example.com", SuperuserUsername: "admin", SuperuserPassword: "from-env-pass"}

	email, username, password, err := superuserCredentials(cfg, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", email)
	assert.Equal(t, "admin", username)
	assert.Equal(t, "from-env-pass", password)

	email, username, password, err = superuserCredentials(cfg, "ops@example.com", "ops", "from-flag-pass")
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", email)
	assert.Equal(t, "ops", username)
	assert.Equal(t, "from-flag-pass", password)

	_, _, _, err = superuserCredentials(&config.Config{SuperuserUsername: "admin"}, "", "", "")
	assert.Error(t, err)
}
