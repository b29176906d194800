package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("SESSION_STORE", "")
	t.Setenv("SESSION_NAMESPACE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, 10*time.Second, cfg.API.DashboardTimeout)
	assert.Equal(t, 5*time.Second, cfg.API.HealthTimeout)
	assert.Equal(t, "file", cfg.Session.Store)
	assert.Equal(t, "authSession", cfg.Session.Key)
	assert.Empty(t, cfg.Session.Namespace)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://clinic.example.com/api/v1/")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("SESSION_NAMESPACE", "desk-2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://clinic.example.com/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, "desk-2", cfg.Session.Namespace)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.IsDevelopment())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		t.Setenv("API_BASE_URL", "")
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	t.Run("relative base url", func(t *testing.T) {
		cfg := base()
		cfg.API.BaseURL = "/api/v1"
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown session store", func(t *testing.T) {
		cfg := base()
		cfg.Session.Store = "cookie"
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive timeout", func(t *testing.T) {
		cfg := base()
		cfg.API.HealthTimeout = 0
		assert.Error(t, cfg.Validate())
	})
}
