package config

import (
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("STORE_URL", "postgres://db.internal:5432/zing")
	t.Setenv("STORE_ANON_KEY", "anon-key")
	t.Setenv("STORE_SERVICE_ROLE_KEY", "service-key")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 3*time.Second, cfg.SinkTimeout)
	assert.Equal(t, 2*time.Second, cfg.AuthTimeout)
	assert.Equal(t, 20, cfg.FanoutLimit)
	assert.Equal(t, 500, cfg.ExpiryBatchSize)
	assert.Zero(t, cfg.SweepInterval)
	assert.True(t, cfg.HasSink("log"))
	assert.False(t, cfg.HasSink("redis"))
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("FANOUT_LIMIT", "5")
	t.Setenv("NOTIFY_SINKS", "redis,rabbitmq")
	t.Setenv("SWEEP_INTERVAL", "1m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.FanoutLimit)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.True(t, cfg.HasSink("redis"))
	assert.True(t, cfg.HasSink("rabbitmq"))
	assert.False(t, cfg.HasSink("log"))
}

func TestLoadMissingSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	_, err := Load()
	assert.Error(t, err)
}

func TestDSNUsesHandleCredentials(t *testing.T) {
	cfg := &Config{
		StoreURL:       "postgres://db.internal:5432/zing",
		AnonRole:       "authenticated",
		AnonKey:        "anon/key",
		ServiceRole:    "service_role",
		ServiceRoleKey: "service-key",
	}

	anon, err := cfg.dsn(cfg.AnonRole, cfg.AnonKey)
	require.NoError(t, err)
	u, err := url.Parse(anon)
	require.NoError(t, err)
	assert.Equal(t, "authenticated", u.User.Username())
	pw, _ := u.User.Password()
	assert.Equal(t, "anon/key", pw)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))

	svc, err := cfg.dsn(cfg.ServiceRole, cfg.ServiceRoleKey)
	require.NoError(t, err)
	assert.Contains(t, svc, "service_role:service-key@")

	cfg.StoreURL = "mysql://db.internal/zing"
	_, err = cfg.dsn(cfg.AnonRole, cfg.AnonKey)
	assert.Error(t, err)
}
