package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := LoadConfig()
	require.EqualError(t, err, "missing required env: DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/employees")
	t.Setenv("JWT_SECRET", "  ")
	_, err = LoadConfig()
	require.EqualError(t, err, "missing required env: JWT_SECRET")
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/employees")
	t.Setenv("JWT_SECRET", "secret")
	for _, name := range []string{
		"PORT", "LOGIN_MAX_ATTEMPTS", "LOGIN_LOCK_MINUTES", "ACCESS_TOKEN_TTL_MINUTES",
		"LOGIN_RATE_LIMIT_MAX", "LOGIN_RATE_LIMIT_WINDOW_SECONDS", "SMTP_HOST", "SMTP_PORT",
		"AUTH_LOGIN_AUDIT_RETENTION_DAYS", "AUTH_CLEANUP_BATCH_SIZE", "NOTIFY_TIMEOUT_SECONDS",
	} {
		t.Setenv(name, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, 5, cfg.LoginMaxAttempts)
	require.Equal(t, 15*time.Minute, cfg.LoginLockWindow)
	require.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 10, cfg.LoginRateLimitMax)
	require.Equal(t, time.Minute, cfg.LoginRateLimitWindow)
	require.Equal(t, 587, cfg.SMTP.Port)
	require.Empty(t, cfg.SMTP.Host)
	require.Equal(t, 365*24*time.Hour, cfg.AuditRetention)
	require.Equal(t, 500, cfg.CleanupBatchSize)
	require.Equal(t, 10*time.Second, cfg.NotifyTimeout)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/employees")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "3")
	t.Setenv("LOGIN_LOCK_MINUTES", "30")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "-1")
	t.Setenv("SMTP_PORT", "not-a-port")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 3, cfg.LoginMaxAttempts)
	require.Equal(t, 30*time.Minute, cfg.LoginLockWindow)
	require.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 587, cfg.SMTP.Port)
}

func TestEnvBoolOrDefault(t *testing.T) {
	t.Setenv("RUN_MIGRATIONS_ON_STARTUP", "yes")
	require.True(t, EnvBoolOrDefault("RUN_MIGRATIONS_ON_STARTUP", false))

	t.Setenv("RUN_MIGRATIONS_ON_STARTUP", "off")
	require.False(t, EnvBoolOrDefault("RUN_MIGRATIONS_ON_STARTUP", true))

	t.Setenv("RUN_MIGRATIONS_ON_STARTUP", "maybe")
	require.True(t, EnvBoolOrDefault("RUN_MIGRATIONS_ON_STARTUP", true))
}
