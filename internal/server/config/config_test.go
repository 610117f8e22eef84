package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8000", cfg.EndpointAddr)
	assert.Equal(t, 6*time.Hour, cfg.TokenValidityDuration)
	assert.Equal(t, 1*time.Hour, cfg.ResetTokenValidityDuration)
	assert.Equal(t, "0 0 * * * *", cfg.SchedulerSpec)
	assert.Equal(t, 20, cfg.MailQueueCapacity)
	assert.NotEmpty(t, cfg.DatabaseDSN)
}

func TestParseEnv_Overlays(t *testing.T) {
	t.Setenv(EnvDatabaseURL, "postgres://u:p@db:5432/vault")
	t.Setenv(EnvJWTSecret, "env-secret")
	t.Setenv(EnvSMTPServer, "smtp.example.com")
	t.Setenv(EnvSMTPPort, "2525")
	t.Setenv(EnvSMTPUsername, "vault@example.com")
	t.Setenv(EnvSMTPPassword, "hunter2")
	t.Setenv(EnvSchedulerRunTime, "0 * * * * *")
	t.Setenv(EnvAddress, ":9000")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	require.Equal(t, "postgres://u:p@db:5432/vault", cfg.DatabaseDSN)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
	assert.Equal(t, "smtp.example.com", cfg.SMTPServer)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.Equal(t, "vault@example.com", cfg.SMTPUsername)
	assert.Equal(t, "hunter2", cfg.SMTPPassword)
	assert.Equal(t, "0 * * * * *", cfg.SchedulerSpec)
	assert.Equal(t, ":9000", cfg.EndpointAddr)
}

func TestParseEnv_InvalidPortIgnored(t *testing.T) {
	t.Setenv(EnvSMTPPort, "not-a-number")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, 587, cfg.SMTPPort)
}
