package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server:    ServerConfig{Port: "8080", Env: EnvDevelopment, BaseURL: "http://localhost:8080"},
		Database:  DatabaseConfig{URL: "postgres://localhost/dashboard"},
		SMTP:      SMTPConfig{Host: "smtp.example.com", Port: 587},
		Auth:      AuthConfig{OTPTTLMinutes: 10, MagicLinkTTLMinutes: 15, CleanupDays: 1, ResendCooldownSeconds: 60},
		JWTSecret: strings.Repeat("s", MinJWTSecretLength),
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "JWT_SECRET"},
		{"unknown env", func(c *Config) { c.Server.Env = "staging" }, "SERVER_ENV"},
		{"relative base url", func(c *Config) { c.Server.BaseURL = "/dashboard" }, "APP_BASE_URL"},
		{"dev mode in production", func(c *Config) {
			c.Server.Env = EnvProduction
			c.Auth.DevMode = true
		}, "DONT_SEND_EMAILS"},
		{"missing database", func(c *Config) { c.Database.URL = "" }, "DATABASE_URL"},
		{"missing smtp", func(c *Config) { c.SMTP.Host = "" }, "SMTP_HOST"},
		{"zero otp ttl", func(c *Config) { c.Auth.OTPTTLMinutes = 0 }, "AUTH_OTP_TTL_MINUTES"},
		{"negative cooldown", func(c *Config) { c.Auth.ResendCooldownSeconds = -1 }, "AUTH_RESEND_COOLDOWN_SECONDS"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidate_DevModeRelaxesDatabaseAndSMTP(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.DevMode = true
	cfg.Database.URL = ""
	cfg.SMTP.Host = ""

	require.NoError(t, cfg.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_ENV", EnvTest)
	t.Setenv("APP_BASE_URL", "https://dash.example.com")
	t.Setenv("JWT_SECRET", strings.Repeat("k", 40))
	t.Setenv("DONT_SEND_EMAILS", "true")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AUTH_OTP_TTL_MINUTES", "5")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, EnvTest, cfg.Server.Env)
	require.True(t, cfg.Auth.DevMode)
	require.Equal(t, 5*time.Minute, cfg.Auth.OTPTTL())
	require.Equal(t, 15*time.Minute, cfg.Auth.MagicLinkTTL())
	require.Equal(t, time.Minute, cfg.Auth.ResendCooldown())
	require.Equal(t, "0 * * * *", cfg.Auth.PurgeSchedule)
	require.False(t, cfg.IsProduction())
}

func TestLoad_RejectsInvalidEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_ENV", EnvProduction)
	t.Setenv("APP_BASE_URL", "https://dash.example.com")
	t.Setenv("JWT_SECRET", "too-short")
	t.Setenv("DONT_SEND_EMAILS", "true")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "JWT_SECRET")
	require.Contains(t, err.Error(), "DONT_SEND_EMAILS")
}
