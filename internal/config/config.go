package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MinJWTSecretLength is the minimum accepted length of the session signing secret.
const MinJWTSecretLength = 32

// Environments accepted in SERVER_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config holds all the configuration for the application.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Mongo       MongoConfig
	SMTP        SMTPConfig
	Auth        AuthConfig
	MarketCheck MarketCheckConfig
	JWTSecret   string
}

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	Env     string `mapstructure:"env"`
	BaseURL string `mapstructure:"baseurl"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig holds the Redis configuration. An empty URL selects the in-process cooldown.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// MongoConfig holds the dealer document store configuration.
type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type SMTPConfig struct {
	From     string `mapstructure:"from"`
	Password string `mapstructure:"password"`
	Username string `mapstructure:"username"`
	Port     int    `mapstructure:"port"`
	Host     string `mapstructure:"host"`
}

// AuthConfig controls the passwordless login flows.
type AuthConfig struct {
	// DevMode skips email delivery and issues a fixed code. Never valid in production.
	DevMode               bool   `mapstructure:"devmode"`
	OTPTTLMinutes         int    `mapstructure:"otpttlminutes"`
	MagicLinkTTLMinutes   int    `mapstructure:"magiclinkttlminutes"`
	CleanupDays           int    `mapstructure:"cleanupdays"`
	ResendCooldownSeconds int    `mapstructure:"resendcooldownseconds"`
	PurgeSchedule         string `mapstructure:"purgeschedule"`
}

type MarketCheckConfig struct {
	BaseURL  string `mapstructure:"baseurl"`
	USAPIKey string `mapstructure:"usapikey"`
	UKAPIKey string `mapstructure:"ukapikey"`
}

func (c AuthConfig) OTPTTL() time.Duration {
	return time.Duration(c.OTPTTLMinutes) * time.Minute
}

func (c AuthConfig) MagicLinkTTL() time.Duration {
	return time.Duration(c.MagicLinkTTLMinutes) * time.Minute
}

func (c AuthConfig) ResendCooldown() time.Duration {
	return time.Duration(c.ResendCooldownSeconds) * time.Second
}

// IsProduction reports whether the server runs in the production posture.
func (c *Config) IsProduction() bool {
	return c.Server.Env == EnvProduction
}

var bindings = map[string]string{
	"server.port":                "SERVER_PORT",
	"server.env":                 "SERVER_ENV",
	"server.baseurl":             "APP_BASE_URL",
	"database.url":               "DATABASE_URL",
	"redis.url":                  "REDIS_URL",
	"mongo.uri":                  "MONGO_URI",
	"mongo.database":             "MONGO_DATABASE",
	"jwtsecret":                  "JWT_SECRET",
	"smtp.host":                  "SMTP_HOST",
	"smtp.port":                  "SMTP_PORT",
	"smtp.username":              "SMTP_USERNAME",
	"smtp.password":              "SMTP_PASSWORD",
	"smtp.from":                  "SMTP_FROM",
	"auth.devmode":               "DONT_SEND_EMAILS",
	"auth.otpttlminutes":         "AUTH_OTP_TTL_MINUTES",
	"auth.magiclinkttlminutes":   "AUTH_MAGIC_LINK_TTL_MINUTES",
	"auth.cleanupdays":           "AUTH_CLEANUP_DAYS",
	"auth.resendcooldownseconds": "AUTH_RESEND_COOLDOWN_SECONDS",
	"auth.purgeschedule":         "AUTH_PURGE_SCHEDULE",
	"marketcheck.baseurl":        "MARKETCHECK_API_BASE_URL",
	"marketcheck.usapikey":       "MARKETCHECK_US_API_KEY",
	"marketcheck.ukapikey":       "MARKETCHECK_UK_API_KEY",
}

// Load builds the Config from a .env file in the working directory (optional)
// and the process environment, applies defaults, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ godotenv could not load .env: %v", err)
	}

	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", EnvDevelopment)
	v.SetDefault("mongo.database", "dealer-dashboard")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("auth.devmode", false)
	v.SetDefault("auth.otpttlminutes", 10)
	v.SetDefault("auth.magiclinkttlminutes", 15)
	v.SetDefault("auth.cleanupdays", 1)
	v.SetDefault("auth.resendcooldownseconds", 60)
	v.SetDefault("auth.purgeschedule", "0 * * * *")
	v.SetDefault("marketcheck.baseurl", "https://mc-api.marketcheck.com/v2")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		log.Printf("⚠️ .env file not found, relying on environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Server.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		errs = append(errs, fmt.Errorf("SERVER_ENV: must be one of development, production, test; got %q", c.Server.Env))
	}

	if len(c.JWTSecret) < MinJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET: must be at least %d characters", MinJWTSecretLength))
	}

	if u, err := url.Parse(c.Server.BaseURL); err != nil || !u.IsAbs() || u.Host == "" {
		errs = append(errs, errors.New("APP_BASE_URL: must be an absolute URL"))
	}

	if c.Auth.DevMode && c.IsProduction() {
		errs = append(errs, errors.New("DONT_SEND_EMAILS: dev mode cannot be enabled in production"))
	}
	if c.Database.URL == "" && !c.Auth.DevMode {
		errs = append(errs, errors.New("DATABASE_URL: required unless dev mode is enabled"))
	}
	if !c.Auth.DevMode && c.SMTP.Host == "" {
		errs = append(errs, errors.New("SMTP_HOST: required when emails are sent"))
	}

	if c.Auth.OTPTTLMinutes <= 0 {
		errs = append(errs, errors.New("AUTH_OTP_TTL_MINUTES: must be positive"))
	}
	if c.Auth.MagicLinkTTLMinutes <= 0 {
		errs = append(errs, errors.New("AUTH_MAGIC_LINK_TTL_MINUTES: must be positive"))
	}
	if c.Auth.CleanupDays <= 0 {
		errs = append(errs, errors.New("AUTH_CLEANUP_DAYS: must be positive"))
	}
	if c.Auth.ResendCooldownSeconds < 0 {
		errs = append(errs, errors.New("AUTH_RESEND_COOLDOWN_SECONDS: must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("environment validation failed: %w", errors.Join(errs...))
	}
	return nil
}
