package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	SES       SESConfig       `yaml:"ses"`
	MJML      MJMLConfig      `yaml:"mjml"`
	Secrets   SecretsConfig   `yaml:"secrets"`
	Worker    WorkerConfig    `yaml:"worker"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Invites   InviteConfig    `yaml:"invites"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port    int    `yaml:"port"`
	Host    string `yaml:"host"`
	BaseURL string `yaml:"base_url"`
}

// GetHost returns the server host, with ECS detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	// Allow override via environment
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds Redis connection settings for rate limiting and locks.
// Redis is optional; when Addr is empty the server falls back to
// in-process rate limiting and PostgreSQL advisory locks.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AuthConfig holds Google OAuth authentication configuration
type AuthConfig struct {
	GoogleClientID     string   `yaml:"google_client_id"`
	GoogleClientSecret string   `yaml:"google_client_secret"`
	AllowedDomain      string   `yaml:"allowed_domain"`
	SessionSecret      string   `yaml:"session_secret"`
	CookieName         string   `yaml:"cookie_name"`
	CookieMaxAge       int      `yaml:"cookie_max_age"`
	AdminEmails        []string `yaml:"admin_emails"`
}

// IsAdminEmail reports whether the given address is in the configured
// admin allowlist. Comparison is case-insensitive.
func (c AuthConfig) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range c.AdminEmails {
		if strings.ToLower(strings.TrimSpace(a)) == email {
			return true
		}
	}
	return false
}

// SESConfig holds AWS SES API configuration for platform-channel sends
type SESConfig struct {
	Region         string `yaml:"region"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	FromDomain     string `yaml:"from_domain"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Enabled        bool   `yaml:"enabled"`
}

// Timeout returns the configured timeout as a duration
func (c SESConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MJMLConfig holds the hosted MJML render API configuration
type MJMLConfig struct {
	BaseURL        string `yaml:"base_url"`
	AppID          string `yaml:"app_id"`
	SecretKey      string `yaml:"secret_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c MJMLConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SecretsConfig holds keys for encrypting stored credentials
type SecretsConfig struct {
	// SecretboxKey is the base64-encoded 32-byte key used to seal
	// SMTP/IMAP passwords at rest.
	SecretboxKey string `yaml:"secretbox_key"`
}

// WorkerConfig holds campaign send worker settings
type WorkerConfig struct {
	Enabled             bool `yaml:"enabled"`
	Concurrency         int  `yaml:"concurrency"`
	BatchSize           int  `yaml:"batch_size"`
	PollIntervalSeconds int  `yaml:"poll_interval_seconds"`
	MaxAttempts         int  `yaml:"max_attempts"`
}

// PollInterval returns the queue poll interval as a duration
func (c WorkerConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// RateLimitConfig holds per-user API rate limit settings
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
}

// InviteConfig holds team invitation settings
type InviteConfig struct {
	ExpiryDays int `yaml:"expiry_days"`
}

// Expiry returns the invitation lifetime as a duration
func (c InviteConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryDays) * 24 * time.Hour
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "outreach_session"
	}
	if cfg.Auth.CookieMaxAge == 0 {
		cfg.Auth.CookieMaxAge = 86400 * 7
	}
	if cfg.SES.TimeoutSeconds == 0 {
		cfg.SES.TimeoutSeconds = 30
	}
	if cfg.SES.Region == "" {
		cfg.SES.Region = "us-west-2"
	}
	if cfg.MJML.BaseURL == "" {
		cfg.MJML.BaseURL = "https://api.mjml.io/v1"
	}
	if cfg.MJML.TimeoutSeconds == 0 {
		cfg.MJML.TimeoutSeconds = 15
	}
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = 4
	}
	if cfg.Worker.BatchSize == 0 {
		cfg.Worker.BatchSize = 50
	}
	if cfg.Worker.PollIntervalSeconds == 0 {
		cfg.Worker.PollIntervalSeconds = 5
	}
	if cfg.Worker.MaxAttempts == 0 {
		cfg.Worker.MaxAttempts = 3
	}
	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit.RequestsPerMinute = 120
	}
	if cfg.Invites.ExpiryDays == 0 {
		cfg.Invites.ExpiryDays = 7
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.Auth.GoogleClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.Auth.GoogleClientSecret = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.Auth.SessionSecret = v
	}
	if v := os.Getenv("AUTH_ALLOWED_DOMAIN"); v != "" {
		cfg.Auth.AllowedDomain = v
	}
	if v := os.Getenv("AUTH_ADMIN_EMAILS"); v != "" {
		cfg.Auth.AdminEmails = splitAndTrim(v)
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.SES.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.SES.SecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.SES.Region = v
	}
	if v := os.Getenv("MJML_APP_ID"); v != "" {
		cfg.MJML.AppID = v
	}
	if v := os.Getenv("MJML_SECRET_KEY"); v != "" {
		cfg.MJML.SecretKey = v
	}
	if v := os.Getenv("SECRETBOX_KEY"); v != "" {
		cfg.Secrets.SecretboxKey = v
	}

	return cfg, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
