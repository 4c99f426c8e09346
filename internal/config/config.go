package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_FILE is not set.
const DefaultPath = "config.yml"

// minSessionSecretLen is the shortest HMAC key accepted for signing session cookies.
const minSessionSecretLen = 16

// Config holds the process configuration. It is loaded once at startup and
// treated as immutable afterwards.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Session   SessionConfig   `yaml:"session"`
	Messaging MessagingConfig `yaml:"messaging"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// DatabaseConfig holds the PostgreSQL connection parameters for the patient store.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// AuthConfig is the single doctor account allowed to log in.
type AuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type SessionConfig struct {
	Secret       string        `yaml:"secret"`
	MaxAge       time.Duration `yaml:"max_age"`
	CookieSecure bool          `yaml:"cookie_secure"`
}

// MessagingConfig configures the optional RabbitMQ event publisher.
// An empty URL disables publishing.
type MessagingConfig struct {
	RabbitMQURL string `yaml:"rabbitmq_url"`
}

// PathFromEnv returns the config file path from CONFIG_FILE, or DefaultPath.
func PathFromEnv() string {
	return getEnvString("CONFIG_FILE", DefaultPath)
}

// Load reads the YAML file at path (a missing file is not an error), applies
// environment variable overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		Session: SessionConfig{MaxAge: 12 * time.Hour},
	}
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnvString("SERVER_PORT", c.Server.Port)

	c.Database.Host = getEnvString("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvInt("DB_PORT", c.Database.Port)
	c.Database.User = getEnvString("DB_USER", c.Database.User)
	c.Database.Password = getEnvString("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnvString("DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnvString("DB_SSLMODE", c.Database.SSLMode)

	c.Auth.Username = getEnvString("DOCTOR_USERNAME", c.Auth.Username)
	c.Auth.Password = getEnvString("DOCTOR_PASSWORD", c.Auth.Password)

	c.Session.Secret = getEnvString("SESSION_SECRET", c.Session.Secret)
	c.Session.MaxAge = getEnvDuration("SESSION_MAX_AGE", c.Session.MaxAge)
	c.Session.CookieSecure = getEnvBool("SESSION_COOKIE_SECURE", c.Session.CookieSecure)

	c.Messaging.RabbitMQURL = getEnvString("RABBITMQ_URL", c.Messaging.RabbitMQURL)
}

// Validate reports every missing required setting in a single error.
func (c *Config) Validate() error {
	var missing []string
	if c.Database.User == "" {
		missing = append(missing, "DB_USER")
	}
	if c.Database.Password == "" {
		missing = append(missing, "DB_PASSWORD")
	}
	if c.Database.Name == "" {
		missing = append(missing, "DB_NAME")
	}
	if c.Auth.Username == "" {
		missing = append(missing, "DOCTOR_USERNAME")
	}
	if c.Auth.Password == "" {
		missing = append(missing, "DOCTOR_PASSWORD")
	}
	if c.Session.Secret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required configuration is not set: %v", missing)
	}

	if len(c.Session.Secret) < minSessionSecretLen {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecretLen)
	}
	if c.Session.MaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive, got %s", c.Session.MaxAge)
	}
	return nil
}

// DSN builds a lib/pq connection URL. Credentials are escaped so passwords
// containing spaces or reserved characters survive.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// Redacted is the DSN with the password masked, safe for logs.
func (d DatabaseConfig) Redacted() string {
	u, err := url.Parse(d.DSN())
	if err != nil {
		return "***"
	}
	return u.Redacted()
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
