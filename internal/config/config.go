// Package config loads the OpsCurator server configuration from a YAML file,
// environment variables and built-in defaults, in that order of precedence
// (environment wins).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Sessions SessionsConfig `yaml:"sessions"`
	Auth     AuthConfig     `yaml:"auth"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Hosted   HostedConfig   `yaml:"hosted"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Address         string   `yaml:"address"`
	RunDelay        string   `yaml:"run_delay"` // artificial "execution" time before a run reports
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type SessionsConfig struct {
	Dir      string `yaml:"dir"` // empty keeps sessions in memory
	TokenTTL string `yaml:"token_ttl"`
	Secret   string `yaml:"secret"`
}

type AuthConfig struct {
	AdminEmails []string `yaml:"admin_emails"`
	BcryptCost  int      `yaml:"bcrypt_cost"`
}

type CatalogConfig struct {
	Dir string `yaml:"dir"` // empty uses the embedded catalog
}

// HostedConfig points at a PostgREST-style backend-as-a-service used as a
// profile mirror.
type HostedConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	APIKey  string `yaml:"api_key"`
	Table   string `yaml:"table"`
	Timeout string `yaml:"timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8080",
			RunDelay:        "2s",
			ShutdownTimeout: "10s",
			AllowedOrigins:  []string{"*"},
		},
		Database: DatabaseConfig{
			Path: "./data/opscurator.db",
		},
		Sessions: SessionsConfig{
			Dir:      "./data/sessions",
			TokenTTL: "24h",
		},
		Auth: AuthConfig{
			AdminEmails: []string{"admin@devopsforall.com"},
			BcryptCost:  12,
		},
		Hosted: HostedConfig{
			Table:   "users",
			Timeout: "10s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func (c *Config) applyEnvOverrides() {
	c.Server.Address = getEnv("SERVER_PORT", c.Server.Address)
	c.Server.RunDelay = getEnv("RUN_DELAY", c.Server.RunDelay)
	c.Database.Path = getEnv("DB_PATH", c.Database.Path)
	c.Sessions.Dir = getEnv("SESSION_DIR", c.Sessions.Dir)
	c.Sessions.Secret = getEnv("JWT_SECRET", c.Sessions.Secret)
	c.Catalog.Dir = getEnv("CATALOG_DIR", c.Catalog.Dir)
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)

	if url := os.Getenv("HOSTED_URL"); url != "" {
		c.Hosted.URL = url
		c.Hosted.Enabled = true
	}
	c.Hosted.APIKey = getEnv("HOSTED_API_KEY", c.Hosted.APIKey)

	if admins := os.Getenv("ADMIN_EMAILS"); admins != "" {
		c.Auth.AdminEmails = nil
		for _, email := range strings.Split(admins, ",") {
			if email = strings.TrimSpace(email); email != "" {
				c.Auth.AdminEmails = append(c.Auth.AdminEmails, email)
			}
		}
	}
}

func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	for name, value := range map[string]string{
		"server.run_delay":        c.Server.RunDelay,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"sessions.token_ttl":      c.Sessions.TokenTTL,
		"hosted.timeout":          c.Hosted.Timeout,
	} {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: invalid duration %q: %w", name, value, err)
		}
		if d < 0 {
			return fmt.Errorf("%s: duration cannot be negative", name)
		}
	}
	if c.GetTokenTTL() == 0 {
		return fmt.Errorf("sessions.token_ttl must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	if c.Hosted.Enabled && (c.Hosted.URL == "" || c.Hosted.Table == "") {
		return fmt.Errorf("hosted.url and hosted.table are required when hosted is enabled")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// Durations are checked by Validate, so the accessors ignore parse errors.

func (c *Config) GetRunDelay() time.Duration {
	d, _ := time.ParseDuration(c.Server.RunDelay)
	return d
}

func (c *Config) GetShutdownTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ShutdownTimeout)
	return d
}

func (c *Config) GetTokenTTL() time.Duration {
	d, _ := time.ParseDuration(c.Sessions.TokenTTL)
	return d
}

func (c *Config) GetHostedTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Hosted.Timeout)
	return d
}
