package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the console
type Config struct {
	// Remote API Configuration
	API APIConfig

	// Console web server Configuration
	Server ServerConfig

	// Durable session storage Configuration
	Storage StorageConfig

	// Heartbeat Configuration
	Heartbeat HeartbeatConfig

	// Logging Configuration
	Logging LoggingConfig
}

// APIConfig describes the remote REST service the console talks to
type APIConfig struct {
	BaseURL string        `validate:"required,url"`
	Timeout time.Duration `validate:"gte=1s"`
}

// ServerConfig holds console web server configuration
type ServerConfig struct {
	ListenAddr         string `validate:"required,hostname_port"`
	PublicURL          string `validate:"omitempty,url"` // Used by `console dash`; derived from ListenAddr when empty
	CORSAllowedOrigins []string
}

// StorageConfig selects where the session is persisted
type StorageConfig struct {
	Backend     string `validate:"required,oneof=sqlite keyring memory"`
	DatabaseURL string `validate:"required_if=Backend sqlite"`
	Secret      string // Optional: enables at-rest encryption of stored values
}

// HeartbeatConfig holds the status polling interval
type HeartbeatConfig struct {
	Interval time.Duration `validate:"gte=1s"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `validate:"omitempty,oneof=debug info warn warning error fatal panic"`
	Format string `validate:"omitempty,oneof=json console"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	apiTimeout, err := durationEnv("HTTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	heartbeatInterval, err := durationEnv("HEARTBEAT_INTERVAL", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL: strings.TrimRight(stringEnv("CONSOLE_API_URL", "http://localhost:5000/api"), "/"),
			Timeout: apiTimeout,
		},
		Server: ServerConfig{
			ListenAddr:         stringEnv("CONSOLE_LISTEN_ADDR", "127.0.0.1:8080"),
			PublicURL:          os.Getenv("CONSOLE_PUBLIC_URL"),
			CORSAllowedOrigins: listEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Storage: StorageConfig{
			Backend:     strings.ToLower(stringEnv("STORAGE_BACKEND", "sqlite")),
			DatabaseURL: stringEnv("DATABASE_URL", "console.sqlite"),
			Secret:      os.Getenv("CONSOLE_STORAGE_SECRET"),
		},
		Heartbeat: HeartbeatConfig{
			Interval: heartbeatInterval,
		},
		// Logging configuration - defaults suitable for production
		Logging: LoggingConfig{
			Level:  stringEnv("LOG_LEVEL", "info"),
			Format: stringEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for missing or malformed values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ConsoleURL returns the URL the console web server is reachable at
func (c *Config) ConsoleURL() string {
	if c.Server.PublicURL != "" {
		return strings.TrimRight(c.Server.PublicURL, "/")
	}
	return "http://" + c.Server.ListenAddr
}

func stringEnv(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(name)
	if value == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return d, nil
}

func listEnv(name string, fallback []string) []string {
	value := os.Getenv(name)
	if value == "" {
		return fallback
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
