package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Catalog  CatalogConfig
	Payment  PaymentConfig
	Email    EmailConfig
	Store    StoreConfig
	Admin    AdminConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// CatalogConfig holds menu catalogue source configuration. The catalogue
// is loaded from a local JSON file by default, or from S3 when enabled.
type CatalogConfig struct {
	Path      string
	S3Enabled bool
	S3Bucket  string
	S3Region  string
	S3Key     string
}

// PaymentConfig holds payment provider configuration. An empty secret
// key selects the in-process simulator instead of the live provider.
type PaymentConfig struct {
	StripeSecretKey string
	Currency        string
}

// EmailConfig holds transactional email configuration. An empty API key
// disables outbound mail (confirmations are logged only).
type EmailConfig struct {
	SendGridAPIKey string
	FromAddress    string
	FromName       string
}

// StoreConfig holds the physical store's pickup scheduling parameters.
type StoreConfig struct {
	OpeningHour      int
	ClosingHour      int
	SlotIntervalMins int
	PrepBufferMins   int
}

// AdminConfig holds authentication for the admin endpoints.
type AdminConfig struct {
	APIKey string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "bakehouse"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Catalog: CatalogConfig{
			Path:      getEnv("CATALOG_PATH", "data/menu.json"),
			S3Enabled: getEnvAsBool("CATALOG_S3_ENABLED", false),
			S3Bucket:  getEnv("CATALOG_S3_BUCKET", ""),
			S3Region:  getEnv("CATALOG_S3_REGION", "eu-west-1"),
			S3Key:     getEnv("CATALOG_S3_KEY", "menu/menu.json"),
		},
		Payment: PaymentConfig{
			StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			Currency:        getEnv("PAYMENT_CURRENCY", "eur"),
		},
		Email: EmailConfig{
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromAddress:    getEnv("EMAIL_FROM_ADDRESS", "orders@wake-n-bake.nl"),
			FromName:       getEnv("EMAIL_FROM_NAME", "Wake n Bake"),
		},
		Store: StoreConfig{
			OpeningHour:      getEnvAsInt("STORE_OPENING_HOUR", 10),
			ClosingHour:      getEnvAsInt("STORE_CLOSING_HOUR", 18),
			SlotIntervalMins: getEnvAsInt("STORE_SLOT_INTERVAL_MINUTES", 15),
			PrepBufferMins:   getEnvAsInt("STORE_PREP_BUFFER_MINUTES", 30),
		},
		Admin: AdminConfig{
			APIKey: getEnv("ADMIN_API_KEY", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Catalog.S3Enabled {
		if c.Catalog.S3Bucket == "" {
			return fmt.Errorf("catalog S3 bucket is required when catalog S3 is enabled")
		}
		if c.Catalog.S3Region == "" {
			return fmt.Errorf("catalog S3 region is required when catalog S3 is enabled")
		}
	} else if c.Catalog.Path == "" {
		return fmt.Errorf("catalog path is required")
	}

	if c.Payment.Currency == "" {
		return fmt.Errorf("payment currency is required")
	}

	if c.Email.SendGridAPIKey != "" && c.Email.FromAddress == "" {
		return fmt.Errorf("email from address is required when SendGrid is configured")
	}

	if c.Store.OpeningHour < 0 || c.Store.OpeningHour > 23 {
		return fmt.Errorf("invalid store opening hour: %d", c.Store.OpeningHour)
	}

	if c.Store.ClosingHour < 1 || c.Store.ClosingHour > 24 {
		return fmt.Errorf("invalid store closing hour: %d", c.Store.ClosingHour)
	}

	if c.Store.OpeningHour >= c.Store.ClosingHour {
		return fmt.Errorf("store opening hour must be before closing hour")
	}

	if c.Store.SlotIntervalMins < 1 {
		return fmt.Errorf("slot interval must be at least 1 minute")
	}

	if c.Store.PrepBufferMins < 0 {
		return fmt.Errorf("prep buffer cannot be negative")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
