// Package config provides configuration management for the storefront server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Default configuration values.
const (
	DefaultServerPort      = 8080
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsEnabled  = true
	DefaultEnvFile         = ".env"

	DefaultStorageBackend = StorageMemory
	DefaultStoragePath    = "aura.db"
	DefaultCartKey        = "auraCart"

	DefaultStoreName      = "Tienda Aura"
	DefaultWhatsAppNumber = "5491157804951"
	DefaultCurrencySymbol = "$"
	DefaultLocale         = "es-AR"

	DefaultCatalogURL     = "https://fakestoreapi.com"
	DefaultCatalogLimit   = 12
	DefaultCatalogTimeout = 10 * time.Second
)

// Storage backends.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Environment variable names.
const (
	EnvFile            = "APP_ENV_FILE"
	EnvServerPort      = "APP_SERVER_PORT"
	EnvLogLevel        = "APP_LOG_LEVEL"
	EnvShutdownTimeout = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled  = "APP_METRICS_ENABLED"

	EnvStorageBackend = "APP_STORAGE_BACKEND"
	EnvStoragePath    = "APP_STORAGE_PATH"
	EnvCartKey        = "APP_CART_KEY"

	EnvStoreName      = "APP_STORE_NAME"
	EnvWhatsAppNumber = "APP_WHATSAPP_NUMBER"
	EnvCurrencySymbol = "APP_CURRENCY_SYMBOL"
	EnvLocale         = "APP_LOCALE"

	EnvCatalogURL      = "APP_CATALOG_URL"
	EnvCatalogLimit    = "APP_CATALOG_LIMIT"
	EnvCatalogTimeout  = "APP_CATALOG_TIMEOUT"
	EnvContactEndpoint = "APP_CONTACT_ENDPOINT"
	EnvFeaturedPath    = "APP_FEATURED_PATH"
)

// Config holds the application configuration.
type Config struct {
	// Server settings.
	ServerPort      int
	LogLevel        string
	ShutdownTimeout time.Duration
	MetricsEnabled  bool

	// Cart persistence: memory or sqlite.
	StorageBackend string
	StoragePath    string
	CartKey        string

	// Storefront settings.
	StoreName      string
	WhatsAppNumber string
	CurrencySymbol string
	Locale         string

	// Catalog and contact integrations.
	CatalogURL      string
	CatalogLimit    int
	CatalogTimeout  time.Duration
	ContactEndpoint string // Empty disables delivery.
	FeaturedPath    string // Empty selects the built-in list.
}

// Validation errors.
var (
	ErrInvalidServerPort      = errors.New("server port must be between 1 and 65535")
	ErrInvalidLogLevel        = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidStorageBackend  = errors.New("storage backend must be one of: memory, sqlite")
	ErrInvalidStoragePath     = errors.New("storage path must be set when storage backend is sqlite")
	ErrInvalidCartKey         = errors.New("cart key must not be empty")
	ErrInvalidWhatsAppNumber  = errors.New("whatsapp number must contain digits only")
	ErrInvalidCatalogURL      = errors.New("catalog URL must be an absolute http(s) URL")
	ErrInvalidCatalogLimit    = errors.New("catalog limit must be between 1 and 100")
	ErrInvalidCatalogTimeout  = errors.New("catalog timeout must be positive")
	ErrInvalidContactEndpoint = errors.New("contact endpoint must be an absolute http(s) URL")
)

// Load reads configuration from environment variables with defaults.
// Variables from the .env file named by APP_ENV_FILE are applied first;
// the real environment has priority over them.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	cfg := &Config{
		ServerPort:      DefaultServerPort,
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  DefaultMetricsEnabled,
		StorageBackend:  DefaultStorageBackend,
		StoragePath:     DefaultStoragePath,
		CartKey:         DefaultCartKey,
		StoreName:       DefaultStoreName,
		WhatsAppNumber:  DefaultWhatsAppNumber,
		CurrencySymbol:  DefaultCurrencySymbol,
		Locale:          DefaultLocale,
		CatalogURL:      DefaultCatalogURL,
		CatalogLimit:    DefaultCatalogLimit,
		CatalogTimeout:  DefaultCatalogTimeout,
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadEnvFile applies the env file if it exists. godotenv never overrides
// variables that are already set.
func loadEnvFile() error {
	path := os.Getenv(EnvFile)
	if path == "" {
		path = DefaultEnvFile
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	return godotenv.Load(path)
}

// loadFromEnv loads configuration values from environment variables.
func (c *Config) loadFromEnv() error {
	if err := c.loadServerEnv(); err != nil {
		return err
	}

	c.loadStorageEnv()
	c.loadStorefrontEnv()

	if err := c.loadIntegrationEnv(); err != nil {
		return err
	}

	return nil
}

// loadServerEnv loads server-related environment variables.
func (c *Config) loadServerEnv() error {
	if val := os.Getenv(EnvServerPort); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvServerPort, err)
		}
		c.ServerPort = port
	}

	if val := os.Getenv(EnvLogLevel); val != "" {
		c.LogLevel = val
	}

	if val := os.Getenv(EnvShutdownTimeout); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvShutdownTimeout, err)
		}
		c.ShutdownTimeout = timeout
	}

	if val := os.Getenv(EnvMetricsEnabled); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMetricsEnabled, err)
		}
		c.MetricsEnabled = enabled
	}

	return nil
}

// loadStorageEnv loads cart persistence environment variables.
func (c *Config) loadStorageEnv() {
	if val := os.Getenv(EnvStorageBackend); val != "" {
		c.StorageBackend = val
	}

	if val, ok := os.LookupEnv(EnvStoragePath); ok {
		c.StoragePath = val
	}

	if val, ok := os.LookupEnv(EnvCartKey); ok {
		c.CartKey = val
	}
}

// loadStorefrontEnv loads store identity and formatting variables.
func (c *Config) loadStorefrontEnv() {
	if val := os.Getenv(EnvStoreName); val != "" {
		c.StoreName = val
	}

	if val := os.Getenv(EnvWhatsAppNumber); val != "" {
		c.WhatsAppNumber = val
	}

	if val := os.Getenv(EnvCurrencySymbol); val != "" {
		c.CurrencySymbol = val
	}

	if val := os.Getenv(EnvLocale); val != "" {
		c.Locale = val
	}
}

// loadIntegrationEnv loads catalog and contact variables.
func (c *Config) loadIntegrationEnv() error {
	if val := os.Getenv(EnvCatalogURL); val != "" {
		c.CatalogURL = val
	}

	if val := os.Getenv(EnvCatalogLimit); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvCatalogLimit, err)
		}
		c.CatalogLimit = limit
	}

	if val := os.Getenv(EnvCatalogTimeout); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvCatalogTimeout, err)
		}
		c.CatalogTimeout = timeout
	}

	if val := os.Getenv(EnvContactEndpoint); val != "" {
		c.ContactEndpoint = val
	}

	if val := os.Getenv(EnvFeaturedPath); val != "" {
		c.FeaturedPath = val
	}

	return nil
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if err := c.validateStorefront(); err != nil {
		return err
	}

	if err := c.validateIntegrations(); err != nil {
		return err
	}

	return nil
}

// validateServer validates server-related configuration.
func (c *Config) validateServer() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidServerPort
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	return nil
}

// validateStorage validates cart persistence configuration.
func (c *Config) validateStorage() error {
	switch c.StorageBackend {
	case StorageMemory:
	case StorageSQLite:
		if c.StoragePath == "" {
			return ErrInvalidStoragePath
		}
	default:
		return ErrInvalidStorageBackend
	}

	if c.CartKey == "" {
		return ErrInvalidCartKey
	}

	return nil
}

// validateStorefront validates the store identity.
func (c *Config) validateStorefront() error {
	for _, r := range c.WhatsAppNumber {
		if r < '0' || r > '9' {
			return ErrInvalidWhatsAppNumber
		}
	}
	if c.WhatsAppNumber == "" {
		return ErrInvalidWhatsAppNumber
	}

	return nil
}

// validateIntegrations validates catalog and contact configuration.
func (c *Config) validateIntegrations() error {
	if !isHTTPURL(c.CatalogURL) {
		return ErrInvalidCatalogURL
	}

	if c.CatalogLimit < 1 || c.CatalogLimit > 100 {
		return ErrInvalidCatalogLimit
	}

	if c.CatalogTimeout <= 0 {
		return ErrInvalidCatalogTimeout
	}

	if c.ContactEndpoint != "" && !isHTTPURL(c.ContactEndpoint) {
		return ErrInvalidContactEndpoint
	}

	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
