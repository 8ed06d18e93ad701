package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port         string `yaml:"port" env:"SERVER_PORT"`
		Mode         string `yaml:"mode" env:"SERVER_MODE"`
		PublicURL    string `yaml:"public_url" env:"SERVER_PUBLIC_URL"`
		ReadTimeout  string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		// empty means X-Forwarded-For is ignored
		TrustedProxies []string `yaml:"trusted_proxies" env:"SERVER_TRUSTED_PROXIES"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	Redis struct {
		Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
	} `yaml:"redis"`

	Upstream struct {
		BaseURL string `yaml:"base_url" env:"UPSTREAM_BASE_URL"`
		Timeout string `yaml:"timeout" env:"UPSTREAM_TIMEOUT"`
		// AI review calls are slower than plain CRUD calls
		AIReviewTimeout string `yaml:"ai_review_timeout" env:"UPSTREAM_AI_REVIEW_TIMEOUT"`
		UploadTimeout   string `yaml:"upload_timeout" env:"UPSTREAM_UPLOAD_TIMEOUT"`
	} `yaml:"upstream"`

	JWT struct {
		Secret string `yaml:"secret" env:"JWT_SECRET"`
		Issuer string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Wizard struct {
		Store         string `yaml:"store" env:"WIZARD_STORE"` // postgres | memory
		SessionTTL    string `yaml:"session_ttl" env:"WIZARD_SESSION_TTL"`
		SweepInterval string `yaml:"sweep_interval" env:"WIZARD_SWEEP_INTERVAL"`
	} `yaml:"wizard"`

	Uploads struct {
		Mode        string `yaml:"mode" env:"UPLOADS_MODE"` // upstream | local
		StoragePath string `yaml:"storage_path" env:"UPLOADS_STORAGE_PATH"`
		MaxMemoryMB int    `yaml:"max_memory_mb" env:"UPLOADS_MAX_MEMORY_MB"`
	} `yaml:"uploads"`

	Cache struct {
		ReferenceTTL string `yaml:"reference_ttl" env:"CACHE_REFERENCE_TTL"`
		ListingTTL   string `yaml:"listing_ttl" env:"CACHE_LISTING_TTL"`
	} `yaml:"cache"`

	Email struct {
		Provider    string `yaml:"provider" env:"EMAIL_PROVIDER"` // log | smtp | sendgrid
		FromName    string `yaml:"from_name" env:"EMAIL_FROM_NAME"`
		FromEmail   string `yaml:"from_email" env:"EMAIL_FROM_EMAIL"`
		SMTPHost    string `yaml:"smtp_host" env:"EMAIL_SMTP_HOST"`
		SMTPPort    int    `yaml:"smtp_port" env:"EMAIL_SMTP_PORT"`
		SMTPUser    string `yaml:"smtp_user" env:"EMAIL_SMTP_USER"`
		SMTPPass    string `yaml:"smtp_password" env:"EMAIL_SMTP_PASSWORD"`
		SMTPUseTLS  bool   `yaml:"smtp_use_tls" env:"EMAIL_SMTP_USE_TLS"`
		SendGridKey string `yaml:"sendgrid_key" env:"EMAIL_SENDGRID_KEY"`
	} `yaml:"email"`

	Rollbar struct {
		Token       string `yaml:"token" env:"ROLLBAR_TOKEN"`
		Environment string `yaml:"environment" env:"ROLLBAR_ENVIRONMENT"`
		CodeVersion string `yaml:"code_version" env:"ROLLBAR_CODE_VERSION"`
	} `yaml:"rollbar"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env only fills variables that are not already exported
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.PublicURL = "http://localhost:8080"
	config.Server.ReadTimeout = "15s"
	config.Server.WriteTimeout = "2m"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "skillmart"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.Redis.Addr = "localhost:6379"

	config.Upstream.BaseURL = "http://localhost:5000"
	config.Upstream.Timeout = "10s"
	config.Upstream.AIReviewTimeout = "60s"
	config.Upstream.UploadTimeout = "5m"

	config.JWT.Issuer = "skillmart.identity"

	config.Wizard.Store = "postgres"
	config.Wizard.SessionTTL = "72h"
	config.Wizard.SweepInterval = "15m"

	config.Uploads.Mode = "upstream"
	config.Uploads.StoragePath = "uploads"
	config.Uploads.MaxMemoryMB = 32

	config.Cache.ReferenceTTL = "1h"
	config.Cache.ListingTTL = "30s"

	config.Email.Provider = "log"
	config.Email.FromName = "SkillMart"
	config.Email.FromEmail = "noreply@skillmart.local"
	config.Email.SMTPPort = 587

	config.Rollbar.Environment = "development"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if config.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream base URL is required")
	}

	switch strings.ToLower(config.Wizard.Store) {
	case "postgres":
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required for the postgres wizard store")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown wizard store %q", config.Wizard.Store)
	}

	switch strings.ToLower(config.Uploads.Mode) {
	case "upstream", "local":
	default:
		return fmt.Errorf("unknown uploads mode %q", config.Uploads.Mode)
	}

	switch strings.ToLower(config.Email.Provider) {
	case "log", "smtp":
	case "sendgrid":
		if config.Email.SendGridKey == "" {
			return fmt.Errorf("sendgrid key is required for the sendgrid email provider")
		}
	default:
		return fmt.Errorf("unknown email provider %q", config.Email.Provider)
	}

	durations := map[string]string{
		"server read timeout":     config.Server.ReadTimeout,
		"server write timeout":    config.Server.WriteTimeout,
		"upstream timeout":        config.Upstream.Timeout,
		"upstream AI timeout":     config.Upstream.AIReviewTimeout,
		"upstream upload timeout": config.Upstream.UploadTimeout,
		"wizard session TTL":      config.Wizard.SessionTTL,
		"wizard sweep interval":   config.Wizard.SweepInterval,
		"reference cache TTL":     config.Cache.ReferenceTTL,
		"listing cache TTL":       config.Cache.ListingTTL,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Server.Mode) == "production"
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
