package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "BOOKSTAND_"

// Config is the process-wide configuration. It is loaded once at startup and
// never mutated afterwards; absence of a required value is a fatal startup
// condition, not a runtime error.
type Config struct {
	HTTPPort  int
	Database  Database
	JWTSecret string
	TokenTTL  time.Duration

	RateBurst  int
	RatePerSec int
}

// Database holds the connection parameters for the relational store.
type Database struct {
	Host     string
	Port     int
	Username string
	Password string
	Name     string
	SSLMode  string
}

// DSN renders the parameters as a PostgreSQL connection URL.
func (d Database) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.Username),
		url.QueryEscape(d.Password),
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
}

// Load reads configuration from the environment, optionally seeded from a
// .env file in the working directory.
func Load() (*Config, error) {
	// A missing .env is fine; system environment still applies.
	_ = godotenv.Load()

	cfg := &Config{}

	if err := loadEnvStringRequired(&cfg.Database.Host, envPrefix+"DB_HOST"); err != nil {
		return nil, err
	}
	if err := loadEnvIntRequired(&cfg.Database.Port, envPrefix+"DB_PORT"); err != nil {
		return nil, err
	}
	if err := loadEnvStringRequired(&cfg.Database.Username, envPrefix+"DB_USERNAME"); err != nil {
		return nil, err
	}
	if err := loadEnvStringRequired(&cfg.Database.Password, envPrefix+"DB_PASSWORD"); err != nil {
		return nil, err
	}
	if err := loadEnvStringRequired(&cfg.Database.Name, envPrefix+"DB_DATABASE"); err != nil {
		return nil, err
	}
	if err := loadEnvStringRequired(&cfg.JWTSecret, envPrefix+"JWT_SECRET"); err != nil {
		return nil, err
	}

	if err := loadEnvString(&cfg.Database.SSLMode, envPrefix+"DB_SSLMODE", "disable"); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&cfg.HTTPPort, envPrefix+"HTTP_PORT", 8080); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&cfg.TokenTTL, envPrefix+"TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&cfg.RateBurst, envPrefix+"RATE_BURST", 50); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&cfg.RatePerSec, envPrefix+"RATE_PER_SEC", 25); err != nil {
		return nil, err
	}

	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("%sHTTP_PORT must be between 1 and 65535", envPrefix)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("%sTOKEN_TTL must be positive", envPrefix)
	}

	return cfg, nil
}

func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringRequired(target *string, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return fmt.Errorf("required environment variable %s is not set", key)
	}
	*target = value
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvIntRequired(target *int, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return fmt.Errorf("required environment variable %s is not set", key)
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer value for %s: %v", key, err)
	}
	*target = parsed
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}
