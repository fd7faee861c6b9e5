package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	developmentJWTSecret = "sembako-development-secret"
)

// DatabaseConfig selects the GORM dialector and its DSN.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// Config holds every process-wide setting. It is built once at startup and
// passed explicitly to the components that need it.
type Config struct {
	Port           string
	Env            string
	Database       DatabaseConfig
	JWTSecret      string
	TokenTTL       time.Duration
	RequestTimeout time.Duration
	RabbitMQURL    string
	SeedData       bool
}

// IsDevelopment reports whether internal error details may be shown to clients.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Load reads an optional .env file, then environment variables, on top of defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	v := viper.New()
	v.SetDefault("APP_PORT", ":3000")
	v.SetDefault("APP_ENV", EnvProduction)
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "file:sembako.db?_foreign_keys=on")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("SEED_DATA", true)
	v.AutomaticEnv()

	cfg := &Config{
		Port: v.GetString("APP_PORT"),
		Env:  v.GetString("APP_ENV"),
		Database: DatabaseConfig{
			Driver: v.GetString("DB_DRIVER"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		JWTSecret:      v.GetString("JWT_SECRET"),
		TokenTTL:       v.GetDuration("TOKEN_TTL"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		SeedData:       v.GetBool("SEED_DATA"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want %q or %q)", c.Database.Driver, DriverSQLite, DriverPostgres)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET is required outside development")
		}
		c.JWTSecret = developmentJWTSecret
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}
