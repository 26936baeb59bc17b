package config

import (
	"fmt"
	"os"
	"strconv"

	"go-restaurant-authz/pkg/validator"

	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
)

// Development fallbacks; a deployment must override both.
const (
	defaultJWTSecret          = "change-me-in-production-please"
	defaultSuperAdminPassword = "admin123"
)

// Config holds all configuration for the service
type Config struct {
	// Server
	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"oneof=trace debug info warn error"`

	// Database
	DBDriver    string `validate:"oneof=postgres sqlite"`
	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string

	// JWT
	JWTSecret   string `validate:"required,min=16"`
	JWTTTLHours int    `validate:"gt=0"`

	// Bootstrap account, created on first start
	SuperAdminEmail    string `validate:"required,email"`
	SuperAdminPassword string `validate:"required,min=6"`
}

// Load reads .env (optional) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "3000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),
		DBPort:      getEnv("DB_PORT", "5432"),

		JWTSecret:   getEnv("JWT_SECRET", defaultJWTSecret),
		JWTTTLHours: getEnvInt("JWT_TTL_HOURS", 24),

		SuperAdminEmail:    getEnv("SUPER_ADMIN_EMAIL", "superadmin@example.com"),
		SuperAdminPassword: getEnv("SUPER_ADMIN_PASSWORD", defaultSuperAdminPassword),
	}

	if errs := validator.ValidateStruct(cfg); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("invalid config: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	for _, key := range cfg.InsecureDefaults() {
		log.Warnf("%s is not set; using the built-in development value", key)
	}
	return cfg, nil
}

// InsecureDefaults lists the secret settings still holding their
// development fallback.
func (c *Config) InsecureDefaults() []string {
	var keys []string
	if c.JWTSecret == defaultJWTSecret {
		keys = append(keys, "JWT_SECRET")
	}
	if c.SuperAdminPassword == defaultSuperAdminPassword {
		keys = append(keys, "SUPER_ADMIN_PASSWORD")
	}
	return keys
}

// DSN builds the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.DBDriver == "sqlite" {
		return "restaurant-authz.db"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
