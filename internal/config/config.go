// Package config loads service settings from .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string
	GRPCPort string
	GinMode  string

	DatabaseURL string
	DBUser      string
	DBPassword  string
	DBHost      string
	DBPort      string
	DBName      string

	RedisURL string

	JWTSecret  string
	JWTTTL     time.Duration
	TOTPIssuer string

	ZoomBaseURL        string
	ZoomToken          string
	IntegrationTimeout time.Duration

	LogLevel   string
	ReportCron string
}

// LoadDotEnv loads the first .env found among paths, falling back to the
// process environment when none exists.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env", "../.env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err == nil {
			return
		}
		log.Debug("No .env file found", "path", p)
	}
	log.Info("No .env file found, using system environment variables")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("GRPC_PORT", "50051")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("TOTP_ISSUER", "LoanService")
	v.SetDefault("INTEGRATION_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REPORT_CRON", "0 0 * * *")
	return v
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	v := newViper()

	cfg := &Config{
		Port:        v.GetString("PORT"),
		GRPCPort:    v.GetString("GRPC_PORT"),
		GinMode:     v.GetString("GIN_MODE"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		DBUser:      v.GetString("DB_USER"),
		DBPassword:  v.GetString("DB_PASSWORD"),
		DBHost:      v.GetString("DB_HOST"),
		DBPort:      v.GetString("DB_PORT"),
		DBName:      v.GetString("DB_NAME"),
		RedisURL:    v.GetString("REDIS_URL"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		TOTPIssuer:  v.GetString("TOTP_ISSUER"),
		ZoomBaseURL: v.GetString("ZOOM_BASE_URL"),
		ZoomToken:   v.GetString("ZOOM_TOKEN"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		ReportCron:  v.GetString("REPORT_CRON"),
	}

	var err error
	if cfg.JWTTTL, err = time.ParseDuration(v.GetString("JWT_TTL")); err != nil {
		return nil, fmt.Errorf("JWT_TTL: %w", err)
	}
	if cfg.IntegrationTimeout, err = time.ParseDuration(v.GetString("INTEGRATION_TIMEOUT")); err != nil {
		return nil, fmt.Errorf("INTEGRATION_TIMEOUT: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings only the API server needs.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

// MySQLDSN returns DATABASE_URL when set, otherwise a DSN assembled from the
// DB_* variables.
func (c *Config) MySQLDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// ZoomEnabled reports whether a meeting-link provider is configured.
func (c *Config) ZoomEnabled() bool {
	return c.ZoomBaseURL != ""
}

// NewLogger builds the service logger at the configured level.
func NewLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}
