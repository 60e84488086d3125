package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	BotToken       string
	ProgressStep   int    `validate:"gt=0"`
	MigrationsPath string `validate:"required"`
	MetricsAddr    string
	Database       DatabaseConfig
	Remote         RemoteConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `validate:"required"`
	Port     string `validate:"required,numeric"`
	Name     string `validate:"required"`
	User     string `validate:"required"`
	Password string `validate:"required"`
}

// RemoteConfig holds the location of the word lookup service
type RemoteConfig struct {
	Host    string        `validate:"required"`
	Port    string        `validate:"required,numeric"`
	Timeout time.Duration `validate:"gt=0"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	progressStep, err := getEnvInt("PROGRESS_STEP", 1)
	if err != nil {
		return nil, err
	}
	timeout, err := getEnvDuration("REMOTE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BotToken:       os.Getenv("BOT_TOKEN"),
		ProgressStep:   progressStep,
		MigrationsPath: getEnv("MIGRATIONS_PATH", "file://migrations"),
		MetricsAddr:    os.Getenv("METRICS_ADDR"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "dictionary"),
			User:     getEnv("DB_USER", "dictionary"),
			Password: os.Getenv("DB_PASSWORD"),
		},
		Remote: RemoteConfig{
			Host:    getEnv("REMOTE_HOST", "localhost"),
			Port:    getEnv("REMOTE_PORT", "9090"),
			Timeout: timeout,
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// RemoteBaseURL returns the base URL of the word lookup service
func (c *Config) RemoteBaseURL() string {
	return fmt.Sprintf("http://%s:%s", c.Remote.Host, c.Remote.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
