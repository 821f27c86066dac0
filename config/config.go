// Package config loads server and CLI configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds every setting the binary reads from the environment. Storage
// variables keep the names the document server has always used.
type Config struct {
	Port int `validate:"min=1,max=65535"`

	StorageType      string `validate:"oneof=memory filesystem sqlite s3 postgres"`
	LocalStoragePath string `validate:"required_if=StorageType filesystem"`
	DataSourceName   string `validate:"required_if=StorageType sqlite"`
	DatabaseURL      string `validate:"required_if=StorageType postgres"`
	S3BucketName     string `validate:"required_if=StorageType s3"`
	S3Region         string
	S3Endpoint       string `validate:"omitempty,url"`
	S3AccessKey      string `validate:"required_with=S3SecretKey"`
	S3SecretKey      string `validate:"required_with=S3AccessKey"`

	JWTSecret          string
	JWTExpirationHours int `validate:"min=1"`

	AMQPURL      string `validate:"omitempty,url"`
	AMQPExchange string `validate:"required_with=AMQPURL"`

	SaveDebounce time.Duration

	LogLevel  string `validate:"oneof=trace debug info warn error"`
	LogFormat string `validate:"oneof=text json"`
}

// Load reads a .env file when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		StorageType:      getEnv("STORAGE_TYPE", "memory"),
		LocalStoragePath: getEnv("LOCAL_STORAGE_PATH", "./data"),
		DataSourceName:   os.Getenv("DATA_SOURCE_NAME"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		S3BucketName:     os.Getenv("S3_BUCKET_NAME"),
		S3Region:         os.Getenv("S3_REGION"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:      os.Getenv("S3_SECRET_KEY"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		AMQPURL:          os.Getenv("AMQP_URL"),
		AMQPExchange:     getEnv("AMQP_EXCHANGE", "resume.events"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(getEnv("PORT", "3002")); err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	if cfg.JWTExpirationHours, err = strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24")); err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %w", err)
	}
	if cfg.SaveDebounce, err = time.ParseDuration(getEnv("SAVE_DEBOUNCE", "1s")); err != nil {
		return nil, fmt.Errorf("invalid SAVE_DEBOUNCE: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and the settings each storage type requires.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.SaveDebounce <= 0 {
		return fmt.Errorf("config error: SAVE_DEBOUNCE must be positive, got %s", c.SaveDebounce)
	}
	return nil
}

// ConfigureLogging applies the log level and format to the standard logrus logger.
func (c *Config) ConfigureLogging() error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	logrus.SetLevel(level)
	if c.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
