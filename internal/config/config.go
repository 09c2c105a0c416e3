package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// It is built once at startup and treated as read-only afterwards.
type Config struct {
	AppPort        string
	AppEnv         string
	LogLevel       string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string
	SNSTopicARN    string // empty disables lifecycle event publishing
	TokenSecret    string
	TokenExpiry    time.Duration
	AllowedOrigins []string // CORS allowed origins
	CipherKey      string
	CipherIV       string // optional hex IV; empty means a fresh IV per encryption
	ImageMaxWidth  int
	ImageMaxBytes  int64
	// LastPlayedOffset is added to the UTC midnight of a submitted lastPlayed date.
	LastPlayedOffset time.Duration
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users   string
	Puzzles string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AWSRegion:      getEnv("AWS_REGION", "eu-north-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:   getEnv("DYNAMO_TABLE_USERS", "users"),
			Puzzles: getEnv("DYNAMO_TABLE_PUZZLES", "puzzles"),
		},
		S3BucketName:     getEnv("S3_BUCKET_NAME", "puzzle-images"),
		SNSTopicARN:      getEnv("SNS_TOPIC_ARN", ""),
		TokenSecret:      getEnv("TOKEN_SECRET", ""),
		TokenExpiry:      getEnvDuration("TOKEN_EXPIRY", time.Hour),
		AllowedOrigins:   strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		CipherKey:        getEnv("CIPHER_KEY", ""),
		CipherIV:         getEnv("CIPHER_IV", ""),
		ImageMaxWidth:    getEnvInt("IMAGE_MAX_WIDTH", 1000),
		ImageMaxBytes:    int64(getEnvInt("IMAGE_MAX_BYTES", 10<<20)),
		LastPlayedOffset: getEnvDuration("LAST_PLAYED_OFFSET", 2*time.Hour),
	}
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// Validate reports configuration that would make the service unsafe to run.
func (c *Config) Validate() error {
	var errs []error
	if c.CipherKey == "" {
		errs = append(errs, errors.New("CIPHER_KEY is required"))
	}
	if c.TokenSecret == "" {
		errs = append(errs, errors.New("TOKEN_SECRET is required"))
	}
	if c.ImageMaxWidth < 1 {
		errs = append(errs, errors.New("IMAGE_MAX_WIDTH must be positive"))
	}
	if c.ImageMaxBytes < 1 {
		errs = append(errs, errors.New("IMAGE_MAX_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

// SlogLevel maps LOG_LEVEL onto a slog level; unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogValue keeps secrets out of structured logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("port", c.AppPort),
		slog.String("env", c.AppEnv),
		slog.String("aws_region", c.AWSRegion),
		slog.String("aws_endpoint", c.AWSEndpointURL),
		slog.String("users_table", c.DynamoTables.Users),
		slog.String("puzzles_table", c.DynamoTables.Puzzles),
		slog.String("bucket", c.S3BucketName),
		slog.Bool("events_enabled", c.SNSTopicARN != ""),
		slog.Duration("token_expiry", c.TokenExpiry),
		slog.Int("image_max_width", c.ImageMaxWidth),
		slog.Int64("image_max_bytes", c.ImageMaxBytes),
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
