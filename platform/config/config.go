// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq scheduler and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetPoolHourlyResetCron() string
	GetPoolDailyResetCron() string
}

// DialerConfig provides tunables for the power dialer core.
type DialerConfig interface {
	GetDefaultMaxAttempts() int
	GetDefaultQueueLimit() int
	GetCallbackBatchSize() int
	GetPoolMaxCallsPerHour() int
	GetPoolCooldownMinutes() int
}

// StorageConfig provides settings for MinIO S3-compatible storage.
type StorageConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetRecordingsBucket() string
	IsMinIOEnabled() bool
}

// AnnotatorConfig provides settings for the optional transcript annotator.
type AnnotatorConfig interface {
	GetGeminiAPIKey() string
	GetAnnotatorModel() string
	IsAnnotatorEnabled() bool
}

// WebhookConfig provides the provider account credentials used to
// download recordings and verify callbacks.
type WebhookConfig interface {
	GetProviderAccountSID() string
	GetProviderAuthToken() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	JWTAccessSecret     string
	CORSAllowAll        bool
	CORSOrigins         []string
	CORSAllowCreds      bool
	RedisURL            string
	RedisTLSInsecure    bool
	AsynqQueueName      string
	AsynqConcurrency    int
	PoolHourlyResetCron string
	PoolDailyResetCron  string
	DefaultMaxAttempts  int
	DefaultQueueLimit   int
	CallbackBatchSize   int
	PoolMaxCallsPerHour int
	PoolCooldownMinutes int
	MinIOEndpoint       string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOUseSSL         bool
	MinIOMaxFileSize    int64
	RecordingsBucket    string
	GeminiAPIKey        string
	AnnotatorModel      string
	ProviderAccountSID  string
	ProviderAuthToken   string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string            { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool      { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string      { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int       { return c.AsynqConcurrency }
func (c *Config) GetPoolHourlyResetCron() string { return c.PoolHourlyResetCron }
func (c *Config) GetPoolDailyResetCron() string  { return c.PoolDailyResetCron }

// DialerConfig implementation
func (c *Config) GetDefaultMaxAttempts() int { return c.DefaultMaxAttempts }
func (c *Config) GetDefaultQueueLimit() int  { return c.DefaultQueueLimit }
func (c *Config) GetCallbackBatchSize() int  { return c.CallbackBatchSize }

func (c *Config) GetPoolMaxCallsPerHour() int { return c.PoolMaxCallsPerHour }
func (c *Config) GetPoolCooldownMinutes() int { return c.PoolCooldownMinutes }

// StorageConfig implementation
func (c *Config) GetMinIOEndpoint() string    { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string   { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string   { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool        { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64  { return c.MinIOMaxFileSize }
func (c *Config) GetRecordingsBucket() string { return c.RecordingsBucket }
func (c *Config) IsMinIOEnabled() bool        { return c.MinIOEndpoint != "" }

// AnnotatorConfig implementation
func (c *Config) GetGeminiAPIKey() string   { return c.GeminiAPIKey }
func (c *Config) GetAnnotatorModel() string { return c.AnnotatorModel }
func (c *Config) IsAnnotatorEnabled() bool  { return c.GeminiAPIKey != "" }

// WebhookConfig implementation
func (c *Config) GetProviderAccountSID() string { return c.ProviderAccountSID }
func (c *Config) GetProviderAuthToken() string  { return c.ProviderAuthToken }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		JWTAccessSecret:     getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:        corsAllowAll,
		CORSOrigins:         corsOrigins,
		CORSAllowCreds:      strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:            getEnv("REDIS_URL", ""),
		RedisTLSInsecure:    strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:      getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:    mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		PoolHourlyResetCron: getEnv("POOL_HOURLY_RESET_CRON", "0 * * * *"),
		PoolDailyResetCron:  getEnv("POOL_DAILY_RESET_CRON", "5 0 * * *"),
		DefaultMaxAttempts:  mustInt(getEnv("DIALER_DEFAULT_MAX_ATTEMPTS", "5")),
		DefaultQueueLimit:   mustInt(getEnv("DIALER_DEFAULT_QUEUE_LIMIT", "50")),
		CallbackBatchSize:   mustInt(getEnv("DIALER_CALLBACK_BATCH_SIZE", "20")),
		PoolMaxCallsPerHour: mustInt(getEnv("POOL_MAX_CALLS_PER_HOUR", "20")),
		PoolCooldownMinutes: mustInt(getEnv("POOL_COOLDOWN_MINUTES", "30")),
		MinIOEndpoint:       getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:      getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:      getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:         strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:    mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "104857600")),
		RecordingsBucket:    getEnv("MINIO_BUCKET_CALL_RECORDINGS", "call-recordings"),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		AnnotatorModel:      getEnv("ANNOTATOR_MODEL", "gemini-2.0-flash"),
		ProviderAccountSID:  getEnv("TELEPHONY_ACCOUNT_SID", ""),
		ProviderAuthToken:   getEnv("TELEPHONY_WEBHOOK_AUTH_TOKEN", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.DefaultMaxAttempts < 1 {
		return nil, fmt.Errorf("DIALER_DEFAULT_MAX_ATTEMPTS must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
