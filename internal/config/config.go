package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables (hoặc .env qua godotenv)
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Redis    RedisConfig
	MinIO    MinIOConfig
	Worker   WorkerConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string

	// LegacyMessages trả nguyên văn message cũ ("Book Addeds", "succes", "Book Delete")
	LegacyMessages bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	Table    string

	// Pool limits, defaults: max 5, min 0, acquire 30s, idle 10s
	MaxConns          int
	MinConns          int
	MaxConnIdleTime   time.Duration
	AcquireTimeout    time.Duration
	MaxConnLifetime   time.Duration
	HealthCheckPeriod time.Duration

	MaxRetries int
	RetryDelay time.Duration
}

// UploadConfig - nơi lưu ảnh upload và route public để serve
type UploadConfig struct {
	Dir       string // ./public/img
	URLPrefix string // /img/
	Field     string // multipart field name
	MaxBytes  int64
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
	ListTTL  time.Duration
}

type MinIOConfig struct {
	Enabled   bool
	Endpoint  string // localhost:9000
	AccessKey string // minioadmin
	SecretKey string // minioadmin
	Bucket    string // book-images
	UseSSL    bool   // false for local
}

type WorkerConfig struct {
	Concurrency   int
	ThumbnailSize int
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:           getEnv("APP_NAME", "Book Records API"),
			Environment:    getEnv("APP_ENV", "development"),
			Port:           getEnv("APP_PORT", "3000"),
			Version:        getEnv("APP_VERSION", "1.0.0"),
			LegacyMessages: getEnvBool("LEGACY_MESSAGES", false),
		},
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "ravelware"),
			Password:          getEnv("DB_PASSWORD", ""),
			Database:          getEnv("DB_NAME", "simple-rest"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			Table:             getEnv("DB_TABLE", "book"),
			MaxConns:          getEnvInt("DB_MAX_CONNS", 5),
			MinConns:          getEnvInt("DB_MIN_CONNS", 0),
			MaxConnIdleTime:   getEnvDuration("DB_MAX_CONN_IDLE_TIME", 10*time.Second),
			AcquireTimeout:    getEnvDuration("DB_ACQUIRE_TIMEOUT", 30*time.Second),
			MaxConnLifetime:   getEnvDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			HealthCheckPeriod: getEnvDuration("DB_HEALTH_CHECK_PERIOD", time.Minute),
			MaxRetries:        getEnvInt("DB_MAX_RETRIES", 5),
			RetryDelay:        getEnvDuration("DB_RETRY_DELAY", time.Second),
		},
		Upload: UploadConfig{
			Dir:       getEnv("UPLOAD_DIR", "./public/img"),
			URLPrefix: getEnv("UPLOAD_URL_PREFIX", "/img/"),
			Field:     getEnv("UPLOAD_FIELD", "image"),
			MaxBytes:  int64(getEnvInt("UPLOAD_MAX_BYTES", 10<<20)),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			ListTTL:  getEnvDuration("CACHE_LIST_TTL", 5*time.Minute),
		},
		MinIO: MinIOConfig{
			Enabled:   getEnvBool("MINIO_ENABLED", false),
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "book-images"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Worker: WorkerConfig{
			Concurrency:   getEnvInt("WORKER_CONCURRENCY", 5),
			ThumbnailSize: getEnvInt("THUMBNAIL_SIZE", 300),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	if c.Upload.Dir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	if !strings.HasPrefix(c.Upload.URLPrefix, "/") || !strings.HasSuffix(c.Upload.URLPrefix, "/") || len(c.Upload.URLPrefix) < 2 {
		return fmt.Errorf("UPLOAD_URL_PREFIX must start and end with '/', got %q", c.Upload.URLPrefix)
	}
	if c.Upload.Field == "" {
		return fmt.Errorf("UPLOAD_FIELD must not be empty")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if c.Database.Table == "" {
		return fmt.Errorf("DB_TABLE must not be empty")
	}
	if c.Database.MaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS")
	}
	if c.Database.MaxRetries < 1 {
		return fmt.Errorf("DB_MAX_RETRIES must be at least 1")
	}

	// Production environment phải có DB password
	if c.App.Environment == "production" && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD must be set in production")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
