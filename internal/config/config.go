package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Store    StoreConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	Redis    RedisConfig
	Mail     MailConfig
	Payments PaymentsConfig
	Crypto   CryptoConfig
}

type CryptoConfig struct {
	PrivateKey string
}

type ServerConfig struct {
	Host      string
	Port      int
	PublicURL string
	// RateLimit is the per-client requests per second accepted by the API.
	RateLimit int
	LogLevel  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Provider   string // postgres, memory
	BatchLimit int
}

type JWTConfig struct {
	Secret string
}

type StorageConfig struct {
	Provider string // s3, r2, none
	S3       S3Config
}

type S3Config struct {
	BucketName string `env:"S3_BUCKET_NAME" required:"true"`
	Endpoint   string `env:"S3_ENDPOINT"`
	Region     string `env:"S3_REGION" required:"true"`
	AccessKey  string `env:"S3_ACCESS_KEY" required:"true"`
	SecretKey  string `env:"S3_SECRET_KEY" required:"true"`
}

type WorkerConfig struct {
	Enabled     bool
	Concurrency int
}

type RedisConfig struct {
	Addr     string
	Password string
	Username string
	DB       int
}

type MailConfig struct {
	SendGridKey     string
	FromName        string
	FromEmail       string
	OpsEmail        string
	MaxPerHour      int
	AlertDigestCron string
}

type PaymentsConfig struct {
	MonerooWebhookSecret string
	SuccessStatuses      []string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "localhost"),
			Port:      getEnvAsInt("SERVER_PORT", 8080),
			PublicURL: getEnv("PUBLIC_URL", "http://localhost:8080"),
			RateLimit: getEnvAsInt("SERVER_RATE_LIMIT", 20),
			LogLevel:  getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", ""),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", ""),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Name:     getEnv("POSTGRES_DB", "ndara"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Store: StoreConfig{
			Provider:   getEnv("STORE_PROVIDER", "postgres"),
			BatchLimit: getEnvAsInt("STORE_BATCH_LIMIT", 500),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Storage: StorageConfig{
			Provider: getEnv("STORAGE_PROVIDER", "none"),
			S3: S3Config{
				BucketName: getEnv("S3_BUCKET_NAME", ""),
				Endpoint:   getEnv("S3_ENDPOINT", ""),
				Region:     getEnv("S3_REGION", ""),
				AccessKey:  getEnv("S3_ACCESS_KEY", ""),
				SecretKey:  getEnv("S3_SECRET_KEY", ""),
			},
		},
		Worker: WorkerConfig{
			Enabled:     getEnvAsBool("WORKER_ENABLED", true),
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 10),
		},
		Redis: RedisConfig{
			Addr:     fmt.Sprintf("%s:%d", getEnv("REDIS_HOST", "localhost"), getEnvAsInt("REDIS_PORT", 6379)),
			Password: getEnv("REDIS_PASSWORD", ""),
			Username: getEnv("REDIS_USERNAME", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Mail: MailConfig{
			SendGridKey:     getEnv("SENDGRID_API_KEY", ""),
			FromName:        getEnv("MAIL_FROM_NAME", "Ndara Afrique"),
			FromEmail:       getEnv("MAIL_FROM_EMAIL", "noreply@ndara-afrique.com"),
			OpsEmail:        getEnv("MAIL_OPS_EMAIL", ""),
			MaxPerHour:      getEnvAsInt("MAIL_MAX_PER_HOUR", 10),
			AlertDigestCron: getEnv("SECURITY_DIGEST_CRON", "0 7 * * *"),
		},
		Payments: PaymentsConfig{
			MonerooWebhookSecret: getEnv("MONEROO_WEBHOOK_SECRET", ""),
			SuccessStatuses:      getEnvAsList("MONEROO_SUCCESS_STATUSES", []string{"success", "successful"}),
		},
		Crypto: CryptoConfig{
			PrivateKey: getEnv("PRIVATE_KEY", ""),
		},
	}

	if cfg.Store.BatchLimit <= 1 {
		return nil, fmt.Errorf("STORE_BATCH_LIMIT must be greater than 1, got %d", cfg.Store.BatchLimit)
	}
	switch cfg.Store.Provider {
	case "postgres", "memory":
	default:
		return nil, fmt.Errorf("unknown STORE_PROVIDER %q", cfg.Store.Provider)
	}

	return cfg, nil
}

// MissingStoreEnv names the first required database variable that is not set,
// or returns "" when the document store can be reached.
func (c *Config) MissingStoreEnv() string {
	if c.Store.Provider == "memory" {
		return ""
	}
	switch {
	case c.Database.Host == "":
		return "POSTGRES_HOST"
	case c.Database.User == "":
		return "POSTGRES_USER"
	case c.Database.Name == "":
		return "POSTGRES_DB"
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
