package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	AWS       AWSConfig
	Email     EmailConfig
	Hackathon HackathonConfig
	Worker    WorkerConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins []string // CORS_ALLOWED_ORIGINS, comma-separated; "*" allows all
	PublicBaseURL      string   // used in confirmation mails; empty = derive from the request
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// AWSConfig holds AWS credentials and the QR code bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	QRBucket             string
	QRPublicRead         bool
	PresignExpireMinutes int
}

// EmailConfig selects and configures the mail provider ("ses" or "noop").
type EmailConfig struct {
	Provider           string
	FromAddress        string
	FromName           string
	InsecureSkipVerify bool
}

// HackathonConfig bounds the team size, lead included.
type HackathonConfig struct {
	MinMembers int
	MaxMembers int
}

// WorkerConfig controls the in-process email worker of the API server.
type WorkerConfig struct {
	EmbeddedEmailWorker bool
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: splitTrim(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ","),
			PublicBaseURL:      strings.TrimSuffix(getEnv("PUBLIC_BASE_URL", ""), "/"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "devhost"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", "ap-south-1"),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			QRBucket:             getEnv("AWS_S3_QR_BUCKET", "devhost-qr-codes"),
			QRPublicRead:         getEnvBool("AWS_S3_QR_PUBLIC_READ", false),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		Email: EmailConfig{
			Provider:           getEnv("EMAIL_PROVIDER", "noop"),
			FromAddress:        getEnv("EMAIL_FROM_ADDRESS", "noreply@devhost.example.com"),
			FromName:           getEnv("EMAIL_FROM_NAME", "DevHost"),
			InsecureSkipVerify: getEnvBool("EMAIL_INSECURE_SKIP_VERIFY", false),
		},
		Hackathon: HackathonConfig{
			MinMembers: getEnvInt("HACKATHON_MIN_MEMBERS", 2),
			MaxMembers: getEnvInt("HACKATHON_MAX_MEMBERS", 4),
		},
		Worker: WorkerConfig{
			EmbeddedEmailWorker: getEnvBool("EMBEDDED_EMAIL_WORKER", true),
		},
	}
	if cfg.Hackathon.MinMembers < 1 || cfg.Hackathon.MaxMembers < cfg.Hackathon.MinMembers {
		return nil, fmt.Errorf("invalid hackathon team bounds %d..%d", cfg.Hackathon.MinMembers, cfg.Hackathon.MaxMembers)
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
