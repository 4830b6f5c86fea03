package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DBPath      string
	CORSOrigins string
	AppURL      string

	UniversityName string

	JWTSecret         string
	JWTTTLHours       int
	SupabaseJWTSecret string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	MailDriver string
	MailFrom   string
	AWSRegion  string

	UploadDriver   string
	UploadDir      string
	UploadMaxBytes int64
	S3Bucket       string
	S3PublicURL    string

	RedisAddr string

	LoginRatePerMinute int
}

var AppConfig *Config

// Load reads .env (if present) and the environment into AppConfig.
func Load() *Config {
	_ = godotenv.Load()

	AppConfig = &Config{
		Port:        GetEnv("PORT", "3000"),
		Env:         GetEnv("ENV", "development"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),
		DBPath:      GetEnv("DB_PATH", "./data/internship-portal.db"),
		CORSOrigins: GetEnv("CORS_ORIGINS", "*"),
		AppURL:      strings.TrimRight(GetEnv("APP_URL", "http://localhost:3000"), "/"),

		UniversityName: GetEnv("UNIVERSITY_NAME", "University Internship Office"),

		JWTSecret:         GetEnv("JWT_SECRET", ""),
		JWTTTLHours:       GetEnvInt("JWT_TTL_HOURS", 72),
		SupabaseJWTSecret: GetEnv("SUPABASE_JWT_SECRET", ""),

		GoogleClientID:     GetEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: GetEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  GetEnv("GOOGLE_REDIRECT_URL", "postmessage"),

		MailDriver: GetEnv("MAIL_DRIVER", "log"),
		MailFrom:   GetEnv("MAIL_FROM", ""),
		AWSRegion:  GetEnv("AWS_REGION", "us-east-1"),

		UploadDriver:   GetEnv("UPLOAD_DRIVER", "local"),
		UploadDir:      GetEnv("UPLOAD_DIR", "./data/uploads"),
		UploadMaxBytes: int64(GetEnvInt("UPLOAD_MAX_BYTES", 5*1024*1024)),
		S3Bucket:       GetEnv("S3_BUCKET", ""),
		S3PublicURL:    strings.TrimRight(GetEnv("S3_PUBLIC_URL", ""), "/"),

		RedisAddr: GetEnv("REDIS_ADDR", ""),

		LoginRatePerMinute: GetEnvInt("LOGIN_RATE_PER_MINUTE", 10),
	}

	if AppConfig.JWTSecret == "" && !AppConfig.IsProduction() {
		AppConfig.JWTSecret = "development-only-secret"
	}

	return AppConfig
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var problems []string

	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if c.JWTTTLHours <= 0 {
		problems = append(problems, "JWT_TTL_HOURS must be positive")
	}

	switch c.MailDriver {
	case "log":
	case "ses":
		if c.MailFrom == "" {
			problems = append(problems, "MAIL_FROM is required when MAIL_DRIVER=ses")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown MAIL_DRIVER %q", c.MailDriver))
	}

	switch c.UploadDriver {
	case "local":
		if c.UploadDir == "" {
			problems = append(problems, "UPLOAD_DIR is required when UPLOAD_DRIVER=local")
		}
	case "s3":
		if c.S3Bucket == "" {
			problems = append(problems, "S3_BUCKET is required when UPLOAD_DRIVER=s3")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown UPLOAD_DRIVER %q", c.UploadDriver))
	}

	if c.UploadMaxBytes <= 0 {
		problems = append(problems, "UPLOAD_MAX_BYTES must be positive")
	}
	if c.LoginRatePerMinute <= 0 {
		problems = append(problems, "LOGIN_RATE_PER_MINUTE must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != ""
}

func (c *Config) SupabaseEnabled() bool {
	return c.SupabaseJWTSecret != ""
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
