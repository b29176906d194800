package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIBaseURL is the backend address used for local development
const DefaultAPIBaseURL = "http://127.0.0.1:5000/api/v1"

// Config holds the application configuration
type Config struct {
	Env      string
	API      APIConfig
	Session  SessionConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Audit    AuditConfig
	Server   ServerConfig
	CORS     CORSConfig
	Metrics  MetricsConfig
	Log      LogConfig
}

type APIConfig struct {
	BaseURL           string
	Timeout           time.Duration
	DashboardTimeout  time.Duration
	HealthTimeout     time.Duration
	HealthPrecheck    bool
	RequestsPerSecond float64
	Burst             int
}

type SessionConfig struct {
	Store string // file, redis, memory
	// Namespace prefixes Key, so several desks can share one Redis
	Namespace string
	Key       string
	File      string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	LogLevel string
}

type AuditConfig struct {
	Enabled bool
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type MetricsConfig struct {
	Enabled bool
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from a .env file (if present) and the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		Env: getEnv("APP_ENV", "production"),
		API: APIConfig{
			BaseURL:           strings.TrimRight(getEnv("API_BASE_URL", DefaultAPIBaseURL), "/"),
			Timeout:           getDuration("API_TIMEOUT", 15*time.Second),
			DashboardTimeout:  getDuration("API_DASHBOARD_TIMEOUT", 10*time.Second),
			HealthTimeout:     getDuration("API_HEALTH_TIMEOUT", 5*time.Second),
			HealthPrecheck:    getBool("API_HEALTH_PRECHECK", true),
			RequestsPerSecond: getFloat("API_RATE_LIMIT_RPS", 0),
			Burst:             getInt("API_RATE_LIMIT_BURST", 5),
		},
		Session: SessionConfig{
			Store:     getEnv("SESSION_STORE", "file"),
			Namespace: getEnv("SESSION_NAMESPACE", ""),
			Key:       getEnv("SESSION_KEY", "authSession"),
			File:      getEnv("SESSION_FILE", defaultSessionFile()),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "clinic_desk"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			LogLevel: getEnv("DB_LOG_LEVEL", "warn"),
		},
		Audit: AuditConfig{
			Enabled: getBool("AUDIT_ENABLED", false),
		},
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "127.0.0.1"),
			Port:         getInt("SERVER_PORT", 8090),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
			AllowedMethods: getList("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: getList("CORS_ALLOWED_HEADERS", []string{"Accept", "Content-Type", "Authorization"}),
		},
		Metrics: MetricsConfig{
			Enabled: getBool("METRICS_ENABLED", true),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	return cfg, nil
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 || c.API.DashboardTimeout <= 0 || c.API.HealthTimeout <= 0 {
		return fmt.Errorf("API timeouts must be positive")
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("API_RATE_LIMIT_RPS must not be negative")
	}

	switch c.Session.Store {
	case "file":
		if c.Session.File == "" {
			return fmt.Errorf("SESSION_FILE is required when SESSION_STORE=file")
		}
	case "redis", "memory":
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.Session.Store)
	}
	if c.Session.Key == "" {
		return fmt.Errorf("SESSION_KEY must not be empty")
	}

	if c.Audit.Enabled && c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required when AUDIT_ENABLED=true")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.Server.Port)
	}

	return nil
}

// IsDevelopment reports whether the client runs against a development backend
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "clinic-desk", "session.json")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
