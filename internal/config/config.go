package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	Payroll      PayrollConfig
	Notification NotificationConfig
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int32
	MinConns    int32
	AutoMigrate bool
}

// JWTConfig holds the HS256 secret used to verify bearer tokens
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	Locale             string
	CORSAllowedOrigins []string
}

type PayrollConfig struct {
	EmployeeTimeout     time.Duration
	DefaultLeaveQuota   int
	DegradeOnFetchError bool
	AutoGenerate        bool
	AutoGenerateSpec    string
	SystemActor         string
}

type NotificationConfig struct {
	Workers        int
	QueueSize      int
	BatchSize      int
	FlushInterval  time.Duration
	WebhookURL     string
	WebhookToken   string
	WebhookTimeout time.Duration

	// OAuth2 client credentials; when set they replace WebhookToken
	WebhookOAuthTokenURL     string
	WebhookOAuthClientID     string
	WebhookOAuthClientSecret string
	WebhookOAuthScopes       []string
}

// Load reads the environment after an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 25)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, err
	}
	autoMigrate, err := getEnvBool("DB_AUTO_MIGRATE", false)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        dbPort,
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "hris_payroll"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		MaxConns:    int32(maxConns),
		MinConns:    int32(minConns),
		AutoMigrate: autoMigrate,
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Locale:             getEnv("APP_LOCALE", "en"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Payroll configuration
	if config.Payroll, err = loadPayroll(); err != nil {
		return nil, err
	}

	// Notification configuration
	if config.Notification, err = loadNotification(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadPayroll() (PayrollConfig, error) {
	timeout, err := getEnvDuration("PAYROLL_EMPLOYEE_TIMEOUT", 15*time.Second)
	if err != nil {
		return PayrollConfig{}, err
	}
	quota, err := getEnvInt("PAYROLL_DEFAULT_LEAVE_QUOTA", 3)
	if err != nil {
		return PayrollConfig{}, err
	}
	degrade, err := getEnvBool("PAYROLL_DEGRADE_ON_FETCH_ERROR", false)
	if err != nil {
		return PayrollConfig{}, err
	}
	autoGenerate, err := getEnvBool("PAYROLL_AUTO_GENERATE", false)
	if err != nil {
		return PayrollConfig{}, err
	}

	return PayrollConfig{
		EmployeeTimeout:     timeout,
		DefaultLeaveQuota:   quota,
		DegradeOnFetchError: degrade,
		AutoGenerate:        autoGenerate,
		AutoGenerateSpec:    getEnv("PAYROLL_AUTO_GENERATE_SPEC", "0 2 1 * *"),
		SystemActor:         getEnv("PAYROLL_SYSTEM_ACTOR", "system"),
	}, nil
}

func loadNotification() (NotificationConfig, error) {
	workers, err := getEnvInt("NOTIFICATION_WORKERS", 2)
	if err != nil {
		return NotificationConfig{}, err
	}
	queueSize, err := getEnvInt("NOTIFICATION_QUEUE_SIZE", 1000)
	if err != nil {
		return NotificationConfig{}, err
	}
	batchSize, err := getEnvInt("NOTIFICATION_BATCH_SIZE", 100)
	if err != nil {
		return NotificationConfig{}, err
	}
	flush, err := getEnvDuration("NOTIFICATION_FLUSH_INTERVAL", 5*time.Second)
	if err != nil {
		return NotificationConfig{}, err
	}
	webhookTimeout, err := getEnvDuration("NOTIFICATION_WEBHOOK_TIMEOUT", 10*time.Second)
	if err != nil {
		return NotificationConfig{}, err
	}

	return NotificationConfig{
		Workers:        workers,
		QueueSize:      queueSize,
		BatchSize:      batchSize,
		FlushInterval:  flush,
		WebhookURL:     getEnv("NOTIFICATION_WEBHOOK_URL", ""),
		WebhookToken:   getEnv("NOTIFICATION_WEBHOOK_TOKEN", ""),
		WebhookTimeout: webhookTimeout,

		WebhookOAuthTokenURL:     getEnv("NOTIFICATION_WEBHOOK_OAUTH_TOKEN_URL", ""),
		WebhookOAuthClientID:     getEnv("NOTIFICATION_WEBHOOK_OAUTH_CLIENT_ID", ""),
		WebhookOAuthClientSecret: getEnv("NOTIFICATION_WEBHOOK_OAUTH_CLIENT_SECRET", ""),
		WebhookOAuthScopes:       getEnvSlice("NOTIFICATION_WEBHOOK_OAUTH_SCOPES", nil),
	}, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Payroll.EmployeeTimeout <= 0 {
		return fmt.Errorf("PAYROLL_EMPLOYEE_TIMEOUT must be positive")
	}
	if c.Payroll.DefaultLeaveQuota < 0 {
		return fmt.Errorf("PAYROLL_DEFAULT_LEAVE_QUOTA must not be negative")
	}
	if c.Payroll.AutoGenerate && c.Payroll.AutoGenerateSpec == "" {
		return fmt.Errorf("PAYROLL_AUTO_GENERATE_SPEC is required when PAYROLL_AUTO_GENERATE is set")
	}
	return nil
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (a AppConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			result = append(result, p)
		}
	}
	return result
}
