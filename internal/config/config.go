package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverFile     = "file"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Storage   StorageConfig   `toml:"storage"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Business  BusinessConfig  `toml:"business"`
	Auth      AuthConfig      `toml:"auth"`
	Payments  PaymentsConfig  `toml:"payments"`
	Events    EventsConfig    `toml:"events"`
	Redis     RedisConfig     `toml:"redis"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Materials MaterialsConfig `toml:"materials"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	AutoMigrate     bool   `toml:"auto_migrate"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type StorageConfig struct {
	Driver  string `toml:"driver"`   // postgres | file
	DataDir string `toml:"data_dir"` // для driver = file
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type BusinessConfig struct {
	Timezone string `toml:"timezone"`
	Calendar string `toml:"calendar"`
}

// Location загруженная таймзона бизнеса
func (b BusinessConfig) Location() (*time.Location, error) {
	return time.LoadLocation(b.Timezone)
}

type AuthConfig struct {
	JWTSecret         string `toml:"jwt_secret"`
	AdminPasswordHash string `toml:"admin_password_hash"`
	TokenTTLHours     int    `toml:"token_ttl_hours"`
}

type PaymentsConfig struct {
	StripeWebhookSecret string `toml:"stripe_webhook_secret"`
	InvoiceDueDays      int    `toml:"invoice_due_days"`
}

type EventsConfig struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

type RedisConfig struct {
	Enabled           bool   `toml:"enabled"`
	Addr              string `toml:"addr"`
	Password          string `toml:"password"`
	DB                int    `toml:"db"`
	IdempotencyTTLSec int    `toml:"idempotency_ttl"`
}

type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

type MaterialsConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// Load читает .env (если есть), затем TOML-файл, затем переопределения из окружения
func Load(path string) (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	cfg := defaults()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Storage: StorageConfig{
			Driver:  StorageDriverPostgres,
			DataDir: "data",
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "booking_service",
		},
		Business: BusinessConfig{
			Timezone: "Europe/Helsinki",
			Calendar: "main",
		},
		Auth: AuthConfig{TokenTTLHours: 12},
		Payments: PaymentsConfig{
			InvoiceDueDays: 14,
		},
		Events: EventsConfig{Topic: "booking-events"},
		Redis: RedisConfig{
			Addr:              "localhost:6379",
			IdempotencyTTLSec: 86400,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             20,
		},
		Materials: MaterialsConfig{Timeout: 5},
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Storage.Driver, "STORAGE_DRIVER")
	setString(&cfg.Storage.DataDir, "STORAGE_DATA_DIR")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.Auth.AdminPasswordHash, "ADMIN_PASSWORD_HASH")
	setString(&cfg.Payments.StripeWebhookSecret, "STRIPE_WEBHOOK_SECRET")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Materials.URL, "MATERIALS_URL")

	if v, ok := os.LookupEnv("HTTP_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.HTTPPort = port
		}
	}
	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok && v != "" {
		cfg.Events.Brokers = strings.Split(v, ",")
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverFile:
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if c.Storage.Driver == StorageDriverFile && c.Storage.DataDir == "" {
		return fmt.Errorf("%w: storage.data_dir is required for file driver", ErrInvalidConfig)
	}

	if _, err := c.Business.Location(); err != nil {
		return fmt.Errorf("%w: business.timezone: %v", ErrInvalidConfig, err)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("%w: auth.jwt_secret is required", ErrInvalidConfig)
	}

	if c.Events.Enabled && len(c.Events.Brokers) == 0 {
		return fmt.Errorf("%w: events.brokers is required when events are enabled", ErrInvalidConfig)
	}

	if c.Payments.InvoiceDueDays <= 0 {
		return fmt.Errorf("%w: payments.invoice_due_days must be positive", ErrInvalidConfig)
	}

	return nil
}
