package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ignite/awaresim/internal/pkg/validation"
)

// Config holds all configuration for the tracking service, the dispatch
// worker and the migrator.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Tracking TrackingConfig `yaml:"tracking"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Mail     MailConfig     `yaml:"mail"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port                int `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ReadTimeout returns the read timeout as a duration.
func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the write timeout as a duration.
func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL             string `yaml:"url"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_seconds"`
}

// RedisConfig holds the optional Redis used for scheduler locks.
// An empty Addr selects PostgreSQL advisory locks instead.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// TrackingConfig holds the public callback settings
type TrackingConfig struct {
	// BaseURL is the public origin embedded in every tracking URL.
	BaseURL        string   `yaml:"base_url" validate:"required,url"`
	IPHashSalt     string   `yaml:"ip_hash_salt"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// SQSQueueURL enables event fan-out when set.
	SQSQueueURL string `yaml:"sqs_queue_url"`
	SQSRegion   string `yaml:"sqs_region"`
}

// DispatchConfig holds scheduler settings
type DispatchConfig struct {
	IntervalSeconds int    `yaml:"interval_seconds" validate:"min=1"`
	LockTTLSeconds  int    `yaml:"lock_ttl_seconds" validate:"min=1"`
	FromEmail       string `yaml:"from_email" validate:"omitempty,email"`
	FromName        string `yaml:"from_name"`
}

// Interval returns the tick interval as a duration.
func (c DispatchConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// LockTTL returns the tick lock TTL as a duration.
func (c DispatchConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// MailConfig selects and configures the mail transport
type MailConfig struct {
	Transport string     `yaml:"transport" validate:"oneof=ses smtp log"`
	SES       SESConfig  `yaml:"ses"`
	SMTP      SMTPConfig `yaml:"smtp"`
}

// SESConfig holds AWS SES settings
type SESConfig struct {
	Region           string `yaml:"region"`
	AccessKey        string `yaml:"access_key"`
	SecretKey        string `yaml:"secret_key"`
	ConfigurationSet string `yaml:"configuration_set"`
}

// SMTPConfig holds SMTP relay settings
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Redact reports whether PII redaction is on. It defaults to true.
func (c LoggingConfig) Redact() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// Load reads and parses the configuration file. An empty path yields the
// defaults alone.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 10
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 10
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 300
	}
	if cfg.Tracking.BaseURL == "" {
		cfg.Tracking.BaseURL = "http://localhost:8080"
	}
	if cfg.Tracking.SQSRegion == "" {
		cfg.Tracking.SQSRegion = "us-east-1"
	}
	if cfg.Dispatch.IntervalSeconds == 0 {
		cfg.Dispatch.IntervalSeconds = 60
	}
	if cfg.Dispatch.LockTTLSeconds == 0 {
		cfg.Dispatch.LockTTLSeconds = 300
	}
	if cfg.Dispatch.FromEmail == "" {
		cfg.Dispatch.FromEmail = "security-awareness@localhost.localdomain"
	}
	if cfg.Mail.Transport == "" {
		cfg.Mail.Transport = "log"
	}
	if cfg.Mail.SES.Region == "" {
		cfg.Mail.SES.Region = "us-east-1"
	}
	if cfg.Mail.SMTP.Port == 0 {
		cfg.Mail.SMTP.Port = 587
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	return validation.Struct(c)
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Tracking.BaseURL, "TRACKING_BASE_URL")
	setString(&cfg.Tracking.IPHashSalt, "IP_HASH_SALT")
	setString(&cfg.Tracking.SQSQueueURL, "TRACKING_SQS_QUEUE_URL")
	if v := os.Getenv("TRACKING_ALLOWED_ORIGINS"); v != "" {
		cfg.Tracking.AllowedOrigins = splitList(v)
	}
	setInt(&cfg.Server.Port, "PORT")
	setInt(&cfg.Dispatch.IntervalSeconds, "DISPATCH_INTERVAL_SECONDS")
	setString(&cfg.Dispatch.FromEmail, "DISPATCH_FROM_EMAIL")
	setString(&cfg.Dispatch.FromName, "DISPATCH_FROM_NAME")
	setString(&cfg.Mail.Transport, "MAIL_TRANSPORT")
	setString(&cfg.Mail.SES.AccessKey, "AWS_SES_ACCESS_KEY")
	setString(&cfg.Mail.SES.SecretKey, "AWS_SES_SECRET_KEY")
	setString(&cfg.Mail.SES.Region, "AWS_SES_REGION")
	setString(&cfg.Mail.SMTP.Host, "SMTP_HOST")
	setInt(&cfg.Mail.SMTP.Port, "SMTP_PORT")
	setString(&cfg.Mail.SMTP.Username, "SMTP_USERNAME")
	setString(&cfg.Mail.SMTP.Password, "SMTP_PASSWORD")
	setString(&cfg.Logging.Level, "LOG_LEVEL")

	return cfg, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setInt ignores values that are not integers.
func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
