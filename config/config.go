package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MaxSignedURLTTL is the longest presigned URL lifetime object storage accepts.
const MaxSignedURLTTL = 7 * 24 * time.Hour

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Webhook    WebhookConfig    `mapstructure:"webhook"`
	Encryption EncryptionConfig `mapstructure:"encryption"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Delivery   DeliveryConfig   `mapstructure:"delivery"`
	Broker     BrokerConfig     `mapstructure:"broker"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Admin      AdminConfig      `mapstructure:"admin"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// WebhookConfig configures inbound storefront webhooks.
type WebhookConfig struct {
	Secret         string        `mapstructure:"secret"`          // shared HMAC secret
	ReplayTTL      time.Duration `mapstructure:"replay_ttl"`      // how long delivery ids are remembered
	ProcessTimeout time.Duration `mapstructure:"process_timeout"` // budget for post-ack processing
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

type EncryptionConfig struct {
	Key              string `mapstructure:"key"`                // 32-byte hex-encoded key for AES-256
	EmailIndexPepper string `mapstructure:"email_index_pepper"` // salt for the customer email blind index
}

// StorageConfig holds the platform-wide default blob storage credentials.
type StorageConfig struct {
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"` // optional, S3-compatible providers
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

type DeliveryConfig struct {
	LinkTTL      time.Duration `mapstructure:"link_ttl"`       // download ticket lifetime
	SignedURLTTL time.Duration `mapstructure:"signed_url_ttl"` // blob store presign lifetime
	FallbackPath string        `mapstructure:"fallback_path"`  // JSON file used when the record store write fails
	ServiceName  string        `mapstructure:"service_name"`   // stamped on download log records
}

type BrokerConfig struct {
	Backend   string `mapstructure:"backend"` // memory, redis
	SingleUse bool   `mapstructure:"single_use"`
}

type NotifyConfig struct {
	FromName        string        `mapstructure:"from_name"`
	FromEmail       string        `mapstructure:"from_email"`
	Title           string        `mapstructure:"title"`
	BannerURL       string        `mapstructure:"banner_url"`
	BaseURL         string        `mapstructure:"base_url"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
	TestToEmail     string        `mapstructure:"test_to_email"`
}

type AdminConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	Expiry    time.Duration `mapstructure:"expiry"`
}

type RateLimitConfig struct {
	Enabled           bool  `mapstructure:"enabled"`
	ListingPerMinute  int64 `mapstructure:"listing_per_minute"`
	DownloadPerMinute int64 `mapstructure:"download_per_minute"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: DDG_ (Digital Delivery Gateway).
// Nested keys use underscore: DDG_WEBHOOK_SECRET, DDG_ENCRYPTION_KEY, etc.
// A .env file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "digital_delivery")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("webhook.secret", "")
	v.SetDefault("webhook.replay_ttl", "24h")
	v.SetDefault("webhook.process_timeout", "30s")
	v.SetDefault("webhook.max_body_bytes", 1<<20)
	v.SetDefault("encryption.key", "")
	v.SetDefault("encryption.email_index_pepper", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.use_path_style", false)
	v.SetDefault("delivery.link_ttl", "60m")
	v.SetDefault("delivery.signed_url_ttl", "60m")
	v.SetDefault("delivery.fallback_path", "./data/orders.json")
	v.SetDefault("delivery.service_name", "digital-delivery-gateway")
	v.SetDefault("broker.backend", "memory")
	v.SetDefault("broker.single_use", false)
	v.SetDefault("notify.from_name", "Digital Delivery")
	v.SetDefault("notify.from_email", "")
	v.SetDefault("notify.title", "Thank you for your order!")
	v.SetDefault("notify.banner_url", "")
	v.SetDefault("notify.base_url", "http://localhost:8080")
	v.SetDefault("notify.region", "us-east-1")
	v.SetDefault("notify.max_attempts", 1)
	v.SetDefault("notify.retry_backoff", "30s")
	v.SetDefault("notify.test_to_email", "")
	v.SetDefault("admin.jwt_secret", "")
	v.SetDefault("admin.issuer", "digital-delivery-gateway")
	v.SetDefault("admin.expiry", "1h")
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.listing_per_minute", 30)
	v.SetDefault("ratelimit.download_per_minute", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: DDG_WEBHOOK_SECRET -> webhook.secret
	v.SetEnvPrefix("DDG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings the delivery core cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.Webhook.Secret == "" {
		errs = append(errs, errors.New("webhook.secret is required"))
	}
	if key, err := hex.DecodeString(c.Encryption.Key); err != nil || len(key) != 32 {
		errs = append(errs, errors.New("encryption.key must be 64 hex characters"))
	}
	if c.Delivery.LinkTTL <= 0 {
		errs = append(errs, errors.New("delivery.link_ttl must be positive"))
	}
	switch {
	case c.Delivery.SignedURLTTL <= 0:
		errs = append(errs, errors.New("delivery.signed_url_ttl must be positive"))
	case c.Delivery.SignedURLTTL > MaxSignedURLTTL:
		errs = append(errs, fmt.Errorf("delivery.signed_url_ttl must not exceed %s", MaxSignedURLTTL))
	case c.Delivery.SignedURLTTL < c.Delivery.LinkTTL:
		// A live ticket must never point at an expired URL.
		errs = append(errs, errors.New("delivery.signed_url_ttl must be at least delivery.link_ttl"))
	}
	switch c.Broker.Backend {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("broker.backend %q is not supported", c.Broker.Backend))
	}
	return errors.Join(errs...)
}
