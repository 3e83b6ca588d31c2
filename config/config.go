package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Admin     AdminConfig     `mapstructure:"admin"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Outbox    OutboxConfig    `mapstructure:"outbox"`
	Enqueue   EnqueueConfig   `mapstructure:"enqueue"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Delivery  DeliveryConfig  `mapstructure:"delivery"`
	Vault     VaultConfig     `mapstructure:"vault"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type AdminConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
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

// OutboxConfig selects the rollout stage of durable delivery.
// enabled=false                    -> legacy direct send only
// enabled=true, send_enabled=false -> shadow rows + legacy send
// enabled=true, send_enabled=true  -> worker-driven delivery
type OutboxConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	SendEnabled bool `mapstructure:"send_enabled"`
}

// Mode resolves the two flags into a delivery mode name.
func (o OutboxConfig) Mode() string {
	switch {
	case o.Enabled && o.SendEnabled:
		return "outbox"
	case o.Enabled:
		return "shadow"
	default:
		return "legacy"
	}
}

type EnqueueConfig struct {
	DedupeTTL time.Duration `mapstructure:"dedupe_ttl"` // 0 disables duplicate suppression
}

type WorkerConfig struct {
	Store         string        `mapstructure:"store"` // postgres or memory
	BatchSize     int           `mapstructure:"batch_size"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	LockTTL       time.Duration `mapstructure:"lock_ttl"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
	BackoffBase   time.Duration `mapstructure:"backoff_base"`
	BackoffCap    time.Duration `mapstructure:"backoff_cap"`
	BackoffJitter time.Duration `mapstructure:"backoff_jitter"`
}

type DeliveryConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	RequireHTTPS bool          `mapstructure:"require_https"`
}

type VaultConfig struct {
	Key        string `mapstructure:"key"`        // 32-byte hex-encoded key for AES-256
	Passphrase string `mapstructure:"passphrase"` // alternative to key: argon2id-derived
	Salt       string `mapstructure:"salt"`       // salt for passphrase derivation
	KeyID      string `mapstructure:"key_id"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"` // empty = metrics disabled
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: WOX_ (Webhook Outbox).
// Nested keys use underscore: WOX_DATABASE_HOST, WOX_WORKER_BATCH_SIZE, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("admin.host", "0.0.0.0")
	v.SetDefault("admin.port", 8081)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "webhook_outbox")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("outbox.enabled", false)
	v.SetDefault("outbox.send_enabled", false)
	v.SetDefault("enqueue.dedupe_ttl", "0s")
	v.SetDefault("worker.store", "postgres")
	v.SetDefault("worker.batch_size", 50)
	v.SetDefault("worker.poll_interval", "1s")
	v.SetDefault("worker.lock_ttl", "30s")
	v.SetDefault("worker.max_attempts", 8)
	v.SetDefault("worker.backoff_base", "1s")
	v.SetDefault("worker.backoff_cap", "10m")
	v.SetDefault("worker.backoff_jitter", "500ms")
	v.SetDefault("delivery.timeout", "10s")
	v.SetDefault("delivery.require_https", true)
	v.SetDefault("vault.key", "")
	v.SetDefault("vault.passphrase", "")
	v.SetDefault("vault.salt", "")
	v.SetDefault("vault.key_id", "v1")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "webhook-outbox")
	v.SetDefault("telemetry.otlp_endpoint", "")
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

	// Environment variables: WOX_DATABASE_HOST -> database.host
	v.SetEnvPrefix("WOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
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
