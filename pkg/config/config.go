package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env     string
	OpsPort int

	Bot       BotConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Log       LogConfig
	Session   SessionConfig
	Broadcast BroadcastConfig

	// AdminIDs is the static allow-list of transport user ids granted admin rights.
	AdminIDs []int64
	// CatalogFile optionally replaces the built-in curriculum.
	CatalogFile string
}

type BotConfig struct {
	Token       string
	Debug       bool
	PollTimeout int
	Workers     int
}

type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig toggles the Redis-backed listing cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// SessionConfig bounds the in-memory admin workflow sessions.
type SessionConfig struct {
	TTL        time.Duration
	MaxEntries int
}

// BroadcastConfig configures the background broadcast queue.
type BroadcastConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.OpsPort = v.GetInt("OPS_PORT")
	cfg.CatalogFile = v.GetString("CATALOG_FILE")

	cfg.Bot = BotConfig{
		Token:       v.GetString("BOT_TOKEN"),
		Debug:       v.GetBool("BOT_DEBUG"),
		PollTimeout: v.GetInt("BOT_POLL_TIMEOUT"),
		Workers:     v.GetInt("BOT_WORKERS"),
	}

	cfg.Database = DatabaseConfig{
		URL:          v.GetString("DATABASE_URL"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), time.Minute),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Session = SessionConfig{
		TTL:        parseDuration(v.GetString("SESSION_TTL"), 15*time.Minute),
		MaxEntries: v.GetInt("SESSION_MAX_ENTRIES"),
	}

	cfg.Broadcast = BroadcastConfig{
		Workers:    v.GetInt("BROADCAST_WORKERS"),
		MaxRetries: v.GetInt("BROADCAST_RETRIES"),
		RetryDelay: parseDuration(v.GetString("BROADCAST_RETRY_DELAY"), 2*time.Second),
	}

	adminIDs, err := parseIDs(v.GetString("ADMIN_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.AdminIDs = adminIDs

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports missing settings the bot cannot start without.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return errors.New("BOT_TOKEN is required")
	}
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("OPS_PORT", 8080)
	v.SetDefault("CATALOG_FILE", "")

	v.SetDefault("BOT_TOKEN", "")
	v.SetDefault("BOT_DEBUG", false)
	v.SetDefault("BOT_POLL_TIMEOUT", 60)
	v.SetDefault("BOT_WORKERS", 8)
	v.SetDefault("ADMIN_IDS", "")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "1m")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SESSION_TTL", "15m")
	v.SetDefault("SESSION_MAX_ENTRIES", 10000)

	v.SetDefault("BROADCAST_WORKERS", 2)
	v.SetDefault("BROADCAST_RETRIES", 3)
	v.SetDefault("BROADCAST_RETRY_DELAY", "2s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func parseIDs(raw string) ([]int64, error) {
	parts := splitAndTrim(raw)
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse ADMIN_IDS entry %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
