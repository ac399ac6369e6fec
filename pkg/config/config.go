package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// DefaultSyncEndpoint is the combined assignments/schedule document consumed by the dashboard.
const DefaultSyncEndpoint = "https://canvas-calendar-api.onrender.com/api/all"

type Config struct {
	Env  string `validate:"oneof=development production test"`
	Port int    `validate:"gt=0,lte=65535"`

	APIPrefix string

	Redis         RedisConfig
	CORS          CORSConfig
	Log           LogConfig
	Sync          SyncConfig
	Display       DisplayConfig
	ServiceWorker ServiceWorkerConfig
	Canvas        CanvasConfig
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string `validate:"oneof=json console"`
}

// SyncConfig drives the periodic fetch of the combined payload.
type SyncConfig struct {
	Endpoint string        `validate:"required,url"`
	Interval time.Duration `validate:"gt=0"`
	Timeout  time.Duration `validate:"gte=0"`
	Workers  int           `validate:"gte=1"`
}

// DisplayConfig controls how due dates are presented.
type DisplayConfig struct {
	TimeZone   string
	DateLayout string `validate:"required"`
}

// ServiceWorkerConfig describes the offline caching worker served to browsers.
type ServiceWorkerConfig struct {
	Path      string `validate:"required,startswith=/"`
	Scope     string `validate:"required,startswith=/"`
	CacheName string `validate:"required"`
}

// CanvasConfig configures the /api/all aggregator over the Canvas LMS REST API.
type CanvasConfig struct {
	URL      string
	Token    string
	Horizon  time.Duration
	Timeout  time.Duration
	CacheTTL time.Duration
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
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		TTL:      parseDuration(v.GetString("REDIS_TTL"), 30*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Sync = SyncConfig{
		Endpoint: v.GetString("SYNC_ENDPOINT"),
		Interval: parseDuration(v.GetString("SYNC_INTERVAL"), 5*time.Minute),
		Timeout:  parseDuration(v.GetString("SYNC_HTTP_TIMEOUT"), 30*time.Second),
		Workers:  v.GetInt("SYNC_WORKERS"),
	}

	cfg.Display = DisplayConfig{
		TimeZone:   v.GetString("DISPLAY_TIMEZONE"),
		DateLayout: v.GetString("DISPLAY_DATE_LAYOUT"),
	}

	cfg.ServiceWorker = ServiceWorkerConfig{
		Path:      v.GetString("SERVICE_WORKER_PATH"),
		Scope:     v.GetString("SERVICE_WORKER_SCOPE"),
		CacheName: v.GetString("SERVICE_WORKER_CACHE"),
	}

	cfg.Canvas = CanvasConfig{
		URL:      normalizeURL(v.GetString("CANVAS_URL")),
		Token:    v.GetString("CANVAS_TOKEN"),
		Horizon:  parseDuration(v.GetString("CANVAS_HORIZON"), 10*7*24*time.Hour),
		Timeout:  parseDuration(v.GetString("CANVAS_HTTP_TIMEOUT"), 20*time.Second),
		CacheTTL: parseDuration(v.GetString("CANVAS_CACHE_TTL"), 5*time.Minute),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_TTL", "30m")

	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5000,http://127.0.0.1:5000,https://*.github.io")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SYNC_ENDPOINT", DefaultSyncEndpoint)
	v.SetDefault("SYNC_INTERVAL", "5m")
	v.SetDefault("SYNC_HTTP_TIMEOUT", "30s")
	v.SetDefault("SYNC_WORKERS", 2)

	v.SetDefault("DISPLAY_TIMEZONE", "UTC")
	v.SetDefault("DISPLAY_DATE_LAYOUT", "Monday, January 2, 2006 at 03:04 PM")

	v.SetDefault("SERVICE_WORKER_PATH", "/peach-brawl/sw.js")
	v.SetDefault("SERVICE_WORKER_SCOPE", "/")
	v.SetDefault("SERVICE_WORKER_CACHE", "peach-brawl-v1")

	v.SetDefault("CANVAS_URL", "")
	v.SetDefault("CANVAS_TOKEN", "")
	v.SetDefault("CANVAS_HORIZON", "1680h")
	v.SetDefault("CANVAS_HTTP_TIMEOUT", "20s")
	v.SetDefault("CANVAS_CACHE_TTL", "5m")
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

// normalizeURL prefixes bare Canvas hosts with https:// and drops trailing slashes.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return strings.TrimRight(raw, "/")
}
