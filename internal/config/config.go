package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	// embedded zone database
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
)

const (
	StorageBackendDisk   = "disk"
	StorageBackendRedis  = "redis"
	StorageBackendMemory = "memory"
)

type Config struct {
	Environment string `toml:"-"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// storage
	StorageBackend    string `toml:"storage_backend"`
	StorageKey        string `toml:"storage_key"`
	DiskStorePath     string `toml:"disk_store_path"`
	RedisHost         string `toml:"redis_host"`
	RedisPort         string `toml:"redis_port"`
	MemoryStoreSizeMB int    `toml:"memory_store_size_mb"`
	// calendar
	FirstWeekday string `toml:"first_weekday"`
	TimeZone     string `toml:"time_zone"`
	// http
	AddExerciseRateLimitPerMin int      `toml:"add_exercise_rate_limit_per_min"`
	MaxRequestBodyKB           int64    `toml:"max_request_body_kb"`
	CorsAllowedOrigins         []string `toml:"cors_allowed_origins"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at configPath and returns the config section for env,
// with defaults applied and values validated.
func Load(env, configPath string) (*Config, error) {
	var tomlConfig Toml
	if _, err := toml.DecodeFile(configPath, &tomlConfig); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", configPath, err)
	}
	return fromToml(&tomlConfig, env)
}

// Parse is like Load, but reads the TOML from a string.
func Parse(env, tomlContent string) (*Config, error) {
	var tomlConfig Toml
	if _, err := toml.Decode(tomlContent, &tomlConfig); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return fromToml(&tomlConfig, env)
}

func fromToml(t *Toml, env string) (*Config, error) {
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.Environment = strings.ToLower(env)
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.PrometheusMetricsHost == "" {
		c.PrometheusMetricsHost = "localhost"
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
	if c.StorageBackend == "" {
		c.StorageBackend = StorageBackendDisk
	}
	if c.StorageKey == "" {
		c.StorageKey = "SavedExercises"
	}
	if c.DiskStorePath == "" {
		c.DiskStorePath = "./data"
	}
	if c.RedisHost == "" {
		c.RedisHost = "localhost"
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.MemoryStoreSizeMB == 0 {
		c.MemoryStoreSizeMB = 256
	}
	if c.FirstWeekday == "" {
		c.FirstWeekday = "monday"
	}
	if c.TimeZone == "" {
		c.TimeZone = "UTC"
	}
	if c.AddExerciseRateLimitPerMin == 0 {
		c.AddExerciseRateLimitPerMin = 60
	}
	if c.MaxRequestBodyKB == 0 {
		c.MaxRequestBodyKB = 64
	}
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case StorageBackendDisk, StorageBackendRedis, StorageBackendMemory:
	default:
		return fmt.Errorf("unknown storage backend: %s", c.StorageBackend)
	}
	if c.MemoryStoreSizeMB < 0 {
		return errors.New("memory store size cannot be negative")
	}
	if c.MaxRequestBodyKB < 0 {
		return errors.New("max request body size cannot be negative")
	}
	if _, err := c.Weekday(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Weekday returns the configured first day of the week.
func (c *Config) Weekday() (time.Weekday, error) {
	return ParseWeekday(c.FirstWeekday)
}

// Location returns the configured calendar time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone [%s]: %w", c.TimeZone, err)
	}
	return loc, nil
}

func ParseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday: %s", s)
}

// Secrets are never kept in the config file, only read from the environment.
type Secrets struct {
	RedisPassword    string `env:"FITTRACKER_REDIS_PASS"`
	SentryDSN        string `env:"SENTRY_DSN"`
	HoneycombEnabled bool   `env:"HONEYCOMB_ENABLED, default=false"`
	HoneycombAPIKey  string `env:"HONEYCOMB_API_KEY"`
}

func LoadSecrets(ctx context.Context) (*Secrets, error) {
	return loadSecrets(ctx, envconfig.OsLookuper())
}

func loadSecrets(ctx context.Context, lookuper envconfig.Lookuper) (*Secrets, error) {
	var secrets Secrets
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &secrets,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process env secrets: %w", err)
	}
	return &secrets, nil
}
