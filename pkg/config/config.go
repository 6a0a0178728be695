// Package config loads service configuration from YAML files and
// ENGAGEHUB_* environment variables
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"engagehub/pkg/database"
	"engagehub/pkg/logger"
	"engagehub/pkg/models"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "ENGAGEHUB"

// Config holds all service configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	GRPC       GRPCConfig       `yaml:"grpc" mapstructure:"grpc"`
	Database   DatabaseConfig   `yaml:"database" mapstructure:"database"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Logging    logger.Config    `yaml:"logging" mapstructure:"logging"`
	Identity   IdentityConfig   `yaml:"identity" mapstructure:"identity"`
	Engagement EngagementConfig `yaml:"engagement" mapstructure:"engagement"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit" mapstructure:"rate_limit"`
	Redis      RedisConfig      `yaml:"redis" mapstructure:"redis"`
	Posts      map[string]string `yaml:"posts,omitempty" mapstructure:"posts"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
	Mode string `yaml:"mode" mapstructure:"mode"` // gin mode: debug, release, test
}

// GRPCConfig contains the health server listener
type GRPCConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Host    string `yaml:"host" mapstructure:"host"`
	Port    int    `yaml:"port" mapstructure:"port"`
}

// DatabaseConfig mirrors database.Config
type DatabaseConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`
	Port            int           `yaml:"port" mapstructure:"port"`
	User            string        `yaml:"user" mapstructure:"user"`
	Password        string        `yaml:"password" mapstructure:"password"`
	Database        string        `yaml:"database" mapstructure:"database"`
	SSLMode         string        `yaml:"sslmode" mapstructure:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" mapstructure:"conn_max_idle_time"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Store drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// StoreConfig selects the engagement store backend
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
}

// IdentityConfig controls how the caller identity is resolved. With an
// empty secret, identity headers are trusted as-is.
type IdentityConfig struct {
	JWTSecret string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	Issuer    string `yaml:"issuer" mapstructure:"issuer"`
}

// EngagementConfig holds the tunables of the engagement services
type EngagementConfig struct {
	MaxCommentLength int `yaml:"max_comment_length" mapstructure:"max_comment_length"`
	DefaultPageSize  int `yaml:"default_page_size" mapstructure:"default_page_size"`
	MaxPageSize      int `yaml:"max_page_size" mapstructure:"max_page_size"`
}

// RateLimitConfig is a per-client token bucket. MaxClients caps how many
// client buckets are kept; the least recently seen are dropped first.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
	MaxClients        int     `yaml:"max_clients" mapstructure:"max_clients"`
}

// RedisConfig enables the engagement event stream
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
	Stream   string `yaml:"stream" mapstructure:"stream"`
	MaxLen   int64  `yaml:"max_len" mapstructure:"max_len"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080, Mode: "release"},
		GRPC:   GRPCConfig{Enabled: true, Host: "0.0.0.0", Port: 50051},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "engagehub",
			Database:        "engagehub",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			Timeout:         5 * time.Second,
		},
		Store:   StoreConfig{Driver: DriverMemory},
		Logging: logger.Config{Level: "info", Format: "text", Output: "stdout"},
		Identity: IdentityConfig{
			Issuer: "engagehub",
		},
		Engagement: EngagementConfig{
			MaxCommentLength: models.DefaultMaxCommentLength,
			DefaultPageSize:  20,
			MaxPageSize:      100,
		},
		RateLimit: RateLimitConfig{RequestsPerSecond: 20, Burst: 40, MaxClients: 10000},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Stream: "engagehub:engagements",
			MaxLen: 100000,
		},
	}
}

// Load reads configuration from path, or from the first standard location
// when path is empty. Missing files fall back to defaults; environment
// variables always win.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)

	v.SetDefault("grpc.enabled", d.GRPC.Enabled)
	v.SetDefault("grpc.host", d.GRPC.Host)
	v.SetDefault("grpc.port", d.GRPC.Port)

	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", d.Database.Password)
	v.SetDefault("database.database", d.Database.Database)
	v.SetDefault("database.sslmode", d.Database.SSLMode)
	v.SetDefault("database.max_open_conns", d.Database.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", d.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", d.Database.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", d.Database.ConnMaxIdleTime)
	v.SetDefault("database.timeout", d.Database.Timeout)

	v.SetDefault("store.driver", d.Store.Driver)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.time_format", d.Logging.TimeFormat)

	v.SetDefault("identity.jwt_secret", d.Identity.JWTSecret)
	v.SetDefault("identity.issuer", d.Identity.Issuer)

	v.SetDefault("engagement.max_comment_length", d.Engagement.MaxCommentLength)
	v.SetDefault("engagement.default_page_size", d.Engagement.DefaultPageSize)
	v.SetDefault("engagement.max_page_size", d.Engagement.MaxPageSize)

	v.SetDefault("rate_limit.requests_per_second", d.RateLimit.RequestsPerSecond)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)
	v.SetDefault("rate_limit.max_clients", d.RateLimit.MaxClients)

	v.SetDefault("redis.enabled", d.Redis.Enabled)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.stream", d.Redis.Stream)
	v.SetDefault("redis.max_len", d.Redis.MaxLen)
}

// Validate rejects settings the services cannot run with
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverPostgres:
	default:
		return fmt.Errorf("invalid store driver %q", c.Store.Driver)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.GRPC.Enabled && c.GRPC.Port <= 0 {
		return fmt.Errorf("invalid grpc port %d", c.GRPC.Port)
	}
	if c.Engagement.MaxCommentLength <= 0 {
		return errors.New("engagement.max_comment_length must be positive")
	}
	if c.Engagement.DefaultPageSize <= 0 || c.Engagement.MaxPageSize <= 0 {
		return errors.New("engagement page sizes must be positive")
	}
	if c.Engagement.DefaultPageSize > c.Engagement.MaxPageSize {
		return errors.New("engagement.default_page_size exceeds max_page_size")
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 || c.RateLimit.MaxClients < 0 {
		return errors.New("rate_limit values must not be negative")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when redis is enabled")
	}
	return nil
}

// Save writes the configuration as YAML
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Connection returns the settings in the shape pkg/database expects
func (d DatabaseConfig) Connection() database.Config {
	return database.Config{
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		Database:        d.Database,
		SSLMode:         d.SSLMode,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
		Timeout:         d.Timeout,
	}
}

// HTTPAddr returns the HTTP listen address
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GRPCAddr returns the gRPC listen address
func (c *Config) GRPCAddr() string {
	return fmt.Sprintf("%s:%d", c.GRPC.Host, c.GRPC.Port)
}

// findConfigFile searches for config in standard locations
func findConfigFile() string {
	locations := []string{
		"./engagehub.yaml",
		"./configs/engagehub.yaml",
		filepath.Join(os.Getenv("HOME"), ".config", "engagehub", "config.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}
