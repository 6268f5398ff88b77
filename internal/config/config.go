// Package config loads PCD Manager's configuration from defaults, a YAML
// file, and PCD_*-prefixed environment variables, in that order of
// increasing precedence, following the teacher's viper-based layering.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the top-level process configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Transport TransportConfig `mapstructure:"transport"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Redis     RedisConfig     `mapstructure:"redis"`
	ExtConfig ExtConfigConfig `mapstructure:"extconfig"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Auth      AuthConfig      `mapstructure:"auth"`
}

// ServerConfig configures the admin HTTP API.
type ServerConfig struct {
	Host         string        `mapstructure:"host" validate:"required"`
	Port         int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// TransportConfig configures the PHD TCP listener and per-connection
// housekeeping.
type TransportConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr" validate:"required"`
	LocalSystemID   string        `mapstructure:"local_system_id" validate:"required,hexadecimal"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	SocketKeepAlive bool          `mapstructure:"socket_keepalive"`
}

// LogConfig controls zerolog's output.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json console"`
}

// DatabaseConfig configures the postgres connection used for
// association-event history and (optionally) the extended-config
// registry.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	LogLevel string `mapstructure:"log_level"`
}

// CacheConfig selects the cache.Cache backend fronting the extended
// configuration registry.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Type    string        `mapstructure:"type" validate:"omitempty,oneof=redis memory"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// RedisConfig is only consulted when Cache.Type is "redis".
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ExtConfigConfig selects the extconfig.Registry backend.
type ExtConfigConfig struct {
	Backend    string `mapstructure:"backend" validate:"required,oneof=badger postgres sqlite"`
	BadgerDir  string `mapstructure:"badger_dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// ArchiveConfig configures S3 segment archival; Enabled gates whether
// internal/archive.NewStore is constructed at all.
type ArchiveConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// TelemetryConfig configures OTLP tracing and Pyroscope profiling.
type TelemetryConfig struct {
	TracingEnabled   bool    `mapstructure:"tracing_enabled"`
	OTLPEndpoint     string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure     bool    `mapstructure:"otlp_insecure"`
	ProfilingEnabled bool    `mapstructure:"profiling_enabled"`
	PyroscopeAddr    string  `mapstructure:"pyroscope_addr"`
	ServiceName      string  `mapstructure:"service_name"`
}

// MetricsConfig gates the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// CORSConfig controls the admin API's CORS policy.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig holds the admin API's JWT signing secret.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required"`
}

// Load reads configuration from defaults, configPath (if non-empty and
// present), and PCD_-prefixed environment variables, in ascending
// precedence, and validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetEnvPrefix("PCD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate runs struct-tag validation over cfg.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}
	return nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)

	v.SetDefault("transport.listen_addr", ":20601")
	v.SetDefault("transport.local_system_id", "0011223344556677")
	v.SetDefault("transport.idle_timeout", 60*time.Second)
	v.SetDefault("transport.socket_keepalive", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", 5*time.Minute)

	v.SetDefault("extconfig.backend", "badger")
	v.SetDefault("extconfig.badger_dir", "./data/extconfig")

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.prefix", "pcd-segments")

	v.SetDefault("telemetry.service_name", "pcd-manager")
	v.SetDefault("telemetry.tracing_enabled", false)
	v.SetDefault("telemetry.profiling_enabled", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("cors.allowed_origins", []string{"*"})
}
