package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the service configuration read from configs/config.yml.
type Config struct {
	Port      string          `mapstructure:"port"`
	LogLevel  string          `mapstructure:"log_level"`
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Session   SessionConfig   `mapstructure:"session"`
	Breaker   BreakerConfig   `mapstructure:"breaker"`
}

// ServerConfig holds http.Server timeouts.
type ServerConfig struct {
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
}

// BackendConfig points at the job-management backend.
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DashboardConfig tunes the per-session controller.
type DashboardConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	NotificationTTL time.Duration `mapstructure:"notification_ttl"`
}

// SessionConfig controls eviction of idle dashboard sessions.
type SessionConfig struct {
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// BreakerConfig configures the circuit breaker around backend calls.
type BreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
}

// Defaults.
const (
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultReadHeader      = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultBackendURL      = "http://localhost:5000"
	defaultBackendTimeout  = 10 * time.Second
	defaultRefresh         = 30 * time.Second
	defaultNotificationTTL = 3 * time.Second
	defaultIdleTTL         = 10 * time.Minute
	defaultSweepInterval   = time.Minute

	defaultBreakerMaxRequests = 3
	defaultBreakerInterval    = 60 * time.Second
	defaultBreakerTimeout     = 15 * time.Second
	defaultBreakerFailures    = 5
)

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", defaultPort)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("server.read_header_timeout", defaultReadHeader)
	v.SetDefault("server.write_timeout", defaultWriteTimeout)
	v.SetDefault("server.idle_timeout", defaultIdleTimeout)
	v.SetDefault("backend.base_url", defaultBackendURL)
	v.SetDefault("backend.timeout", defaultBackendTimeout)
	v.SetDefault("dashboard.refresh_interval", defaultRefresh)
	v.SetDefault("dashboard.notification_ttl", defaultNotificationTTL)
	v.SetDefault("session.idle_ttl", defaultIdleTTL)
	v.SetDefault("session.sweep_interval", defaultSweepInterval)
	v.SetDefault("breaker.max_requests", defaultBreakerMaxRequests)
	v.SetDefault("breaker.interval", defaultBreakerInterval)
	v.SetDefault("breaker.timeout", defaultBreakerTimeout)
	v.SetDefault("breaker.failure_threshold", defaultBreakerFailures)
}

// Load reads config.yml from the given directories. A missing file is not
// an error; defaults apply.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required")
	}
	if c.Dashboard.RefreshInterval <= 0 {
		return fmt.Errorf("dashboard.refresh_interval must be positive, got %s", c.Dashboard.RefreshInterval)
	}
	if c.Dashboard.NotificationTTL <= 0 {
		return fmt.Errorf("dashboard.notification_ttl must be positive, got %s", c.Dashboard.NotificationTTL)
	}
	return nil
}
