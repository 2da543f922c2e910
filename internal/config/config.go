package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/mir00r/conn-pool/internal/domain"
)

// Config represents the main configuration structure
type Config struct {
	Pool    PoolConfig        `yaml:"pool"`
	Logging LoggingConfig     `yaml:"logging"`
	Admin   AdminConfig       `yaml:"admin"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// PoolConfig contains connection pool and manager configuration
type PoolConfig struct {
	// NumPools bounds how many pools the manager keeps; the least
	// recently used pool is evicted and closed when the bound is hit
	NumPools int `yaml:"num_pools"`
	// MaxIdlePerPool is the maximum number of idle connections kept per pool
	MaxIdlePerPool int `yaml:"max_idle_per_pool"`
	// ConnectTimeout bounds socket connects; zero means the platform
	// default governs (no deadline is set on the dial)
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	// ReadTimeout bounds reading a response; zero disables the deadline
	ReadTimeout time.Duration `yaml:"read_timeout"`
	// MaxIdleTime discards idle connections unused for this long
	MaxIdleTime time.Duration `yaml:"max_idle_time"`
	// MaxConnLifetime discards connections older than this
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	// DialRatePerSecond throttles connection creation per pool;
	// zero disables the limiter
	DialRatePerSecond float64 `yaml:"dial_rate_per_second"`
	// DialBurst is the limiter burst size when the limiter is enabled
	DialBurst int `yaml:"dial_burst"`
	// SocketOptions are applied to every socket before connect
	SocketOptions []domain.SocketOption `yaml:"socket_options,omitempty"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	File   string `yaml:"file"`
}

// AdminConfig contains the diagnostics API configuration
type AdminConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Pool: PoolConfig{
			NumPools:        10,
			MaxIdlePerPool:  10,
			ConnectTimeout:  10 * time.Second,
			ReadTimeout:     30 * time.Second,
			MaxIdleTime:     5 * time.Minute,
			MaxConnLifetime: 30 * time.Minute,
			DialBurst:       1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Admin: AdminConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9190",
		},
	}
}

// LoadFromFile loads configuration from a YAML file, merging over defaults
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.Pool.NumPools <= 0 {
		return fmt.Errorf("pool.num_pools must be positive, got %d", c.Pool.NumPools)
	}
	if c.Pool.MaxIdlePerPool <= 0 {
		return fmt.Errorf("pool.max_idle_per_pool must be positive, got %d", c.Pool.MaxIdlePerPool)
	}
	if c.Pool.ConnectTimeout < 0 {
		return fmt.Errorf("pool.connect_timeout must not be negative")
	}
	if c.Pool.ReadTimeout < 0 {
		return fmt.Errorf("pool.read_timeout must not be negative")
	}
	if c.Pool.DialRatePerSecond < 0 {
		return fmt.Errorf("pool.dial_rate_per_second must not be negative")
	}
	if c.Pool.DialRatePerSecond > 0 && c.Pool.DialBurst <= 0 {
		return fmt.Errorf("pool.dial_burst must be positive when the dial limiter is enabled")
	}
	if c.Admin.Enabled && c.Admin.Addr == "" {
		return fmt.Errorf("admin.addr must be set when the admin API is enabled")
	}
	return nil
}
