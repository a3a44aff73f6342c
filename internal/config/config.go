// Package config loads the Configuration struct of spec §6 with viper:
// defaults, an optional YAML file, then HTTPWSD_*-prefixed environment
// overrides, in that precedence order.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config mirrors spec.md's Configuration struct field for field.
type Config struct {
	BindAddress            string        `mapstructure:"bind_address" yaml:"bind_address"`
	StaticRoot             string        `mapstructure:"static_root" yaml:"static_root"`
	MaxHeaderBytes         int           `mapstructure:"max_header_bytes" yaml:"max_header_bytes"`
	MaxBodyBytes           int           `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	KeepAliveTimeoutSecs   int           `mapstructure:"keep_alive_timeout_secs" yaml:"keep_alive_timeout_secs"`
	KeepAliveMaxRequests   int           `mapstructure:"keep_alive_max_requests" yaml:"keep_alive_max_requests"`
	WSHeartbeatIntervalSec int           `mapstructure:"ws_heartbeat_interval_secs" yaml:"ws_heartbeat_interval_secs"`
	WSPongTimeoutSecs      int           `mapstructure:"ws_pong_timeout_secs" yaml:"ws_pong_timeout_secs"`
	LogLevel               string        `mapstructure:"log_level" yaml:"log_level"`
}

// KeepAliveTimeout is KeepAliveTimeoutSecs as a time.Duration.
func (c *Config) KeepAliveTimeout() time.Duration {
	return time.Duration(c.KeepAliveTimeoutSecs) * time.Second
}

// WSHeartbeatInterval is WSHeartbeatIntervalSec as a time.Duration.
func (c *Config) WSHeartbeatInterval() time.Duration {
	return time.Duration(c.WSHeartbeatIntervalSec) * time.Second
}

// WSPongTimeout is WSPongTimeoutSecs as a time.Duration.
func (c *Config) WSPongTimeout() time.Duration {
	return time.Duration(c.WSPongTimeoutSecs) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bind_address", "127.0.0.1:8080")
	v.SetDefault("static_root", "./static")
	v.SetDefault("max_header_bytes", 16384)
	v.SetDefault("max_body_bytes", 10*1024*1024)
	v.SetDefault("keep_alive_timeout_secs", 5)
	v.SetDefault("keep_alive_max_requests", 100)
	v.SetDefault("ws_heartbeat_interval_secs", 30)
	v.SetDefault("ws_pong_timeout_secs", 30)
	v.SetDefault("log_level", "info")
}

// Load builds a Config from defaults, the YAML file at path (if path is
// non-empty and exists), and HTTPWSD_*-prefixed environment variables, in
// that increasing order of precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HTTPWSD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
