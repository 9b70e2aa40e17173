/*
Package config loads server configuration.

PURPOSE:
  One place for runtime settings: HTTP port, database path, CORS
  origins, and billing-worker tuning. Values resolve in the usual
  precedence order - defaults, then an optional YAML config file, then
  REVENUE_* environment variables. Command-line flags in cmd/server
  override the result last.

EXAMPLE FILE (revenue.yaml):
  port: 8080
  db_path: ./data/revenue.db
  cors_origins:
    - http://localhost:5173
  worker:
    enabled: true
    interval: 1m
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        int      `mapstructure:"port"`
	DBPath      string   `mapstructure:"db_path"`
	CORSOrigins []string `mapstructure:"cors_origins"`

	Worker WorkerConfig `mapstructure:"worker"`
}

type WorkerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	// BatchSize caps how many due jobs one worker pass claims.
	BatchSize int `mapstructure:"batch_size"`
}

// Load reads configuration from defaults, the optional file at path
// (empty = no file), and REVENUE_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("db_path", "revenue.db")
	v.SetDefault("cors_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("worker.enabled", true)
	v.SetDefault("worker.interval", time.Minute)
	v.SetDefault("worker.batch_size", 50)

	v.SetEnvPrefix("REVENUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
