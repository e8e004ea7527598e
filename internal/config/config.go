// Package config loads service configuration from file, environment, and
// flags via viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	API   APIConfig   `mapstructure:"api"`
	NeoWs NeoWsConfig `mapstructure:"neows"`
	Sim   SimConfig   `mapstructure:"sim"`
	Log   LogConfig   `mapstructure:"log"`
}

// APIConfig configures the HTTP command surface.
type APIConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// NeoWsConfig configures the NASA NeoWs adapter.
type NeoWsConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// SimConfig configures the simulation defaults.
type SimConfig struct {
	TimeStep       float64       `mapstructure:"time_step"`  // seconds
	TimeScale      float64       `mapstructure:"time_scale"` // real-to-sim
	StreamInterval time.Duration `mapstructure:"stream_interval"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// Load reads configuration with precedence env > file > defaults; command
// line flags are not read here and are applied by the caller afterwards.
// Environment variables use the NEOWATCH_ prefix with underscores, e.g.
// NEOWATCH_NEOWS_API_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("api.addr", ":8090")
	v.SetDefault("api.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("neows.base_url", "https://api.nasa.gov/neo/rest/v1")
	v.SetDefault("neows.timeout", 30*time.Second)
	v.SetDefault("neows.cache_ttl", time.Hour)
	v.SetDefault("sim.time_step", 3600.0)
	v.SetDefault("sim.time_scale", 1.0)
	v.SetDefault("sim.stream_interval", 100*time.Millisecond)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")

	v.SetEnvPrefix("NEOWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
