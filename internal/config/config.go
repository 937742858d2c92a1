package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	TBA        TBAConfig        `mapstructure:"tba"`
	Prediction PredictionConfig `mapstructure:"prediction"`
	Queries    []RangeQuery     `mapstructure:"queries"`
	Points     []int            `mapstructure:"points"`
	Plot       PlotConfig       `mapstructure:"plot"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// TBAConfig holds The Blue Alliance API configuration
type TBAConfig struct {
	APIBaseURL     string        `mapstructure:"api_base_url"`
	AuthKey        string        `mapstructure:"auth_key"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// PredictionConfig holds the alliance under test and simulation settings
type PredictionConfig struct {
	Event           string `mapstructure:"event"`
	Teams           []int  `mapstructure:"teams"`
	MatchCount      int    `mapstructure:"match_count"`
	Shots           int    `mapstructure:"shots"`
	Seed            uint64 `mapstructure:"seed"`
	Rotation        string `mapstructure:"rotation"`
	ConcurrentFetch bool   `mapstructure:"concurrent_fetch"`
}

// RangeQuery is a cumulative probability query; -1 leaves a side open
type RangeQuery struct {
	Start int `mapstructure:"start"`
	End   int `mapstructure:"end"`
}

// PlotConfig holds terminal histogram configuration
type PlotConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Width   int  `mapstructure:"width"`
	Bins    int  `mapstructure:"bins"`
}

// CacheConfig holds match cache configuration
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	DBPath     string        `mapstructure:"db_path"`
	MaxAge     time.Duration `mapstructure:"max_age"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MaxMatchCount bounds how many qualification matches per team are used
const MaxMatchCount = 12

// Load reads configuration from file and environment variables.
// An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Enable environment variable override, e.g. QUANTUM_SCOUT_TBA_AUTH_KEY
	v.SetEnvPrefix("QUANTUM_SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// TBA defaults
	v.SetDefault("tba.api_base_url", "https://www.thebluealliance.com/api/v3")
	v.SetDefault("tba.auth_key", "")
	v.SetDefault("tba.timeout", "30s")
	v.SetDefault("tba.max_retries", 1)
	v.SetDefault("tba.retry_delay_base", "1s")

	// Prediction defaults
	v.SetDefault("prediction.event", "")
	v.SetDefault("prediction.teams", []int{})
	v.SetDefault("prediction.match_count", MaxMatchCount)
	v.SetDefault("prediction.shots", 10000)
	v.SetDefault("prediction.seed", 0)
	v.SetDefault("prediction.rotation", "rx")
	v.SetDefault("prediction.concurrent_fetch", false)

	// Query defaults
	v.SetDefault("queries", []map[string]int{
		{"start": -1, "end": 100},
		{"start": 50, "end": -1},
		{"start": 0, "end": 127},
	})
	v.SetDefault("points", []int{})

	// Plot defaults
	v.SetDefault("plot.enabled", true)
	v.SetDefault("plot.width", 60)
	v.SetDefault("plot.bins", 16)

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.db_path", "./data/matches.db")
	v.SetDefault("cache.max_age", "1h")
	v.SetDefault("cache.max_entries", 500)

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate TBA config
	if c.TBA.APIBaseURL == "" {
		return fmt.Errorf("tba.api_base_url is required")
	}
	if c.TBA.AuthKey == "" {
		return fmt.Errorf("tba.auth_key is required (set QUANTUM_SCOUT_TBA_AUTH_KEY)")
	}
	if c.TBA.Timeout <= 0 {
		return fmt.Errorf("tba.timeout must be positive")
	}
	if c.TBA.MaxRetries < 1 {
		return fmt.Errorf("tba.max_retries must be at least 1")
	}

	// Validate Prediction config
	if c.Prediction.Event == "" {
		return fmt.Errorf("prediction.event is required")
	}
	if len(c.Prediction.Teams) != 3 {
		return fmt.Errorf("prediction.teams must list exactly 3 teams")
	}
	for _, team := range c.Prediction.Teams {
		if team <= 0 {
			return fmt.Errorf("prediction.teams must be positive team numbers")
		}
	}
	if c.Prediction.MatchCount < 1 || c.Prediction.MatchCount > MaxMatchCount {
		return fmt.Errorf("prediction.match_count must be between 1 and %d", MaxMatchCount)
	}
	if c.Prediction.Shots < 1 {
		return fmt.Errorf("prediction.shots must be at least 1")
	}
	validRotations := map[string]bool{"rx": true, "ry": true}
	if !validRotations[strings.ToLower(c.Prediction.Rotation)] {
		return fmt.Errorf("prediction.rotation must be one of: rx, ry")
	}

	// Validate queries
	for i, q := range c.Queries {
		if q.Start < -1 || q.End < -1 {
			return fmt.Errorf("queries[%d]: bounds must be -1 or non-negative", i)
		}
	}
	for i, p := range c.Points {
		if p < 0 {
			return fmt.Errorf("points[%d] must not be negative", i)
		}
	}

	// Validate Plot config
	if c.Plot.Enabled {
		if c.Plot.Width < 1 {
			return fmt.Errorf("plot.width must be at least 1")
		}
		if c.Plot.Bins < 1 {
			return fmt.Errorf("plot.bins must be at least 1")
		}
	}

	// Validate Cache config
	if c.Cache.Enabled && c.Cache.DBPath == "" {
		return fmt.Errorf("cache.db_path is required when cache is enabled")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
