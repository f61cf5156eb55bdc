package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Redis
	RedisURL string `mapstructure:"REDIS_URL"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Builder
	DefaultPreset string `mapstructure:"DEFAULT_PRESET"`
	SnapshotTTL   int    `mapstructure:"SNAPSHOT_TTL_HOURS"`

	// Simulation
	MaxSimIterations    int     `mapstructure:"MAX_SIM_ITERATIONS"`
	MaxCombinations     int     `mapstructure:"MAX_COMBINATIONS"`
	ClosedFormWeight    float64 `mapstructure:"CLOSED_FORM_WEIGHT"`
	CorrelationWeight   float64 `mapstructure:"CORRELATION_WEIGHT"`
	AssumedParlayPayout float64 `mapstructure:"ASSUMED_PARLAY_PAYOUT"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8084")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("DEFAULT_PRESET", "balanced")
	viper.SetDefault("SNAPSHOT_TTL_HOURS", 72)
	viper.SetDefault("MAX_SIM_ITERATIONS", 10000)
	viper.SetDefault("MAX_COMBINATIONS", 200)
	viper.SetDefault("CLOSED_FORM_WEIGHT", 0.4)
	viper.SetDefault("CORRELATION_WEIGHT", 0.3)
	viper.SetDefault("ASSUMED_PARLAY_PAYOUT", 25.0) // typical 6-leg multiplier

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
