// Package config loads qatrack configuration from file and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment variable prefix for qatrack configuration.
const envPrefix = "QATRACK"

// Config holds the tool-wide settings.
type Config struct {
	// StorePath is the SQLite database location.
	StorePath string `mapstructure:"store_path"`
	// Environment is the default environment context for commands.
	Environment string `mapstructure:"environment"`
	// SimulatorInterval is the delay between simulated status changes.
	SimulatorInterval time.Duration `mapstructure:"simulator_interval"`
	// Verbose enables debug logging.
	Verbose bool `mapstructure:"verbose"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		StorePath:         defaultStorePath(),
		Environment:       "QA",
		SimulatorInterval: 30 * time.Second,
	}
}

// Load reads configuration from the given file, overlaying QATRACK_* env
// vars on top of defaults. A missing config file is not an error; an empty
// path uses ~/.qatrack/config.yaml.
func Load(configFile string) (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("store_path", def.StorePath)
	v.SetDefault("environment", def.Environment)
	v.SetDefault("simulator_interval", def.SimulatorInterval)
	v.SetDefault("verbose", def.Verbose)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			configFile = filepath.Join(home, ".qatrack", "config.yaml")
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			// Config file not found is OK; defaults + env vars apply.
			if !os.IsNotExist(err) {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					return Config{}, fmt.Errorf("reading config file: %w", err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "qatrack.db"
	}
	return filepath.Join(home, ".qatrack", "qatrack.db")
}
