// Package config resolves process configuration once at startup.
//
// Settings come from, in increasing precedence: built-in defaults, an
// optional config.yaml in the library root, and FAST_KIT_* environment
// variables. The resolved Config is passed explicitly into constructors;
// nothing reads the environment mid-operation.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds every startup-resolved setting
type Config struct {
	// LibraryDir is the root of the document library (default ~/.fast-kit)
	LibraryDir string `mapstructure:"library_dir"`

	// Port for the HTTP API server
	Port int `mapstructure:"port"`

	// ListLimit caps listing results when the caller supplies none
	ListLimit int `mapstructure:"list_limit"`

	// SearchLimit caps ranked search results when the caller supplies none
	SearchLimit int `mapstructure:"search_limit"`

	// AnalyticsEnabled toggles the sqlite usage counters
	AnalyticsEnabled bool `mapstructure:"analytics_enabled"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `mapstructure:"log_level"`
}

// Load resolves configuration from defaults, optional config.yaml, and environment
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("library_dir", defaultLibraryDir())
	v.SetDefault("port", 8080)
	v.SetDefault("list_limit", 50)
	v.SetDefault("search_limit", 10)
	v.SetDefault("analytics_enabled", true)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("FAST_KIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// FAST_KIT_DIR is the historical name for the library root
	if dir := os.Getenv("FAST_KIT_DIR"); dir != "" {
		v.Set("library_dir", dir)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(v.GetString("library_dir"))
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
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

func defaultLibraryDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".fast-kit"
	}
	return filepath.Join(homeDir, ".fast-kit")
}
