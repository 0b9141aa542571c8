package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config holds the tool's own settings
type Config struct {
	// Global settings
	Format  string `mapstructure:"format"`
	Level   string `mapstructure:"level"`
	Quiet   bool   `mapstructure:"quiet"`
	Verbose bool   `mapstructure:"verbose"`

	// Default values for commands
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

// DefaultsConfig holds default values for the resolve family of commands
type DefaultsConfig struct {
	// ConfigPath is the configuration document to use instead of discovery
	ConfigPath string `mapstructure:"config_path"`
	// Configuration is the configuration name used when none is given
	Configuration string `mapstructure:"configuration"`
	// LogFile receives JSON logs with rotation when set
	LogFile string `mapstructure:"log_file"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format:  "ndjson",
		Level:   "info",
		Quiet:   false,
		Verbose: false,
	}
}

// Load loads settings from files and environment
// Settings file search order (highest precedence first):
// 1. ./.e2econf.yaml or ./.e2econf.yml
// 2. ~/.e2econf.yaml or ~/.e2econf.yml
// 3. $XDG_CONFIG_HOME/e2econf/config.yaml (or ~/.config/e2econf/config.yaml)
// 4. /etc/e2econf/config.yaml
func Load() (*Config, error) {
	cfg := Default()

	if configFile := findConfigFile(); configFile != "" {
		loaded, err := LoadFromFile(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// findConfigFile searches for a settings file in standard locations
func findConfigFile() string {
	names := []string{".e2econf.yaml", ".e2econf.yml", "e2econf.yaml", "e2econf.yml"}

	var searchPaths []string

	// 1. Current directory
	if cwd, err := os.Getwd(); err == nil {
		searchPaths = append(searchPaths, cwd)
	}

	// 2. Home directory
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, home)
	}

	// 3. XDG config directory
	searchPaths = append(searchPaths, filepath.Join(xdg.ConfigHome, "e2econf"))

	// 4. System config
	searchPaths = append(searchPaths, "/etc/e2econf")

	for _, dir := range searchPaths {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		path := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to cfg
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("E2ECONF_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("E2ECONF_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv("E2ECONF_QUIET"); v == "true" || v == "1" {
		cfg.Quiet = true
	}
	if v := os.Getenv("E2ECONF_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = true
	}
	if v := os.Getenv("E2ECONF_CONFIG_PATH"); v != "" {
		cfg.Defaults.ConfigPath = v
	}
	if v := os.Getenv("E2ECONF_CONFIGURATION"); v != "" {
		cfg.Defaults.Configuration = v
	}
}

// LoadFromFile loads settings from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ConfigFile returns the path to the settings file that would be loaded
func ConfigFile() string {
	return findConfigFile()
}
