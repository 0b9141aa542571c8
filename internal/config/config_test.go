package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves into a fresh directory that is also $HOME
func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(origDir))
	})
	return tmpDir
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, "ndjson", cfg.Format)
	assert.Equal(t, "info", cfg.Level)
	assert.False(t, cfg.Quiet)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.Defaults.ConfigPath)
	assert.Empty(t, cfg.Defaults.Configuration)
}

func TestLoad(t *testing.T) {
	t.Run("returns defaults when no config file exists", func(t *testing.T) {
		chdirTemp(t)

		cfg, err := Load()
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, "ndjson", cfg.Format)
	})

	t.Run("loads the file from the current directory", func(t *testing.T) {
		dir := chdirTemp(t)
		content := `
format: text
defaults:
  configuration: ios.sim.debug
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".e2econf.yaml"), []byte(content), 0644))

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "text", cfg.Format)
		assert.Equal(t, "ios.sim.debug", cfg.Defaults.Configuration)
	})

	t.Run("environment wins over the file", func(t *testing.T) {
		dir := chdirTemp(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".e2econf.yaml"), []byte("format: text\n"), 0644))
		t.Setenv("E2ECONF_FORMAT", "ndjson")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "ndjson", cfg.Format)
	})
}

func TestLoadFromFile(t *testing.T) {
	t.Run("returns error for non-existent file", func(t *testing.T) {
		cfg, err := LoadFromFile("/nonexistent/path/config.yaml")
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644))

		cfg, err := LoadFromFile(configPath)
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("parses all config fields", func(t *testing.T) {
		content := `
format: text
level: debug
quiet: true
verbose: true
defaults:
  config_path: e2e/.e2erc.json
  configuration: android.emu.release
  log_file: /tmp/e2econf.log
`
		configPath := filepath.Join(t.TempDir(), "e2econf.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

		cfg, err := LoadFromFile(configPath)
		require.NoError(t, err)

		assert.Equal(t, "text", cfg.Format)
		assert.Equal(t, "debug", cfg.Level)
		assert.True(t, cfg.Quiet)
		assert.True(t, cfg.Verbose)
		assert.Equal(t, "e2e/.e2erc.json", cfg.Defaults.ConfigPath)
		assert.Equal(t, "android.emu.release", cfg.Defaults.Configuration)
		assert.Equal(t, "/tmp/e2econf.log", cfg.Defaults.LogFile)
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Run("prefers .e2econf.yaml over .e2econf.yml", func(t *testing.T) {
		dir := chdirTemp(t)
		yamlPath := filepath.Join(dir, ".e2econf.yaml")
		require.NoError(t, os.WriteFile(yamlPath, []byte("format: text"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".e2econf.yml"), []byte("format: ndjson"), 0644))

		found := findConfigFile()
		// Resolve symlinks for comparison (macOS /var -> /private/var)
		expectedPath, err := filepath.EvalSymlinks(yamlPath)
		require.NoError(t, err)
		foundPath, err := filepath.EvalSymlinks(found)
		require.NoError(t, err)
		assert.Equal(t, expectedPath, foundPath)
	})

	t.Run("returns empty string when no config found", func(t *testing.T) {
		chdirTemp(t)
		assert.Empty(t, ConfigFile())
	})
}

func TestEnvOverrides(t *testing.T) {
	tests := []struct {
		env   string
		value string
		check func(t *testing.T, cfg *Config)
	}{
		{"E2ECONF_LEVEL", "debug", func(t *testing.T, cfg *Config) { assert.Equal(t, "debug", cfg.Level) }},
		{"E2ECONF_QUIET", "1", func(t *testing.T, cfg *Config) { assert.True(t, cfg.Quiet) }},
		{"E2ECONF_VERBOSE", "true", func(t *testing.T, cfg *Config) { assert.True(t, cfg.Verbose) }},
		{"E2ECONF_CONFIG_PATH", "x/.e2erc", func(t *testing.T, cfg *Config) { assert.Equal(t, "x/.e2erc", cfg.Defaults.ConfigPath) }},
		{"E2ECONF_CONFIGURATION", "ci", func(t *testing.T, cfg *Config) { assert.Equal(t, "ci", cfg.Defaults.Configuration) }},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			chdirTemp(t)
			t.Setenv(tt.env, tt.value)

			cfg, err := Load()
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}
