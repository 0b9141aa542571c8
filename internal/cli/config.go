package cli

import (
	"fmt"

	"github.com/vburojevic/e2econf/internal/config"
	"github.com/vburojevic/e2econf/internal/output"
)

// ConfigCmd shows or manages e2econf settings
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" default:"withargs" help:"Show current settings"`
	Path     ConfigPathCmd     `cmd:"" help:"Show settings file path"`
	Generate ConfigGenerateCmd `cmd:"" help:"Generate a sample settings file"`
}

// ConfigShowCmd shows current settings
type ConfigShowCmd struct{}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteRaw(map[string]any{
			"type":          "config",
			"schemaVersion": output.SchemaVersion,
			"format":        cfg.Format,
			"level":         cfg.Level,
			"quiet":         cfg.Quiet,
			"verbose":       cfg.Verbose,
			"defaults": map[string]string{
				"config_path":   cfg.Defaults.ConfigPath,
				"configuration": cfg.Defaults.Configuration,
				"log_file":      cfg.Defaults.LogFile,
			},
			"path": config.ConfigFile(),
		})
	}

	fmt.Fprintln(globals.Stdout, "Current Settings:")
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintf(globals.Stdout, "  format:  %s\n", cfg.Format)
	fmt.Fprintf(globals.Stdout, "  level:   %s\n", cfg.Level)
	fmt.Fprintf(globals.Stdout, "  quiet:   %v\n", cfg.Quiet)
	fmt.Fprintf(globals.Stdout, "  verbose: %v\n", cfg.Verbose)
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintln(globals.Stdout, "Defaults:")
	fmt.Fprintf(globals.Stdout, "  config_path:   %s\n", cfg.Defaults.ConfigPath)
	fmt.Fprintf(globals.Stdout, "  configuration: %s\n", cfg.Defaults.Configuration)
	fmt.Fprintf(globals.Stdout, "  log_file:      %s\n", cfg.Defaults.LogFile)

	if path := config.ConfigFile(); path != "" {
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintf(globals.Stdout, "Loaded from: %s\n", path)
	}

	return nil
}

// ConfigPathCmd shows the settings file path
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := config.ConfigFile()

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteRaw(map[string]any{
			"type":          "config_path",
			"schemaVersion": output.SchemaVersion,
			"path":          path,
		})
	}

	if path == "" {
		fmt.Fprintln(globals.Stdout, "No settings file found")
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintln(globals.Stdout, "Create one at:")
		fmt.Fprintln(globals.Stdout, "  ./.e2econf.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.e2econf.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.config/e2econf/config.yaml")
	} else {
		fmt.Fprintf(globals.Stdout, "Settings file: %s\n", path)
	}

	return nil
}

// ConfigGenerateCmd generates a sample settings file
type ConfigGenerateCmd struct{}

const sampleSettings = `# e2econf settings file
# Place this file at ./.e2econf.yaml, ~/.e2econf.yaml or ~/.config/e2econf/config.yaml

# Output format: "ndjson" (default) or "text"
format: ndjson

# Log level: debug, info, warn, error
level: info

# Suppress warnings and informational output
quiet: false

# Log composition steps to stderr
verbose: false

defaults:
  # Config file to use instead of searching up from the working directory
  # config_path: ./e2e/.e2erc.json

  # Configuration used when --configuration is not given
  # configuration: ios.sim.debug

  # Write JSON logs to this file (rotated at 10MB)
  # log_file: .e2econf/e2econf.log
`

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	_, err := fmt.Fprint(globals.Stdout, sampleSettings)
	return err
}
