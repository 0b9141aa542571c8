package cli

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/vburojevic/e2econf/internal/compose"
	"github.com/vburojevic/e2econf/internal/configerr"
	"github.com/vburojevic/e2econf/internal/document"
	"github.com/vburojevic/e2econf/internal/domain"
	"go.uber.org/zap"
)

// DocumentFlags locate the config file and choose a configuration in it
type DocumentFlags struct {
	ConfigPath    string `short:"C" name:"config-path" type:"path" help:"Config file to use instead of searching up from the working directory"`
	Configuration string `short:"c" help:"Configuration to use (defaults to selectedConfiguration, or the only one declared)"`
}

// load reads the config file. A missing file is not an error here: the
// composer reports it with the same message as an empty document.
func (f DocumentFlags) load(globals *Globals) (*document.GlobalConfig, string, error) {
	path := f.ConfigPath
	if path == "" {
		path = globals.Config.Defaults.ConfigPath
	}
	if path == "" {
		found, err := document.Find(".")
		if errors.Is(err, document.ErrNotFound) {
			globals.Logger.Debug("no config file found")
			return nil, "", nil
		}
		if err != nil {
			return nil, "", err
		}
		path = found
	}

	location, err := filepath.Abs(path)
	if err != nil {
		location = path
	}
	globals.Logger.Debug("loading config file", zap.String("path", location))

	global, err := document.Load(path)
	if err != nil {
		if configerr.KindOf(err) != "" {
			return nil, location, err
		}
		return nil, location, &CLIError{Code: "CONFIG_READ_FAILED", Message: err.Error(), Hint: hintForDocument(err)}
	}
	return global, location, nil
}

// configuration returns the configuration name from the flag or the settings
func (f DocumentFlags) configuration(globals *Globals) string {
	if f.Configuration != "" {
		return f.Configuration
	}
	return globals.Config.Defaults.Configuration
}

// composeRuntime loads the config file and composes the runtime configuration
func composeRuntime(ctx context.Context, globals *Globals, flags DocumentFlags, overrides domain.CLIConfig) (*domain.RuntimeConfig, string, error) {
	global, location, err := flags.load(globals)
	if err != nil {
		return nil, location, err
	}
	overrides.ConfigPath = location
	overrides.Configuration = flags.configuration(globals)

	rc, err := compose.NewComposer(globals.Logger).Compose(ctx, compose.Request{
		Global:         global,
		CLI:            overrides,
		ConfigLocation: location,
	})
	return rc, location, err
}
