package compose

import (
	"github.com/vburojevic/e2econf/internal/document"
	"github.com/vburojevic/e2econf/internal/domain"
)

// SelectInput is what the configuration selector works from
type SelectInput struct {
	Global         *document.GlobalConfig
	CLI            domain.CLIConfig
	Errors         ErrorBuilder
	ConfigLocation string
}

// SelectConfiguration picks the configuration to resolve: the CLI name, then
// the document's selectedConfiguration, then the only declared configuration.
// On success the error builder is told which configuration is being resolved.
func SelectConfiguration(in SelectInput) (string, error) {
	if in.Global == nil || len(in.Global.Configurations) == 0 {
		return "", in.Errors.NoConfigurations(in.ConfigLocation)
	}

	name := in.CLI.Configuration
	if name == "" {
		name = in.Global.SelectedConfiguration
	}
	if name == "" && len(in.Global.Configurations) == 1 {
		for only := range in.Global.Configurations {
			name = only
		}
	}
	if name == "" {
		return "", in.Errors.AmbiguousConfiguration()
	}

	in.Errors.SetConfigurationName(name)
	local, ok := in.Global.Configurations[name]
	if !ok {
		return "", in.Errors.UnknownConfiguration()
	}
	_, plain := local.(*document.PlainConfig)
	in.Errors.SetPlainConfiguration(plain)
	return name, nil
}
