package cli

import (
	"github.com/vburojevic/e2econf/internal/configerr"
	"github.com/vburojevic/e2econf/internal/document"
	"github.com/vburojevic/e2econf/internal/output"
)

// ListCmd lists the configurations declared in the config file
type ListCmd struct {
	DocumentFlags `embed:""`
}

// Run executes the list command
func (c *ListCmd) Run(globals *Globals) error {
	global, location, err := c.load(globals)
	if err != nil {
		return emitError(globals, err)
	}
	if global == nil || len(global.Configurations) == 0 {
		return emitError(globals, configerr.NewBuilder().NoConfigurations(location))
	}

	rows := configurationRows(global, c.selected(globals, global))
	return globals.Emitter().Configurations(rows)
}

// selected returns the configuration resolve would use, or "" when that is ambiguous
func (c *ListCmd) selected(globals *Globals, global *document.GlobalConfig) string {
	if name := c.configuration(globals); name != "" {
		return name
	}
	if global.SelectedConfiguration != "" {
		return global.SelectedConfiguration
	}
	if names := global.ConfigurationNames(); len(names) == 1 {
		return names[0]
	}
	return ""
}

func configurationRows(global *document.GlobalConfig, selected string) []*output.ConfigurationOutput {
	names := global.ConfigurationNames()
	rows := make([]*output.ConfigurationOutput, 0, len(names))
	for _, name := range names {
		row := &output.ConfigurationOutput{Name: name, Selected: name == selected}
		switch local := global.Configurations[name].(type) {
		case *document.PlainConfig:
			row.Kind = "plain"
			row.DeviceType = string(local.Type)
			query := local.Device
			if query.IsZero() {
				query = local.Name
			}
			row.Device = query.String()
		case *document.AliasedConfig:
			row.Kind = "aliased"
			if local.Device.IsAlias() {
				row.Device = local.Device.Alias
				row.DeviceType = string(global.Devices[local.Device.Alias].Type)
			} else if local.Device.Inline != nil {
				row.DeviceType = string(local.Device.Inline.Type)
				row.Device = local.Device.Inline.Device.String()
			}
			row.Apps = appLabels(local)
		}
		rows = append(rows, row)
	}
	return rows
}

// appLabels names the apps an aliased configuration refers to: the alias, or
// the inline app's name.
func appLabels(local *document.AliasedConfig) []string {
	var values []any
	switch {
	case local.Apps.Declared():
		if items, ok := local.Apps.List(); ok {
			values = items
		}
	case local.App.Declared():
		values = []any{local.App.Value()}
	}

	var labels []string
	for _, v := range values {
		ref, err := document.ParseAppRef(v)
		switch {
		case err != nil:
			continue
		case ref.Inline != nil && ref.Inline.Name != "":
			labels = append(labels, ref.Inline.Name)
		case ref.Inline != nil:
			labels = append(labels, "(inline)")
		default:
			labels = append(labels, ref.Alias)
		}
	}
	return labels
}
