package compose

import (
	"maps"

	"github.com/vburojevic/e2econf/internal/document"
	"github.com/vburojevic/e2econf/internal/domain"
)

// Input is shared by the device, apps and session resolvers
type Input struct {
	Errors ErrorBuilder
	Global *document.GlobalConfig
	Local  document.LocalConfig
	CLI    domain.CLIConfig
}

// ResolveDevice resolves and validates the device under test. A CLI device
// name replaces the matcher after validation and is not validated itself.
func ResolveDevice(in Input) (domain.DeviceConfig, error) {
	var (
		dev   domain.DeviceConfig
		alias string
		err   error
	)
	switch local := in.Local.(type) {
	case *document.PlainConfig:
		dev = plainDevice(local)
	case *document.AliasedConfig:
		dev, alias, err = aliasedDevice(in, local)
		if err != nil {
			return domain.DeviceConfig{}, err
		}
	default:
		return domain.DeviceConfig{}, in.Errors.DeviceConfigUndefined()
	}

	if err := validateDevice(in.Errors, dev, alias); err != nil {
		return domain.DeviceConfig{}, err
	}

	if in.CLI.DeviceName != "" {
		dev.Device = domain.ShorthandQuery(in.CLI.DeviceName)
	}
	return dev, nil
}

func plainDevice(local *document.PlainConfig) domain.DeviceConfig {
	if local.Type.IsKnown() {
		query := local.Device
		if query.IsZero() {
			query = local.Name
		}
		return domain.DeviceConfig{Type: local.Type, Device: query}.Clone()
	}

	// Custom drivers get the block as written.
	extra := maps.Clone(local.Raw)
	delete(extra, "type")
	delete(extra, "device")
	if len(extra) == 0 {
		extra = nil
	}
	return domain.DeviceConfig{Type: local.Type, Device: local.Device, Extra: extra}.Clone()
}

func aliasedDevice(in Input, local *document.AliasedConfig) (domain.DeviceConfig, string, error) {
	ref := local.Device
	if ref.IsAlias() {
		if len(in.Global.Devices) == 0 {
			return domain.DeviceConfig{}, "", in.Errors.NoDeviceConfigs(ref.Alias)
		}
		dev, ok := in.Global.Devices[ref.Alias]
		if !ok {
			return domain.DeviceConfig{}, "", in.Errors.UnresolvedDeviceAlias(ref.Alias)
		}
		return dev.Clone(), ref.Alias, nil
	}
	if ref.Inline == nil {
		return domain.DeviceConfig{}, "", in.Errors.DeviceConfigUndefined()
	}
	return ref.Inline.Clone(), "", nil
}

func validateDevice(errs ErrorBuilder, dev domain.DeviceConfig, alias string) error {
	if dev.Type == "" {
		return errs.MissingDeviceType(alias)
	}
	if dev.Device.IsShorthand() {
		return nil
	}

	expected := dev.Type.MatcherProps()
	if len(expected) == 0 {
		return nil
	}
	if dev.Device.IsEmpty() {
		return errs.MissingDeviceProperty(alias, expected)
	}
	if !dev.Device.HasAny(expected) {
		return errs.MissingDeviceMatcherProperties(alias, expected)
	}
	return nil
}
