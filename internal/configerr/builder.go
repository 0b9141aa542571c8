package configerr

import (
	"fmt"
	"strings"

	"github.com/vburojevic/e2econf/internal/domain"
)

// Catalog lists the names declared by a document. It is only used to render hints.
type Catalog struct {
	Configurations []string
	Devices        []string
	Apps           []string
}

// Builder produces configuration errors carrying the context they were raised in.
// It is the only place that decides how an error reads.
type Builder struct {
	configLocation    string
	configurationName string
	plain             bool
	catalog           Catalog
}

// NewBuilder creates a builder with no context
func NewBuilder() *Builder {
	return &Builder{}
}

// SetConfigLocation records the file the document was loaded from
func (b *Builder) SetConfigLocation(location string) *Builder {
	b.configLocation = location
	return b
}

// SetCatalog records the names declared by the document
func (b *Builder) SetCatalog(c Catalog) *Builder {
	b.catalog = c
	return b
}

// SetConfigurationName records the configuration being resolved
func (b *Builder) SetConfigurationName(name string) {
	b.configurationName = name
}

// SetPlainConfiguration records whether the configuration declares its device
// inline at the top level, which moves device paths up one level.
func (b *Builder) SetPlainConfiguration(plain bool) {
	b.plain = plain
}

// ConfigurationName returns the configuration being resolved
func (b *Builder) ConfigurationName() string {
	return b.configurationName
}

func (b *Builder) newError(kind Kind, path domain.Path, message, hint string) *Error {
	return &Error{
		Kind:           kind,
		Message:        message,
		Hint:           hint,
		Path:           path,
		Configuration:  b.configurationName,
		ConfigLocation: b.configLocation,
	}
}

func (b *Builder) configurationPath() domain.Path {
	return domain.NewPath("configurations", b.configurationName)
}

func (b *Builder) devicePath(alias string) domain.Path {
	if alias != "" {
		return domain.NewPath("devices", alias)
	}
	if b.plain {
		return b.configurationPath()
	}
	return b.configurationPath().Key("device")
}

func (b *Builder) inFile() string {
	if b.configLocation == "" {
		return ""
	}
	return " in " + b.configLocation
}

// NoConfigurations reports a document without any configurations. location
// overrides the builder's own config location when set.
func (b *Builder) NoConfigurations(location string) error {
	if location == "" {
		location = b.configLocation
	}
	if location != "" {
		e := b.newError(KindNoConfigurations, domain.NewPath("configurations"),
			fmt.Sprintf("there are no configurations in the config file at %s", location),
			`Add at least one entry under "configurations"`)
		e.ConfigLocation = location
		return e
	}
	return b.newError(KindNoConfigurations, domain.NewPath("configurations"),
		"cannot compose a runtime configuration without a config file",
		"Create a config file (e.g. .e2erc.json) or pass --config-path")
}

// UnknownConfiguration reports a requested configuration name that is not declared
func (b *Builder) UnknownConfiguration() error {
	return b.newError(KindUnknownConfiguration, b.configurationPath(),
		fmt.Sprintf("failed to find a configuration named %q%s", b.configurationName, b.inFile()),
		hintChooseFrom("Valid configurations are", b.catalog.Configurations))
}

// AmbiguousConfiguration reports several configurations and no way to choose
func (b *Builder) AmbiguousConfiguration() error {
	return b.newError(KindAmbiguousConfiguration, domain.NewPath("configurations"),
		fmt.Sprintf("cannot determine which configuration to use%s", b.inFile()),
		hintChooseFrom("Pass --configuration with one of", b.catalog.Configurations))
}

// NoDeviceConfigs reports a device alias used while no devices are declared
func (b *Builder) NoDeviceConfigs(alias string) error {
	e := b.newError(KindNoDeviceConfigs, b.configurationPath().Key("device"),
		fmt.Sprintf("cannot use device alias %q: no devices are declared", alias),
		fmt.Sprintf(`Declare it under "devices": {"%s": {"type": ...}}`, alias))
	e.Alias = alias
	return e
}

// UnresolvedDeviceAlias reports a device alias missing from the devices pool
func (b *Builder) UnresolvedDeviceAlias(alias string) error {
	e := b.newError(KindUnresolvedDeviceAlias, b.configurationPath().Key("device"),
		fmt.Sprintf("failed to find a device config %q", alias),
		hintChooseFrom("Declared devices are", b.catalog.Devices))
	e.Alias = alias
	return e
}

// DeviceConfigUndefined reports an aliased configuration without a device
func (b *Builder) DeviceConfigUndefined() error {
	return b.newError(KindDeviceConfigUndefined, b.configurationPath().Key("device"),
		fmt.Sprintf("configuration %q has no device", b.configurationName),
		`Add "device" with a device alias or an inline device object`)
}

// MissingDeviceType reports a device config without "type"
func (b *Builder) MissingDeviceType(alias string) error {
	e := b.newError(KindMissingDeviceType, b.devicePath(alias).Key("type"),
		`missing "type" in the device config`,
		`Set "type" to one of: ios.simulator, ios.none, android.attached, android.emulator, android.genycloud, or a path to a custom driver`)
	e.Alias = alias
	return e
}

// MissingDeviceProperty reports a device config whose matcher is absent or empty
func (b *Builder) MissingDeviceProperty(alias string, expected []string) error {
	e := b.newError(KindMissingDeviceProperty, b.devicePath(alias).Key("device"),
		`missing "device" matcher in the device config`,
		hintChooseFrom(`Set "device" to an object with at least one of`, expected))
	e.Alias = alias
	e.Expected = expected
	return e
}

// MissingDeviceMatcherProperties reports a matcher with none of the expected fields
func (b *Builder) MissingDeviceMatcherProperties(alias string, expected []string) error {
	e := b.newError(KindMissingDeviceMatcherProperties, b.devicePath(alias).Key("device"),
		"the device matcher has none of the expected properties",
		hintChooseFrom("Add at least one of", expected))
	e.Alias = alias
	e.Expected = expected
	return e
}

// InvalidAppType reports an app whose type the device cannot run
func (b *Builder) InvalidAppType(device domain.DeviceConfig, app domain.AppConfig, appPath domain.Path) error {
	allowed := make([]string, 0, 1)
	for _, t := range device.Type.AllowedAppTypes() {
		allowed = append(allowed, string(t))
	}
	e := b.newError(KindInvalidAppType, appPath.Key("type"),
		fmt.Sprintf("app type %q is incompatible with device type %q", app.Type, device.Type),
		hintChooseFrom(`Set "type" to`, allowed))
	e.DeviceType = device.Type
	e.AppType = app.Type
	return e
}

// AmbiguousAppAndApps reports a configuration declaring both "app" and "apps"
func (b *Builder) AmbiguousAppAndApps() error {
	return b.newError(KindAmbiguousAppAndApps, b.configurationPath(),
		fmt.Sprintf(`configuration %q declares both "app" and "apps"`, b.configurationName),
		`Keep "app" for a single app or "apps" for a list, not both`)
}

// AppsArrayTypo reports a list assigned to "app"
func (b *Builder) AppsArrayTypo() error {
	return b.newError(KindAppsArrayTypo, b.configurationPath().Key("app"),
		`"app" holds a list`,
		`Rename "app" to "apps" to declare several apps`)
}

// AppsNotArray reports an "apps" value that is not a list
func (b *Builder) AppsNotArray() error {
	return b.newError(KindAppsNotArray, b.configurationPath().Key("apps"),
		`"apps" must be a list`,
		`Use "app" for a single app, or wrap the value in a list`)
}

// NoAppConfigs reports an app alias used while no apps are declared
func (b *Builder) NoAppConfigs(alias string, refPath domain.Path) error {
	e := b.newError(KindNoAppConfigs, refPath,
		fmt.Sprintf("cannot use app alias %q: no apps are declared", alias),
		fmt.Sprintf(`Declare it under "apps": {"%s": {"type": ...}}`, alias))
	e.Alias = alias
	return e
}

// UnresolvedAppAlias reports an app alias missing from the apps pool
func (b *Builder) UnresolvedAppAlias(alias string, refPath domain.Path) error {
	e := b.newError(KindUnresolvedAppAlias, refPath,
		fmt.Sprintf("failed to find an app config %q", alias),
		hintChooseFrom("Declared apps are", b.catalog.Apps))
	e.Alias = alias
	return e
}

// DuplicateAppConfig reports two apps resolving to the same name
func (b *Builder) DuplicateAppConfig(appName string, appPath, preExistingPath domain.Path) error {
	label := appName
	if label == "" {
		label = "<unnamed>"
	}
	e := b.newError(KindDuplicateAppConfig, appPath,
		fmt.Sprintf("app %s at %s has the same name as the app at %s", label, appPath, preExistingPath),
		`Give each app of the configuration a unique "name"`)
	e.Related = preExistingPath
	e.AppName = appName
	return e
}

// MissingBinaryPath reports an app that declares neither binaryPath nor bundleId
func (b *Builder) MissingBinaryPath(appPath domain.Path) error {
	return b.newError(KindMissingBinaryPath, appPath,
		`missing "binaryPath" in the app config`,
		`Set "binaryPath" to the built app, or "bundleId" for an app installed on the device`)
}

// InvalidServer reports a session.server that is not a websocket URL
func (b *Builder) InvalidServer(path domain.Path) error {
	return b.newError(KindInvalidServer, path,
		`"server" must be a valid websocket URL`,
		`Use a value like "ws://localhost:8099"`)
}

// InvalidSessionID reports a session.sessionId that is not a non-empty string
func (b *Builder) InvalidSessionID(path domain.Path) error {
	return b.newError(KindInvalidSessionID, path,
		`"sessionId" must be a non-empty string`,
		"Remove it to get a generated identifier")
}

// InvalidDebugSynchronization reports a session.debugSynchronization that is not a non-negative integer
func (b *Builder) InvalidDebugSynchronization(path domain.Path) error {
	return b.newError(KindInvalidDebugSynchronization, path,
		`"debugSynchronization" must be a non-negative number of milliseconds`,
		"Use 0 to disable it, or e.g. 10000")
}

// InvalidAutoStart reports a session.autoStart that is not a boolean
func (b *Builder) InvalidAutoStart(path domain.Path) error {
	return b.newError(KindInvalidAutoStart, path,
		`"autoStart" must be a boolean`, "")
}

// PortUnavailable reports a failed free-port probe
func (b *Builder) PortUnavailable(cause error) error {
	e := b.newError(KindPortUnavailable, nil,
		"failed to allocate a local port for the session server",
		`Set "session.server" explicitly`)
	e.Cause = cause
	return e
}

// MalformedDocument reports a document node of the wrong shape
func (b *Builder) MalformedDocument(path domain.Path, problem string) error {
	return b.newError(KindMalformedDocument, path,
		fmt.Sprintf("invalid value at %s: %s", path, problem), "")
}

func hintChooseFrom(prefix string, names []string) string {
	if len(names) == 0 {
		return ""
	}
	return prefix + ": " + strings.Join(names, ", ")
}
