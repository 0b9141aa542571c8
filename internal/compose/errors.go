package compose

import (
	"github.com/vburojevic/e2econf/internal/configerr"
	"github.com/vburojevic/e2econf/internal/domain"
)

// ErrorBuilder produces the structured errors raised by the resolvers. The
// resolvers only detect failures; wording and hints belong to the builder.
type ErrorBuilder interface {
	SetConfigurationName(name string)
	SetPlainConfiguration(plain bool)
	ConfigurationName() string

	NoConfigurations(location string) error
	UnknownConfiguration() error
	AmbiguousConfiguration() error

	NoDeviceConfigs(alias string) error
	UnresolvedDeviceAlias(alias string) error
	DeviceConfigUndefined() error
	MissingDeviceType(alias string) error
	MissingDeviceProperty(alias string, expected []string) error
	MissingDeviceMatcherProperties(alias string, expected []string) error

	InvalidAppType(device domain.DeviceConfig, app domain.AppConfig, appPath domain.Path) error
	AmbiguousAppAndApps() error
	AppsArrayTypo() error
	AppsNotArray() error
	NoAppConfigs(alias string, refPath domain.Path) error
	UnresolvedAppAlias(alias string, refPath domain.Path) error
	DuplicateAppConfig(appName string, appPath, preExistingPath domain.Path) error
	MissingBinaryPath(appPath domain.Path) error

	InvalidServer(path domain.Path) error
	InvalidSessionID(path domain.Path) error
	InvalidDebugSynchronization(path domain.Path) error
	InvalidAutoStart(path domain.Path) error
	PortUnavailable(cause error) error

	MalformedDocument(path domain.Path, problem string) error
}

var _ ErrorBuilder = (*configerr.Builder)(nil)
