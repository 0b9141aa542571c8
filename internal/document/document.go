// Package document models the configuration document: named configurations,
// the shared devices and apps pools, and session defaults.
package document

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/vburojevic/e2econf/internal/configerr"
	"github.com/vburojevic/e2econf/internal/domain"
)

// GlobalConfig is a decoded configuration document
type GlobalConfig struct {
	Configurations        map[string]LocalConfig
	Devices               map[string]domain.DeviceConfig
	Apps                  AppPool
	Session               map[string]any
	SelectedConfiguration string
}

// ConfigurationNames returns the declared configuration names in sorted order
func (g *GlobalConfig) ConfigurationNames() []string {
	return slices.Sorted(maps.Keys(g.Configurations))
}

// Catalog lists the declared names for error hints
func (g *GlobalConfig) Catalog() configerr.Catalog {
	return configerr.Catalog{
		Configurations: g.ConfigurationNames(),
		Devices:        slices.Sorted(maps.Keys(g.Devices)),
		Apps:           g.Apps.Aliases(),
	}
}

// LocalConfig is one configuration block: either *PlainConfig or *AliasedConfig
type LocalConfig interface {
	// SessionOverrides returns the configuration's own session settings
	SessionOverrides() map[string]any
	localConfig()
}

// PlainConfig declares the device and a single app inline. It is recognized
// by its top-level "type".
type PlainConfig struct {
	Type domain.DeviceType
	// Device is the matcher payload; Name is its older spelling
	Device domain.DeviceQuery
	Name   domain.DeviceQuery
	App    AppFields
	// Raw is the block as written, used verbatim for custom device types
	Raw     map[string]any
	Session map[string]any
}

// AppFields are the app settings a plain configuration declares inline
type AppFields struct {
	BinaryPath      string         `mapstructure:"binaryPath"`
	BundleID        string         `mapstructure:"bundleId"`
	Build           string         `mapstructure:"build"`
	TestBinaryPath  string         `mapstructure:"testBinaryPath"`
	UtilBinaryPaths []string       `mapstructure:"utilBinaryPaths"`
	LaunchArgs      map[string]any `mapstructure:"launchArgs"`
}

func (c *PlainConfig) SessionOverrides() map[string]any {
	return c.Session
}

func (*PlainConfig) localConfig() {}

// AliasedConfig references devices and apps by alias or declares them as nested objects
type AliasedConfig struct {
	Device  DeviceRef
	App     AppSlot
	Apps    AppSlot
	Session map[string]any
}

func (c *AliasedConfig) SessionOverrides() map[string]any {
	return c.Session
}

func (*AliasedConfig) localConfig() {}

// DeviceRef is the "device" of an aliased configuration
type DeviceRef struct {
	Alias  string
	Inline *domain.DeviceConfig
}

// IsAlias reports whether the reference points into the devices pool
func (r DeviceRef) IsAlias() bool {
	return r.Alias != ""
}

// AppSlot holds the raw value of "app" or "apps". Its shape is checked by the
// apps resolver so that shape errors are reported before the entries are read.
type AppSlot struct {
	value any
}

// NewAppSlot wraps a raw "app"/"apps" value
func NewAppSlot(v any) AppSlot {
	return AppSlot{value: v}
}

// Declared reports whether the slot holds a meaningful value
func (s AppSlot) Declared() bool {
	switch v := s.value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	}
	return true
}

// List returns the slot's items when it holds a list
func (s AppSlot) List() ([]any, bool) {
	items, ok := s.value.([]any)
	return items, ok
}

// Value returns the raw value
func (s AppSlot) Value() any {
	return s.value
}

// AppRef is one app reference: an alias into the apps pool or an inline app
type AppRef struct {
	Alias  string
	Inline *domain.AppConfig
}

// ParseAppRef interprets one "app" value or "apps" item
func ParseAppRef(v any) (AppRef, error) {
	switch v := v.(type) {
	case string:
		return AppRef{Alias: v}, nil
	case map[string]any:
		app, err := decodeApp(v)
		if err != nil {
			return AppRef{}, err
		}
		return AppRef{Inline: &app}, nil
	}
	return AppRef{}, fmt.Errorf("expected an app alias or an app object, got %s", describe(v))
}

// AppPool is the shared "apps" section: a mapping from alias to app, or a list
// whose aliases are the decimal indexes.
type AppPool struct {
	named  map[string]domain.AppConfig
	listed []domain.AppConfig
}

// NamedApps builds a pool keyed by alias
func NamedApps(apps map[string]domain.AppConfig) AppPool {
	return AppPool{named: apps}
}

// ListedApps builds a pool from an unnamed list
func ListedApps(apps []domain.AppConfig) AppPool {
	return AppPool{listed: apps}
}

// IsEmpty reports whether the pool declares no apps
func (p AppPool) IsEmpty() bool {
	return len(p.named) == 0 && len(p.listed) == 0
}

// Lookup resolves an alias. Entries are returned as copies.
func (p AppPool) Lookup(alias string) (domain.AppConfig, bool) {
	if app, ok := p.named[alias]; ok {
		return app.Clone(), true
	}
	if i, err := strconv.Atoi(alias); err == nil && i >= 0 && i < len(p.listed) {
		return p.listed[i].Clone(), true
	}
	return domain.AppConfig{}, false
}

// Path returns the document path of the aliased entry
func (p AppPool) Path(alias string) domain.Path {
	if _, ok := p.named[alias]; ok || p.listed == nil {
		return domain.NewPath("apps", alias)
	}
	i, _ := strconv.Atoi(alias)
	return domain.NewPath("apps").Index(i)
}

// Aliases returns the pool's aliases in sorted order
func (p AppPool) Aliases() []string {
	if p.listed != nil {
		out := make([]string, len(p.listed))
		for i := range p.listed {
			out[i] = strconv.Itoa(i)
		}
		return out
	}
	return slices.Sorted(maps.Keys(p.named))
}
