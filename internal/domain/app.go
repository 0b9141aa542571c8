package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// AppType identifies the packaging of an app under test
type AppType string

const (
	AppIOS     AppType = "ios.app"
	AppAndroid AppType = "android.apk"
)

// RequiresBinary reports whether apps of this type must declare binaryPath or bundleId
func (t AppType) RequiresBinary() bool {
	return t == AppIOS || t == AppAndroid
}

// AppConfig is a resolved app declaration
type AppConfig struct {
	Type            AppType        `mapstructure:"type"`
	Name            string         `mapstructure:"name"`
	BinaryPath      string         `mapstructure:"binaryPath"`
	BundleID        string         `mapstructure:"bundleId"`
	Build           string         `mapstructure:"build"`
	TestBinaryPath  string         `mapstructure:"testBinaryPath"`
	UtilBinaryPaths []string       `mapstructure:"utilBinaryPaths"`
	LaunchArgs      map[string]any `mapstructure:"launchArgs"`
	Extra           map[string]any `mapstructure:",remain"`
}

// HasBinary reports whether the app can be located on disk or on the device
func (a AppConfig) HasBinary() bool {
	return a.BinaryPath != "" || a.BundleID != ""
}

// Clone returns a copy that shares no maps or slices with a
func (a AppConfig) Clone() AppConfig {
	a.UtilBinaryPaths = slices.Clone(a.UtilBinaryPaths)
	a.LaunchArgs = maps.Clone(a.LaunchArgs)
	a.Extra = maps.Clone(a.Extra)
	return a
}

// WithLaunchArgs returns a copy whose launch arguments are overlaid with args.
// Keys in args replace same-named keys; other keys are kept.
func (a AppConfig) WithLaunchArgs(args map[string]string) AppConfig {
	out := a.Clone()
	if len(args) == 0 {
		return out
	}
	if out.LaunchArgs == nil {
		out.LaunchArgs = make(map[string]any, len(args))
	}
	for k, v := range args {
		out.LaunchArgs[k] = v
	}
	return out
}

func (a AppConfig) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Extra)+8)
	maps.Copy(out, a.Extra)
	setString(out, "type", string(a.Type))
	setString(out, "name", a.Name)
	setString(out, "binaryPath", a.BinaryPath)
	setString(out, "bundleId", a.BundleID)
	setString(out, "build", a.Build)
	setString(out, "testBinaryPath", a.TestBinaryPath)
	if a.UtilBinaryPaths != nil {
		out["utilBinaryPaths"] = a.UtilBinaryPaths
	}
	if a.LaunchArgs != nil {
		out["launchArgs"] = a.LaunchArgs
	}
	return json.Marshal(out)
}

func setString(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
