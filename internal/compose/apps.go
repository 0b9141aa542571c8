package compose

import (
	"slices"

	"github.com/vburojevic/e2econf/internal/document"
	"github.com/vburojevic/e2econf/internal/domain"
)

// AppsInput extends Input with what the apps resolver needs from earlier steps
type AppsInput struct {
	Input
	Device            domain.DeviceConfig
	ConfigurationName string
}

// ResolveApps resolves the apps of the configuration keyed by app name. The
// CLI launch arguments are merged into every resolved app.
func ResolveApps(in AppsInput) (map[string]domain.AppConfig, error) {
	var (
		apps map[string]domain.AppConfig
		err  error
	)
	switch local := in.Local.(type) {
	case *document.PlainConfig:
		apps, err = plainApps(in, local)
	case *document.AliasedConfig:
		apps, err = aliasedApps(in, local)
	default:
		apps = map[string]domain.AppConfig{}
	}
	if err != nil {
		return nil, err
	}

	if len(in.CLI.AppLaunchArgs) > 0 {
		for name, app := range apps {
			apps[name] = app.WithLaunchArgs(in.CLI.AppLaunchArgs)
		}
	}
	return apps, nil
}

func plainApps(in AppsInput, local *document.PlainConfig) (map[string]domain.AppConfig, error) {
	f := local.App
	var app domain.AppConfig
	switch in.Device.Type.Platform() {
	case "android":
		app = domain.AppConfig{
			Type:            domain.AppAndroid,
			BinaryPath:      f.BinaryPath,
			BundleID:        f.BundleID,
			Build:           f.Build,
			TestBinaryPath:  f.TestBinaryPath,
			UtilBinaryPaths: f.UtilBinaryPaths,
			LaunchArgs:      f.LaunchArgs,
		}
	case "ios":
		app = domain.AppConfig{
			Type:       domain.AppIOS,
			BinaryPath: f.BinaryPath,
			BundleID:   f.BundleID,
			Build:      f.Build,
			LaunchArgs: f.LaunchArgs,
		}
	default:
		return map[string]domain.AppConfig{}, nil
	}

	path := domain.NewPath("configurations", in.ConfigurationName)
	if err := validateApp(in.Errors, app, path, in.Device); err != nil {
		return nil, err
	}
	return map[string]domain.AppConfig{"": app.Clone()}, nil
}

func aliasedApps(in AppsInput, local *document.AliasedConfig) (map[string]domain.AppConfig, error) {
	switch {
	case !local.App.Declared() && !local.Apps.Declared():
		return map[string]domain.AppConfig{}, nil
	case local.App.Declared() && local.Apps.Declared():
		return nil, in.Errors.AmbiguousAppAndApps()
	}
	if _, isList := local.App.List(); isList {
		return nil, in.Errors.AppsArrayTypo()
	}

	configPath := domain.NewPath("configurations", in.ConfigurationName)
	type ref struct {
		value any
		path  domain.Path
	}
	var refs []ref
	if local.Apps.Declared() {
		items, isList := local.Apps.List()
		if !isList {
			return nil, in.Errors.AppsNotArray()
		}
		for i, item := range items {
			refs = append(refs, ref{value: item, path: configPath.Key("apps").Index(i)})
		}
	} else {
		refs = append(refs, ref{value: local.App.Value(), path: configPath.Key("app")})
	}

	result := make(map[string]domain.AppConfig, len(refs))
	firstSeen := make(map[string]domain.Path, len(refs))
	for _, r := range refs {
		app, appPath, err := resolveAppRef(in, r.value, r.path)
		if err != nil {
			return nil, err
		}
		if err := validateApp(in.Errors, app, appPath, in.Device); err != nil {
			return nil, err
		}
		if prev, dup := firstSeen[app.Name]; dup {
			return nil, in.Errors.DuplicateAppConfig(app.Name, appPath, prev)
		}
		firstSeen[app.Name] = appPath
		result[app.Name] = app
	}
	return result, nil
}

// resolveAppRef turns one app reference into a private copy of the app and the
// document path it was declared at.
func resolveAppRef(in AppsInput, value any, refPath domain.Path) (domain.AppConfig, domain.Path, error) {
	ref, err := document.ParseAppRef(value)
	if err != nil {
		return domain.AppConfig{}, nil, in.Errors.MalformedDocument(refPath, err.Error())
	}
	if ref.Inline != nil {
		return ref.Inline.Clone(), refPath, nil
	}

	pool := in.Global.Apps
	if pool.IsEmpty() {
		return domain.AppConfig{}, nil, in.Errors.NoAppConfigs(ref.Alias, refPath)
	}
	app, ok := pool.Lookup(ref.Alias)
	if !ok {
		return domain.AppConfig{}, nil, in.Errors.UnresolvedAppAlias(ref.Alias, refPath)
	}
	return app, pool.Path(ref.Alias), nil
}

func validateApp(errs ErrorBuilder, app domain.AppConfig, appPath domain.Path, device domain.DeviceConfig) error {
	if allowed := device.Type.AllowedAppTypes(); allowed != nil && !slices.Contains(allowed, app.Type) {
		return errs.InvalidAppType(device, app, appPath)
	}
	if app.Type.RequiresBinary() && !app.HasBinary() {
		return errs.MissingBinaryPath(appPath)
	}
	return nil
}
