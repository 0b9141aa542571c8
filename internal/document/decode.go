package document

import (
	"fmt"
	"maps"

	"github.com/go-viper/mapstructure/v2"
	"github.com/vburojevic/e2econf/internal/configerr"
	"github.com/vburojevic/e2econf/internal/domain"
)

// Decode builds a GlobalConfig from a generic document tree
func Decode(tree map[string]any) (*GlobalConfig, error) {
	return newDecoder("").decode(tree)
}

type decoder struct {
	errs *configerr.Builder
}

func newDecoder(location string) *decoder {
	return &decoder{errs: configerr.NewBuilder().SetConfigLocation(location)}
}

func (d *decoder) decode(tree map[string]any) (*GlobalConfig, error) {
	g := &GlobalConfig{}

	if v, ok := tree["selectedConfiguration"]; ok && v != nil {
		name, ok := v.(string)
		if !ok {
			return nil, d.malformed(domain.NewPath("selectedConfiguration"), "expected a string, got %s", describe(v))
		}
		g.SelectedConfiguration = name
	}

	session, err := d.object(tree["session"], domain.NewPath("session"))
	if err != nil {
		return nil, err
	}
	g.Session = session

	devices, err := d.object(tree["devices"], domain.NewPath("devices"))
	if err != nil {
		return nil, err
	}
	if len(devices) > 0 {
		g.Devices = make(map[string]domain.DeviceConfig, len(devices))
		for alias, raw := range devices {
			path := domain.NewPath("devices", alias)
			obj, ok := raw.(map[string]any)
			if !ok {
				return nil, d.malformed(path, "expected a device object, got %s", describe(raw))
			}
			dev, err := d.device(obj, path)
			if err != nil {
				return nil, err
			}
			g.Devices[alias] = dev
		}
	}

	if g.Apps, err = d.apps(tree["apps"]); err != nil {
		return nil, err
	}

	configurations, err := d.object(tree["configurations"], domain.NewPath("configurations"))
	if err != nil {
		return nil, err
	}
	g.Configurations = make(map[string]LocalConfig, len(configurations))
	for name, raw := range configurations {
		path := domain.NewPath("configurations", name)
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, d.malformed(path, "expected a configuration object, got %s", describe(raw))
		}
		local, err := d.local(obj, path)
		if err != nil {
			return nil, err
		}
		g.Configurations[name] = local
	}

	return g, nil
}

func (d *decoder) local(obj map[string]any, path domain.Path) (LocalConfig, error) {
	session, err := d.object(obj["session"], path.Key("session"))
	if err != nil {
		return nil, err
	}

	switch t := obj["type"].(type) {
	case nil:
	case string:
		if t != "" {
			return d.plain(obj, t, session, path)
		}
	default:
		return nil, d.malformed(path.Key("type"), "expected a string, got %s", describe(t))
	}

	c := &AliasedConfig{
		App:     NewAppSlot(obj["app"]),
		Apps:    NewAppSlot(obj["apps"]),
		Session: session,
	}
	switch v := obj["device"].(type) {
	case nil:
	case string:
		c.Device.Alias = v
	case map[string]any:
		dev, err := d.device(v, path.Key("device"))
		if err != nil {
			return nil, err
		}
		c.Device.Inline = &dev
	default:
		return nil, d.malformed(path.Key("device"), "expected a device alias or a device object, got %s", describe(v))
	}
	return c, nil
}

func (d *decoder) plain(obj map[string]any, deviceType string, session map[string]any, path domain.Path) (*PlainConfig, error) {
	c := &PlainConfig{
		Type:    domain.DeviceType(deviceType),
		Raw:     maps.Clone(obj),
		Session: session,
	}
	var err error
	if c.Device, err = d.query(obj["device"], path.Key("device")); err != nil {
		return nil, err
	}
	if c.Name, err = d.query(obj["name"], path.Key("name")); err != nil {
		return nil, err
	}
	if err := mapstructure.Decode(obj, &c.App); err != nil {
		return nil, d.malformed(path, "%v", err)
	}
	return c, nil
}

func (d *decoder) device(obj map[string]any, path domain.Path) (domain.DeviceConfig, error) {
	dev := domain.DeviceConfig{}
	if v, ok := obj["type"]; ok && v != nil {
		t, ok := v.(string)
		if !ok {
			return dev, d.malformed(path.Key("type"), "expected a string, got %s", describe(v))
		}
		dev.Type = domain.DeviceType(t)
	}
	q, err := d.query(obj["device"], path.Key("device"))
	if err != nil {
		return dev, err
	}
	dev.Device = q
	for k, v := range obj {
		if k == "type" || k == "device" {
			continue
		}
		if dev.Extra == nil {
			dev.Extra = make(map[string]any)
		}
		dev.Extra[k] = v
	}
	return dev, nil
}

func (d *decoder) query(v any, path domain.Path) (domain.DeviceQuery, error) {
	switch v := v.(type) {
	case nil:
		return domain.DeviceQuery{}, nil
	case string:
		return domain.ShorthandQuery(v), nil
	case map[string]any:
		return domain.DeviceQuery{Matcher: maps.Clone(v)}, nil
	}
	return domain.DeviceQuery{}, d.malformed(path, "expected a device name or a matcher object, got %s", describe(v))
}

func (d *decoder) apps(v any) (AppPool, error) {
	path := domain.NewPath("apps")
	switch v := v.(type) {
	case nil:
		return AppPool{}, nil
	case map[string]any:
		named := make(map[string]domain.AppConfig, len(v))
		for alias, raw := range v {
			app, err := d.app(raw, path.Key(alias))
			if err != nil {
				return AppPool{}, err
			}
			named[alias] = app
		}
		return NamedApps(named), nil
	case []any:
		listed := make([]domain.AppConfig, 0, len(v))
		for i, raw := range v {
			app, err := d.app(raw, path.Index(i))
			if err != nil {
				return AppPool{}, err
			}
			listed = append(listed, app)
		}
		return ListedApps(listed), nil
	}
	return AppPool{}, d.malformed(path, "expected an object or a list, got %s", describe(v))
}

func (d *decoder) app(raw any, path domain.Path) (domain.AppConfig, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return domain.AppConfig{}, d.malformed(path, "expected an app object, got %s", describe(raw))
	}
	app, err := decodeApp(obj)
	if err != nil {
		return domain.AppConfig{}, d.malformed(path, "%v", err)
	}
	return app, nil
}

func (d *decoder) object(v any, path domain.Path) (map[string]any, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	}
	return nil, d.malformed(path, "expected an object, got %s", describe(v))
}

func (d *decoder) malformed(path domain.Path, format string, args ...any) error {
	return d.errs.MalformedDocument(path, fmt.Sprintf(format, args...))
}

func decodeApp(obj map[string]any) (domain.AppConfig, error) {
	var app domain.AppConfig
	if err := mapstructure.Decode(obj, &app); err != nil {
		return domain.AppConfig{}, err
	}
	return app, nil
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case int, int64, float64, uint64:
		return "a number"
	case []any:
		return "a list"
	case map[string]any:
		return "an object"
	}
	return fmt.Sprintf("%T", v)
}
