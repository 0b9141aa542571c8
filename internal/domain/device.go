package domain

import (
	"encoding/json"
	"maps"
	"strings"
)

// DeviceType identifies the driver used for the device under test
type DeviceType string

const (
	DeviceIOSSimulator     DeviceType = "ios.simulator"
	DeviceIOSNone          DeviceType = "ios.none"
	DeviceAndroidAttached  DeviceType = "android.attached"
	DeviceAndroidEmulator  DeviceType = "android.emulator"
	DeviceAndroidGenycloud DeviceType = "android.genycloud"
)

// matcherProps lists, per known device type, the matcher fields of which at
// least one must be present. A nil entry means the type needs no matcher.
var matcherProps = map[DeviceType][]string{
	DeviceIOSNone:          nil,
	DeviceIOSSimulator:     {"type", "name", "id"},
	DeviceAndroidAttached:  {"adbName"},
	DeviceAndroidEmulator:  {"avdName"},
	DeviceAndroidGenycloud: {"recipeUUID", "recipeName"},
}

var allowedAppTypes = map[DeviceType][]AppType{
	DeviceIOSSimulator:     {AppIOS},
	DeviceIOSNone:          {AppIOS},
	DeviceAndroidAttached:  {AppAndroid},
	DeviceAndroidEmulator:  {AppAndroid},
	DeviceAndroidGenycloud: {AppAndroid},
}

// IsKnown reports whether t is one of the built-in device types. Unknown
// types are custom drivers and pass through unvalidated.
func (t DeviceType) IsKnown() bool {
	_, ok := matcherProps[t]
	return ok
}

// MatcherProps returns the matcher fields of which at least one is required
func (t DeviceType) MatcherProps() []string {
	return matcherProps[t]
}

// AllowedAppTypes returns the app types the device can run, or nil when the
// device type does not restrict them.
func (t DeviceType) AllowedAppTypes() []AppType {
	return allowedAppTypes[t]
}

// Platform returns "ios", "android" or "" for custom drivers
func (t DeviceType) Platform() string {
	switch t {
	case DeviceIOSSimulator, DeviceIOSNone:
		return "ios"
	case DeviceAndroidAttached, DeviceAndroidEmulator, DeviceAndroidGenycloud:
		return "android"
	}
	return ""
}

// DeviceQuery is the `device` payload of a device config: either a shorthand
// simulator name or a matcher object.
type DeviceQuery struct {
	Name    string
	Matcher map[string]any

	// shorthand is set for string payloads, including the empty string
	shorthand bool
}

// ShorthandQuery builds a query from a plain device name
func ShorthandQuery(name string) DeviceQuery {
	return DeviceQuery{Name: name, shorthand: true}
}

// IsShorthand reports whether the query was written as a string
func (q DeviceQuery) IsShorthand() bool {
	return q.shorthand
}

// IsEmpty reports whether the query carries neither a name nor any matcher field
func (q DeviceQuery) IsEmpty() bool {
	return q.Name == "" && len(q.Matcher) == 0
}

// IsZero reports whether no usable device value was given. An empty name
// counts as unset; an empty matcher object does not.
func (q DeviceQuery) IsZero() bool {
	return q.Name == "" && q.Matcher == nil
}

// HasAny reports whether the matcher declares at least one of props
func (q DeviceQuery) HasAny(props []string) bool {
	for _, p := range props {
		if _, ok := q.Matcher[p]; ok {
			return true
		}
	}
	return false
}

// MatcherString returns a string-valued matcher field
func (q DeviceQuery) MatcherString(key string) string {
	s, _ := q.Matcher[key].(string)
	return s
}

func (q DeviceQuery) String() string {
	if q.IsShorthand() {
		return q.Name
	}
	parts := make([]string, 0, len(q.Matcher))
	for _, k := range sortedKeys(q.Matcher) {
		parts = append(parts, k+"="+stringify(q.Matcher[k]))
	}
	return strings.Join(parts, ",")
}

func (q DeviceQuery) clone() DeviceQuery {
	return DeviceQuery{Name: q.Name, Matcher: maps.Clone(q.Matcher), shorthand: q.shorthand}
}

func (q DeviceQuery) MarshalJSON() ([]byte, error) {
	if q.IsShorthand() {
		return json.Marshal(q.Name)
	}
	if q.Matcher == nil {
		return []byte("null"), nil
	}
	return json.Marshal(q.Matcher)
}

// DeviceConfig is a resolved device-under-test declaration. Extra carries the
// fields of custom driver declarations verbatim.
type DeviceConfig struct {
	Type   DeviceType
	Device DeviceQuery
	Extra  map[string]any
}

// Clone returns a copy that shares no maps with c
func (c DeviceConfig) Clone() DeviceConfig {
	return DeviceConfig{
		Type:   c.Type,
		Device: c.Device.clone(),
		Extra:  maps.Clone(c.Extra),
	}
}

func (c DeviceConfig) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+2)
	maps.Copy(out, c.Extra)
	if c.Type != "" {
		out["type"] = c.Type
	}
	if c.Device.IsShorthand() || !c.Device.IsZero() {
		out["device"] = c.Device
	}
	return json.Marshal(out)
}
