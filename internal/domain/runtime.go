package domain

import (
	"encoding/json"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// DefaultDebugSynchronization is the synchronization debug interval in milliseconds
const DefaultDebugSynchronization = 10000

// SessionConfig holds the transport parameters connecting the test runner to the app
type SessionConfig struct {
	Server               string
	SessionID            string
	DebugSynchronization float64
	AutoStart            bool
	Extra                map[string]any
}

func (s SessionConfig) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+4)
	maps.Copy(out, s.Extra)
	out["server"] = s.Server
	out["sessionId"] = s.SessionID
	out["debugSynchronization"] = s.DebugSynchronization
	out["autoStart"] = s.AutoStart
	return json.Marshal(out)
}

// RuntimeConfig is the fully resolved result of one composition
type RuntimeConfig struct {
	Configuration string               `json:"configurationName"`
	Device        DeviceConfig         `json:"deviceConfig"`
	Apps          map[string]AppConfig `json:"appsConfig"`
	Session       SessionConfig        `json:"sessionConfig"`
}

// AppNames returns the resolved app names in sorted order
func (r *RuntimeConfig) AppNames() []string {
	return slices.Sorted(maps.Keys(r.Apps))
}

// CLIConfig carries the command-line overrides recognized by the engine
type CLIConfig struct {
	ConfigPath           string
	Configuration        string
	DeviceName           string
	DebugSynchronization string
	AppLaunchArgs        map[string]string
}

// PathSegment is one step of a Path: a mapping key or a list index
type PathSegment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path addresses a node of the configuration document
type Path []PathSegment

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// NewPath builds a path from plain keys
func NewPath(keys ...string) Path {
	p := make(Path, 0, len(keys))
	for _, k := range keys {
		p = append(p, PathSegment{Key: k})
	}
	return p
}

func (p Path) extend(seg PathSegment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// Key returns a copy of p extended with a mapping key
func (p Path) Key(k string) Path {
	return p.extend(PathSegment{Key: k})
}

// Index returns a copy of p extended with a list index
func (p Path) Index(i int) Path {
	return p.extend(PathSegment{Index: i, IsIndex: true})
}

// String renders p as an accessor expression. Keys that are not identifiers
// are quoted so that they never read as list indexes.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		switch {
		case seg.IsIndex:
			b.WriteString("[" + strconv.Itoa(seg.Index) + "]")
		case identRe.MatchString(seg.Key):
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg.Key)
		default:
			b.WriteString(`[` + strconv.Quote(seg.Key) + `]`)
		}
	}
	return b.String()
}

// Equal reports whether p and other address the same node
func (p Path) Equal(other Path) bool {
	return slices.Equal(p, other)
}
