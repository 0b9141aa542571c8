// Package simulator lists iOS simulators and matches them against device queries.
package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"slices"
	"strings"

	"github.com/vburojevic/e2econf/internal/domain"
)

// ErrUnsupported is returned when simctl is not available on this machine
var ErrUnsupported = errors.New("iOS simulators are only available on macOS with Xcode installed")

// NoMatchError is returned when no available simulator satisfies a query
type NoMatchError struct {
	Query domain.DeviceQuery
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no available simulator matches %s", e.Query)
}

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Manager handles simulator discovery
type Manager struct {
	xcrunPath string
	goos      string
	run       runFunc
}

// NewManager creates a new simulator manager
func NewManager() *Manager {
	return &Manager{
		xcrunPath: "xcrun",
		goos:      runtime.GOOS,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

// Supported reports whether simulators can be listed on this machine
func (m *Manager) Supported() bool {
	return m.goos == "darwin"
}

// ListDevices returns all available simulators sorted by name
func (m *Manager) ListDevices(ctx context.Context) ([]domain.Simulator, error) {
	if !m.Supported() {
		return nil, ErrUnsupported
	}

	output, err := m.run(ctx, m.xcrunPath, "simctl", "list", "devices", "--json")
	if err != nil {
		return nil, fmt.Errorf("simctl list failed: %w", err)
	}

	var resp domain.SimctlDevicesResponse
	if err := json.Unmarshal(output, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse simctl output: %w", err)
	}

	var devices []domain.Simulator
	for rt, devs := range resp.Devices {
		for _, d := range devs {
			if !d.IsAvailable {
				continue
			}
			devices = append(devices, domain.Simulator{
				UDID:                 d.UDID,
				Name:                 d.Name,
				State:                domain.SimulatorState(d.State),
				DeviceTypeIdentifier: d.DeviceTypeIdentifier,
				Runtime:              parseRuntimeName(rt),
			})
		}
	}

	slices.SortFunc(devices, func(a, b domain.Simulator) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.UDID, b.UDID)
	})
	return devices, nil
}

// Match returns the first available simulator satisfying query. Booted
// simulators are preferred.
func (m *Manager) Match(ctx context.Context, query domain.DeviceQuery) (*domain.Simulator, error) {
	devices, err := m.ListDevices(ctx)
	if err != nil {
		return nil, err
	}

	var found *domain.Simulator
	for i := range devices {
		d := &devices[i]
		if !Matches(d, query) {
			continue
		}
		if d.IsBooted() {
			return d, nil
		}
		if found == nil {
			found = d
		}
	}
	if found == nil {
		return nil, &NoMatchError{Query: query}
	}
	return found, nil
}

// Matches reports whether d satisfies query. A shorthand query is compared
// with the name, or with "name,os" when it contains a comma. Matcher objects
// compare the id, name, type and os fields that are present.
func Matches(d *domain.Simulator, query domain.DeviceQuery) bool {
	if query.IsShorthand() {
		name, osVersion, ok := strings.Cut(query.Name, ",")
		if !ok {
			return d.Name == query.Name
		}
		return d.Name == strings.TrimSpace(name) && d.Runtime == strings.TrimSpace(osVersion)
	}
	if query.IsEmpty() {
		return false
	}

	checks := []struct {
		key  string
		have string
	}{
		{"id", d.UDID},
		{"name", d.Name},
		{"type", d.TypeName()},
		{"os", d.Runtime},
	}
	for _, c := range checks {
		if _, ok := query.Matcher[c.key]; !ok {
			continue
		}
		if want := query.MatcherString(c.key); want != c.have {
			return false
		}
	}
	return true
}

// parseRuntimeName extracts a human-readable runtime name from the identifier
func parseRuntimeName(rt string) string {
	// Example: "com.apple.CoreSimulator.SimRuntime.iOS-17-0" -> "iOS 17.0"
	parts := strings.Split(rt, ".")
	lastPart := parts[len(parts)-1]

	segments := strings.Split(lastPart, "-")
	if len(segments) >= 2 {
		return fmt.Sprintf("%s %s", segments[0], strings.Join(segments[1:], "."))
	}
	return lastPart
}
