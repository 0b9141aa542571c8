package domain

import "strings"

// SimulatorState represents the current state of a simulator
type SimulatorState string

const (
	SimulatorShutdown SimulatorState = "Shutdown"
	SimulatorBooted   SimulatorState = "Booted"
	SimulatorBooting  SimulatorState = "Booting"
)

// Simulator is an available iOS Simulator as reported by simctl
type Simulator struct {
	UDID                 string         `json:"udid"`
	Name                 string         `json:"name"`
	State                SimulatorState `json:"state"`
	DeviceTypeIdentifier string         `json:"deviceTypeIdentifier"`
	Runtime              string         `json:"runtime"`
}

// IsBooted returns true if the simulator is currently booted
func (s *Simulator) IsBooted() bool {
	return s.State == SimulatorBooted
}

// TypeName returns the device type in the form used by matchers,
// e.g. "com.apple.CoreSimulator.SimDeviceType.iPhone-15-Pro" -> "iPhone 15 Pro"
func (s *Simulator) TypeName() string {
	id := s.DeviceTypeIdentifier
	if i := strings.LastIndex(id, "."); i >= 0 {
		id = id[i+1:]
	}
	return strings.ReplaceAll(id, "-", " ")
}

// SimctlDevicesResponse matches `xcrun simctl list devices --json` output
type SimctlDevicesResponse struct {
	Devices map[string][]SimctlDevice `json:"devices"`
}

// SimctlDevice represents a device from simctl JSON output
type SimctlDevice struct {
	UDID                 string `json:"udid"`
	Name                 string `json:"name"`
	State                string `json:"state"`
	IsAvailable          bool   `json:"isAvailable"`
	DeviceTypeIdentifier string `json:"deviceTypeIdentifier"`
}
