package cli

import (
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/vburojevic/e2econf/internal/document"
	"github.com/vburojevic/e2econf/internal/simulator"
)

func hintForDocument(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, document.ErrNotFound) {
		return "Create .e2erc.json in the project root or pass --config-path"
	}
	if errors.Is(err, os.ErrNotExist) {
		return "Check --config-path or defaults.config_path in the e2econf settings"
	}
	return ""
}

func hintForSimulator(err error) string {
	if err == nil {
		return ""
	}

	var noMatch *simulator.NoMatchError
	if errors.As(err, &noMatch) {
		return "Create a matching simulator in Xcode > Window > Devices and Simulators; `xcrun simctl list devices available` shows what exists"
	}
	if errors.Is(err, simulator.ErrUnsupported) {
		return "Run on macOS with Xcode installed"
	}
	return hintForTooling(err)
}

func hintForTooling(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()

	// Common xcrun/Xcode-select problems.
	if strings.Contains(msg, "invalid active developer path") {
		return "Xcode CLI tools not configured; run `xcode-select --install` or `sudo xcode-select -s /Applications/Xcode.app/Contents/Developer`"
	}
	if strings.Contains(strings.ToLower(msg), "license") && strings.Contains(strings.ToLower(msg), "xcodebuild") {
		return "Xcode license may not be accepted; try `sudo xcodebuild -license accept`"
	}

	if isCommandNotFound(err, "xcrun") {
		return "xcrun not found; install Xcode Command Line Tools with `xcode-select --install`"
	}

	return ""
}

func isCommandNotFound(err error, name string) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, exec.ErrNotFound) && name == "" {
		return true
	}

	var ee *exec.Error
	if errors.As(err, &ee) && strings.EqualFold(ee.Name, name) && errors.Is(ee.Err, exec.ErrNotFound) {
		return true
	}

	var pe *os.PathError
	if errors.As(err, &pe) && errors.Is(pe.Err, exec.ErrNotFound) {
		if strings.EqualFold(pe.Path, name) || strings.HasSuffix(pe.Path, string(os.PathSeparator)+name) {
			return true
		}
	}

	// Fallback to string matching for wrapped errors.
	msg := err.Error()
	if strings.Contains(msg, "executable file not found") && strings.Contains(msg, name) {
		return true
	}

	return false
}
