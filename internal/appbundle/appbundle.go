// Package appbundle inspects the app binaries a resolved configuration points at.
package appbundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vburojevic/e2econf/internal/domain"
	"howett.net/plist"
)

// Severity of a finding
const (
	SeverityWarn = "warn"
	SeverityFail = "fail"
)

// Finding is one problem noticed about an app
type Finding struct {
	Severity string
	Message  string
	Hint     string
}

// Info is what could be learned about the binary on disk
type Info struct {
	Path        string
	Exists      bool
	BundleID    string
	Name        string
	Version     string
	BuildNumber string
}

// Report is the outcome of Inspect
type Report struct {
	Info     Info
	Findings []Finding
}

// OK reports whether nothing failed
func (r Report) OK() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityFail {
			return false
		}
	}
	return true
}

// infoPlist is the subset of Info.plist keys we read
type infoPlist struct {
	BundleIdentifier   string `plist:"CFBundleIdentifier"`
	BundleName         string `plist:"CFBundleName"`
	BundleDisplayName  string `plist:"CFBundleDisplayName"`
	BundleVersion      string `plist:"CFBundleVersion"`
	BundleShortVersion string `plist:"CFBundleShortVersionString"`
}

// Inspect checks app's binaries. Relative paths are resolved against baseDir,
// the directory of the configuration document.
func Inspect(app domain.AppConfig, baseDir string) Report {
	var r Report
	if app.BinaryPath == "" {
		return r
	}

	path := resolve(app.BinaryPath, baseDir)
	r.Info.Path = path
	if _, err := os.Stat(path); err != nil {
		switch {
		case !errors.Is(err, os.ErrNotExist):
			r.Findings = append(r.Findings, Finding{Severity: SeverityFail, Message: fmt.Sprintf("cannot read %s: %v", path, err)})
		case app.Build != "":
			r.Findings = append(r.Findings, Finding{
				Severity: SeverityWarn,
				Message:  fmt.Sprintf("binary not found at %s", path),
				Hint:     "Run the build command first: " + app.Build,
			})
		default:
			r.Findings = append(r.Findings, Finding{
				Severity: SeverityFail,
				Message:  fmt.Sprintf("binary not found at %s", path),
				Hint:     `Fix "binaryPath" or add a "build" command`,
			})
		}
		return r
	}
	r.Info.Exists = true

	if strings.HasSuffix(path, ".app") {
		info, err := ReadInfoPlist(path)
		if err != nil {
			r.Findings = append(r.Findings, Finding{Severity: SeverityWarn, Message: err.Error()})
		} else {
			r.Info.BundleID = info.BundleID
			r.Info.Name = info.Name
			r.Info.Version = info.Version
			r.Info.BuildNumber = info.BuildNumber
			if app.BundleID != "" && info.BundleID != "" && app.BundleID != info.BundleID {
				r.Findings = append(r.Findings, Finding{
					Severity: SeverityWarn,
					Message:  fmt.Sprintf("bundleId %q does not match CFBundleIdentifier %q", app.BundleID, info.BundleID),
					Hint:     `Update "bundleId" or rebuild the app`,
				})
			}
		}
	}

	if app.TestBinaryPath != "" {
		testPath := resolve(app.TestBinaryPath, baseDir)
		if _, err := os.Stat(testPath); err != nil {
			r.Findings = append(r.Findings, Finding{
				Severity: SeverityWarn,
				Message:  fmt.Sprintf("test binary not found at %s", testPath),
			})
		}
	}

	return r
}

// ReadInfoPlist reads the Info.plist of an .app bundle. iOS bundles keep it at
// the root, macOS bundles under Contents/.
func ReadInfoPlist(bundlePath string) (*Info, error) {
	var data []byte
	var err error
	for _, rel := range []string{"Info.plist", filepath.Join("Contents", "Info.plist")} {
		data, err = os.ReadFile(filepath.Join(bundlePath, rel))
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("no Info.plist in %s", bundlePath)
	}

	var p infoPlist
	if _, err := plist.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse Info.plist in %s: %w", bundlePath, err)
	}

	name := p.BundleDisplayName
	if name == "" {
		name = p.BundleName
	}
	version := p.BundleShortVersion
	if version == "" {
		version = p.BundleVersion
	}
	return &Info{
		Path:        bundlePath,
		Exists:      true,
		BundleID:    p.BundleIdentifier,
		Name:        name,
		Version:     version,
		BuildNumber: p.BundleVersion,
	}, nil
}

func resolve(path, baseDir string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
