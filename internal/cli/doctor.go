package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vburojevic/e2econf/internal/appbundle"
	"github.com/vburojevic/e2econf/internal/config"
	"github.com/vburojevic/e2econf/internal/domain"
	"github.com/vburojevic/e2econf/internal/output"
	"github.com/vburojevic/e2econf/internal/simulator"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DoctorCmd composes the configuration and checks that it can run
type DoctorCmd struct {
	DocumentFlags `embed:""`

	Timeout time.Duration `default:"10s" help:"Time limit for all checks"`
}

// SimulatorMatcher finds the simulator a device query selects
type SimulatorMatcher interface {
	Supported() bool
	Match(ctx context.Context, query domain.DeviceQuery) (*domain.Simulator, error)
}

// doctor holds the collaborators of the checks
type doctor struct {
	simulators SimulatorMatcher
	dial       func(ctx context.Context, url string) error
	logger     *zap.Logger
}

func newDoctor(logger *zap.Logger) *doctor {
	return &doctor{
		simulators: simulator.NewManager(),
		dial:       dialServer,
		logger:     logger,
	}
}

// Run executes the doctor command
func (c *DoctorCmd) Run(globals *Globals) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	rc, location, err := composeRuntime(ctx, globals, c.DocumentFlags, domain.CLIConfig{})
	if err != nil {
		return emitError(globals, err)
	}

	checks := newDoctor(globals.Logger).run(ctx, rc, location)
	return c.report(globals, checks)
}

// run performs every check and returns them in a stable order
func (d *doctor) run(ctx context.Context, rc *domain.RuntimeConfig, location string) []output.CheckOutput {
	checks := []output.CheckOutput{
		settingsCheck(),
		{Name: "config", Status: output.CheckOK, Message: fmt.Sprintf("configuration %q from %s", rc.Configuration, location)},
	}
	checks = append(checks, d.checkApps(ctx, rc, filepath.Dir(location))...)
	checks = append(checks, d.checkDevice(ctx, rc.Device))
	checks = append(checks, d.checkServer(ctx, rc.Session))
	return checks
}

// checkApps inspects every app concurrently
func (d *doctor) checkApps(ctx context.Context, rc *domain.RuntimeConfig, baseDir string) []output.CheckOutput {
	names := rc.AppNames()
	results := make([]output.CheckOutput, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = appCheck(name, rc.Apps[name], baseDir)
			d.logger.Debug("checked app", zap.String("app", name), zap.String("status", results[i].Status))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for i := range results {
			if results[i].Status == "" {
				results[i] = output.CheckOutput{Name: appCheckName(names[i]), Status: output.CheckSkip, Message: err.Error()}
			}
		}
	}
	return results
}

func appCheckName(name string) string {
	if name == "" {
		return "app"
	}
	return "app " + name
}

func appCheck(name string, app domain.AppConfig, baseDir string) output.CheckOutput {
	check := output.CheckOutput{Name: appCheckName(name)}
	switch {
	case app.BinaryPath == "" && app.BundleID != "":
		check.Status = output.CheckOK
		check.Message = "uses installed app " + app.BundleID
		return check
	case app.BinaryPath == "":
		check.Status = output.CheckSkip
		check.Message = "no binary declared"
		return check
	}

	report := appbundle.Inspect(app, baseDir)
	check.Status = output.CheckOK
	check.Message = report.Info.Path
	if report.Info.BundleID != "" {
		check.Message += fmt.Sprintf(" (%s %s", report.Info.BundleID, report.Info.Version)
		if report.Info.BuildNumber != "" && report.Info.BuildNumber != report.Info.Version {
			check.Message += " build " + report.Info.BuildNumber
		}
		check.Message += ")"
	}

	var messages, hints []string
	for _, f := range report.Findings {
		switch f.Severity {
		case appbundle.SeverityFail:
			check.Status = output.CheckFail
		case appbundle.SeverityWarn:
			if check.Status == output.CheckOK {
				check.Status = output.CheckWarn
			}
		}
		messages = append(messages, f.Message)
		if f.Hint != "" {
			hints = append(hints, f.Hint)
		}
	}
	if len(messages) > 0 {
		check.Message = strings.Join(messages, "; ")
		check.Hint = strings.Join(hints, "; ")
	}
	return check
}

// checkDevice matches ios.simulator devices against the installed simulators
func (d *doctor) checkDevice(ctx context.Context, device domain.DeviceConfig) output.CheckOutput {
	check := output.CheckOutput{Name: "device " + string(device.Type)}
	if device.Type != domain.DeviceIOSSimulator {
		check.Status = output.CheckSkip
		check.Message = "no local check for this device type"
		return check
	}
	if !d.simulators.Supported() {
		check.Status = output.CheckSkip
		check.Message = simulator.ErrUnsupported.Error()
		return check
	}

	sim, err := d.simulators.Match(ctx, device.Device)
	if err != nil {
		check.Status = output.CheckFail
		check.Message = err.Error()
		check.Hint = hintForSimulator(err)
		return check
	}

	check.Status = output.CheckOK
	check.Message = fmt.Sprintf("%s (%s, %s, %s)", sim.Name, sim.Runtime, sim.UDID, sim.State)
	return check
}

// checkServer dials the session server when the test runner will not start it
func (d *doctor) checkServer(ctx context.Context, sess domain.SessionConfig) output.CheckOutput {
	check := output.CheckOutput{Name: "server"}
	if sess.AutoStart {
		check.Status = output.CheckSkip
		check.Message = "started by the test runner at " + sess.Server
		return check
	}

	if err := d.dial(ctx, sess.Server); err != nil {
		check.Status = output.CheckWarn
		check.Message = fmt.Sprintf("%s is not reachable: %v", sess.Server, err)
		check.Hint = "Start the session server before running tests, or set session.autoStart"
		return check
	}

	check.Status = output.CheckOK
	check.Message = sess.Server + " accepts websocket connections"
	return check
}

func dialServer(ctx context.Context, url string) error {
	dialer := websocket.Dialer{HandshakeTimeout: 3 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	return conn.Close()
}

func settingsCheck() output.CheckOutput {
	path := config.ConfigFile()
	if path == "" {
		return output.CheckOutput{
			Name:    "settings",
			Status:  output.CheckOK,
			Message: "using defaults (no settings file)",
			Hint:    "Create one with: e2econf config generate > ~/.e2econf.yaml",
		}
	}
	if _, err := config.LoadFromFile(path); err != nil {
		return output.CheckOutput{Name: "settings", Status: output.CheckFail, Message: "settings file has errors: " + err.Error()}
	}
	return output.CheckOutput{Name: "settings", Status: output.CheckOK, Message: "loaded from " + path}
}

// errChecksFailed is returned after the report when a check failed
var errChecksFailed = errors.New("one or more checks failed")

func (c *DoctorCmd) report(globals *Globals, checks []output.CheckOutput) error {
	emitter := globals.Emitter()
	var warnings, failures int
	for i := range checks {
		switch checks[i].Status {
		case output.CheckWarn:
			warnings++
		case output.CheckFail:
			failures++
		}
		if err := emitter.Check(&checks[i]); err != nil {
			return err
		}
	}

	if globals.Format == "ndjson" {
		if err := output.NewNDJSONWriter(globals.Stdout).WriteRaw(map[string]any{
			"type":          "doctor",
			"schemaVersion": output.SchemaVersion,
			"allPassed":     failures == 0,
			"errorCount":    failures,
			"warnCount":     warnings,
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(globals.Stdout, "\n%s (errors: %d, warnings: %d)\n", output.StatusText(warnings > 0, failures > 0), failures, warnings)
	}

	if failures > 0 {
		return &emittedError{err: errChecksFailed}
	}
	return nil
}
