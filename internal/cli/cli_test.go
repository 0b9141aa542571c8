package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/e2econf/internal/config"
	"github.com/vburojevic/e2econf/internal/document"
	"github.com/vburojevic/e2econf/internal/domain"
	"github.com/vburojevic/e2econf/internal/output"
	"github.com/vburojevic/e2econf/internal/simulator"
	"go.uber.org/zap"
	"howett.net/plist"
)

// testGlobals creates a Globals struct with captured stdout/stderr
func testGlobals(format string) (*Globals, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &Globals{
		Format:   format,
		Stdout:   stdout,
		Stderr:   stderr,
		Config:   config.Default(),
		Logger:   zap.NewNop(),
		FlagsSet: map[string]bool{},
	}, stdout, stderr
}

const testDocument = `{
  "selectedConfiguration": "ios.sim",
  "session": {"server": "ws://localhost:8099", "sessionId": "fixed"},
  "devices": {
    "sim": {"type": "ios.simulator", "device": {"type": "iPhone 15"}}
  },
  "apps": {
    "ios.debug": {"type": "ios.app", "name": "main", "binaryPath": "build/App.app", "launchArgs": {"mode": "debug"}}
  },
  "configurations": {
    "ios.sim": {"device": "sim", "app": "ios.debug"},
    "android.emu": {"type": "android.emulator", "device": {"avdName": "Pixel_7"}, "binaryPath": "app.apk"}
  }
}`

func writeDocument(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".e2erc.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// decodeLines parses every NDJSON line of out
func decodeLines(t *testing.T, out *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m))
		lines = append(lines, m)
	}
	return lines
}

// --- Resolve Command Tests ---

func TestResolveCmd_Run(t *testing.T) {
	path := writeDocument(t, testDocument)

	t.Run("emits the selected configuration", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &ResolveCmd{DocumentFlags: DocumentFlags{ConfigPath: path}}

		require.NoError(t, cmd.Run(globals))

		lines := decodeLines(t, stdout)
		require.Len(t, lines, 1)
		got := lines[0]
		assert.Equal(t, "resolved", got["type"])
		assert.Equal(t, "ios.sim", got["configurationName"])
		assert.Equal(t, path, got["configLocation"])

		device := got["deviceConfig"].(map[string]any)
		assert.Equal(t, "ios.simulator", device["type"])

		apps := got["appsConfig"].(map[string]any)
		assert.Contains(t, apps, "main")

		sess := got["sessionConfig"].(map[string]any)
		assert.Equal(t, "ws://localhost:8099", sess["server"])
		assert.Equal(t, "fixed", sess["sessionId"])
		assert.Equal(t, false, sess["autoStart"])
	})

	t.Run("applies command-line overrides", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &ResolveCmd{
			DocumentFlags:        DocumentFlags{ConfigPath: path},
			DeviceName:           "iPhone 16",
			DebugSynchronization: "250",
			AppLaunchArgs:        map[string]string{"mode": "release", "seed": "1"},
		}

		require.NoError(t, cmd.Run(globals))

		got := decodeLines(t, stdout)[0]
		assert.Equal(t, "iPhone 16", got["deviceConfig"].(map[string]any)["device"])
		assert.Equal(t, float64(250), got["sessionConfig"].(map[string]any)["debugSynchronization"])
		app := got["appsConfig"].(map[string]any)["main"].(map[string]any)
		assert.Equal(t, map[string]any{"mode": "release", "seed": "1"}, app["launchArgs"])
	})

	t.Run("selects by flag", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &ResolveCmd{DocumentFlags: DocumentFlags{ConfigPath: path, Configuration: "android.emu"}}

		require.NoError(t, cmd.Run(globals))

		got := decodeLines(t, stdout)[0]
		assert.Equal(t, "android.emu", got["configurationName"])
		assert.Contains(t, got["appsConfig"].(map[string]any), "")
	})

	t.Run("get prints a bare string", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &ResolveCmd{DocumentFlags: DocumentFlags{ConfigPath: path}, Get: "sessionConfig.server"}

		require.NoError(t, cmd.Run(globals))
		assert.Equal(t, "ws://localhost:8099\n", stdout.String())
	})

	t.Run("get prints objects as JSON", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &ResolveCmd{DocumentFlags: DocumentFlags{ConfigPath: path}, Get: "deviceConfig.device"}

		require.NoError(t, cmd.Run(globals))
		assert.JSONEq(t, `{"type":"iPhone 15"}`, stdout.String())
	})

	t.Run("get reports missing fields", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &ResolveCmd{DocumentFlags: DocumentFlags{ConfigPath: path}, Get: "sessionConfig.nope"}

		err := cmd.Run(globals)
		require.Error(t, err)
		got := decodeLines(t, stdout)[0]
		assert.Equal(t, "error", got["type"])
		assert.Equal(t, "FIELD_NOT_FOUND", got["code"])
	})

	t.Run("text output", func(t *testing.T) {
		globals, stdout, _ := testGlobals("text")
		cmd := &ResolveCmd{DocumentFlags: DocumentFlags{ConfigPath: path}}

		require.NoError(t, cmd.Run(globals))
		out := stdout.String()
		assert.Contains(t, out, "ios.sim")
		assert.Contains(t, out, "ws://localhost:8099")
		assert.Contains(t, out, "build/App.app")
	})
}

func TestResolveCmd_Errors(t *testing.T) {
	path := writeDocument(t, testDocument)

	t.Run("configuration errors carry code and location", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &ResolveCmd{DocumentFlags: DocumentFlags{ConfigPath: path, Configuration: "nope"}}

		err := cmd.Run(globals)
		require.Error(t, err)

		got := decodeLines(t, stdout)[0]
		assert.Equal(t, "UNKNOWN_CONFIGURATION", got["code"])
		assert.Equal(t, path, got["configLocation"])
		assert.Equal(t, "nope", got["configuration"])
		assert.NotEmpty(t, got["hint"])
	})

	t.Run("text errors go to stderr", func(t *testing.T) {
		globals, stdout, stderr := testGlobals("text")
		cmd := &ResolveCmd{DocumentFlags: DocumentFlags{ConfigPath: path, Configuration: "nope"}}

		require.Error(t, cmd.Run(globals))
		assert.Empty(t, stdout.String())
		assert.Contains(t, stderr.String(), "[UNKNOWN_CONFIGURATION]")
	})

	t.Run("path errors", func(t *testing.T) {
		doc := writeDocument(t, `{"configurations": {"x": {"type": "android.emulator", "device": {}}}}`)
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &ResolveCmd{DocumentFlags: DocumentFlags{ConfigPath: doc}}

		require.Error(t, cmd.Run(globals))
		got := decodeLines(t, stdout)[0]
		assert.Equal(t, "MISSING_DEVICE_PROPERTY", got["code"])
		assert.Equal(t, "configurations.x.device", got["path"])
		assert.Equal(t, []any{"avdName"}, got["expected"])
	})

	t.Run("unreadable file", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &ResolveCmd{DocumentFlags: DocumentFlags{ConfigPath: filepath.Join(t.TempDir(), "missing.json")}}

		require.Error(t, cmd.Run(globals))
		got := decodeLines(t, stdout)[0]
		assert.Equal(t, "CONFIG_READ_FAILED", got["code"])
		assert.NotEmpty(t, got["hint"])
	})

	t.Run("malformed document", func(t *testing.T) {
		doc := writeDocument(t, `{"configurations": []}`)
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &ResolveCmd{DocumentFlags: DocumentFlags{ConfigPath: doc}}

		require.Error(t, cmd.Run(globals))
		assert.Equal(t, "MALFORMED_DOCUMENT", decodeLines(t, stdout)[0]["code"])
	})

	t.Run("errors are emitted once", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		first := emitError(globals, errors.New("boom"))
		second := emitError(globals, first)

		assert.Same(t, first, second)
		assert.Len(t, decodeLines(t, stdout), 1)
	})
}

// --- List Command Tests ---

func TestListCmd_Run(t *testing.T) {
	path := writeDocument(t, testDocument)

	t.Run("ndjson rows", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &ListCmd{DocumentFlags: DocumentFlags{ConfigPath: path}}

		require.NoError(t, cmd.Run(globals))

		lines := decodeLines(t, stdout)
		require.Len(t, lines, 2)
		assert.Equal(t, "android.emu", lines[0]["name"])
		assert.Equal(t, "plain", lines[0]["kind"])
		assert.Equal(t, "android.emulator", lines[0]["deviceType"])
		assert.Equal(t, "avdName=Pixel_7", lines[0]["device"])
		assert.Nil(t, lines[0]["selected"])

		assert.Equal(t, "ios.sim", lines[1]["name"])
		assert.Equal(t, "aliased", lines[1]["kind"])
		assert.Equal(t, "sim", lines[1]["device"])
		assert.Equal(t, "ios.simulator", lines[1]["deviceType"])
		assert.Equal(t, []any{"ios.debug"}, lines[1]["apps"])
		assert.Equal(t, true, lines[1]["selected"])
	})

	t.Run("text table", func(t *testing.T) {
		globals, stdout, _ := testGlobals("text")
		cmd := &ListCmd{DocumentFlags: DocumentFlags{ConfigPath: path, Configuration: "android.emu"}}

		require.NoError(t, cmd.Run(globals))
		out := stdout.String()
		assert.Contains(t, out, "android.emu")
		assert.Contains(t, out, "ios.sim")
		assert.Contains(t, out, "*")
	})

	t.Run("empty document", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &ListCmd{DocumentFlags: DocumentFlags{ConfigPath: writeDocument(t, `{}`)}}

		require.Error(t, cmd.Run(globals))
		assert.Equal(t, "NO_CONFIGURATIONS", decodeLines(t, stdout)[0]["code"])
	})
}

func TestAppLabels(t *testing.T) {
	g, err := document.Decode(map[string]any{
		"configurations": map[string]any{
			"x": map[string]any{
				"device": map[string]any{"type": "ios.none"},
				"apps": []any{
					"a",
					map[string]any{"type": "ios.app", "name": "inline", "bundleId": "com.x"},
					map[string]any{"type": "ios.app", "bundleId": "com.y"},
				},
			},
		},
	})
	require.NoError(t, err)

	local := g.Configurations["x"].(*document.AliasedConfig)
	assert.Equal(t, []string{"a", "inline", "(inline)"}, appLabels(local))
}

// --- Pick Tests ---

func TestPickItems(t *testing.T) {
	items := pickItems([]*output.ConfigurationOutput{
		{Name: "a", Kind: "aliased", DeviceType: "ios.simulator", Device: "sim", Apps: []string{"x", "y"}, Selected: true},
		{Name: "b", Kind: "plain"},
	})

	require.Len(t, items, 2)
	first := items[0].(pickItem)
	assert.Equal(t, "a", first.id)
	assert.Equal(t, "a (selected)", first.Title())
	assert.Equal(t, "aliased • ios.simulator • sim • x, y", first.Description())
	assert.Equal(t, "plain", items[1].(pickItem).Description())
}

func TestPickModel_Update(t *testing.T) {
	newModel := func() pickModel {
		items := pickItems([]*output.ConfigurationOutput{{Name: "a", Kind: "plain"}, {Name: "b", Kind: "plain"}})
		return pickModel{list: list.New(items, list.NewDefaultDelegate(), 80, 20)}
	}

	t.Run("enter selects", func(t *testing.T) {
		m, cmd := newModel().Update(tea.KeyMsg{Type: tea.KeyEnter})
		got := m.(pickModel)
		assert.NotNil(t, cmd)
		assert.True(t, got.quitting)
		assert.False(t, got.canceled)
		assert.Equal(t, "a", got.selected.id)
		assert.Empty(t, got.View())
	})

	t.Run("esc cancels", func(t *testing.T) {
		m, _ := newModel().Update(tea.KeyMsg{Type: tea.KeyEsc})
		got := m.(pickModel)
		assert.True(t, got.canceled)
	})
}

func TestPickCmd_OutputResult(t *testing.T) {
	t.Run("ndjson", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		require.NoError(t, (&PickCmd{}).outputResult(globals, "ios.sim", "/p/.e2erc"))

		got := decodeLines(t, stdout)[0]
		assert.Equal(t, "pick", got["type"])
		assert.Equal(t, "ios.sim", got["configuration"])
	})

	t.Run("text prints the name only", func(t *testing.T) {
		globals, stdout, _ := testGlobals("text")
		require.NoError(t, (&PickCmd{}).outputResult(globals, "ios.sim", ""))
		assert.Equal(t, "ios.sim\n", stdout.String())
	})
}

// --- Doctor Tests ---

type fakeSimulators struct {
	supported bool
	sim       *domain.Simulator
	err       error
}

func (f fakeSimulators) Supported() bool { return f.supported }

func (f fakeSimulators) Match(context.Context, domain.DeviceQuery) (*domain.Simulator, error) {
	return f.sim, f.err
}

func TestDoctor_CheckDevice(t *testing.T) {
	sim := domain.DeviceConfig{Type: domain.DeviceIOSSimulator, Device: domain.ShorthandQuery("iPhone 15")}

	tests := []struct {
		name   string
		sims   fakeSimulators
		device domain.DeviceConfig
		status string
	}{
		{"other device types are skipped", fakeSimulators{supported: true}, domain.DeviceConfig{Type: domain.DeviceAndroidEmulator}, output.CheckSkip},
		{"skipped off macOS", fakeSimulators{}, sim, output.CheckSkip},
		{"match", fakeSimulators{supported: true, sim: &domain.Simulator{Name: "iPhone 15", UDID: "AAA"}}, sim, output.CheckOK},
		{"no match", fakeSimulators{supported: true, err: &simulator.NoMatchError{Query: sim.Device}}, sim, output.CheckFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &doctor{simulators: tt.sims, logger: zap.NewNop()}
			got := d.checkDevice(context.Background(), tt.device)
			assert.Equal(t, tt.status, got.Status)
			if tt.status == output.CheckFail {
				assert.NotEmpty(t, got.Hint)
			}
		})
	}
}

func TestDoctor_CheckServer(t *testing.T) {
	t.Run("auto-started server is skipped", func(t *testing.T) {
		d := &doctor{dial: func(context.Context, string) error { t.Fatal("dialed"); return nil }}
		got := d.checkServer(context.Background(), domain.SessionConfig{Server: "ws://localhost:1", AutoStart: true})
		assert.Equal(t, output.CheckSkip, got.Status)
	})

	t.Run("reachable", func(t *testing.T) {
		var dialed string
		d := &doctor{dial: func(_ context.Context, url string) error { dialed = url; return nil }}
		got := d.checkServer(context.Background(), domain.SessionConfig{Server: "ws://host:8099"})
		assert.Equal(t, output.CheckOK, got.Status)
		assert.Equal(t, "ws://host:8099", dialed)
	})

	t.Run("unreachable warns", func(t *testing.T) {
		d := &doctor{dial: func(context.Context, string) error { return errors.New("connection refused") }}
		got := d.checkServer(context.Background(), domain.SessionConfig{Server: "ws://host:8099"})
		assert.Equal(t, output.CheckWarn, got.Status)
		assert.Contains(t, got.Message, "connection refused")
	})
}

func TestDoctor_CheckApps(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "App.app")
	require.NoError(t, os.MkdirAll(bundle, 0o755))
	info, err := plist.Marshal(map[string]string{"CFBundleIdentifier": "com.example", "CFBundleShortVersionString": "1.0", "CFBundleVersion": "7"}, plist.XMLFormat)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(bundle, "Info.plist"), info, 0o644))

	rc := &domain.RuntimeConfig{Apps: map[string]domain.AppConfig{
		"ok":        {Type: domain.AppIOS, BinaryPath: "App.app", BundleID: "com.example"},
		"mismatch":  {Type: domain.AppIOS, BinaryPath: "App.app", BundleID: "com.other"},
		"unbuilt":   {Type: domain.AppAndroid, BinaryPath: "app.apk", Build: "./gradlew assembleDebug"},
		"missing":   {Type: domain.AppAndroid, BinaryPath: "app.apk"},
		"installed": {Type: domain.AppIOS, BundleID: "com.installed"},
	}}

	d := &doctor{logger: zap.NewNop()}
	checks := d.checkApps(context.Background(), rc, dir)

	status := map[string]string{}
	for _, c := range checks {
		status[strings.TrimPrefix(c.Name, "app ")] = c.Status
	}
	assert.Equal(t, map[string]string{
		"installed": output.CheckOK,
		"mismatch":  output.CheckWarn,
		"missing":   output.CheckFail,
		"ok":        output.CheckOK,
		"unbuilt":   output.CheckWarn,
	}, status)

	// Results keep the sorted app order
	assert.Equal(t, "app installed", checks[0].Name)
	assert.Contains(t, checks[3].Message, "com.example 1.0 build 7")
}

func TestDoctorCmd_Report(t *testing.T) {
	t.Run("failures set the exit status", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		err := (&DoctorCmd{}).report(globals, []output.CheckOutput{
			{Name: "a", Status: output.CheckOK},
			{Name: "b", Status: output.CheckFail, Message: "broken"},
		})
		require.ErrorIs(t, err, errChecksFailed)

		lines := decodeLines(t, stdout)
		require.Len(t, lines, 3)
		assert.Equal(t, "check", lines[0]["type"])
		assert.Equal(t, "doctor", lines[2]["type"])
		assert.Equal(t, false, lines[2]["allPassed"])
		assert.Equal(t, float64(1), lines[2]["errorCount"])
	})

	t.Run("warnings pass", func(t *testing.T) {
		globals, stdout, _ := testGlobals("text")
		err := (&DoctorCmd{}).report(globals, []output.CheckOutput{{Name: "a", Status: output.CheckWarn, Message: "meh"}})
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "warnings: 1")
	})
}

// --- Config Command Tests ---

func TestConfigShowCmd_Run(t *testing.T) {
	t.Run("outputs settings in text format", func(t *testing.T) {
		globals, stdout, _ := testGlobals("text")
		require.NoError(t, (&ConfigShowCmd{}).Run(globals))

		out := stdout.String()
		assert.Contains(t, out, "Current Settings:")
		assert.Contains(t, out, "format:")
		assert.Contains(t, out, "config_path:")
	})

	t.Run("outputs settings in NDJSON format", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		require.NoError(t, (&ConfigShowCmd{}).Run(globals))

		got := decodeLines(t, stdout)[0]
		assert.Equal(t, "config", got["type"])
		assert.Equal(t, "ndjson", got["format"])
		assert.Contains(t, got, "defaults")
	})
}

func TestConfigPathCmd_Run(t *testing.T) {
	globals, stdout, _ := testGlobals("ndjson")
	require.NoError(t, (&ConfigPathCmd{}).Run(globals))
	assert.Equal(t, "config_path", decodeLines(t, stdout)[0]["type"])
}

func TestConfigGenerateCmd_Run(t *testing.T) {
	globals, stdout, _ := testGlobals("text")
	require.NoError(t, (&ConfigGenerateCmd{}).Run(globals))

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, stdout.Bytes(), 0o644))
	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ndjson", cfg.Format)
	assert.Equal(t, "info", cfg.Level)
}

func TestVersionCmd_Run(t *testing.T) {
	t.Run("ndjson", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		require.NoError(t, (&VersionCmd{}).Run(globals))
		got := decodeLines(t, stdout)[0]
		assert.Equal(t, "version", got["type"])
		assert.Equal(t, Version, got["version"])
	})

	t.Run("text", func(t *testing.T) {
		globals, stdout, _ := testGlobals("text")
		require.NoError(t, (&VersionCmd{}).Run(globals))
		assert.Contains(t, stdout.String(), "e2econf version")
	})
}
