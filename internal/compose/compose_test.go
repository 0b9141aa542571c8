package compose

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/e2econf/internal/configerr"
	"github.com/vburojevic/e2econf/internal/document"
	"github.com/vburojevic/e2econf/internal/domain"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakePorts struct {
	port  int
	err   error
	calls atomic.Int32
}

func (f *fakePorts) FreePort(ctx context.Context) (int, error) {
	f.calls.Add(1)
	if f.err != nil {
		return 0, f.err
	}
	return f.port, nil
}

// blockingPorts waits for cancellation, as a slow probe would
type blockingPorts struct{}

func (blockingPorts) FreePort(ctx context.Context) (int, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func decodeDoc(t *testing.T, tree map[string]any) *document.GlobalConfig {
	t.Helper()
	g, err := document.Decode(tree)
	require.NoError(t, err)
	return g
}

func newErrors(g *document.GlobalConfig) *configerr.Builder {
	return configerr.NewBuilder().SetCatalog(g.Catalog())
}

func testComposer(ports PortFinder) *Composer {
	return NewComposer(zap.NewNop()).WithSessionResolver(&SessionResolver{
		Ports: ports,
		NewID: func() string { return "session-1" },
	})
}

func TestCompose(t *testing.T) {
	t.Run("aliased device only", func(t *testing.T) {
		g := decodeDoc(t, map[string]any{
			"devices": map[string]any{
				"iphone": map[string]any{"type": "ios.none"},
			},
			"configurations": map[string]any{
				"x": map[string]any{"device": "iphone"},
			},
		})
		ports := &fakePorts{port: 4242}

		rc, err := testComposer(ports).Compose(context.Background(), Request{Global: g})
		require.NoError(t, err)

		assert.Equal(t, "x", rc.Configuration)
		assert.Equal(t, domain.DeviceConfig{Type: domain.DeviceIOSNone}, rc.Device)
		assert.Empty(t, rc.Apps)
		assert.Equal(t, "ws://localhost:4242", rc.Session.Server)
		assert.True(t, rc.Session.AutoStart)
		assert.Equal(t, "session-1", rc.Session.SessionID)
		assert.Equal(t, float64(domain.DefaultDebugSynchronization), rc.Session.DebugSynchronization)
	})

	t.Run("plain emulator with empty matcher", func(t *testing.T) {
		g := decodeDoc(t, map[string]any{
			"configurations": map[string]any{
				"x": map[string]any{"type": "android.emulator", "device": map[string]any{}},
			},
		})

		_, err := testComposer(&fakePorts{port: 1}).Compose(context.Background(), Request{Global: g})
		require.Error(t, err)

		var cerr *configerr.Error
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, configerr.KindMissingDeviceProperty, cerr.Kind)
		assert.Equal(t, []string{"avdName"}, cerr.Expected)
		assert.Equal(t, "configurations.x.device", cerr.Path.String())
	})

	t.Run("full plain ios configuration", func(t *testing.T) {
		g := decodeDoc(t, map[string]any{
			"session": map[string]any{"server": "ws://x:1"},
			"configurations": map[string]any{
				"ios.sim": map[string]any{
					"type":       "ios.simulator",
					"device":     map[string]any{"type": "iPhone 15"},
					"binaryPath": "build/App.app",
					"build":      "xcodebuild",
				},
			},
		})
		ports := &fakePorts{port: 1}

		rc, err := testComposer(ports).Compose(context.Background(), Request{
			Global: g,
			CLI:    domain.CLIConfig{DebugSynchronization: "0"},
		})
		require.NoError(t, err)

		require.Contains(t, rc.Apps, "")
		assert.Equal(t, domain.AppIOS, rc.Apps[""].Type)
		assert.Equal(t, "ws://x:1", rc.Session.Server)
		assert.False(t, rc.Session.AutoStart)
		assert.Equal(t, float64(0), rc.Session.DebugSynchronization)
		assert.Zero(t, ports.calls.Load(), "no port is probed when the server is given")
	})

	t.Run("device error wins over session error", func(t *testing.T) {
		g := decodeDoc(t, map[string]any{
			"session": map[string]any{"server": "http://nope"},
			"configurations": map[string]any{
				"x": map[string]any{},
			},
		})

		_, err := testComposer(&fakePorts{port: 1}).Compose(context.Background(), Request{Global: g})
		assert.True(t, configerr.Is(err, configerr.KindDeviceConfigUndefined))
	})

	t.Run("device error cancels a pending port probe", func(t *testing.T) {
		g := decodeDoc(t, map[string]any{
			"configurations": map[string]any{
				"x": map[string]any{"device": "missing"},
			},
		})

		_, err := testComposer(blockingPorts{}).Compose(context.Background(), Request{Global: g})
		assert.True(t, configerr.Is(err, configerr.KindNoDeviceConfigs))
	})

	t.Run("session error is returned when device and apps resolve", func(t *testing.T) {
		g := decodeDoc(t, map[string]any{
			"configurations": map[string]any{
				"x": map[string]any{"device": map[string]any{"type": "ios.none"}},
			},
		})
		ports := &fakePorts{err: errors.New("no ports left")}

		_, err := testComposer(ports).Compose(context.Background(), Request{Global: g})
		require.Error(t, err)
		assert.True(t, configerr.Is(err, configerr.KindPortUnavailable))
		assert.Contains(t, err.Error(), "no ports left")
	})

	t.Run("selection error carries the location", func(t *testing.T) {
		g := decodeDoc(t, map[string]any{})

		_, err := testComposer(&fakePorts{port: 1}).Compose(context.Background(), Request{
			Global:         g,
			ConfigLocation: "/work/.e2erc.json",
		})

		var cerr *configerr.Error
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, configerr.KindNoConfigurations, cerr.Kind)
		assert.Contains(t, cerr.Message, "/work/.e2erc.json")
	})
}
