package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/gjson"
	"github.com/vburojevic/e2econf/internal/domain"
	"github.com/vburojevic/e2econf/internal/output"
)

// ResolveCmd composes the runtime configuration and prints it
type ResolveCmd struct {
	DocumentFlags `embed:""`

	DeviceName           string            `name:"device-name" help:"Replace the device query with this name (simulator, AVD or adb name)"`
	DebugSynchronization string            `name:"debug-synchronization" help:"Synchronization debug interval in milliseconds"`
	AppLaunchArgs        map[string]string `name:"app-launch-args" help:"Launch argument for every app as key=value (repeatable, wins over the config file)"`
	Get                  string            `help:"Print a single field of the result, e.g. sessionConfig.server"`
}

// Run executes the resolve command
func (c *ResolveCmd) Run(globals *Globals) error {
	rc, location, err := composeRuntime(context.Background(), globals, c.DocumentFlags, c.overrides())
	if err != nil {
		return emitError(globals, err)
	}

	out := output.NewResolvedOutput(rc, location)
	if c.Get != "" {
		return c.writeField(globals, out)
	}
	return globals.Emitter().Resolved(out)
}

func (c *ResolveCmd) overrides() domain.CLIConfig {
	return domain.CLIConfig{
		DeviceName:           c.DeviceName,
		DebugSynchronization: c.DebugSynchronization,
		AppLaunchArgs:        c.AppLaunchArgs,
	}
}

// writeField prints one value of the resolved JSON. Strings are printed bare
// so the result can be used in shell scripts.
func (c *ResolveCmd) writeField(globals *Globals, out *output.ResolvedOutput) error {
	data, err := json.Marshal(out)
	if err != nil {
		return emitError(globals, err)
	}

	res := gjson.GetBytes(data, c.Get)
	if !res.Exists() {
		return emitError(globals, &CLIError{
			Code:    "FIELD_NOT_FOUND",
			Message: fmt.Sprintf("no field %q in the resolved configuration", c.Get),
			Hint:    "Top-level fields are configurationName, deviceConfig, appsConfig and sessionConfig",
		})
	}

	value := res.String()
	if res.IsObject() || res.IsArray() {
		value = res.Raw
	}
	_, err = io.WriteString(globals.Stdout, value+"\n")
	return err
}
