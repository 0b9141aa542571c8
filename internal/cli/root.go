package cli

import (
	"io"
	"os"

	"github.com/vburojevic/e2econf/internal/config"
	"github.com/vburojevic/e2econf/internal/output"
	"go.uber.org/zap"
)

// CLI is the root command structure for e2econf
type CLI struct {
	// Global flags
	Format  string `short:"f" default:"ndjson" enum:"ndjson,text" help:"Output format"`
	Quiet   bool   `short:"q" help:"Suppress warnings and informational output"`
	Verbose bool   `short:"v" help:"Log composition steps to stderr"`
	LogFile string `name:"log-file" type:"path" help:"Also write JSON logs to this file (rotated)"`

	// Commands
	Resolve ResolveCmd `cmd:"" default:"withargs" help:"Compose and print the runtime configuration"`
	List    ListCmd    `cmd:"" help:"List the configurations declared in the config file"`
	Pick    PickCmd    `cmd:"" help:"Interactively pick a configuration"`
	Doctor  DoctorCmd  `cmd:"" help:"Compose the configuration and check that it can run"`
	Config  ConfigCmd  `cmd:"" help:"Show or manage e2econf settings"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// Globals holds shared state for all commands
type Globals struct {
	Format  string
	Quiet   bool
	Verbose bool
	LogFile string
	Stdout  io.Writer
	Stderr  io.Writer
	Config  *config.Config
	Logger  *zap.Logger

	// FlagsSet records the flags given on the command line, so settings only
	// fill in what the user did not pass.
	FlagsSet map[string]bool
}

// NewGlobals creates a new Globals instance from CLI flags
func NewGlobals(cli *CLI) *Globals {
	return NewGlobalsWithConfig(cli, config.Default(), nil)
}

// NewGlobalsWithConfig creates a new Globals instance with settings fallbacks
func NewGlobalsWithConfig(cli *CLI, cfg *config.Config, flagsSet map[string]bool) *Globals {
	if cfg == nil {
		cfg = config.Default()
	}
	if flagsSet == nil {
		flagsSet = map[string]bool{}
	}
	g := &Globals{
		Format:   cli.Format,
		Quiet:    cli.Quiet,
		Verbose:  cli.Verbose,
		LogFile:  cli.LogFile,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Config:   cfg,
		Logger:   zap.NewNop(),
		FlagsSet: flagsSet,
	}

	if !flagsSet["format"] && cfg.Format != "" {
		g.Format = cfg.Format
	}
	if !cli.Quiet && cfg.Quiet {
		g.Quiet = true
	}
	if !cli.Verbose && cfg.Verbose {
		g.Verbose = true
	}
	if g.LogFile == "" {
		g.LogFile = cfg.Defaults.LogFile
	}

	return g
}

// Emitter returns an emitter for command results on stdout
func (g *Globals) Emitter() *output.Emitter {
	return output.NewEmitter(g.Stdout, g.Format)
}

// VersionCmd shows version information
type VersionCmd struct{}

// Run executes the version command
func (v *VersionCmd) Run(globals *Globals) error {
	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteRaw(map[string]any{
			"type":          "version",
			"schemaVersion": output.SchemaVersion,
			"version":       Version,
			"commit":        Commit,
		})
	}
	_, err := io.WriteString(globals.Stdout, "e2econf version "+Version+" ("+Commit+")\n")
	return err
}

// Version information (set at build time)
var (
	Version = "dev"
	Commit  = "none"
)
