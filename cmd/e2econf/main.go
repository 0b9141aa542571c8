package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/vburojevic/e2econf/internal/cli"
	"github.com/vburojevic/e2econf/internal/config"
	"github.com/vburojevic/e2econf/internal/logging"
	"go.uber.org/zap"
)

func main() {
	// Load settings from files/environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load settings: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI
	ctx := kong.Parse(&c,
		kong.Name("e2econf"),
		kong.Description("Compose the runtime configuration of an end-to-end test run from .e2erc\n\nRun with no command to resolve the selected configuration"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
	)

	// Record which flags were explicitly provided so settings only fill gaps
	flagsSet := map[string]bool{}
	for _, p := range ctx.Path {
		if p.Flag != nil {
			flagsSet[p.Flag.Name] = true
		}
	}
	globals := cli.NewGlobalsWithConfig(&c, cfg, flagsSet)

	logger, err := logging.New(logging.Options{
		Level:   cfg.Level,
		Verbose: globals.Verbose,
		File:    globals.LogFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to set up logging: %v\n", err)
		logger = logging.Nop()
	}
	defer logger.Sync()
	globals.Logger = logger

	if err := ctx.Run(globals); err != nil {
		logger.Debug("command failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
