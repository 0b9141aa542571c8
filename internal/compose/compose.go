// Package compose turns a configuration document and command-line overrides
// into one validated runtime configuration.
package compose

import (
	"context"

	"github.com/vburojevic/e2econf/internal/configerr"
	"github.com/vburojevic/e2econf/internal/document"
	"github.com/vburojevic/e2econf/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Request is one composition: a document, the CLI overrides, and where the
// document came from
type Request struct {
	Global         *document.GlobalConfig
	CLI            domain.CLIConfig
	ConfigLocation string
	// Errors defaults to a configerr.Builder carrying the location and the
	// document's catalog.
	Errors ErrorBuilder
}

// Composer runs the selector and the resolvers
type Composer struct {
	logger   *zap.Logger
	sessions *SessionResolver
}

// NewComposer creates a composer with a real port finder
func NewComposer(logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{logger: logger, sessions: NewSessionResolver()}
}

// WithSessionResolver replaces the session resolver
func (c *Composer) WithSessionResolver(r *SessionResolver) *Composer {
	c.sessions = r
	return c
}

// Compose selects the configuration and resolves it. The session is resolved
// concurrently with the device and apps; a device or apps error is returned in
// preference to a session error.
func (c *Composer) Compose(ctx context.Context, req Request) (*domain.RuntimeConfig, error) {
	errs := req.Errors
	if errs == nil {
		b := configerr.NewBuilder().SetConfigLocation(req.ConfigLocation)
		if req.Global != nil {
			b.SetCatalog(req.Global.Catalog())
		}
		errs = b
	}

	name, err := SelectConfiguration(SelectInput{
		Global:         req.Global,
		CLI:            req.CLI,
		Errors:         errs,
		ConfigLocation: req.ConfigLocation,
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("selected configuration", zap.String("configuration", name), zap.String("location", req.ConfigLocation))

	in := Input{
		Errors: errs,
		Global: req.Global,
		Local:  req.Global.Configurations[name],
		CLI:    req.CLI,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	var sess domain.SessionConfig
	g.Go(func() error {
		var err error
		sess, err = c.sessions.Resolve(gctx, in)
		return err
	})

	device, apps, err := c.resolveTarget(in, name)
	if err != nil {
		cancel()
		_ = g.Wait()
		return nil, err
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	c.logger.Debug("resolved session",
		zap.String("server", sess.Server),
		zap.Bool("autoStart", sess.AutoStart),
		zap.Float64("debugSynchronization", sess.DebugSynchronization))

	return &domain.RuntimeConfig{
		Configuration: name,
		Device:        device,
		Apps:          apps,
		Session:       sess,
	}, nil
}

func (c *Composer) resolveTarget(in Input, name string) (domain.DeviceConfig, map[string]domain.AppConfig, error) {
	device, err := ResolveDevice(in)
	if err != nil {
		return domain.DeviceConfig{}, nil, err
	}
	c.logger.Debug("resolved device", zap.String("type", string(device.Type)), zap.Stringer("device", device.Device))

	apps, err := ResolveApps(AppsInput{Input: in, Device: device, ConfigurationName: name})
	if err != nil {
		return domain.DeviceConfig{}, nil, err
	}
	c.logger.Debug("resolved apps", zap.Int("count", len(apps)))
	return device, apps, nil
}
