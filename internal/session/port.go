package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultProbeTimeout bounds a single free-port probe
const DefaultProbeTimeout = 5 * time.Second

// ErrProbeTimeout is returned when the OS did not hand out a port in time
var ErrProbeTimeout = errors.New("timed out waiting for a free port")

type listenFunc func(ctx context.Context, network, address string) (net.Listener, error)

// PortFinder asks the OS for an unused local TCP port
type PortFinder struct {
	host    string
	timeout time.Duration
	clock   clock.Clock
	listen  listenFunc
}

// NewPortFinder creates a finder probing localhost with the default timeout
func NewPortFinder() *PortFinder {
	var lc net.ListenConfig
	return &PortFinder{
		host:    "localhost",
		timeout: DefaultProbeTimeout,
		clock:   clock.New(),
		listen:  lc.Listen,
	}
}

// FreePort binds an ephemeral port, releases it and returns its number
func (f *PortFinder) FreePort(ctx context.Context) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		port int
		err  error
	}
	done := make(chan result, 1)

	go func() {
		l, err := f.listen(ctx, "tcp", net.JoinHostPort(f.host, "0"))
		if err != nil {
			done <- result{err: err}
			return
		}
		addr, ok := l.Addr().(*net.TCPAddr)
		closeErr := l.Close()
		if !ok {
			done <- result{err: fmt.Errorf("unexpected listener address %s", l.Addr())}
			return
		}
		done <- result{port: addr.Port, err: closeErr}
	}()

	timer := f.clock.Timer(f.timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.err != nil {
			return 0, fmt.Errorf("probing free port on %s: %w", f.host, r.err)
		}
		return r.port, nil
	case <-timer.C:
		return 0, fmt.Errorf("%w after %s", ErrProbeTimeout, f.timeout)
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
