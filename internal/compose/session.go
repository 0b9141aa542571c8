package compose

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/vburojevic/e2econf/internal/domain"
	"github.com/vburojevic/e2econf/internal/session"
)

// PortFinder hands out a free local port
type PortFinder interface {
	FreePort(ctx context.Context) (int, error)
}

// SessionResolver merges and validates session settings and fills in the
// values that were not given.
type SessionResolver struct {
	Ports PortFinder
	NewID func() string
}

// NewSessionResolver creates a resolver probing real ports and generating UUIDs
func NewSessionResolver() *SessionResolver {
	return &SessionResolver{
		Ports: session.NewPortFinder(),
		NewID: session.NewID,
	}
}

const (
	keyServer               = "server"
	keySessionID            = "sessionId"
	keyDebugSynchronization = "debugSynchronization"
	keyAutoStart            = "autoStart"
)

// Resolve overlays the configuration's session on the document's, validates
// the result and computes defaults for unset fields. A port is only probed
// when no server is given.
func (r *SessionResolver) Resolve(ctx context.Context, in Input) (domain.SessionConfig, error) {
	merged := make(map[string]any)
	origin := make(map[string]domain.Path)
	if in.Global != nil {
		for k, v := range in.Global.Session {
			merged[k] = v
			origin[k] = domain.NewPath("session", k)
		}
	}
	if in.Local != nil {
		localPath := domain.NewPath("configurations", in.Errors.ConfigurationName(), "session")
		for k, v := range in.Local.SessionOverrides() {
			merged[k] = v
			origin[k] = localPath.Key(k)
		}
	}

	out := domain.SessionConfig{DebugSynchronization: domain.DefaultDebugSynchronization}
	var hasServer, hasSessionID, hasAutoStart bool

	if v := merged[keyServer]; v != nil {
		s, ok := v.(string)
		if !ok || !session.IsWebsocketURL(s) {
			return domain.SessionConfig{}, in.Errors.InvalidServer(origin[keyServer])
		}
		out.Server, hasServer = s, true
	}
	if v := merged[keySessionID]; v != nil {
		s, ok := v.(string)
		if !ok || s == "" {
			return domain.SessionConfig{}, in.Errors.InvalidSessionID(origin[keySessionID])
		}
		out.SessionID, hasSessionID = s, true
	}
	if v := merged[keyDebugSynchronization]; v != nil {
		ms, ok := milliseconds(v)
		if !ok {
			return domain.SessionConfig{}, in.Errors.InvalidDebugSynchronization(origin[keyDebugSynchronization])
		}
		out.DebugSynchronization = ms
	}
	if v := merged[keyAutoStart]; v != nil {
		b, ok := v.(bool)
		if !ok {
			return domain.SessionConfig{}, in.Errors.InvalidAutoStart(origin[keyAutoStart])
		}
		out.AutoStart, hasAutoStart = b, true
	}

	if ms, ok := cliMilliseconds(in.CLI.DebugSynchronization); ok {
		out.DebugSynchronization = ms
	}

	if !hasAutoStart {
		out.AutoStart = !hasServer
	}
	if !hasServer {
		port, err := r.Ports.FreePort(ctx)
		if err != nil {
			return domain.SessionConfig{}, in.Errors.PortUnavailable(err)
		}
		out.Server = session.LocalServerURL(port)
	}
	if !hasSessionID {
		out.SessionID = r.NewID()
	}

	for k, v := range merged {
		switch k {
		case keyServer, keySessionID, keyDebugSynchronization, keyAutoStart:
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]any)
		}
		out.Extra[k] = v
	}
	return out, nil
}

// milliseconds accepts any finite non-negative number produced by the
// document decoders
func milliseconds(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float64:
		f = n
	default:
		return 0, false
	}
	return f, f >= 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// cliMilliseconds reads the command-line interval. The value must begin with
// a non-negative integer and parse as a whole number.
func cliMilliseconds(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] < '0' || s[0] > '9' {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return milliseconds(f)
}
