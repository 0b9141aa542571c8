// Package session provides the runtime pieces of a test session: local port
// allocation, session identifiers and server URL checks.
package session

import (
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// NewID returns a fresh session identifier
func NewID() string {
	return uuid.NewString()
}

// IsWebsocketURL reports whether s is an absolute ws:// or wss:// URL with a host
func IsWebsocketURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "ws" || u.Scheme == "wss") && u.Host != ""
}

// LocalServerURL returns the websocket URL of a server started on this machine
func LocalServerURL(port int) string {
	return "ws://localhost:" + strconv.Itoa(port)
}
