// Package configerr defines the structured errors raised while composing a
// runtime configuration, and the Builder that is their only constructor.
package configerr

import (
	"errors"
	"strings"

	"github.com/vburojevic/e2econf/internal/domain"
)

// Kind is the stable identifier of a configuration error
type Kind string

const (
	// Selection
	KindNoConfigurations       Kind = "NO_CONFIGURATIONS"
	KindUnknownConfiguration   Kind = "UNKNOWN_CONFIGURATION"
	KindAmbiguousConfiguration Kind = "AMBIGUOUS_CONFIGURATION"

	// Device
	KindNoDeviceConfigs                Kind = "NO_DEVICE_CONFIGS"
	KindUnresolvedDeviceAlias          Kind = "UNRESOLVED_DEVICE_ALIAS"
	KindDeviceConfigUndefined          Kind = "DEVICE_CONFIG_UNDEFINED"
	KindMissingDeviceType              Kind = "MISSING_DEVICE_TYPE"
	KindMissingDeviceProperty          Kind = "MISSING_DEVICE_PROPERTY"
	KindMissingDeviceMatcherProperties Kind = "MISSING_DEVICE_MATCHER_PROPERTIES"

	// App
	KindInvalidAppType      Kind = "INVALID_APP_TYPE"
	KindAmbiguousAppAndApps Kind = "AMBIGUOUS_APP_AND_APPS"
	KindAppsArrayTypo       Kind = "APP_IS_ARRAY"
	KindAppsNotArray        Kind = "APPS_NOT_ARRAY"
	KindNoAppConfigs        Kind = "NO_APP_CONFIGS"
	KindUnresolvedAppAlias  Kind = "UNRESOLVED_APP_ALIAS"
	KindDuplicateAppConfig  Kind = "DUPLICATE_APP_CONFIG"
	KindMissingBinaryPath   Kind = "MISSING_BINARY_PATH"

	// Session
	KindInvalidServer               Kind = "INVALID_SERVER"
	KindInvalidSessionID            Kind = "INVALID_SESSION_ID"
	KindInvalidDebugSynchronization Kind = "INVALID_DEBUG_SYNCHRONIZATION"
	KindInvalidAutoStart            Kind = "INVALID_AUTO_START"
	KindPortUnavailable             Kind = "PORT_UNAVAILABLE"

	// Document
	KindMalformedDocument Kind = "MALFORMED_DOCUMENT"
)

// Error is a composition failure with enough context to render an actionable message
type Error struct {
	Kind    Kind
	Message string
	Hint    string

	// Path is the offending node of the document. Related is a second node
	// involved in the failure, e.g. the first declaration of a duplicate app.
	Path    domain.Path
	Related domain.Path

	Configuration  string
	ConfigLocation string
	Alias          string
	DeviceType     domain.DeviceType
	AppType        domain.AppType
	AppName        string
	Expected       []string

	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// Is reports whether err carries a configuration error of the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
