package output

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/vburojevic/e2econf/internal/domain"
)

// NDJSONWriter writes command results as NDJSON
type NDJSONWriter struct {
	w       io.Writer
	encoder *json.Encoder
}

// NewNDJSONWriter creates a new NDJSON writer
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // keep URLs and shell commands unescaped
	return &NDJSONWriter{
		w:       w,
		encoder: enc,
	}
}

// ResolvedOutput is a composed runtime configuration
type ResolvedOutput struct {
	Type           string                      `json:"type"` // Always "resolved"
	SchemaVersion  int                         `json:"schemaVersion"`
	ConfigLocation string                      `json:"configLocation,omitempty"`
	Configuration  string                      `json:"configurationName"`
	Device         domain.DeviceConfig         `json:"deviceConfig"`
	Apps           map[string]domain.AppConfig `json:"appsConfig"`
	Session        domain.SessionConfig        `json:"sessionConfig"`
}

// NewResolvedOutput wraps a runtime configuration for emission
func NewResolvedOutput(rc *domain.RuntimeConfig, location string) *ResolvedOutput {
	return &ResolvedOutput{
		Type:           "resolved",
		SchemaVersion:  SchemaVersion,
		ConfigLocation: location,
		Configuration:  rc.Configuration,
		Device:         rc.Device,
		Apps:           rc.Apps,
		Session:        rc.Session,
	}
}

// ConfigurationOutput describes one declared configuration
type ConfigurationOutput struct {
	Type          string   `json:"type"` // Always "configuration"
	SchemaVersion int      `json:"schemaVersion"`
	Name          string   `json:"name"`
	Kind          string   `json:"kind"` // "plain" or "aliased"
	DeviceType    string   `json:"deviceType,omitempty"`
	Device        string   `json:"device,omitempty"`
	Apps          []string `json:"apps,omitempty"`
	Selected      bool     `json:"selected,omitempty"`
}

// ErrorOutput is a structured failure
type ErrorOutput struct {
	Type           string   `json:"type"` // Always "error"
	SchemaVersion  int      `json:"schemaVersion"`
	Code           string   `json:"code"`
	Message        string   `json:"message"`
	Hint           string   `json:"hint,omitempty"`
	Path           string   `json:"path,omitempty"`
	Related        string   `json:"related,omitempty"`
	Configuration  string   `json:"configuration,omitempty"`
	ConfigLocation string   `json:"configLocation,omitempty"`
	Expected       []string `json:"expected,omitempty"`
}

// WarningOutput represents a warning message
type WarningOutput struct {
	Type          string `json:"type"` // Always "warning"
	SchemaVersion int    `json:"schemaVersion"`
	Message       string `json:"message"`
}

// InfoOutput represents an informational message
type InfoOutput struct {
	Type          string `json:"type"` // Always "info"
	SchemaVersion int    `json:"schemaVersion"`
	Message       string `json:"message"`
}

// Check statuses
const (
	CheckOK   = "ok"
	CheckWarn = "warn"
	CheckFail = "fail"
	CheckSkip = "skip"
)

// CheckOutput is the outcome of one doctor check
type CheckOutput struct {
	Type          string `json:"type"` // Always "check"
	SchemaVersion int    `json:"schemaVersion"`
	Name          string `json:"name"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	Hint          string `json:"hint,omitempty"`
}

// WriteResolved outputs a composed runtime configuration
func (w *NDJSONWriter) WriteResolved(out *ResolvedOutput) error {
	return w.encoder.Encode(out)
}

// WriteConfiguration outputs one configuration row
func (w *NDJSONWriter) WriteConfiguration(c *ConfigurationOutput) error {
	c.Type = "configuration"
	c.SchemaVersion = SchemaVersion
	return w.encoder.Encode(c)
}

// WriteError outputs an error
func (w *NDJSONWriter) WriteError(e *ErrorOutput) error {
	e.Type = "error"
	e.SchemaVersion = SchemaVersion
	return w.encoder.Encode(e)
}

// WriteCheck outputs a doctor check result
func (w *NDJSONWriter) WriteCheck(c *CheckOutput) error {
	c.Type = "check"
	c.SchemaVersion = SchemaVersion
	return w.encoder.Encode(c)
}

// WriteRaw outputs raw JSON data
func (w *NDJSONWriter) WriteRaw(v interface{}) error {
	return w.encoder.Encode(v)
}

// WriteInfo outputs an informational message
func (w *NDJSONWriter) WriteInfo(message string) error {
	return w.encoder.Encode(&InfoOutput{
		Type:          "info",
		SchemaVersion: SchemaVersion,
		Message:       message,
	})
}

// WriteWarning outputs a warning message
func (w *NDJSONWriter) WriteWarning(message string) error {
	return w.encoder.Encode(&WarningOutput{
		Type:          "warning",
		SchemaVersion: SchemaVersion,
		Message:       message,
	})
}

// TextWriter writes command results as styled text
type TextWriter struct {
	w io.Writer
}

// NewTextWriter creates a new text writer
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// WriteResolved outputs a runtime configuration as an indented summary
func (w *TextWriter) WriteResolved(out *ResolvedOutput) error {
	var b strings.Builder
	b.WriteString(Styles.Header.Render("Configuration "+out.Configuration) + "\n")
	if out.ConfigLocation != "" {
		b.WriteString(field("file", out.ConfigLocation))
	}

	b.WriteString(Styles.Title.Render("Device") + "\n")
	b.WriteString(field("type", string(out.Device.Type)))
	if !out.Device.Device.IsZero() {
		b.WriteString(field("device", out.Device.Device.String()))
	}

	if len(out.Apps) > 0 {
		b.WriteString(Styles.Title.Render("Apps") + "\n")
		for _, name := range (&domain.RuntimeConfig{Apps: out.Apps}).AppNames() {
			app := out.Apps[name]
			label := name
			if label == "" {
				label = "(default)"
			}
			b.WriteString("  " + Styles.Value.Render(label) + " " + Styles.Muted.Render(string(app.Type)) + "\n")
			if app.BinaryPath != "" {
				b.WriteString(field("  binaryPath", app.BinaryPath))
			}
			if app.BundleID != "" {
				b.WriteString(field("  bundleId", app.BundleID))
			}
			if app.Build != "" {
				b.WriteString(field("  build", app.Build))
			}
		}
	}

	b.WriteString(Styles.Title.Render("Session") + "\n")
	b.WriteString(field("server", out.Session.Server))
	b.WriteString(field("sessionId", out.Session.SessionID))
	b.WriteString(field("debugSynchronization", strconv.FormatFloat(out.Session.DebugSynchronization, 'f', -1, 64)+"ms"))
	b.WriteString(field("autoStart", boolText(out.Session.AutoStart)))

	_, err := io.WriteString(w.w, b.String())
	return err
}

// WriteError outputs a styled error with its location and hint
func (w *TextWriter) WriteError(e *ErrorOutput) error {
	line := Styles.Danger.Render("Error") + " " + Styles.Warning.Render("["+e.Code+"]") + ": " + e.Message + "\n"
	if e.Path != "" {
		at := e.Path
		if e.ConfigLocation != "" {
			at = e.ConfigLocation + " " + at
		}
		line += "  " + Styles.Label.Render("at ") + at + "\n"
	}
	if e.Related != "" {
		line += "  " + Styles.Label.Render("see ") + e.Related + "\n"
	}
	if e.Hint != "" {
		line += "  " + Styles.Info.Render("hint: ") + e.Hint + "\n"
	}
	_, err := io.WriteString(w.w, line)
	return err
}

// WriteWarning outputs a styled warning
func (w *TextWriter) WriteWarning(message string) error {
	_, err := io.WriteString(w.w, Styles.Warning.Render("Warning")+": "+message+"\n")
	return err
}

// WriteInfo outputs a plain informational line
func (w *TextWriter) WriteInfo(message string) error {
	_, err := io.WriteString(w.w, message+"\n")
	return err
}

// WriteCheck outputs one doctor check line
func (w *TextWriter) WriteCheck(c *CheckOutput) error {
	line := CheckIndicator(c.Status) + " " + Styles.Value.Render(c.Name) + ": " + c.Message + "\n"
	if c.Hint != "" {
		line += "    " + Styles.Help.Render(c.Hint) + "\n"
	}
	_, err := io.WriteString(w.w, line)
	return err
}

func field(label, value string) string {
	return "  " + Styles.Label.Render(label+": ") + value + "\n"
}

func boolText(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
