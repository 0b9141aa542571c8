package output

import (
	"io"
)

// Emitter routes command results to the NDJSON or text writer for one format.
type Emitter struct {
	w      io.Writer
	format string
	json   *NDJSONWriter
	text   *TextWriter
}

func NewEmitter(w io.Writer, format string) *Emitter {
	return &Emitter{w: w, format: format, json: NewNDJSONWriter(w), text: NewTextWriter(w)}
}

// IsNDJSON reports whether results are machine readable
func (e *Emitter) IsNDJSON() bool { return e.format == "ndjson" }

func (e *Emitter) Resolved(out *ResolvedOutput) error {
	if e.IsNDJSON() {
		return e.json.WriteResolved(out)
	}
	return e.text.WriteResolved(out)
}

func (e *Emitter) Error(out *ErrorOutput) error {
	if e.IsNDJSON() {
		return e.json.WriteError(out)
	}
	return e.text.WriteError(out)
}

func (e *Emitter) Check(c *CheckOutput) error {
	if e.IsNDJSON() {
		return e.json.WriteCheck(c)
	}
	return e.text.WriteCheck(c)
}

func (e *Emitter) Warning(msg string) error {
	if e.IsNDJSON() {
		return e.json.WriteWarning(msg)
	}
	return e.text.WriteWarning(msg)
}

func (e *Emitter) Info(msg string) error {
	if e.IsNDJSON() {
		return e.json.WriteInfo(msg)
	}
	return e.text.WriteInfo(msg)
}

// Configurations emits one NDJSON line per row, or a table in text mode
func (e *Emitter) Configurations(rows []*ConfigurationOutput) error {
	if !e.IsNDJSON() {
		return WriteConfigurationTable(e.w, rows)
	}
	for _, r := range rows {
		if err := e.json.WriteConfiguration(r); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) Raw(v interface{}) error { return e.json.WriteRaw(v) }
