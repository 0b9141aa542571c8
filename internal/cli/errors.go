package cli

import (
	"errors"

	"github.com/vburojevic/e2econf/internal/configerr"
	"github.com/vburojevic/e2econf/internal/output"
)

// errorOutput converts any command failure into its structured form
func errorOutput(err error) *output.ErrorOutput {
	var ce *configerr.Error
	if errors.As(err, &ce) {
		return &output.ErrorOutput{
			Code:           string(ce.Kind),
			Message:        ce.Error(),
			Hint:           ce.Hint,
			Path:           ce.Path.String(),
			Related:        ce.Related.String(),
			Configuration:  ce.Configuration,
			ConfigLocation: ce.ConfigLocation,
			Expected:       ce.Expected,
		}
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return &output.ErrorOutput{Code: cliErr.Code, Message: cliErr.Message, Hint: cliErr.Hint}
	}

	return &output.ErrorOutput{Code: "ERROR", Message: err.Error(), Hint: hintForTooling(err)}
}

// emitError reports err in the selected format and returns it marked as emitted.
// NDJSON goes to stdout so agents read one stream; text goes to stderr.
func emitError(globals *Globals, err error) error {
	if err == nil {
		return nil
	}
	var done *emittedError
	if errors.As(err, &done) {
		return err
	}

	out := errorOutput(err)
	if globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteError(out)
	} else {
		output.NewTextWriter(globals.Stderr).WriteError(out)
	}
	return &emittedError{err: err}
}

// emitWarning respects format/quiet.
func emitWarning(globals *Globals, msg string) {
	if globals.Quiet {
		return
	}
	if globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteWarning(msg)
		return
	}
	output.NewTextWriter(globals.Stderr).WriteWarning(msg)
}
