package cli

// CLIError is a structured error used for consistent NDJSON/text emission.
type CLIError struct {
	Code    string
	Message string
	Hint    string
}

func (e *CLIError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// emittedError marks an error whose report was already written, so the
// entry point only sets the exit status.
type emittedError struct {
	err error
}

func (e *emittedError) Error() string { return e.err.Error() }

func (e *emittedError) Unwrap() error { return e.err }
