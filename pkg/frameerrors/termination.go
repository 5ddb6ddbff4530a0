package frameerrors

import (
	"errors"
	"maps"
	"time"
)

// TerminationError represents an error that caused the process to exit. It is
// serialized into the termination log so that a supervisor can surface the
// reason without parsing logs.
type TerminationError struct {
	error
	Component   string            `json:"component"`
	Timestamp   time.Time         `json:"timestamp"`
	ErrorString string            `json:"error"`
	Metadata    map[string]string `json:"metadata"`
	exitCode    int
}

// ExitCode returns the exit code to use when terminating the process.
func (e TerminationError) ExitCode() int {
	return e.exitCode
}

// Unwrap returns the inner, wrapped error.
func (e TerminationError) Unwrap() error {
	return e.error
}

// TerminationErrorBuilder builds a TerminationError.
type TerminationErrorBuilder struct {
	termination TerminationError
}

// NewTerminationErrorBuilder starts a TerminationError around the given error.
// Metadata carried by the error (see HasMetadata) is copied in.
func NewTerminationErrorBuilder(err error) *TerminationErrorBuilder {
	if err == nil {
		err = errors.New("unknown error")
	}

	metadata := maps.Clone(MetadataOf(err))
	if metadata == nil {
		metadata = map[string]string{}
	}

	return &TerminationErrorBuilder{TerminationError{
		error:       err,
		Component:   "unspecified",
		Timestamp:   time.Now(),
		ErrorString: err.Error(),
		Metadata:    metadata,
		exitCode:    1,
	}}
}

// Component sets the component that failed.
func (eb *TerminationErrorBuilder) Component(component string) *TerminationErrorBuilder {
	eb.termination.Component = component
	return eb
}

// Metadata adds a single key to the metadata.
func (eb *TerminationErrorBuilder) Metadata(key, value string) *TerminationErrorBuilder {
	eb.termination.Metadata[key] = value
	return eb
}

// ExitCode sets the exit code.
func (eb *TerminationErrorBuilder) ExitCode(exitCode int) *TerminationErrorBuilder {
	eb.termination.exitCode = exitCode
	return eb
}

// Error returns the built TerminationError.
func (eb *TerminationErrorBuilder) Error() TerminationError {
	return eb.termination
}
