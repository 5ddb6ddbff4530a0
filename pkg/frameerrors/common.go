package frameerrors

import (
	"errors"
	"maps"
)

// SourcePosition is a position in the input source.
type SourcePosition struct {
	// LineNumber is the 1-indexed line number in the input source.
	LineNumber uint64

	// ColumnPosition is the 1-indexed column position in the input source.
	ColumnPosition uint64
}

// WithSourceError is an error that includes the source text and position
// information.
type WithSourceError struct {
	error

	// SourceCodeString is the input source code string for the error.
	SourceCodeString string

	SourcePosition
}

// Unwrap returns the inner, wrapped error.
func (err *WithSourceError) Unwrap() error {
	return err.error
}

// NewWithSourceError creates and returns a new WithSourceError.
func NewWithSourceError(err error, sourceCodeString string, position SourcePosition) *WithSourceError {
	return &WithSourceError{err, sourceCodeString, position}
}

// AsWithSourceError returns the error as an WithSourceError, if applicable.
func AsWithSourceError(err error) (*WithSourceError, bool) {
	var serr *WithSourceError
	if errors.As(err, &serr) {
		return serr, true
	}
	return nil, false
}

// HasMetadata indicates that the error has metadata defined.
type HasMetadata interface {
	// DetailsMetadata returns the metadata for details for this error.
	DetailsMetadata() map[string]string
}

// CombineMetadata combines the metadata found on an existing error with that given.
func CombineMetadata(withMetadata HasMetadata, metadata map[string]string) map[string]string {
	clone := maps.Clone(withMetadata.DetailsMetadata())
	if clone == nil {
		clone = make(map[string]string, len(metadata))
	}
	maps.Copy(clone, metadata)
	return clone
}

// MetadataOf walks the chain of wrapped errors and returns the metadata of the
// first error carrying any, or nil if none does.
func MetadataOf(err error) map[string]string {
	var withMetadata HasMetadata
	if errors.As(err, &withMetadata) {
		return withMetadata.DetailsMetadata()
	}
	return nil
}
