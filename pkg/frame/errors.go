package frame

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"
)

// ColumnNotFoundError occurs when a referenced column is not part of a
// table's output.
type ColumnNotFoundError struct {
	error
	columnName string
	available  []string
	suggestion string
}

// NotFoundColumnName returns the name of the column not found.
func (err ColumnNotFoundError) NotFoundColumnName() string {
	return err.columnName
}

// AvailableColumns returns the output columns of the table the lookup ran against.
func (err ColumnNotFoundError) AvailableColumns() []string {
	return append([]string(nil), err.available...)
}

// Suggestion returns the available column closest to the one not found, or
// an empty string if none is close.
func (err ColumnNotFoundError) Suggestion() string {
	return err.suggestion
}

// MarshalZerologObject implements zerolog object marshalling.
func (err ColumnNotFoundError) MarshalZerologObject(e *zerolog.Event) {
	e.Err(err.error).Str("column", err.columnName).Strs("available", err.available)
}

// DetailsMetadata returns the metadata for details for this error.
func (err ColumnNotFoundError) DetailsMetadata() map[string]string {
	metadata := map[string]string{
		"column_name":       err.columnName,
		"available_columns": strings.Join(err.available, ","),
	}
	if err.suggestion != "" {
		metadata["suggestion"] = err.suggestion
	}
	return metadata
}

// UnsupportedTypeError occurs when a column is declared with a type token
// that does not name a supported Substrait type.
type UnsupportedTypeError struct {
	error
	columnName string
	token      string
}

// ColumnName returns the name of the column declared with the type, if known.
func (err UnsupportedTypeError) ColumnName() string {
	return err.columnName
}

// TypeToken returns the unsupported token.
func (err UnsupportedTypeError) TypeToken() string {
	return err.token
}

// MarshalZerologObject implements zerolog object marshalling.
func (err UnsupportedTypeError) MarshalZerologObject(e *zerolog.Event) {
	e.Err(err.error).Str("column", err.columnName).Str("type", err.token)
}

// DetailsMetadata returns the metadata for details for this error.
func (err UnsupportedTypeError) DetailsMetadata() map[string]string {
	return map[string]string{
		"column_name": err.columnName,
		"type_token":  err.token,
	}
}

// InvalidSchemaError occurs when a table or an operation over it would not
// produce a well-formed relation.
type InvalidSchemaError struct {
	error
	reason string
}

// Reason returns a short machine-readable reason.
func (err InvalidSchemaError) Reason() string {
	return err.reason
}

// MarshalZerologObject implements zerolog object marshalling.
func (err InvalidSchemaError) MarshalZerologObject(e *zerolog.Event) {
	e.Err(err.error).Str("reason", err.reason)
}

// DetailsMetadata returns the metadata for details for this error.
func (err InvalidSchemaError) DetailsMetadata() map[string]string {
	return map[string]string{
		"reason": err.reason,
	}
}

// NewColumnNotFoundErr constructs a new column not found error.
func NewColumnNotFoundErr(columnName string, available []string) error {
	message := fmt.Sprintf("column `%s` not found; available columns: [%s]", columnName, strings.Join(available, ", "))
	suggestion := closestColumn(columnName, available)
	if suggestion != "" {
		message += fmt.Sprintf("; did you mean `%s`?", suggestion)
	}

	return ColumnNotFoundError{
		error:      errors.New(message),
		columnName: columnName,
		available:  append([]string(nil), available...),
		suggestion: suggestion,
	}
}

// closestColumn returns the available name needing the fewest edits to match
// columnName, ignoring case. Only names within a third of columnName's length
// in edits qualify.
func closestColumn(columnName string, available []string) string {
	maxDistance := min(max(1, len(columnName)/3), len(columnName)-1)
	best, bestDistance := "", maxDistance+1
	for _, candidate := range available {
		distance := fuzzy.LevenshteinDistance(strings.ToLower(columnName), strings.ToLower(candidate))
		if distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}
	return best
}

// NewUnsupportedTypeErr constructs a new unsupported type error.
func NewUnsupportedTypeErr(columnName string, token string) error {
	if columnName == "" {
		return UnsupportedTypeError{
			error: fmt.Errorf("unsupported type `%s`; supported types: %s", token, strings.Join(SupportedTypes(), ", ")),
			token: token,
		}
	}

	return UnsupportedTypeError{
		error:      fmt.Errorf("column `%s` has unsupported type `%s`; supported types: %s", columnName, token, strings.Join(SupportedTypes(), ", ")),
		columnName: columnName,
		token:      token,
	}
}

const (
	reasonEmptySource     = "empty_source_name"
	reasonEmptyColumnName = "empty_column_name"
	reasonDuplicateColumn = "duplicate_column"
	reasonEmptySchema     = "empty_schema"
	reasonEmptyProjection = "empty_projection"
	reasonForeignValue    = "foreign_value"
)

func newInvalidSchemaErr(reason string, format string, args ...any) error {
	return InvalidSchemaError{
		error:  fmt.Errorf(format, args...),
		reason: reason,
	}
}
