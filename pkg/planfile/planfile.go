// Package planfile decodes YAML plan descriptions: a source, its schema, and
// the steps to apply to it.
//
//	source: example
//	schema:
//	  - name: a
//	    type: i64
//	  - name: c
//	    type: i64?
//	steps:
//	  - select: [a, c]
//	  - select: [c]
package planfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ccoveille/go-safecast/v2"
	"github.com/samber/lo"
	yamlv3 "gopkg.in/yaml.v3"

	log "github.com/subframe-dev/subframe/internal/logging"
	"github.com/subframe-dev/subframe/pkg/frame"
	"github.com/subframe-dev/subframe/pkg/frameerrors"
)

// PlanFile is a decoded plan description.
type PlanFile struct {
	// Source is the name of the source the plan reads from.
	Source string `yaml:"source"`

	// Schema is the declared schema of the source, in order.
	Schema []Column `yaml:"schema"`

	// Steps are the operations applied to the source, in order.
	Steps []Step `yaml:"steps"`
}

// Column is a column declaration in a plan file.
type Column struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Step is a single operation applied to the table built so far.
type Step struct {
	// Select projects the table onto the listed columns.
	Select []Selection `yaml:"select"`

	// SourcePosition is where the step starts in the plan file.
	SourcePosition frameerrors.SourcePosition `yaml:"-"`
}

// Selection is a column of a select step, either a bare column name or a
// mapping renaming the column in the output:
//
//	select: [a, {column: c, as: total}]
type Selection struct {
	Column string `yaml:"column"`
	As     string `yaml:"as"`
}

var (
	knownStepKeys      = map[string]struct{}{"select": {}}
	knownSelectionKeys = map[string]struct{}{"column": {}, "as": {}}
)

// OutputName returns the name the selected column takes in the output.
func (s Selection) OutputName() string {
	if s.As != "" {
		return s.As
	}
	return s.Column
}

// UnmarshalYAML decodes a selection from a column name or a column/as mapping.
func (s *Selection) UnmarshalYAML(node *yamlv3.Node) error {
	position, err := sourcePosition(node)
	if err != nil {
		return err
	}

	switch node.Kind {
	case yamlv3.ScalarNode:
		*s = Selection{Column: node.Value}
		return nil

	case yamlv3.MappingNode:
		for index := 0; index+1 < len(node.Content); index += 2 {
			key := node.Content[index]
			if _, ok := knownSelectionKeys[key.Value]; !ok {
				return frameerrors.NewWithSourceError(fmt.Errorf("unknown selection field `%s`; expected `column` and optionally `as`", key.Value), key.Value, position)
			}
		}

		var decoded struct {
			Column string `yaml:"column"`
			As     string `yaml:"as"`
		}
		if err := node.Decode(&decoded); err != nil {
			return err
		}
		if decoded.Column == "" {
			return frameerrors.NewWithSourceError(errors.New("a renamed selection requires a `column`"), node.Value, position)
		}
		*s = Selection(decoded)
		return nil

	default:
		return frameerrors.NewWithSourceError(errors.New("a selection must be a column name or a mapping with `column` and `as`"), node.Value, position)
	}
}

func sourcePosition(node *yamlv3.Node) (frameerrors.SourcePosition, error) {
	line, err := safecast.Convert[uint64](node.Line)
	if err != nil {
		return frameerrors.SourcePosition{}, err
	}
	column, err := safecast.Convert[uint64](node.Column)
	if err != nil {
		return frameerrors.SourcePosition{}, err
	}
	return frameerrors.SourcePosition{LineNumber: line, ColumnPosition: column}, nil
}

// UnmarshalYAML decodes a step, recording its position and rejecting unknown
// operations.
func (s *Step) UnmarshalYAML(node *yamlv3.Node) error {
	position, err := sourcePosition(node)
	if err != nil {
		return err
	}

	if node.Kind != yamlv3.MappingNode {
		return frameerrors.NewWithSourceError(errors.New("a step must be a mapping from operation to arguments"), node.Value, position)
	}
	for index := 0; index+1 < len(node.Content); index += 2 {
		key := node.Content[index]
		if _, ok := knownStepKeys[key.Value]; !ok {
			return frameerrors.NewWithSourceError(fmt.Errorf("unknown step operation `%s`", key.Value), key.Value, position)
		}
	}

	var decoded struct {
		Select []Selection `yaml:"select"`
	}
	if err := node.Decode(&decoded); err != nil {
		return err
	}

	s.Select = decoded.Select
	s.SourcePosition = position
	return nil
}

// StepError occurs when a step of a plan file cannot be applied.
type StepError struct {
	error
	index    int
	position frameerrors.SourcePosition
}

// StepIndex returns the 0-indexed position of the failing step.
func (err StepError) StepIndex() int {
	return err.index
}

// SourcePosition returns where the failing step starts in the plan file.
func (err StepError) SourcePosition() frameerrors.SourcePosition {
	return err.position
}

// Unwrap returns the inner, wrapped error.
func (err StepError) Unwrap() error {
	return err.error
}

// DetailsMetadata returns the metadata for details for this error, including
// that of the wrapped error.
func (err StepError) DetailsMetadata() map[string]string {
	metadata := map[string]string{
		"step_index":  fmt.Sprint(err.index),
		"line_number": fmt.Sprint(err.position.LineNumber),
	}
	if inner := frameerrors.MetadataOf(err.error); inner != nil {
		for key, value := range inner {
			if _, ok := metadata[key]; !ok {
				metadata[key] = value
			}
		}
	}
	return metadata
}

func newStepErr(index int, step Step, err error) error {
	return StepError{
		error:    fmt.Errorf("step %d (line %d): %w", index, step.SourcePosition.LineNumber, err),
		index:    index,
		position: step.SourcePosition,
	}
}

// Parse decodes the contents of a plan file. Unknown fields are rejected.
func Parse(contents []byte) (*PlanFile, error) {
	decoder := yamlv3.NewDecoder(bytes.NewReader(contents))
	decoder.KnownFields(true)

	var file PlanFile
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("plan file is empty")
		}
		return nil, fmt.Errorf("error when parsing plan file: %w", err)
	}
	return &file, nil
}

// ReadFile reads and decodes the plan file at the given path.
func ReadFile(path string) (*PlanFile, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	file, err := Parse(contents)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// Columns returns the declared schema as table columns.
func (f *PlanFile) Columns() []frame.Column {
	return lo.Map(f.Schema, func(column Column, _ int) frame.Column {
		return frame.Column{Name: column.Name, Type: column.Type}
	})
}

// Build declares the source table and applies every step in order.
func (f *PlanFile) Build() (frame.Table, error) {
	table, err := frame.NewTable(f.Columns(), f.Source)
	if err != nil {
		return frame.Table{}, fmt.Errorf("error declaring source `%s`: %w", f.Source, err)
	}

	for index, step := range f.Steps {
		if step.Select == nil {
			return frame.Table{}, newStepErr(index, step, errors.New("step has no operation"))
		}

		table, err = applySelect(table, step.Select)
		if err != nil {
			return frame.Table{}, newStepErr(index, step, err)
		}
		log.Debug().Int("step", index).Strs("columns", table.Names()).Msg("applied plan file step")
	}
	return table, nil
}

func applySelect(table frame.Table, selections []Selection) (frame.Table, error) {
	values := make([]frame.Value, 0, len(selections))
	for _, selection := range selections {
		value, err := table.Column(selection.Column)
		if err != nil {
			return frame.Table{}, err
		}
		values = append(values, value.Named(selection.OutputName()))
	}
	return table.SelectValues(values...)
}
