package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/jzelinskie/stringz"
	"github.com/mattn/go-isatty"
	"github.com/sean-/sysexits"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"

	log "github.com/subframe-dev/subframe/internal/logging"
	"github.com/subframe-dev/subframe/pkg/cmd/termination"
	"github.com/subframe-dev/subframe/pkg/frame"
	"github.com/subframe-dev/subframe/pkg/frameerrors"
	"github.com/subframe-dev/subframe/pkg/planfile"
)

// Output formats for a built plan.
const (
	FormatJSON    = "json"
	FormatText    = "text"
	FormatBinary  = "binary"
	FormatExplain = "explain"
)

var formats = []string{FormatJSON, FormatText, FormatBinary, FormatExplain}

// PlanConfig is the configuration for building a plan, either from a plan
// file or from flags.
type PlanConfig struct {
	// File is the path of a YAML plan file.
	File string

	// Source is the name of the source to read from.
	Source string

	// Schema holds the source columns as `name:type` entries.
	Schema []string

	// Selects holds one comma-separated column list per projection, applied
	// in order. An entry `column=alias` outputs the column under the alias.
	Selects []string

	Format   string
	Producer string
}

func RegisterPlanFlags(cmd *cobra.Command, config *PlanConfig) error {
	cmd.Flags().StringVar(&config.File, "file", "", "path to a YAML plan file")
	cmd.Flags().StringVar(&config.Source, "source", "", "name of the source the plan reads from")
	cmd.Flags().StringSliceVar(&config.Schema, "schema", nil, `source columns as "name:type" entries, e.g. "a:i64,b:i32?"`)
	cmd.Flags().StringArrayVar(&config.Selects, "select", nil, "comma-separated columns to project, each optionally renamed as column=alias; repeat to chain projections")
	cmd.Flags().StringVar(&config.Format, "format", FormatJSON, fmt.Sprintf("output format (%s)", strings.Join(formats, ", ")))
	cmd.Flags().StringVar(&config.Producer, "producer", frame.DefaultProducer, "producer recorded in the plan version")
	cmd.MarkFlagsMutuallyExclusive("file", "source")
	cmd.MarkFlagsMutuallyExclusive("file", "schema")
	cmd.MarkFlagsMutuallyExclusive("file", "select")
	return nil
}

// Complete builds the table described by the configuration.
func (c *PlanConfig) Complete() (frame.Table, error) {
	if c.File != "" {
		file, err := planfile.ReadFile(c.File)
		if err != nil {
			return frame.Table{}, err
		}
		return file.Build()
	}

	if c.Source == "" {
		return frame.Table{}, errors.New("one of --file or --source is required")
	}

	columns, err := parseSchemaEntries(c.Schema)
	if err != nil {
		return frame.Table{}, err
	}

	table, err := frame.NewTable(columns, c.Source)
	if err != nil {
		return frame.Table{}, err
	}

	for index, selection := range c.Selects {
		table, err = selectEntries(table, splitColumns(selection))
		if err != nil {
			return frame.Table{}, fmt.Errorf("--select #%d (%q): %w", index+1, selection, err)
		}
	}

	log.Debug().Str("source", c.Source).Int("projections", len(c.Selects)).Strs("output", table.Names()).Msg("built table from flags")
	return table, nil
}

func parseSchemaEntries(entries []string) ([]frame.Column, error) {
	columns := make([]frame.Column, 0, len(entries))
	for _, entry := range entries {
		var column frame.Column
		if err := stringz.SplitExact(strings.TrimSpace(entry), ":", &column.Name, &column.Type); err != nil {
			return nil, fmt.Errorf("invalid --schema entry %q: expected name:type", entry)
		}
		log.Trace().Stringer("column", column).Msg("parsed schema entry")
		columns = append(columns, column)
	}
	return columns, nil
}

// selectEntries projects the table onto `column` or `column=alias` entries.
func selectEntries(table frame.Table, entries []string) (frame.Table, error) {
	values := make([]frame.Value, 0, len(entries))
	for _, entry := range entries {
		column, alias := entry, ""
		if strings.Contains(entry, "=") {
			if err := stringz.SplitExact(entry, "=", &column, &alias); err != nil {
				return frame.Table{}, fmt.Errorf("invalid selection %q: expected column or column=alias", entry)
			}
			column, alias = strings.TrimSpace(column), strings.TrimSpace(alias)
			if alias == "" {
				return frame.Table{}, fmt.Errorf("invalid selection %q: alias is empty", entry)
			}
		}

		value, err := table.Column(column)
		if err != nil {
			return frame.Table{}, err
		}
		if alias != "" {
			value = value.Named(alias)
		}
		values = append(values, value)
	}
	return table.SelectValues(values...)
}

func splitColumns(selection string) []string {
	parts := strings.Split(selection, ",")
	columns := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			columns = append(columns, trimmed)
		}
	}
	return columns
}

// WritePlan writes the plan for the table in the given format.
func WritePlan(w io.Writer, table frame.Table, format string, producer string) error {
	if format == FormatExplain {
		_, err := io.WriteString(w, table.Explain().String())
		return err
	}

	plan := table.ToPlan(frame.WithProducer(stringz.DefaultEmpty(producer, frame.DefaultProducer)))

	var (
		encoded []byte
		err     error
	)
	switch format {
	case FormatJSON:
		encoded, err = protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(plan)
	case FormatText:
		encoded, err = prototext.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(plan)
	case FormatBinary:
		encoded, err = proto.Marshal(plan)
	default:
		return fmt.Errorf("unknown format %q; expected one of %s", format, strings.Join(formats, ", "))
	}
	if err != nil {
		return fmt.Errorf("unable to encode plan: %w", err)
	}

	if _, err := w.Write(encoded); err != nil {
		return err
	}
	if format != FormatBinary {
		_, err = io.WriteString(w, "\n")
	}
	return err
}

func NewPlanCommand(programName string, config *PlanConfig) *cobra.Command {
	return &cobra.Command{
		Use:     "plan",
		Short:   "build a Substrait plan and write it to stdout",
		Args:    cobra.NoArgs,
		PreRunE: DefaultPreRunE(programName),
		RunE: termination.PublishError(func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(formats, config.Format) {
				return frameerrors.NewTerminationErrorBuilder(fmt.Errorf("unknown format %q; expected one of %s", config.Format, strings.Join(formats, ", "))).
					Component("plan").
					ExitCode(sysexits.Usage).
					Error()
			}

			table, err := config.Complete()
			if err != nil {
				return completionTerminationErr("plan", err)
			}

			out := cmd.OutOrStdout()
			if config.Format == FormatBinary && isTerminal(out) {
				return frameerrors.NewTerminationErrorBuilder(errors.New("refusing to write a binary plan to a terminal; redirect stdout or pick another --format")).
					Component("plan").
					ExitCode(sysexits.Usage).
					Error()
			}

			if err := WritePlan(out, table, config.Format, config.Producer); err != nil {
				return frameerrors.NewTerminationErrorBuilder(err).Component("plan").ExitCode(sysexits.IOErr).Error()
			}
			return nil
		}),
	}
}

func NewSchemaCommand(programName string, config *PlanConfig) *cobra.Command {
	return &cobra.Command{
		Use:     "schema",
		Short:   "print the Arrow schema of the plan's output",
		Args:    cobra.NoArgs,
		PreRunE: DefaultPreRunE(programName),
		RunE: termination.PublishError(func(cmd *cobra.Command, args []string) error {
			table, err := config.Complete()
			if err != nil {
				return completionTerminationErr("schema", err)
			}

			return writeArrowSchema(cmd.OutOrStdout(), table.ArrowSchema)
		}),
	}
}

func writeArrowSchema(w io.Writer, arrowSchema func() (*arrow.Schema, error)) error {
	schema, err := arrowSchema()
	if err != nil {
		return frameerrors.NewTerminationErrorBuilder(err).Component("schema").ExitCode(sysexits.DataErr).Error()
	}
	if _, err := fmt.Fprintln(w, schema.String()); err != nil {
		return frameerrors.NewTerminationErrorBuilder(err).Component("schema").ExitCode(sysexits.IOErr).Error()
	}
	return nil
}

// completionTerminationErr classifies a failure to build the table: a plan
// file that cannot be read is missing input, anything else is bad data.
func completionTerminationErr(component string, err error) error {
	exitCode := sysexits.DataErr
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		exitCode = sysexits.NoInput
	}
	return frameerrors.NewTerminationErrorBuilder(err).Component(component).ExitCode(exitCode).Error()
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
