package cmd

import (
	"github.com/jzelinskie/cobrautil/v2/cobrazerolog"
	"github.com/spf13/cobra"

	"github.com/subframe-dev/subframe/pkg/cmd/termination"
)

func RegisterRootFlags(cmd *cobra.Command) {
	cobrazerolog.New().RegisterFlags(cmd.PersistentFlags())
	termination.RegisterFlags(cmd.PersistentFlags())
}

func NewRootCommand(programName string) *cobra.Command {
	return &cobra.Command{
		Use:           programName,
		Short:         "Build Substrait query plans",
		Long:          "Declare a table over a named source, project its columns, and emit the resulting Substrait plan for any compliant query engine",
		Example:       PlanExample(programName),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
}
