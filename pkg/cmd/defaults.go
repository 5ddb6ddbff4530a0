package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/go-logr/zerologr"
	"github.com/jzelinskie/cobrautil/v2"
	"github.com/jzelinskie/cobrautil/v2/cobrazerolog"
	"github.com/rs/zerolog"

	"github.com/subframe-dev/subframe/internal/logging"
)

// PlanExample creates an example usage string with the provided program name.
func PlanExample(programName string) string {
	return fmt.Sprintf(`	%[1]s:
		%[4]s plan --source example --schema a:i64,b:i64,c:i64 --select a,c --select c

	%[2]s:
		%[4]s plan --file plan.yaml --format binary > plan.pb

	%[3]s:
		%[4]s plan --file plan.yaml --format explain
`,
		color.YellowString("Inline schema, JSON output"),
		color.GreenString("Plan file, wire encoding"),
		color.CyanString("Plan file, relation tree"),
		programName,
	)
}

// DefaultPreRunE sets up viper and zerolog flag handling for a command.
func DefaultPreRunE(programName string) cobrautil.CobraRunFunc {
	return cobrautil.CommandStack(
		cobrautil.SyncViperDotEnvPreRunE(programName, programName+".env", zerologr.New(&logging.Logger)),
		cobrazerolog.New(
			cobrazerolog.WithTarget(func(logger zerolog.Logger) {
				logging.SetGlobalLogger(logger)
			}),
		).RunE(),
	)
}
