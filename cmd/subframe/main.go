package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	log "github.com/subframe-dev/subframe/internal/logging"
	"github.com/subframe-dev/subframe/pkg/cmd"
	"github.com/subframe-dev/subframe/pkg/frameerrors"
)

const programName = "subframe"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var termErr frameerrors.TerminationError
		if errors.As(err, &termErr) {
			log.Error().Err(err).Str("component", termErr.Component).Msg("terminated")
			os.Exit(termErr.ExitCode())
		}
		log.Error().Err(err).Msg("terminated")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := cmd.NewRootCommand(programName)
	cmd.RegisterRootFlags(rootCmd)

	var planConfig cmd.PlanConfig
	planCmd := cmd.NewPlanCommand(programName, &planConfig)
	if err := cmd.RegisterPlanFlags(planCmd, &planConfig); err != nil {
		log.Fatal().Err(err).Msg("failed to register plan flags")
	}
	rootCmd.AddCommand(planCmd)

	var schemaConfig cmd.PlanConfig
	schemaCmd := cmd.NewSchemaCommand(programName, &schemaConfig)
	if err := cmd.RegisterPlanFlags(schemaCmd, &schemaConfig); err != nil {
		log.Fatal().Err(err).Msg("failed to register schema flags")
	}
	rootCmd.AddCommand(schemaCmd)

	return rootCmd
}
