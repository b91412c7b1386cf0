package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"likebot/internal/runner"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var inputFlag string
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process pending targets from the input file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			r := runner.New(cfg, logger)
			return r.Run(runCtx, runner.Options{
				InputPath: inputFlag,
				Limit:     limitFlag,
				Out:       cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVarP(&inputFlag, "file", "f", "", "Input file with one target name per line")
	cmd.Flags().IntVarP(&limitFlag, "limit", "l", 0, "Maximum number of targets to process (0 = no limit)")
	return cmd
}
