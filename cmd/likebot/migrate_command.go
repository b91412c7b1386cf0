package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"likebot/internal/store"
)

const migrateTimeout = 30 * time.Second

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Initialize or reset the status database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			opCtx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
			defer cancel()

			st, err := store.Open(opCtx, cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			out := cmd.OutOrStdout()
			if reset {
				if err := st.Reset(opCtx); err != nil {
					return fmt.Errorf("reset schema: %w", err)
				}
				fmt.Fprintf(out, "Schema reset at %s\n", st.Path())
				return nil
			}

			// Open already applies the schema; report where it lives.
			fmt.Fprintf(out, "Schema ready at %s\n", st.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Drop all tables and recreate the schema")
	return cmd
}
