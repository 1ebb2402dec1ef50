package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"plume/internal/export"
)

func newExportCommand(cmdCtx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <project-id>",
		Short: "Write a finalized project to disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, ok := export.ParseFormat(format)
			if !ok {
				return fmt.Errorf("unknown export format %q (markdown, html, latex)", format)
			}
			return cmdCtx.withEnv(cmd, func(ctx context.Context, env *appEnv) error {
				path, err := env.exporter.Export(ctx, args[0], parsed)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Output format (markdown, html, latex)")
	return cmd
}
