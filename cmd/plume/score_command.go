package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"plume/internal/quality"
)

func newScoreCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "score <section-id>",
		Short: "Compute quality metrics for a section body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSectionID(args[0])
			if err != nil {
				return err
			}
			return cmdCtx.withEnv(cmd, func(ctx context.Context, env *appEnv) error {
				section, err := env.store.GetSection(ctx, id)
				if err != nil {
					return err
				}
				metrics := quality.Score(section.Body)

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Section %d (%s), %d words\n", section.ID, section.Title, section.WordCount())
				fmt.Fprintf(out, "Coherence: %.2f\n", metrics.Coherence)
				fmt.Fprintf(out, "Density:   %.2f\n", metrics.Density)
				if section.Coherence != nil && *section.Coherence != metrics.Coherence {
					fmt.Fprintf(out, "Stored coherence %.2f is stale; the next transfer into revision refreshes it\n",
						*section.Coherence)
				}
				return nil
			})
		},
	}
}
