package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded project versions",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(cmdCtx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list <project-id>",
		Short: "List version snapshots, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withEnv(cmd, func(ctx context.Context, env *appEnv) error {
				records, err := env.history.List(ctx, args[0], limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No versions recorded yet")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, record := range records {
					rows = append(rows, []string{
						record.ID,
						formatTime(record.CreatedAt),
						string(record.Phase),
						truncateCell(record.Description, 48),
					})
				}
				table := renderTable(
					[]string{"Version", "When", "Phase", "Description"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of versions to show (0 for all)")
	return cmd
}

func newHistoryShowCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <version-id>",
		Short: "Show the section state captured by a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withEnv(cmd, func(ctx context.Context, env *appEnv) error {
				snapshot, err := env.history.Load(ctx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Project %s was %s\n", snapshot.ProjectID, snapshot.ProjectStatus)
				rows := make([][]string, 0, len(snapshot.Sections))
				for _, section := range snapshot.Sections {
					rows = append(rows, []string{
						fmt.Sprintf("%d", section.Ordinal+1),
						fmt.Sprintf("%d", section.SectionID),
						truncateCell(section.Title, 36),
						string(section.Status),
						fmt.Sprintf("%d", len(splitWords(section.Body))),
					})
				}
				table := renderTable(
					[]string{"#", "ID", "Title", "Status", "Words"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight},
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}
}

func newRevertCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "revert <project-id> <version-id> <section-id>",
		Short: "Restore one section to its state in a recorded version",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sectionID, err := parseSectionID(args[2])
			if err != nil {
				return err
			}
			return cmdCtx.withEnv(cmd, func(ctx context.Context, env *appEnv) error {
				section, err := env.manager.Revert(ctx, args[0], args[1], sectionID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restored section %d to version %s (revision %d)\n",
					section.ID, args[1], section.Revision)
				return nil
			})
		},
	}
}
