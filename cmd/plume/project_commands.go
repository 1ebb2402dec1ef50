package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newProjectCommand(ctx *commandContext) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Create and inspect writing projects",
	}

	projectCmd.AddCommand(newProjectCreateCommand(ctx))
	projectCmd.AddCommand(newProjectListCommand(ctx))
	projectCmd.AddCommand(newProjectShowCommand(ctx))
	projectCmd.AddCommand(newProjectDeleteCommand(ctx))
	projectCmd.AddCommand(newProjectLogCommand(ctx))

	return projectCmd
}

func newProjectCreateCommand(cmdCtx *commandContext) *cobra.Command {
	var docType string
	var style string
	var discipline string

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a new writing project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withEnv(cmd, func(ctx context.Context, env *appEnv) error {
				user := cmdCtx.userID()
				prof, err := env.profiles.Get(ctx, user)
				if err != nil {
					return err
				}
				if strings.TrimSpace(style) == "" {
					style = string(prof.Style)
				}
				if strings.TrimSpace(discipline) == "" {
					discipline = string(prof.Discipline)
				}

				proj, err := env.store.CreateProject(ctx, user, args[0], docType, style, discipline)
				if err != nil {
					return err
				}
				if err := env.profiles.RecordProjectCreated(ctx, user); err != nil {
					env.logger.Warn("record project counter", "error", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Created project %s\n", proj.ID)
				fmt.Fprintf(out, "Title: %s (%s, %s, style %s)\n", proj.Title, proj.DocType, proj.Discipline, proj.Style)
				fmt.Fprintln(out, "Add sections with `plume section add`, then run `plume advance` to start drafting.")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&docType, "type", "article", "Document type (article, memoire, these, rapport)")
	cmd.Flags().StringVar(&style, "style", "", "Writing style (defaults to your profile)")
	cmd.Flags().StringVar(&discipline, "discipline", "", "Academic discipline (defaults to your profile)")
	return cmd
}

func newProjectListCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withEnv(cmd, func(ctx context.Context, env *appEnv) error {
				projects, err := env.store.ListProjects(ctx, cmdCtx.userID())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(projects) == 0 {
					fmt.Fprintln(out, "No projects yet")
					return nil
				}
				rows := make([][]string, 0, len(projects))
				for _, proj := range projects {
					rows = append(rows, []string{
						proj.ID,
						truncateCell(proj.Title, 40),
						string(proj.DocType),
						string(proj.Status),
						formatTime(proj.UpdatedAt),
					})
				}
				table := renderTable(
					[]string{"ID", "Title", "Type", "Status", "Updated"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}
}

func newProjectShowCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project and its sections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withEnv(cmd, func(ctx context.Context, env *appEnv) error {
				proj, err := env.store.GetProject(ctx, args[0])
				if err != nil {
					return err
				}
				sections, err := env.store.SectionsByProject(ctx, proj.ID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, heading(out, proj.Title))
				fmt.Fprintf(out, "ID: %s\n", proj.ID)
				fmt.Fprintf(out, "Type: %s  Discipline: %s  Style: %s\n", proj.DocType, proj.Discipline, proj.Style)
				fmt.Fprintf(out, "Status: %s  Updated: %s\n", proj.Status, formatTime(proj.UpdatedAt))

				if len(sections) == 0 {
					fmt.Fprintln(out, "No sections yet")
					return nil
				}
				rows := make([][]string, 0, len(sections))
				for _, section := range sections {
					rows = append(rows, []string{
						fmt.Sprintf("%d", section.Ordinal+1),
						fmt.Sprintf("%d", section.ID),
						truncateCell(section.Title, 32),
						string(section.Status),
						fmt.Sprintf("%d", section.WordCount()),
						formatMetric(section.Coherence),
						formatMetric(section.Density),
						fmt.Sprintf("%d", suggestionCount(section.Suggestions)),
					})
				}
				table := renderTable(
					[]string{"#", "ID", "Title", "Status", "Words", "Coherence", "Density", "Suggestions"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}
}

func newProjectDeleteCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Soft-delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withEnv(cmd, func(ctx context.Context, env *appEnv) error {
				if err := env.store.DeleteProject(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", args[0])
				return nil
			})
		},
	}
}

func newProjectLogCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "log <project-id>",
		Short: "Show the phase transition log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withEnv(cmd, func(ctx context.Context, env *appEnv) error {
				transitions, err := env.store.ListTransitions(ctx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(transitions) == 0 {
					fmt.Fprintln(out, "No transfers recorded yet")
					return nil
				}
				rows := make([][]string, 0, len(transitions))
				for _, tr := range transitions {
					rows = append(rows, []string{
						formatTime(tr.CreatedAt),
						string(tr.FromPhase),
						string(tr.ToPhase),
						fmt.Sprintf("%d", tr.SectionsMoved),
					})
				}
				table := renderTable(
					[]string{"When", "From", "To", "Sections"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}
}
