package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"plume/internal/project"
	"plume/internal/workflow"
)

func newSectionCommand(ctx *commandContext) *cobra.Command {
	sectionCmd := &cobra.Command{
		Use:   "section",
		Short: "Manage the sections of a project",
	}

	sectionCmd.AddCommand(newSectionAddCommand(ctx))
	sectionCmd.AddCommand(newSectionListCommand(ctx))
	sectionCmd.AddCommand(newSectionShowCommand(ctx))
	sectionCmd.AddCommand(newSectionEditCommand(ctx))
	sectionCmd.AddCommand(newSectionReorderCommand(ctx))

	return sectionCmd
}

func newSectionAddCommand(cmdCtx *commandContext) *cobra.Command {
	var thesis string
	var guidance string

	cmd := &cobra.Command{
		Use:   "add <project-id> <title>",
		Short: "Append a section to the project outline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withEnv(cmd, func(ctx context.Context, env *appEnv) error {
				section, err := env.store.AddSection(ctx, args[0], args[1], thesis, guidance)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added section %d (%q) at position %d\n",
					section.ID, section.Title, section.Ordinal+1)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&thesis, "thesis", "", "The claim this section argues")
	cmd.Flags().StringVar(&guidance, "guidance", "", "Outline notes on how to develop the section")
	return cmd
}

func newSectionListCommand(cmdCtx *commandContext) *cobra.Command {
	var phase string

	cmd := &cobra.Command{
		Use:   "list <project-id>",
		Short: "List the project's sections in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withEnv(cmd, func(ctx context.Context, env *appEnv) error {
				var sections []*project.Section
				var err error
				if phase != "" {
					parsed, ok := workflow.ParsePhase(phase)
					if !ok {
						return fmt.Errorf("unknown phase %q", phase)
					}
					sections, err = env.store.SectionsForPhase(ctx, args[0], parsed)
				} else {
					sections, err = env.store.SectionsByProject(ctx, args[0])
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(sections) == 0 {
					fmt.Fprintln(out, "No sections")
					return nil
				}
				rows := make([][]string, 0, len(sections))
				for _, section := range sections {
					rows = append(rows, []string{
						fmt.Sprintf("%d", section.Ordinal+1),
						fmt.Sprintf("%d", section.ID),
						truncateCell(section.Title, 40),
						string(section.Status),
						fmt.Sprintf("%d", section.WordCount()),
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

	cmd.Flags().StringVar(&phase, "phase", "", "Only sections currently in this phase")
	return cmd
}

func newSectionShowCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <section-id>",
		Short: "Show a section in full, including pending suggestions",
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

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, heading(out, fmt.Sprintf("Section %d: %s", section.ID, section.Title)))
				fmt.Fprintf(out, "Project: %s  Position: %d  Status: %s  Revision: %d\n",
					section.ProjectID, section.Ordinal+1, section.Status, section.Revision)
				if section.Thesis != "" {
					fmt.Fprintf(out, "Thesis: %s\n", section.Thesis)
				}
				if section.Guidance != "" {
					fmt.Fprintf(out, "Guidance: %s\n", section.Guidance)
				}
				if section.Coherence != nil || section.Density != nil {
					fmt.Fprintf(out, "Coherence: %s  Density: %s\n",
						formatMetric(section.Coherence), formatMetric(section.Density))
				}
				if section.Body != "" {
					fmt.Fprintf(out, "\n%s\n", section.Body)
				}
				if len(section.Citations) > 0 {
					fmt.Fprintln(out)
					fmt.Fprintln(out, heading(out, "Citations"))
					for _, citation := range section.Citations {
						line := fmt.Sprintf("- %s (%s", citation.Text, citation.Source)
						if citation.Locator != "" {
							line += ", " + citation.Locator
						}
						fmt.Fprintln(out, line+")")
					}
				}
				printSuggestions(cmd, section.Suggestions)
				return nil
			})
		},
	}
}

func printSuggestions(cmd *cobra.Command, suggestions *project.Suggestions) {
	if suggestions == nil {
		return
	}
	out := cmd.OutOrStdout()
	groups := []struct {
		label string
		kind  string
		items []string
	}{
		{"Content hints", "content_hints", suggestions.ContentHints},
		{"Writing prompts", "writing_prompts", suggestions.WritingPrompts},
		{"Style advice", "style_advice", suggestions.StyleAdvice},
		{"Citation cues", "citation_cues", suggestions.CitationCues},
	}
	for _, group := range groups {
		if len(group.items) == 0 {
			continue
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, heading(out, fmt.Sprintf("%s (%s)", group.label, group.kind)))
		for i, item := range group.items {
			fmt.Fprintf(out, "  [%d] %s\n", i, item)
		}
	}
	for _, warning := range suggestions.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", warning)
	}
}

func newSectionEditCommand(cmdCtx *commandContext) *cobra.Command {
	var title string
	var thesis string
	var guidance string
	var body string
	var bodyFile string

	cmd := &cobra.Command{
		Use:   "edit <section-id>",
		Short: "Update a section's title, thesis, guidance, or body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSectionID(args[0])
			if err != nil {
				return err
			}
			if body != "" && bodyFile != "" {
				return fmt.Errorf("use either --body or --body-file, not both")
			}
			if bodyFile != "" {
				data, err := os.ReadFile(bodyFile)
				if err != nil {
					return fmt.Errorf("read body file: %w", err)
				}
				body = string(data)
			}

			return cmdCtx.withEnv(cmd, func(ctx context.Context, env *appEnv) error {
				section, err := env.store.GetSection(ctx, id)
				if err != nil {
					return err
				}

				previousWords := section.WordCount()
				if cmd.Flags().Changed("title") {
					section.Title = title
				}
				if cmd.Flags().Changed("thesis") {
					section.Thesis = thesis
				}
				if cmd.Flags().Changed("guidance") {
					section.Guidance = guidance
				}
				if cmd.Flags().Changed("body") || cmd.Flags().Changed("body-file") {
					section.Body = body
				}

				updated, err := env.store.UpsertSection(ctx, section)
				if err != nil {
					return err
				}
				if delta := updated.WordCount() - previousWords; delta > 0 {
					if err := env.profiles.RecordWordsDrafted(ctx, cmdCtx.userID(), delta); err != nil {
						env.logger.Warn("record drafted words", "error", err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated section %d (revision %d, %d words)\n",
					updated.ID, updated.Revision, updated.WordCount())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New section title")
	cmd.Flags().StringVar(&thesis, "thesis", "", "New thesis statement")
	cmd.Flags().StringVar(&guidance, "guidance", "", "New outline guidance")
	cmd.Flags().StringVar(&body, "body", "", "New body text")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "Read the new body from a file")
	return cmd
}

func newSectionReorderCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <project-id> <section-id,section-id,...>",
		Short: "Reorder sections to the given id sequence",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parts := strings.Split(args[1], ",")
			order := make([]int64, 0, len(parts))
			for _, part := range parts {
				id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
				if err != nil {
					return fmt.Errorf("invalid section id %q in order", part)
				}
				order = append(order, id)
			}

			return cmdCtx.withEnv(cmd, func(ctx context.Context, env *appEnv) error {
				if err := env.store.ReorderSections(ctx, args[0], order); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reordered %d %s\n",
					len(order), plural(len(order), "section", "sections"))
				return nil
			})
		},
	}
}
