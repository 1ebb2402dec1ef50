package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"plume/internal/project"
)

func newProfileCommand(ctx *commandContext) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Show and tune your writing preferences",
	}

	profileCmd.AddCommand(newProfileShowCommand(ctx))
	profileCmd.AddCommand(newProfileSetCommand(ctx))

	return profileCmd
}

func newProfileShowCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current user profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withEnv(cmd, func(ctx context.Context, env *appEnv) error {
				prof, err := env.profiles.Get(ctx, cmdCtx.userID())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, heading(out, fmt.Sprintf("Profile %s", prof.UserID)))
				if prof.DisplayName != "" {
					fmt.Fprintf(out, "Name: %s\n", prof.DisplayName)
				}
				fmt.Fprintf(out, "Style: %s\n", prof.Style)
				fmt.Fprintf(out, "Discipline: %s\n", prof.Discipline)
				fmt.Fprintf(out, "Citation style: %s\n", prof.CitationStyle)
				fmt.Fprintf(out, "Preferred length: %d words\n", prof.PreferredLength)
				fmt.Fprintf(out, "Projects created: %d  Transfers run: %d  Words drafted: %d\n",
					prof.ProjectsCreated, prof.TransfersRun, prof.WordsDrafted)
				if prof.LastActiveAt != nil {
					fmt.Fprintf(out, "Last active: %s\n", formatTime(*prof.LastActiveAt))
				}
				return nil
			})
		},
	}
}

func newProfileSetCommand(cmdCtx *commandContext) *cobra.Command {
	var name string
	var style string
	var discipline string
	var citationStyle string
	var length int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update profile preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withEnv(cmd, func(ctx context.Context, env *appEnv) error {
				prof, err := env.profiles.Get(ctx, cmdCtx.userID())
				if err != nil {
					return err
				}

				if cmd.Flags().Changed("name") {
					prof.DisplayName = name
				}
				if cmd.Flags().Changed("style") {
					parsed, ok := project.ParseStyle(style)
					if !ok {
						return fmt.Errorf("unknown style %q", style)
					}
					prof.Style = parsed
				}
				if cmd.Flags().Changed("discipline") {
					parsed, ok := project.ParseDiscipline(discipline)
					if !ok {
						return fmt.Errorf("unknown discipline %q", discipline)
					}
					prof.Discipline = parsed
				}
				if cmd.Flags().Changed("citation-style") {
					parsed, ok := project.ParseCitationStyle(citationStyle)
					if !ok {
						return fmt.Errorf("unknown citation style %q", citationStyle)
					}
					prof.CitationStyle = parsed
				}
				if cmd.Flags().Changed("length") {
					prof.PreferredLength = length
				}

				if err := env.profiles.Save(ctx, prof); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Profile updated")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&style, "style", "", "Preferred writing style")
	cmd.Flags().StringVar(&discipline, "discipline", "", "Default academic discipline")
	cmd.Flags().StringVar(&citationStyle, "citation-style", "", "Preferred citation style")
	cmd.Flags().IntVar(&length, "length", 0, "Preferred section length in words")
	return cmd
}
