package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"plume/internal/adaptive"
	"plume/internal/ai"
)

func newSuggestCommand(cmdCtx *commandContext) *cobra.Command {
	var useAI bool

	cmd := &cobra.Command{
		Use:   "suggest <section-id>",
		Short: "Preview suggestions for a section without writing anything",
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
				proj, err := env.store.GetProject(ctx, section.ProjectID)
				if err != nil {
					return err
				}
				target, ok := phaseOf(proj.Status).Next()
				if !ok {
					target = phaseOf(proj.Status)
				}

				suggestions, err := env.engine.Suggest(ctx, adaptive.Input{
					UserID:      proj.OwnerID,
					Discipline:  proj.Discipline,
					Style:       proj.Style,
					Section:     section,
					TargetPhase: target,
				})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if useAI {
					if env.aiSvc == nil {
						fmt.Fprintln(out, "No AI provider configured; showing local suggestions only")
					} else {
						enriched, err := env.aiSvc.Suggest(ctx, ai.SuggestionRequest{
							ProjectTitle: proj.Title,
							DocType:      proj.DocType,
							Discipline:   proj.Discipline,
							Style:        proj.Style,
							Section:      section,
							TargetPhase:  target,
						})
						if err != nil {
							fmt.Fprintf(out, "AI provider unavailable (%v); showing local suggestions only\n", err)
						} else {
							suggestions.ContentHints = append(suggestions.ContentHints, enriched.ContentHints...)
							suggestions.WritingPrompts = append(suggestions.WritingPrompts, enriched.WritingPrompts...)
							suggestions.StyleAdvice = append(suggestions.StyleAdvice, enriched.StyleAdvice...)
							suggestions.CitationCues = append(suggestions.CitationCues, enriched.CitationCues...)
						}
					}
				}

				if suggestions.Empty() {
					fmt.Fprintln(out, "No suggestions for this section right now")
					return nil
				}
				printSuggestions(cmd, suggestions)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&useAI, "ai", false, "Also query the configured AI provider")
	return cmd
}

func newAcceptCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "accept <section-id> <kind> <index>",
		Short: "Accept a pending suggestion into the section body",
		Long: "Accept moves one suggestion (content_hints, writing_prompts, style_advice,\n" +
			"or citation_cues, addressed by its bracketed index from `plume section show`)\n" +
			"into the section body and records the acceptance for future tuning.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSectionID(args[0])
			if err != nil {
				return err
			}
			index, err := parseSuggestionIndex(args[2])
			if err != nil {
				return err
			}
			return cmdCtx.withEnv(cmd, func(ctx context.Context, env *appEnv) error {
				section, err := env.manager.AcceptSuggestion(ctx, id, args[1], index)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Accepted %s[%d] into section %d (revision %d)\n",
					args[1], index, section.ID, section.Revision)
				return nil
			})
		},
	}
}

func newRejectCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reject <section-id> <kind> <index>",
		Short: "Dismiss a pending suggestion",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSectionID(args[0])
			if err != nil {
				return err
			}
			index, err := parseSuggestionIndex(args[2])
			if err != nil {
				return err
			}
			return cmdCtx.withEnv(cmd, func(ctx context.Context, env *appEnv) error {
				section, err := env.manager.RejectSuggestion(ctx, id, args[1], index)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rejected %s[%d] from section %d\n",
					args[1], index, section.ID)
				return nil
			})
		},
	}
}

func parseSuggestionIndex(arg string) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid suggestion index %q", arg)
	}
	return index, nil
}
