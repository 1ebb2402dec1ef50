package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"plume/internal/phases"
	"plume/internal/sediment"
	"plume/internal/workflow"
)

// phaseOf maps a project status back to the phase currently being worked.
func phaseOf(status workflow.ProjectStatus) workflow.Phase {
	switch status {
	case workflow.ProjectInDrafting:
		return workflow.PhaseDrafting
	case workflow.ProjectInRevision:
		return workflow.PhaseRevision
	case workflow.ProjectFinalized:
		return workflow.PhaseFinalization
	default:
		return workflow.PhaseStoryboard
	}
}

func moduleFor(phase workflow.Phase, env *appEnv) phases.Module {
	switch phase {
	case workflow.PhaseDrafting:
		return phases.NewDrafting(env.manager, env.store)
	case workflow.PhaseRevision:
		return phases.NewRevision(env.manager, env.store)
	case workflow.PhaseFinalization:
		return phases.NewFinalization(env.manager, env.store)
	default:
		return phases.NewStoryboard(env.manager, env.store)
	}
}

func newAdvanceCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "advance <project-id>",
		Short: "Complete the current phase and transfer context into the next",
		Long: "Advance runs the sedimentation transfer out of the project's current\n" +
			"phase: it snapshots the project, enriches every eligible section with\n" +
			"suggestions carried from the completed phase, and moves the project\n" +
			"forward. In finalization it freezes the sections instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withEnv(cmd, func(ctx context.Context, env *appEnv) error {
				proj, err := env.store.GetProject(ctx, args[0])
				if err != nil {
					return err
				}

				phase := phaseOf(proj.Status)
				module := moduleFor(phase, env)
				if err := module.Prepare(ctx, proj); err != nil {
					return err
				}

				payload, err := module.Complete(ctx, proj)
				if err != nil {
					if notifyErr := env.notifier.NotifyError(ctx, err, "advance"); notifyErr != nil {
						env.logger.Warn("send error notification", "error", notifyErr)
					}
					return err
				}

				printPayload(cmd, payload)
				notifyAdvance(ctx, env, proj.Title, payload)
				return nil
			})
		},
	}
}

func printPayload(cmd *cobra.Command, payload *sediment.Payload) {
	out := cmd.OutOrStdout()

	if payload.From == payload.To {
		if payload.Migrated == 0 {
			fmt.Fprintln(out, "All sections were already finalized")
		} else {
			fmt.Fprintf(out, "Finalized %d %s\n", payload.Migrated,
				plural(payload.Migrated, "section", "sections"))
		}
	} else if payload.NoOp() {
		fmt.Fprintf(out, "Transfer %s to %s already applied; nothing to do\n", payload.From, payload.To)
	} else {
		fmt.Fprintf(out, "Transferred %d %s from %s to %s", payload.Migrated,
			plural(payload.Migrated, "section", "sections"), payload.From, payload.To)
		if payload.SkippedCount > 0 {
			fmt.Fprintf(out, " (%d already ahead)", payload.SkippedCount)
		}
		fmt.Fprintln(out)
	}

	if len(payload.Sections) > 0 {
		rows := make([][]string, 0, len(payload.Sections))
		for _, delta := range payload.Sections {
			state := "enriched"
			if delta.Skipped {
				state = "skipped"
			}
			rows = append(rows, []string{
				fmt.Sprintf("%d", delta.Ordinal+1),
				truncateCell(delta.Title, 36),
				state,
				fmt.Sprintf("%d", suggestionCount(delta.Applied)),
			})
		}
		table := renderTable(
			[]string{"#", "Section", "Result", "Suggestions"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
		)
		fmt.Fprintln(out, table)
	}

	if len(payload.Document) > 0 {
		words := 0
		for _, section := range payload.Document {
			words += len(splitWords(section.Body))
		}
		fmt.Fprintf(out, "Document assembled: %d %s, %d words. Run `plume export` to write it out.\n",
			len(payload.Document), plural(len(payload.Document), "section", "sections"), words)
	}

	for _, warning := range payload.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", warning)
	}
	if payload.PostVersionID != "" {
		fmt.Fprintf(out, "Snapshot recorded: %s\n", payload.PostVersionID)
	}
}

func notifyAdvance(ctx context.Context, env *appEnv, title string, payload *sediment.Payload) {
	var err error
	switch {
	case payload.From == payload.To && payload.Migrated > 0:
		words := 0
		for _, section := range payload.Document {
			words += len(splitWords(section.Body))
		}
		err = env.notifier.NotifyFinalized(ctx, title, len(payload.Document), words)
	case !payload.NoOp():
		err = env.notifier.NotifyTransition(ctx, title, payload.From, payload.To)
	}
	if err != nil {
		env.logger.Warn("send notification", "error", err)
	}
}

func newReadinessCommand(cmdCtx *commandContext) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "readiness <project-id>",
		Short: "Report whether the project can advance to the next phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withEnv(cmd, func(ctx context.Context, env *appEnv) error {
				proj, err := env.store.GetProject(ctx, args[0])
				if err != nil {
					return err
				}

				targetPhase, ok := phaseOf(proj.Status).Next()
				if target != "" {
					targetPhase, ok = workflow.ParsePhase(target)
					if !ok {
						return fmt.Errorf("unknown phase %q", target)
					}
				} else if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Project is already finalized")
					return nil
				}

				report, err := env.manager.Readiness(ctx, proj.ID, targetPhase)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, heading(out, fmt.Sprintf("Readiness for %s to %s", report.From, report.Target)))
				rows := make([][]string, 0, len(report.Requirements))
				for _, req := range report.Requirements {
					rows = append(rows, []string{req.Description, yesNo(req.Met)})
				}
				table := renderTable(
					[]string{"Requirement", "Met"},
					rows,
					[]columnAlignment{alignLeft, alignLeft},
				)
				fmt.Fprintln(out, table)
				if report.Ready {
					fmt.Fprintln(out, "Ready: run `plume advance` to transfer")
				} else {
					fmt.Fprintln(out, "Not ready yet")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Phase to evaluate against (defaults to the next phase)")
	return cmd
}
