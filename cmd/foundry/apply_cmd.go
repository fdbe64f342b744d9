package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/cuemby/foundry/pkg/apply"
	"github.com/cuemby/foundry/pkg/differ"
	"github.com/cuemby/foundry/pkg/elog"
	"github.com/cuemby/foundry/pkg/graph"
	"github.com/cuemby/foundry/pkg/host"
	"github.com/cuemby/foundry/pkg/registry"
	"github.com/cuemby/foundry/pkg/verify"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply <base_dir> <target_version>",
	Short: "Diff the current install against target_version and apply the difference",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := args[0]
		target, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("apply: invalid target version %q: %w", args[1], err)
		}
		ignoreVerification, _ := cmd.Flags().GetBool("ignore-verification")
		askOverwrite, _ := cmd.Flags().GetBool("ask-overwrite")

		reg := newCatalog()
		dirs := registry.New(base, reg)
		h := host.NewLocal()
		ctx := context.Background()
		log := elog.WithComponent("cli")

		currentVersion, err := dirs.CurrentInstall(ctx, h)
		if err != nil {
			return fmt.Errorf("apply: %w", err)
		}
		prev, err := dirs.GetInstall(ctx, h, currentVersion)
		if err != nil {
			return fmt.Errorf("apply: load current install %d: %w", currentVersion, err)
		}

		if !ignoreVerification {
			report, err := verify.Run(ctx, h, prev)
			if err != nil {
				return fmt.Errorf("apply: pre-verify: %w", err)
			}
			if !report.OK() {
				return fmt.Errorf("apply: current install %d has %d verification failures; pass --ignore-verification to proceed anyway", currentVersion, len(report.Failures))
			}
		}

		targetApplied, err := dirs.GetInstall(ctx, h, target)
		if err != nil {
			return fmt.Errorf("apply: load target install %d: %w", target, err)
		}
		// The differ compares a previous Applied graph against a next
		// Pending graph; a target install is itself Applied, so it is
		// re-cast to Pending for the purpose of this comparison — it
		// describes what should exist next, same as a builder's output.
		targetPending := graph.NewFromApplied(targetApplied)

		cmp := differ.Compare(prev, targetPending)
		seq, err := cmp.GenerateApplicationSequence()
		if err != nil {
			return fmt.Errorf("apply: generate sequence: %w", err)
		}

		ask := apply.AlwaysRefuse
		if askOverwrite {
			ask = promptOverwrite
		}

		_, err = apply.Run(ctx, h, seq, ask)
		if err != nil {
			log.Error().Err(err).Msg("apply failed, reverting")
			var runErr *apply.RunError
			if errors.As(err, &runErr) {
				if revertErr := apply.Revert(ctx, h, seq, runErr.Info, prev); revertErr != nil {
					return fmt.Errorf("apply: failed (%v) and revert also failed: %w", err, revertErr)
				}
			}
			return fmt.Errorf("apply: failed, reverted to version %d: %w", currentVersion, err)
		}

		if err := dirs.SetCurrent(ctx, h, target); err != nil {
			return fmt.Errorf("apply: advance current to %d: %w", target, err)
		}

		fmt.Printf("applied version %d\n", target)
		return nil
	},
}

func init() {
	applyCmd.Flags().Bool("ignore-verification", false, "Skip verifying the current install before applying")
	applyCmd.Flags().Bool("ask-overwrite", false, "Prompt on stdin before overwriting pre-existing resources")
}
