package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/cuemby/foundry/pkg/apply"
	"github.com/cuemby/foundry/pkg/builder"
	"github.com/cuemby/foundry/pkg/differ"
	"github.com/cuemby/foundry/pkg/elog"
	"github.com/cuemby/foundry/pkg/graph"
	"github.com/cuemby/foundry/pkg/host"
	"github.com/cuemby/foundry/pkg/registry"
	"github.com/cuemby/foundry/pkg/verify"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build <base_dir>",
	Short: "Verify the current install, run the builder, diff, apply, and advance current",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := args[0]
		ignoreVerification, _ := cmd.Flags().GetBool("ignore-verification")
		askOverwrite, _ := cmd.Flags().GetBool("ask-overwrite")
		manifestPath, _ := cmd.Flags().GetString("manifest")

		reg := newCatalog()
		dirs := registry.New(base, reg)
		h := host.NewLocal()
		ctx := context.Background()
		log := elog.WithComponent("cli")

		currentVersion, err := dirs.CurrentInstall(ctx, h)
		if err != nil {
			return fmt.Errorf("build: %w", err)
		}
		prev, err := dirs.GetInstall(ctx, h, currentVersion)
		if err != nil {
			return fmt.Errorf("build: load current install %d: %w", currentVersion, err)
		}

		if !ignoreVerification {
			report, err := verify.Run(ctx, h, prev)
			if err != nil {
				return fmt.Errorf("build: pre-verify: %w", err)
			}
			if !report.OK() {
				return fmt.Errorf("build: current install %d has %d verification failures; pass --ignore-verification to proceed anyway", currentVersion, len(report.Failures))
			}
		}

		next, err := dirs.FreshInstall(ctx, h)
		if err != nil {
			return fmt.Errorf("build: %w", err)
		}

		bctx := builder.New(ctx, h, reg, dirs, next)
		if manifestPath != "" {
			data, err := os.ReadFile(manifestPath)
			if err != nil {
				return fmt.Errorf("build: read manifest: %w", err)
			}
			manifest, err := builder.ParseManifest(data)
			if err != nil {
				return fmt.Errorf("build: %w", err)
			}
			if _, err := manifest.Apply(bctx); err != nil {
				return fmt.Errorf("build: apply manifest: %w", err)
			}
		} else if err := runBuilder(bctx); err != nil {
			return fmt.Errorf("build: builder: %w", err)
		}
		pending := bctx.Graph()

		cmp := differ.Compare(prev, pending)
		seq, err := cmp.GenerateApplicationSequence()
		if err != nil {
			return fmt.Errorf("build: generate sequence: %w", err)
		}

		ask := apply.AlwaysRefuse
		if askOverwrite {
			ask = promptOverwrite
		}

		result, err := apply.Run(ctx, h, seq, ask)
		if err != nil {
			log.Error().Err(err).Msg("apply failed, reverting")
			var runErr *apply.RunError
			if errors.As(err, &runErr) {
				if revertErr := apply.Revert(ctx, h, seq, runErr.Info, prev); revertErr != nil {
					return fmt.Errorf("build: apply failed (%v) and revert also failed: %w", err, revertErr)
				}
			}
			return fmt.Errorf("build: apply failed, reverted to version %d: %w", currentVersion, err)
		}

		applied := graph.ToApplied(pending, result.PreExisting)
		if err := dirs.WriteInstall(ctx, h, next, applied); err != nil {
			return fmt.Errorf("build: persist version %d: %w", next, err)
		}
		if err := dirs.SetCurrent(ctx, h, next); err != nil {
			return fmt.Errorf("build: advance current to %d: %w", next, err)
		}

		fmt.Printf("built and applied version %d\n", next)
		return nil
	},
}

func init() {
	buildCmd.Flags().Bool("ignore-verification", false, "Skip verifying the current install before building")
	buildCmd.Flags().Bool("ask-overwrite", false, "Prompt on stdin before overwriting pre-existing resources")
	buildCmd.Flags().String("manifest", "", "Path to a YAML manifest describing the package to build (default: built-in demo package)")
}
