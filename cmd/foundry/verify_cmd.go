package main

import (
	"context"
	"fmt"

	"github.com/cuemby/foundry/pkg/host"
	"github.com/cuemby/foundry/pkg/registry"
	"github.com/cuemby/foundry/pkg/verify"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <base_dir>",
	Short: "Re-check every requirement in the current install against the host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := args[0]
		fix, _ := cmd.Flags().GetBool("fix")

		reg := newCatalog()
		dirs := registry.New(base, reg)
		h := host.NewLocal()
		ctx := context.Background()

		currentVersion, err := dirs.CurrentInstall(ctx, h)
		if err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		current, err := dirs.GetInstall(ctx, h, currentVersion)
		if err != nil {
			return fmt.Errorf("verify: load current install %d: %w", currentVersion, err)
		}

		report, err := verify.Run(ctx, h, current)
		if err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		if report.OK() {
			fmt.Println("ok")
			return nil
		}

		for _, f := range report.Failures {
			fmt.Printf("invalid: node %d (%s): %v\n", f.Index, f.Requirement.Kind(), f.Err)
		}

		if !fix {
			return fmt.Errorf("verify: %d requirement(s) invalid", len(report.Failures))
		}

		if _, err := verify.Fix(ctx, h, current); err != nil {
			return fmt.Errorf("verify --fix: %w", err)
		}
		fmt.Println("fixed")
		return nil
	},
}

func init() {
	verifyCmd.Flags().Bool("fix", false, "Reconcile drift by re-running a fix sequence derived from the current install")
}
