package main

import (
	"context"
	"fmt"

	"github.com/cuemby/foundry/pkg/elog"
	"github.com/cuemby/foundry/pkg/host"
	"github.com/cuemby/foundry/pkg/registry"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init <base_dir>",
	Short: "Initialize a fresh registry at base_dir",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := args[0]
		reg := newCatalog()
		dirs := registry.New(base, reg)
		h := host.NewLocal()

		ctx := context.Background()
		if err := dirs.Initialize(ctx, h); err != nil {
			return fmt.Errorf("init: %w", err)
		}
		elog.WithComponent("cli").Info().Str("base", base).Msg("registry initialized")
		fmt.Printf("initialized registry at %s (version 0)\n", base)
		return nil
	},
}
