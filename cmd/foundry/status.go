package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cuemby/foundry/pkg/host"
	"github.com/cuemby/foundry/pkg/registry"
	"github.com/spf13/cobra"
)

type statusOutput struct {
	CurrentVersion int    `json:"current_version"`
	BasePath       string `json:"base_path"`
	BackupPath     string `json:"backup_path"`
}

var statusCmd = &cobra.Command{
	Use:   "status <base_dir>",
	Short: "Print the current install version and registry paths as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := args[0]
		reg := newCatalog()
		dirs := registry.New(base, reg)
		h := host.NewLocal()

		ctx := context.Background()
		version, err := dirs.CurrentInstall(ctx, h)
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}

		out := statusOutput{
			CurrentVersion: version,
			BasePath:       dirs.Base,
			BackupPath:     dirs.BackupPath(""),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}
