package main

import (
	"fmt"
	"os"

	"github.com/cuemby/foundry/pkg/catalog"
	"github.com/cuemby/foundry/pkg/elog"
	"github.com/cuemby/foundry/pkg/kinds"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "foundry <subcommand> <base_dir> [args]",
	Short: "foundry - a declarative host-configuration engine",
	Long: `foundry reifies a builder-supplied set of requirements into a
requirement graph, diffs it against the last-applied state, and drives a
single host from the previous configuration to the new one with bounded,
revertable mutation.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"foundry version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(verifyCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	elog.Init(elog.Config{
		Level:      elog.Level(logLevel),
		JSONOutput: logJSON,
	})
}

// newCatalog builds the registry of requirement kinds this binary's
// universe of graphs is fixed to. Every command that loads or writes a
// graph shares this registry so serialized graphs stay decodable across
// runs of the same binary.
func newCatalog() *catalog.Registry {
	reg := catalog.NewRegistry()
	kinds.Register(reg)
	return reg
}
