package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "opscurator-api",
		Short:         "OpsCurator lab platform API",
		Long:          `Serves the OpsCurator DevOps lab catalog, simulated lab runs and learner progress over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "opscurator.yaml", "Path to the YAML config file")

	root.AddCommand(
		newServeCmd(&configPath),
		newCatalogCmd(),
		newCheckCmd(),
		newInitConfigCmd(&configPath),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
