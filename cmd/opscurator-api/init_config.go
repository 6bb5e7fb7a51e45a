package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"opscurator/internal/config"
)

func newInitConfigCmd(configPath *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(*configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", *configPath)
			}
			if err := config.DefaultConfig().Save(*configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", *configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
