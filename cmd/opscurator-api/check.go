package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"opscurator/internal/executor"
)

var errCheckFailed = errors.New("solution did not pass")

func newCheckCmd() *cobra.Command {
	var (
		dir   string
		labID string
	)

	cmd := &cobra.Command{
		Use:   "check --lab <id> <file>",
		Short: "Evaluate a solution file against a lab offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			labs, err := loadCatalog(dir)
			if err != nil {
				return err
			}

			code, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			for _, lab := range labs {
				if lab.ID != labID {
					continue
				}
				ok, output := executor.Evaluate(lab, string(code))
				fmt.Fprintln(cmd.OutOrStdout(), output)
				if !ok {
					return fmt.Errorf("%s: %w", lab.ID, errCheckFailed)
				}
				return nil
			}
			return fmt.Errorf("lab %q not found in catalog", labID)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Catalog directory (default: built-in catalog)")
	cmd.Flags().StringVar(&labID, "lab", "", "Lab id to check against")
	cmd.MarkFlagRequired("lab")
	return cmd
}
