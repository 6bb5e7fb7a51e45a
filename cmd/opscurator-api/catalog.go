package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"opscurator/internal/domain"
)

func newCatalogCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate a lab catalog and print a summary",
		Long:  `Loads every .hcl lab file (the built-in catalog when --dir is not set), validates it and lists the labs by category.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			labs, err := loadCatalog(dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, group := range domain.GroupByCategory(labs) {
				fmt.Fprintf(w, "%s (%d)\n", group.Category, len(group.Labs))
				for _, lab := range group.Labs {
					fmt.Fprintf(w, "  %s\t%s\t%s\t%d min\t%d checks\n",
						lab.ID, lab.Title, lab.Difficulty, lab.EstimatedMinutes, len(lab.Checks))
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "%d labs OK\n", len(labs))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Catalog directory (default: built-in catalog)")
	return cmd
}
