package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cat, err := cfg.Catalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range cat.Names() {
				spec, _ := cat.Lookup(name)
				fmt.Fprintf(out, "%-12s %s\n", name, spec.Kind())
			}
			return nil
		},
	}
}
