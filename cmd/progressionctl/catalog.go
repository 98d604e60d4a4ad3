package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/critiquest/critiquest/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect progression catalogs",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a catalog file against the schema and semantic rules",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path = cfg.CatalogPath
		}

		c, err := catalog.Load(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "catalog %s is valid\n", path)
		fmt.Fprintf(out, "  version:    %s\n", c.Version())
		fmt.Fprintf(out, "  levels:     %d\n", c.Levels().MaxLevel())
		fmt.Fprintf(out, "  milestones: %d\n", len(c.Milestones()))
		if _, ok := c.DailyReward(); ok {
			fmt.Fprintln(out, "  daily reward configured")
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogValidateCmd)
}
