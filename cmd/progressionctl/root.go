package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/critiquest/critiquest/internal/config"
	"github.com/critiquest/critiquest/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "progressionctl",
	Short:         "Operate the CritiQuest progression engine",
	Long:          "progressionctl validates catalogs, inspects user progression and drains the offline queue using the same configuration as the server.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = "debug"
		}
		logger.InitLoggerWithWriter(logger.NewConfig(level, "text", "progressionctl", "", "", false), cmd.ErrOrStderr())
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log at debug level")
	rootCmd.PersistentFlags().String("catalog", "", "Path to the catalog file (overrides CATALOG_PATH)")
	rootCmd.PersistentFlags().String("queue", "", "Path to the offline queue database (overrides OFFLINE_QUEUE_PATH)")

	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(deadLettersCmd)
}

// loadConfig reads the environment and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadForTools()
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("catalog"); p != "" {
		cfg.CatalogPath = p
	}
	if p, _ := cmd.Flags().GetString("queue"); p != "" {
		cfg.OfflineQueuePath = p
	}
	return cfg, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
