package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/critiquest/critiquest/internal/bootstrap"
	"github.com/critiquest/critiquest/internal/offline"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay the offline queue once and print the report",
	Long:  "replay drains the offline queue through the progression engine. Run it only while the server is stopped, or against a queue the server does not own.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
			cfg.ReplayWorkers = workers
		}

		eng, err := openEngine(ctx, cfg)
		if err != nil {
			return err
		}
		defer eng.Close(ctx)

		off, err := bootstrap.InitializeOffline(ctx, cfg, eng.service, eng.publisher)
		if err != nil {
			return err
		}
		defer off.Queue.Close()

		report, replayErr := off.Replayer.ReplayAll(ctx)
		if err := printJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
		if replayErr != nil {
			return fmt.Errorf("replay incomplete: %w", replayErr)
		}
		return nil
	},
}

var deadLettersCmd = &cobra.Command{
	Use:   "deadletters [userID]",
	Short: "List offline updates the engine rejected permanently",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		queue, err := offline.OpenSQLiteQueue(ctx, cfg.OfflineQueuePath)
		if err != nil {
			return err
		}
		defer queue.Close()

		userID := ""
		if len(args) == 1 {
			userID = args[0]
		}
		dead, err := queue.DeadLetters(ctx, userID)
		if err != nil {
			return err
		}
		if dead == nil {
			dead = []offline.DeadLetter{}
		}
		return printJSON(cmd.OutOrStdout(), dead)
	},
}

func init() {
	replayCmd.Flags().Int("workers", 0, "Users replayed in parallel (overrides REPLAY_WORKERS)")
}
