package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/critiquest/critiquest/internal/domain"
)

type showOutput struct {
	State      *domain.ProgressionState      `json:"state"`
	Level      *domain.LevelProgress         `json:"level"`
	Milestones []domain.ProgressionMilestone `json:"milestones"`
}

var showCmd = &cobra.Command{
	Use:   "show <userID>",
	Short: "Print a user's progression state, level progress and milestones",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		eng, err := openEngine(ctx, cfg)
		if err != nil {
			return err
		}
		defer eng.Close(ctx)

		userID := args[0]
		state, err := eng.service.GetProgression(ctx, userID)
		if err != nil {
			return err
		}
		if state == nil {
			return fmt.Errorf("no progression stored for user %q", userID)
		}

		level, err := eng.service.GetLevelProgress(ctx, userID)
		if err != nil {
			return err
		}
		milestones, err := eng.service.GetMilestones(ctx, userID)
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), showOutput{State: state, Level: level, Milestones: milestones})
	},
}
