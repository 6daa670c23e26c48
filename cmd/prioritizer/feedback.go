package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/store"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record whether a strategy's ranking was helpful",
	RunE:  runFeedback,
}

func init() {
	feedbackCmd.Flags().StringP("strategy", "s", "", "strategy the feedback applies to (default from config)")
	feedbackCmd.Flags().Bool("helpful", false, "the ranking was helpful")
	feedbackCmd.Flags().String("task-id", "", "task the feedback refers to")
	_ = feedbackCmd.MarkFlagRequired("helpful")
	rootCmd.AddCommand(feedbackCmd)
}

func runFeedback(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)

	rt, err := buildRuntime(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	strategy, _ := cmd.Flags().GetString("strategy")
	helpful, _ := cmd.Flags().GetBool("helpful")
	taskID, _ := cmd.Flags().GetString("task-id")

	if strategy == "" {
		strategy = rt.engine.Strategies().Fallback()
	}
	if _, _, ok := rt.engine.Strategies().Lookup(strategy); !ok {
		return fmt.Errorf("unknown strategy %q", strategy)
	}

	fb := &store.Feedback{TaskID: taskID, Strategy: strategy, WasHelpful: helpful}
	entry, err := rt.adaptive.Record(cmd.Context(), fb)
	if err != nil {
		return err
	}
	_, weights, _ := rt.engine.Weights(cmd.Context(), strategy)

	return printJSON(cmd.OutOrStdout(), map[string]any{
		"feedback_id": fb.ID,
		"strategy":    strategy,
		"ledger":      entry,
		"weights":     weights,
	})
}
