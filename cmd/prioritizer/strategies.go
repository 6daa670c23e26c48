package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List strategies with their effective weights",
	RunE:  runStrategies,
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}

func runStrategies(cmd *cobra.Command, _ []string) error {
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

	ledger, err := rt.ledger.ListLedger(cmd.Context())
	if err != nil {
		return fmt.Errorf("list ledger: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tURGENCY\tIMPORTANCE\tEFFORT\tDEPENDENCY\tFEEDBACK\tSUCCESS")
	fallback := rt.engine.Strategies().Fallback()
	for _, name := range rt.engine.Strategies().Names() {
		_, w, _ := rt.engine.Weights(cmd.Context(), name)
		e := ledger[name]
		label := name
		if name == fallback {
			label += " *"
		}
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.3f\t%.3f\t%d/%d\t%.0f%%\n",
			label, w.Urgency, w.Importance, w.Effort, w.Dependency, e.Positive, e.Total, e.SuccessRate()*100)
	}
	return tw.Flush()
}
