package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/batch"
	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/scoring"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Score a task batch read from a file or stdin",
	Long: `Analyze reads a JSON task batch, either a bare array or {"tasks": [...]},
and prints the scored result. With --top it prints only the best N tasks;
with --matrix it prints the Eisenhower quadrants.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringP("strategy", "s", "", "weighting strategy, overrides the batch's own (default from config)")
	analyzeCmd.Flags().Int("top", 0, "print only the top N suggestions")
	analyzeCmd.Flags().Bool("matrix", false, "print the Eisenhower matrix")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open tasks file: %w", err)
		}
		defer f.Close()
		in = f
	}
	tasks, strategy, err := readTasks(in)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("strategy") {
		strategy, _ = cmd.Flags().GetString("strategy")
	}

	rt, err := buildRuntime(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	top, _ := cmd.Flags().GetInt("top")
	matrix, _ := cmd.Flags().GetBool("matrix")

	a := rt.engine.Analyze(cmd.Context(), tasks, strategy)
	switch {
	case matrix:
		return printJSON(cmd.OutOrStdout(), scoring.BuildMatrix(a))
	case top > 0:
		return printJSON(cmd.OutOrStdout(), scoring.TopSuggestions(a, top))
	default:
		return printJSON(cmd.OutOrStdout(), a)
	}
}

// readTasks decodes a bare JSON task list or a {"tasks": [...], "strategy": "..."}
// batch. The returned strategy is empty for a bare list.
func readTasks(r io.Reader) ([]scoring.Task, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read tasks: %w", err)
	}
	tasks, strategy, err := batch.Decode(data, "")
	if err != nil {
		return nil, "", fmt.Errorf("parse tasks: %w", err)
	}
	return tasks, strategy, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
