package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/scoring"
)

var todoCmd = &cobra.Command{
	Use:   "todo [TODO.md]",
	Short: "Build a task batch from a markdown TODO list and score it",
	Long: `Todo parses open "- [ ]" items from a markdown file into tasks.

Priority emoji set importance (🔴 10, 🟠 8, 🟡 5, 🟢 3), "due:YYYY-MM-DD"
sets the due date, "~2h" sets the estimate, and "after:<id>" adds a
dependency. Task ids are "<section>-<n>". Items under a "## Done" section
and checked items are skipped.

With --api the batch is posted to a running server, otherwise it is scored
in-process.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTodo,
}

func init() {
	todoCmd.Flags().StringP("strategy", "s", "", "weighting strategy (default from config)")
	todoCmd.Flags().String("api", "", "base URL of a running prioritizer, e.g. http://localhost:8600")
	todoCmd.Flags().Bool("dry-run", false, "print the task batch without scoring it")
	rootCmd.AddCommand(todoCmd)
}

var priorityImportance = map[string]int{
	"🔴": 10, // P0
	"🟠": 8,  // P1
	"🟡": 5,  // P2
	"🟢": 3,  // P3
}

var (
	dueRe   = regexp.MustCompile(`\bdue:(\d{4}-\d{2}-\d{2})\b`)
	hoursRe = regexp.MustCompile(`~(\d+(?:\.\d+)?)h\b`)
	afterRe = regexp.MustCompile(`\bafter:([\w.-]+)`)
	slugRe  = regexp.MustCompile(`[^a-z0-9]+`)
)

func runTodo(cmd *cobra.Command, args []string) error {
	path := "TODO.md"
	if len(args) == 1 {
		path = args[0]
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open todo list: %w", err)
	}
	defer f.Close()

	tasks, err := parseTodo(f)
	if err != nil {
		return err
	}

	strategy, _ := cmd.Flags().GetString("strategy")
	apiURL, _ := cmd.Flags().GetString("api")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if dryRun {
		return printJSON(cmd.OutOrStdout(), map[string]any{"tasks": tasks})
	}
	if apiURL != "" {
		return postBatch(cmd.Context(), cmd.OutOrStdout(), apiURL, tasks, strategy)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rt, err := buildRuntime(cmd.Context(), cfg, newLogger(cfg, os.Stderr))
	if err != nil {
		return err
	}
	defer rt.Close()
	return printJSON(cmd.OutOrStdout(), rt.engine.Analyze(cmd.Context(), tasks, strategy))
}

// parseTodo turns the open checklist items of a markdown file into tasks.
func parseTodo(r io.Reader) ([]scoring.Task, error) {
	var (
		tasks   []scoring.Task
		section = "todo"
		skip    bool
		counts  = map[string]int{}
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "#") {
			header := strings.ToLower(strings.TrimSpace(strings.TrimLeft(line, "# ")))
			skip = header == "done"
			section = strings.Trim(slugRe.ReplaceAllString(header, "-"), "-")
			if section == "" {
				section = "todo"
			}
			continue
		}
		if skip || !strings.HasPrefix(line, "- [ ] ") {
			continue
		}

		text := strings.TrimPrefix(line, "- [ ] ")
		counts[section]++
		t := scoring.Task{ID: fmt.Sprintf("%s-%d", section, counts[section])}

		for emoji, imp := range priorityImportance {
			if strings.Contains(text, emoji) {
				v := imp
				t.Importance = &v
				text = strings.ReplaceAll(text, emoji, "")
				break
			}
		}
		if m := dueRe.FindStringSubmatch(text); m != nil {
			t.DueDate = m[1]
			text = strings.Replace(text, m[0], "", 1)
		}
		if m := hoursRe.FindStringSubmatch(text); m != nil {
			h, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				t.EstimatedHours = &h
			}
			text = strings.Replace(text, m[0], "", 1)
		}
		for _, m := range afterRe.FindAllStringSubmatch(text, -1) {
			t.Dependencies = append(t.Dependencies, m[1])
		}
		text = afterRe.ReplaceAllString(text, "")

		t.Title = strings.Join(strings.Fields(text), " ")
		tasks = append(tasks, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan todo list: %w", err)
	}
	if tasks == nil {
		tasks = []scoring.Task{}
	}
	return tasks, nil
}

func postBatch(ctx context.Context, out io.Writer, apiURL string, tasks []scoring.Task, strategy string) error {
	payload := map[string]any{"tasks": tasks}
	if strategy != "" {
		payload["strategy"] = strategy
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(apiURL, "/")+"/api/tasks/analyze", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("post batch: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, err = io.Copy(out, resp.Body)
	return err
}
