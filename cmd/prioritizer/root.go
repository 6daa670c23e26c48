package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/config"
	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/scoring"
	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "prioritizer",
	Short:         "Task prioritization scoring engine",
	Long:          "Prioritizer scores task batches by urgency, importance, effort and dependency impact, and adapts its weights from user feedback.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to config file")
}

// loadConfig reads the --config flag shared by every subcommand.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Logging.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// runtime is the scoring stack shared by serve and the one-shot commands.
type runtime struct {
	ledger   store.Store
	adaptive *scoring.Adaptive
	engine   *scoring.Engine
}

func (r *runtime) Close() error {
	return r.ledger.Close()
}

func buildRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*runtime, error) {
	presets := scoring.DefaultPresets()
	for name, w := range cfg.Scoring.Strategies {
		presets[name] = scoring.WeightSet{
			Urgency:    w.Urgency,
			Importance: w.Importance,
			Effort:     w.Effort,
			Dependency: w.Dependency,
		}
	}
	strategies, err := scoring.NewStrategies(presets, cfg.Scoring.DefaultStrategy)
	if err != nil {
		return nil, fmt.Errorf("build strategies: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	ledger, err := store.Open(ctx, store.Options{
		Driver:   cfg.Store.Driver,
		Path:     cfg.Store.Path,
		URL:      cfg.Store.URL,
		RedisURL: cfg.Store.RedisURL,
		Breaker: store.BreakerOptions{
			Enabled:          cfg.Store.Breaker.Enabled,
			FailureThreshold: cfg.Store.Breaker.FailureThreshold,
			MaxRequests:      1,
			Interval:         cfg.BreakerInterval(),
			Timeout:          cfg.BreakerTimeout(),
		},
	}, logger)
	if err != nil {
		return nil, err
	}

	adaptive := scoring.NewAdaptive(ledger, scoring.AdaptiveConfig{
		Warmup: cfg.Scoring.Warmup,
		Nudge:  cfg.Scoring.Nudge,
	}, logger)

	engine := scoring.NewEngine(scoring.EngineConfig{
		Strategies: strategies,
		Adaptive:   adaptive,
		Calendar:   scoring.NewHolidayCalendar(cfg.Scoring.HolidayCountry),
		Clock:      scoring.SystemClock{Location: loc},
		Urgency: scoring.UrgencyPolicy{
			WindowDays: cfg.Scoring.UrgencyWindowDays,
			NoDeadline: cfg.Scoring.NoDeadlineUrgency,
		},
	}, logger)

	return &runtime{ledger: ledger, adaptive: adaptive, engine: engine}, nil
}
