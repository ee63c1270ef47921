package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"codebase-docgen/internal/config"
	"codebase-docgen/internal/metrics"
	"codebase-docgen/internal/pagestore"
	"codebase-docgen/internal/publisher"
	"codebase-docgen/internal/summarizer"
	"codebase-docgen/pkg/logger"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Summarize the source tree and publish it as a page hierarchy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.ValidatePublish(); err != nil {
			return err
		}
		appLogger, err := newLogger(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runPublish(ctx, cfg, appLogger)
	},
}

// runPublish wires the summarizer and page store into one publisher run.
func runPublish(ctx context.Context, cfg config.Config, appLogger logger.Logger) error {
	reg := prometheus.NewRegistry()
	m := metrics.NewPublishMetrics(reg)

	llm, err := summarizer.NewLLMClient(cfg.Summarizer, nil, appLogger, m)
	if err != nil {
		return fmt.Errorf("failed to initialize summarizer: %w", err)
	}
	store, err := pagestore.NewClient(cfg.PageStore, appLogger, m)
	if err != nil {
		return fmt.Errorf("failed to initialize page store: %w", err)
	}

	pub := publisher.New(cfg, store, summarizer.New(llm, appLogger, m), appLogger, m)
	_, runErr := pub.Run(ctx)

	if cfg.Publish.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.Publish.MetricsFile, reg); err != nil {
			appLogger.Warn("failed to write metrics to %s: %v", cfg.Publish.MetricsFile, err)
		}
	}
	if runErr != nil {
		return fmt.Errorf("publish failed: %w", runErr)
	}
	return nil
}
