package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"codebase-docgen/internal/config"
	"codebase-docgen/pkg/logger"
)

const appName = "codebase-docgen"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configFile string
	logLevel   string
)

// SetVersion sets the version info for --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (%s, commit: %s)", version, formatBuildDate(date), commit)
}

// formatBuildDate converts an epoch timestamp to a readable date.
func formatBuildDate(epoch string) string {
	ts, err := strconv.ParseInt(epoch, 10, 64)
	if err != nil {
		return epoch
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02")
}

var rootCmd = &cobra.Command{
	Use:          appName,
	Short:        "Greeting service and AI source documentation publisher",
	Long:         `Serves a small greeting endpoint, and publishes AI-generated documentation for a source tree as a Confluence page hierarchy.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "optional config file (yaml, json or toml); environment variables take precedence")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(publishCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// newLogger writes to stdout, plus a rotated file when a log directory is configured.
func newLogger(cfg config.LogConfig) (logger.Logger, error) {
	if cfg.Dir == "" {
		return logger.NewConsoleLogger(cfg.Level), nil
	}
	return logger.NewLogger(cfg.Dir, cfg.Level, appName)
}
