package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "dashboard.yaml"

// Global flag values.
var (
	configPath string
	verbose    bool
	quiet      bool
	noColor    bool
	dataFlag   string
)

// cfg is resolved once per invocation in PersistentPreRunE.
var cfg Config

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive sports-car price and performance dashboard",
	Long: `dashboard serves an interactive view over a CSV of sports cars
(make, model, year, horsepower, price, 0-60 mph time). Filter by make,
model and year; the charts follow the selection.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		explicit := cmd.Flags().Changed("config")
		c, err := loadConfig(configPath, explicit)
		if err != nil {
			return withExitCode(ExitInvalidArgs, err)
		}
		if cmd.Flags().Changed("data") {
			c.Data = dataFlag
		}
		if err := c.Validate(); err != nil {
			return withExitCode(ExitInvalidArgs, err)
		}
		cfg = c
		if noColor {
			color.NoColor = true
		}
		setupLogging(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel, verbose, quiet)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&dataFlag, "data", "", "dataset location: a CSV path or s3://bucket/key")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(graphSyncCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupLogging installs the default slog logger. --quiet and --verbose win
// over the configured level.
func setupLogging(w io.Writer, format, level string, verbose, quiet bool) *slog.Logger {
	lvl, err := parseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	switch {
	case quiet:
		lvl = slog.LevelWarn
	case verbose:
		lvl = slog.LevelDebug
	}

	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if format == "text" {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}
