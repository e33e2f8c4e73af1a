package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/joshuapare/vtree/internal/config"
	"github.com/joshuapare/vtree/internal/logger"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	configPath string
	logLevel   string

	cfg       = config.Default()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "vtreectl",
	Short: "Load, lay out and inspect virtual trees from the command line",
	Long: `vtreectl drives the vtree engine against a JSON tree document or a
SQLite adjacency database. It expands, lays out, selects and exports rows
the same way an interactive host would, which makes it handy for checking
data sources and tuning configuration.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file (default: nearest .vtree/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Enable file logging at this level")
}

// setup loads configuration and starts logging before any subcommand runs.
func setup(*cobra.Command, []string) error {
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadOptional("")
	}
	if err != nil {
		return err
	}

	opts := logger.Options{
		Enabled: cfg.Log.Enabled,
		LogDir:  cfg.Log.Dir,
		Level:   logger.ParseLevel(cfg.Log.Level),
	}
	if logLevel != "" {
		opts.Enabled, opts.Level = true, logger.ParseLevel(logLevel)
	}
	if verbose && !quiet {
		opts.Enabled, opts.Output = true, os.Stderr
	}
	logCloser, err = logger.Init(opts)
	return err
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
