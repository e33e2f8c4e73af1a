package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/vtree/internal/config"
	"github.com/joshuapare/vtree/internal/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// args is the parsed command line.
type args struct {
	path    string
	debug   bool
	help    bool
	version bool
	config  string
	opts    Options
}

// parseArgs accepts "--name value" and "--name=value" forms.
func parseArgs(list []string) (args, error) {
	var a args
	a.opts.Watch = true
	for i := 0; i < len(list); i++ {
		arg := list[i]
		name, value, hasValue := strings.Cut(arg, "=")
		next := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 >= len(list) {
				return "", fmt.Errorf("%s needs a value", name)
			}
			i++
			return list[i], nil
		}

		var err error
		switch name {
		case "--debug", "-d":
			a.debug = true
		case "--help", "-h":
			a.help = true
		case "--version", "-v":
			a.version = true
		case "--no-watch":
			a.opts.Watch = false
		case "--sort":
			a.opts.Source.Sort = true
		case "--field":
			a.opts.Field, err = next()
		case "--state":
			a.opts.StatePath, err = next()
		case "--lang":
			a.opts.Source.Language, err = next()
		case "--charset":
			a.opts.Source.Charset, err = next()
		case "--config":
			a.config, err = next()
		default:
			if strings.HasPrefix(arg, "-") {
				return a, fmt.Errorf("unknown option %s", arg)
			}
			if a.path != "" {
				return a, fmt.Errorf("unexpected argument %s", arg)
			}
			a.path = arg
		}
		if err != nil {
			return a, err
		}
	}
	return a, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadOptional("")
}

func main() {
	a, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		printUsage()
		os.Exit(1)
	}

	if a.help {
		printHelp()
		os.Exit(0)
	}

	if a.version {
		fmt.Printf("vtreeexplorer %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built: %s\n", date)
		os.Exit(0)
	}

	if a.path == "" {
		printUsage()
		os.Exit(1)
	}

	cfg, err := loadConfig(a.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	a.opts.Config = cfg

	// Initialize logger (must be before any logging calls)
	logOpts := logger.Options{
		Enabled: cfg.Log.Enabled,
		LogDir:  cfg.Log.Dir,
		Level:   logger.ParseLevel(cfg.Log.Level),
	}
	if a.debug {
		logOpts.Enabled, logOpts.Level = true, slog.LevelDebug
	}
	closer, err := logger.Init(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logging: %v\n", err)
	}
	defer closer.Close()

	logger.Info("starting vtreeexplorer", "path", a.path, "debug", a.debug)

	if _, err := os.Stat(a.path); err != nil {
		logger.Error("source not found", "path", a.path, "error", err)
		fmt.Fprintf(os.Stderr, "Error: source not found: %s\n", a.path)
		os.Exit(1)
	}

	m := NewModel(a.path, a.opts)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	finalModel, err := p.Run()
	if err != nil {
		logger.Error("TUI error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}

	if model, ok := finalModel.(Model); ok {
		if err := model.Close(); err != nil {
			logger.Warn("error closing resources", "error", err)
		}
	}

	logger.Info("vtreeexplorer exited normally")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: vtreeexplorer [options] <source>\n")
	fmt.Fprintf(os.Stderr, "Try 'vtreeexplorer --help' for more information.\n")
}

func printHelp() {
	fmt.Println("vtreeexplorer - Interactive tree grid for JSON documents and SQLite trees")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  vtreeexplorer [options] <source>")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Browses a JSON tree document or a SQLite adjacency database as a")
	fmt.Println("  virtualized tree grid. Only the rows on screen are laid out, so large")
	fmt.Println("  trees scroll at constant cost.")
	fmt.Println()
	fmt.Println("  Features:")
	fmt.Println("    - Lazy child loading with per-row policies")
	fmt.Println("    - In-place cell editing (e, Enter to commit, Esc to cancel)")
	fmt.Println("    - Range selection (space, shift+arrows)")
	fmt.Println("    - Moving rows between parents (m, then v / [ / ])")
	fmt.Println("    - Live reload when a JSON document changes on disk")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  --field NAME     Attribute shown in the value column (default: value)")
	fmt.Println("  --state FILE     Restore and save expanded and selected rows")
	fmt.Println("  --sort           Collate children by name (JSON sources)")
	fmt.Println("  --lang TAG       Collation language for --sort")
	fmt.Println("  --charset NAME   JSON charset: utf-8, windows-1252 or latin1")
	fmt.Println("  --config FILE    Config file (default: nearest .vtree/config.yaml)")
	fmt.Println("  --no-watch       Do not reload the document when it changes")
	fmt.Println("  -d, --debug      Enable debug logging to ~/.vtree/logs/")
	fmt.Println("  -h, --help       Show this help message")
	fmt.Println("  -v, --version    Show version information")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  vtreeexplorer catalog.json")
	fmt.Println("  vtreeexplorer --field size --state .tree-state.json inventory.db")
	fmt.Println()
	fmt.Println("For non-interactive operations, use the 'vtreectl' command instead.")
}
