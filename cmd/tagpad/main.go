// Package main is tagpad, a terminal notepad with @mention and #topic
// tags backed by an entity directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/taggable/internal/config"
	"github.com/dshills/taggable/internal/directory"
	"github.com/dshills/taggable/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	ConfigPath    string
	DirectoryPath string
	LogLevel      string
	LogFile       string
	Batch         bool
	Color         bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logOut, closeLog, err := logOutput(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()

	logCfg := cfg.LoggerConfig()
	logCfg.Output = logOut
	log := logging.New(logCfg)
	logging.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dir, err := openDirectory(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	interactive := !opts.Batch &&
		term.IsTerminal(int(os.Stdin.Fd())) &&
		term.IsTerminal(int(os.Stdout.Fd()))

	if !interactive {
		color := opts.Color && term.IsTerminal(int(os.Stdout.Fd()))
		if err := runBatch(ctx, cfg, dir, os.Stdin, os.Stdout, color); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	report, err := runPad(ctx, cfg, dir, log)
	if err != nil && !errors.Is(err, errQuit) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if report != nil {
		_, _ = os.Stdout.Write(report)
	}
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml or .yaml)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.DirectoryPath, "directory", "", "Path to the entity directory JSON file")
	flag.StringVar(&opts.DirectoryPath, "d", "", "Path to the entity directory JSON file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.LogFile, "log-file", "", "Write logs to this file instead of stderr")
	flag.BoolVar(&opts.Batch, "batch", false, "Read canonical text from stdin and print segments")
	flag.BoolVar(&opts.Color, "color", true, "Colorize JSON output on a terminal")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tagpad - tag people and topics in plain text\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tagpad [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tagpad -d people.json                 Edit interactively\n")
		fmt.Fprintf(os.Stderr, "  echo 'Hi @ada' | tagpad -d people.json  Print segments as JSON\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("tagpad %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.LogLevel != "" && !logging.ValidLevel(opts.LogLevel) {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	return opts
}

func loadConfig(opts options) (config.Config, error) {
	var paths []string
	if opts.ConfigPath != "" {
		paths = append(paths, opts.ConfigPath)
	}
	cfg, err := config.Load(paths)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}

	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.DirectoryPath != "" {
		cfg.Directory.Path = opts.DirectoryPath
	}
	return cfg, nil
}

// logOutput keeps the terminal clear of log lines in interactive mode by
// discarding them unless a log file is given.
func logOutput(opts options) (io.Writer, func(), error) {
	if opts.LogFile == "" {
		if opts.Batch || !term.IsTerminal(int(os.Stdout.Fd())) {
			return os.Stderr, func() {}, nil
		}
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// scoringWeights applies the configured bonuses and penalties on top of the
// default weights.
func scoringWeights(sc config.ScoringConfig) directory.Weights {
	w := directory.DefaultWeights()
	w.Consecutive = sc.Consecutive
	w.WordBoundary = sc.WordBoundary
	w.Prefix = sc.Prefix
	w.ExactPrefix = sc.ExactPrefix
	w.Gap = sc.Gap
	w.Leading = sc.Leading
	return w
}

func openDirectory(ctx context.Context, cfg config.Config, log *logging.Logger) (*directory.Directory, error) {
	dir := directory.New(
		directory.WithKinds(cfg.Kinds()),
		directory.WithLimit(cfg.Lookup.Limit),
		directory.WithCacheSize(cfg.Lookup.CacheSize),
		directory.WithScorer(scoringWeights(cfg.Lookup.Scoring)),
		directory.WithLogger(log.WithComponent("directory")),
	)
	if cfg.Directory.Path == "" {
		log.Warn("no directory file configured; lookups will find nothing")
		return dir, nil
	}
	if err := dir.Load(cfg.Directory.Path); err != nil {
		return nil, err
	}

	if cfg.Directory.Watch {
		go func() {
			if err := dir.Watch(ctx, directory.WatchConfig{}); err != nil {
				log.Warn("directory watch stopped: %v", err)
			}
		}()
	}
	return dir, nil
}
