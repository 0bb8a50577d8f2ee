// Package main is the entry point of the richdoc converter.
//
// richdoc reads a document as markdown, HTML or serialized JSON and writes
// it in any of those formats. Lua scripts listed in the configuration can
// register commands that run on the document before it is written.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/dshills/richdoc/internal/builtin"
	"github.com/dshills/richdoc/internal/config"
	"github.com/dshills/richdoc/internal/doc"
	"github.com/dshills/richdoc/internal/editor"
	"github.com/dshills/richdoc/internal/logging"
	"github.com/dshills/richdoc/internal/plugin/lua"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var errUsage = errors.New("usage")

// options are the parsed command line flags.
type options struct {
	from       string
	to         string
	pretty     bool
	configPath string
	logLevel   string
	commands   []string
	watch      bool
	input      string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return 0
	case err != nil:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	var loadOpts []config.LoadOption
	if opts.configPath != "" {
		loadOpts = append(loadOpts, config.WithFile(opts.configPath))
	}
	cfg, err := config.Load(loadOpts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to load config: %v\n", err)
		return 1
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	src, err := readInput(opts.input, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	out, err := convert(cfg, logger, opts, src)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, out)

	if opts.watch {
		return watch(opts, loadOpts, logger, src, stdout, stderr)
	}
	return 0
}

// watch converts src again whenever the config file changes, until the
// process is interrupted.
func watch(opts options, loadOpts []config.LoadOption, logger *zap.Logger, src string, stdout, stderr io.Writer) int {
	w, err := config.Watch(func(cfg *config.Config) {
		out, err := convert(cfg, logger, opts, src)
		if err != nil {
			logger.Error("conversion failed", zap.Error(err))
			return
		}
		fmt.Fprintln(stdout, out)
	}, logger, loadOpts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to watch config: %v\n", err)
		return 1
	}
	defer func() { _ = w.Close() }()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	<-signals
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	var showVersion bool

	fs := flag.NewFlagSet("richdoc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.from, "from", "md", "Input format (md, html, json)")
	fs.StringVar(&opts.to, "to", "html", "Output format (md, html, json)")
	fs.BoolVar(&opts.pretty, "pretty", false, "Indent JSON output")
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.Func("exec", "Dispatch a script command as name or name=payload (repeatable)", func(s string) error {
		opts.commands = append(opts.commands, s)
		return nil
	})
	fs.BoolVar(&opts.watch, "watch", false, "Convert again whenever the config file changes")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "richdoc - rich text document converter\n\n")
		fmt.Fprintf(stderr, "Usage: richdoc [options] [file]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  richdoc notes.md                    Render markdown as HTML\n")
		fmt.Fprintf(stderr, "  richdoc -from html -to md page.html Convert HTML to markdown\n")
		fmt.Fprintf(stderr, "  richdoc -to json -pretty < notes.md Serialize the document tree\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if showVersion {
		fmt.Fprintf(stderr, "richdoc %s\nCommit: %s\nBuilt: %s\n", version, commit, date)
		return opts, flag.ErrHelp
	}
	for _, f := range []string{opts.from, opts.to} {
		switch f {
		case "md", "html", "json":
		default:
			return opts, fmt.Errorf("%w: unknown format %q", errUsage, f)
		}
	}
	if opts.watch && opts.configPath == "" {
		return opts, fmt.Errorf("%w: -watch needs -config", errUsage)
	}
	switch fs.NArg() {
	case 0:
	case 1:
		opts.input = fs.Arg(0)
	default:
		return opts, fmt.Errorf("%w: at most one input file", errUsage)
	}
	return opts, nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

// convert loads src into a new editor, runs the requested script commands
// and exports the result.
func convert(cfg *config.Config, logger *zap.Logger, opts options, src string) (string, error) {
	plugins := []editor.Plugin{}
	if len(cfg.Plugins.Lua) > 0 {
		plugins = append(plugins, lua.Plugin())
	}
	e, err := builtin.New(
		editor.WithConfig(cfg),
		editor.WithLogger(logger),
		editor.WithPlugins(plugins...),
	)
	if err != nil {
		return "", err
	}
	defer e.Close()

	switch opts.from {
	case "md":
		err = e.FromMarkdown(src)
	case "html":
		err = e.FromHTML(src)
	case "json":
		err = e.FromJSON([]byte(src))
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", opts.from, err)
	}

	for _, c := range opts.commands {
		name, payload, _ := strings.Cut(c, "=")
		if !e.Document().HasHandlers(name) {
			return "", fmt.Errorf("%w: no handler for command %q", errUsage, name)
		}
		handled, err := editor.Dispatch(e, doc.NewCommand[string](name), payload)
		if err != nil {
			return "", fmt.Errorf("command %s: %w", name, err)
		}
		logger.Debug("command dispatched", zap.String("command", name), zap.Bool("handled", handled))
	}

	switch opts.to {
	case "md":
		return e.ToMarkdown()
	case "html":
		return e.ToHTML()
	default:
		b, err := e.ToJSON(opts.pretty)
		return strings.TrimRight(string(b), "\n"), err
	}
}
