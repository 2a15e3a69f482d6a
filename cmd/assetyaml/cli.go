package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"assetyaml/internal/config"
)

// ExitError is an error carrying the process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// invocation is a parsed command line.
type invocation struct {
	cfg     *config.Config
	command string
	args    []string
	debug   bool
}

const usage = `
assetyaml - inspect item identities of YAML asset documents.

Usage:
  assetyaml [options] <command> <path...>

Paths may be files or directories; directories are searched for files
with the configured extensions.

Commands:
  check   lint the item ids of documents; exits with 1 on errors
  ids     print the path and id of every item
  cid     print the content id of files
  watch   check documents again whenever they change
  fmt     rewrite documents with the configured indentation
  config  print the effective configuration

Options:
`

var commands = []string{"check", "ids", "cid", "watch", "fmt", "config"}

// parse processes command-line arguments. It reports true when the program
// should exit cleanly, as after -h.
func parse(args []string, output io.Writer) (*invocation, bool, error) {
	flagSet := flag.NewFlagSet("assetyaml", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usage)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to a TOML configuration file.")
	logLevelFlag := flagSet.String("log-level", "", "Logging level: 'debug', 'info', 'warn' or 'error'.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format: 'text' or 'json'.")
	indentFlag := flagSet.Int("indent", 0, "Spaces per nesting level of written documents.")
	debugFlag := flagSet.Bool("debug", false, "Dump the full report of the ids command.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}

		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	inv := &invocation{command: flagSet.Arg(0), args: flagSet.Args()[1:], debug: *debugFlag}

	if !slices.Contains(commands, inv.command) {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q: must be one of %s", inv.command, strings.Join(commands, ", "))}
	}

	if inv.command != "config" && len(inv.args) == 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("%s needs at least one path", inv.command)}
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	// Flags override the file.
	if *logLevelFlag != "" {
		cfg.LogLevel = strings.ToLower(*logLevelFlag)
	}

	if *logFormatFlag != "" {
		cfg.LogFormat = strings.ToLower(*logFormatFlag)
	}

	if *indentFlag != 0 {
		cfg.Indent = *indentFlag
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	inv.cfg = cfg
	slog.Debug("Arguments parsed.", "command", inv.command, "paths", len(inv.args))

	return inv, false, nil
}

// newLogger builds the logger described by cfg.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, _ := cfg.Level()
	opts := &slog.HandlerOptions{Level: level}

	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}
