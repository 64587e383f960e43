package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/conorfennell/orgdrill/internal/config"
	"github.com/conorfennell/orgdrill/internal/extract"
	"github.com/conorfennell/orgdrill/internal/locate"
	"github.com/conorfennell/orgdrill/internal/review"
)

// app holds what the commands share once flags are parsed.
type app struct {
	cfg     *config.Config
	now     func() time.Time
	closers []io.Closer

	// terminal reports whether the full-screen display can be used.
	terminal func() bool
}

func newApp() *app {
	return &app{
		now: time.Now,
		terminal: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
		},
	}
}

func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:   "orgdrill",
		Short: "Review due exercises and definitions from org-mode notes",
		Long: `orgdrill searches --root for org files mentioning the configured exercise
and definition types, extracts the items they contain and presents the due ones,
file by file. Each answer is rated and stored in --db; an item recalled n times
in a row waits 2^(n-1) days before it is due again.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runReview,
	}
	config.RegisterFlags(root.PersistentFlags())
	root.AddCommand(a.dueCommand(), a.historyCommand(), a.syncCommand())
	return root
}

// setup loads the configuration and installs the default logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	// Logs would tear the full-screen display, so they go nowhere unless a
	// log file is configured.
	fullScreen := cmd == cmd.Root() && a.fullScreen()
	return a.setupLogging(cmd.ErrOrStderr(), fullScreen)
}

func (a *app) fullScreen() bool {
	return !a.cfg.Plain && a.terminal()
}

func (a *app) setupLogging(stderr io.Writer, fullScreen bool) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", a.cfg.LogLevel, err)
	}

	out := stderr
	switch {
	case a.cfg.LogFile != "":
		f, err := os.OpenFile(a.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.closers = append(a.closers, f)
		out = f
	case fullScreen:
		out = io.Discard
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(out, opts)
	if a.cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(out, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			slog.Warn("failed to close", "error", err)
		}
	}
	a.closers = nil
}

func (a *app) locator() (review.Locator, error) {
	lc := &locate.Config{RipgrepPath: a.cfg.RipgrepPath, Extensions: a.cfg.Extensions}
	if a.cfg.Locator == "walk" {
		return locate.NewWalk(lc), nil
	}
	rg := locate.NewRipgrep(lc)
	if err := rg.Check(); err != nil {
		return nil, err
	}
	return rg, nil
}

func (a *app) reviewConfig() review.Config {
	return review.Config{
		Root: a.cfg.Root,
		Types: extract.Types{
			Exercise:   a.cfg.ExerciseType,
			Definition: a.cfg.DefinitionType,
		},
		KeepGoing: a.cfg.KeepGoing,
	}
}
