package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/conorfennell/orgdrill/internal/parser"
	"github.com/conorfennell/orgdrill/internal/review"
	"github.com/conorfennell/orgdrill/internal/schedule"
	"github.com/conorfennell/orgdrill/internal/session"
	"github.com/conorfennell/orgdrill/internal/storage"
	"github.com/conorfennell/orgdrill/internal/tui"
)

// display is a session display that can also show notices.
type display interface {
	session.Display
	Notify(msg string)
}

func (a *app) runReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if a.cfg.Sync {
		if err := a.sync(ctx, cmd.ErrOrStderr()); err != nil {
			return err
		}
	}

	locator, err := a.locator()
	if err != nil {
		return err
	}
	db, err := storage.Open(a.cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	d, closeDisplay := a.openDisplay(cmd)
	runner := review.NewRunner(a.reviewConfig(), review.Deps{
		Locator:  locator,
		Reader:   review.ReaderFunc(parser.ParseFile),
		Due:      schedule.New(db),
		Reviewer: session.New(d, db, a.now),
		Now:      a.now,
	})

	report, err := runner.Run(ctx)
	if err == nil && report.Presented == 0 {
		d.Notify("Nothing due.")
		wait(ctx, a.cfg.EmptyDelay)
	}
	if cerr := closeDisplay(); cerr != nil {
		slog.Warn("display did not shut down cleanly", "error", cerr)
	}

	if report != nil {
		fmt.Fprintln(cmd.OutOrStdout(), report)
		slog.Info("review finished",
			"files", report.Files,
			"due", report.Due,
			"presented", report.Presented,
			"quit", report.Quit,
		)
	}
	return err
}

func (a *app) openDisplay(cmd *cobra.Command) (display, func() error) {
	keys := tui.NewKeyMap(a.cfg.Keys)
	if !a.fullScreen() {
		d := tui.NewLineDisplay(cmd.InOrStdin(), cmd.OutOrStdout(), keys)
		return d, func() error { return nil }
	}

	d := tui.NewDisplay(keys, tui.DefaultStyles(), tui.NewRenderer(80),
		tea.WithContext(cmd.Context()),
		tea.WithAltScreen(),
	)
	d.Start()
	return d, d.Close
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (a *app) dueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List the items that are due, without reviewing them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			locator, err := a.locator()
			if err != nil {
				return err
			}
			db, err := storage.Open(a.cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()

			runner := review.NewRunner(a.reviewConfig(), review.Deps{
				Locator: locator,
				Reader:  review.ReaderFunc(parser.ParseFile),
				Due:     schedule.New(db),
				Now:     a.now,
			})
			batches, report, err := runner.Plan(ctx)

			out := cmd.OutOrStdout()
			for _, b := range batches {
				fmt.Fprintln(out, b.Path)
				for _, item := range b.Items {
					ref := item.Ref()
					fmt.Fprintf(out, "  %s  %-10s  %s\n", ref.ID, ref.Kind, ref.Subject)
				}
			}
			if report != nil {
				fmt.Fprintf(out, "%d due of %d items in %d files\n", report.Due, report.Items, report.Files)
			}
			return err
		},
	}
}
