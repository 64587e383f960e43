package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/conorfennell/orgdrill/internal/domain"
	"github.com/conorfennell/orgdrill/internal/schedule"
	"github.com/conorfennell/orgdrill/internal/storage"
)

func (a *app) historyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show the ratings of an item and when it is due next",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q", domain.ErrInvalidID, args[0])
			}

			db, err := storage.Open(a.cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()

			ratings, err := db.RatingsFor(cmd.Context(), id.String())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(ratings) == 0 {
				fmt.Fprintf(out, "%s has never been rated; it is due now\n", id)
				return nil
			}
			for _, r := range ratings {
				fmt.Fprintf(out, "%s  %s\n", r.Date.Local().Format(time.DateTime), r.Outcome)
			}

			streak := schedule.CurrentStreak(ratings)
			fmt.Fprintf(out, "streak: %d\n", streak.Successes)
			next := schedule.NextDue(ratings)
			switch {
			case next.Equal(schedule.Epoch):
				fmt.Fprintln(out, "due: now")
			case !next.After(a.now()):
				fmt.Fprintf(out, "due: now (since %s)\n", next.Local().Format(time.DateTime))
			default:
				fmt.Fprintf(out, "due: %s\n", next.Local().Format(time.DateTime))
			}
			return nil
		},
	}
}
