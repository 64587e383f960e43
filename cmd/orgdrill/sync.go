package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/conorfennell/orgdrill/internal/gitsource"
)

func (a *app) syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Clone or pull --git-url into --root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.sync(cmd.Context(), cmd.ErrOrStderr())
		},
	}
}

func (a *app) sync(ctx context.Context, progress io.Writer) error {
	if a.cfg.GitURL == "" {
		return errors.New("git_url is not set")
	}
	return gitsource.Sync(ctx, a.cfg.GitURL, a.cfg.Root, progress)
}
