// Command orgdrill drills the exercises and definitions written in org-mode
// notes, scheduling each by how well it was recalled.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/conorfennell/orgdrill/internal/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	err := a.command().ExecuteContext(ctx)
	a.close()
	if err == nil {
		return
	}

	if errors.Is(err, domain.ErrLocatorUnavailable) {
		fmt.Fprintf(os.Stderr, "orgdrill: %v\nInstall ripgrep, set rg_path, or use --locator walk.\n", err)
		os.Exit(2)
	}
	fmt.Fprintf(os.Stderr, "orgdrill: %v\n", err)
	os.Exit(1)
}
