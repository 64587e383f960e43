// Package locate finds candidate documents by coarse text matching. Results
// may contain false positives; the extractor decides what is an item.
package locate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/conorfennell/orgdrill/internal/domain"
)

// DefaultExtensions are the document extensions searched when none are given.
var DefaultExtensions = []string{".org"}

// Config holds the locator configuration.
type Config struct {
	// RipgrepPath is the path to the rg executable.
	RipgrepPath string
	// Extensions restricts matches to files with these extensions.
	Extensions []string
}

// DefaultConfig returns the default locator configuration.
func DefaultConfig() *Config {
	return &Config{
		RipgrepPath: "rg",
		Extensions:  DefaultExtensions,
	}
}

// Ripgrep delegates the search to the rg binary.
type Ripgrep struct {
	config *Config
}

// NewRipgrep creates a ripgrep-backed locator.
func NewRipgrep(config *Config) *Ripgrep {
	if config == nil {
		config = DefaultConfig()
	}
	return &Ripgrep{config: config}
}

// Check reports domain.ErrLocatorUnavailable when rg cannot be found.
func (r *Ripgrep) Check() error {
	if _, err := exec.LookPath(r.config.RipgrepPath); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrLocatorUnavailable, r.config.RipgrepPath, err)
	}
	return nil
}

// Locate returns the sorted, deduplicated files under root containing any of
// the needles.
func (r *Ripgrep) Locate(ctx context.Context, root string, needles []string) ([]string, error) {
	if err := r.Check(); err != nil {
		return nil, err
	}
	needles = nonEmpty(needles)
	if len(needles) == 0 {
		return nil, nil
	}

	args := []string{"--files-with-matches", "--fixed-strings", "--no-messages"}
	for _, ext := range extensions(r.config.Extensions) {
		args = append(args, "--iglob", "*"+ext)
	}
	for _, n := range needles {
		args = append(args, "-e", n)
	}
	args = append(args, "--", root)

	cmd := exec.CommandContext(ctx, r.config.RipgrepPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// rg exits 1 when nothing matched.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil, nil
		}
		slog.Warn("rg command failed", "error", err, "stderr", stderr.String())
		return nil, fmt.Errorf("rg command failed: %w", err)
	}

	var files []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, filepath.Clean(line))
		}
	}
	return dedupe(files), nil
}

// Walk searches the tree itself. It is slower than Ripgrep but has no
// external requirements.
type Walk struct {
	config *Config
}

// NewWalk creates a walking locator.
func NewWalk(config *Config) *Walk {
	if config == nil {
		config = DefaultConfig()
	}
	return &Walk{config: config}
}

// Locate returns the sorted files under root containing any of the needles.
// Extensions match case-insensitively. Unreadable files and directories are
// logged and left out.
func (w *Walk) Locate(ctx context.Context, root string, needles []string) ([]string, error) {
	needles = nonEmpty(needles)
	if len(needles) == 0 {
		return nil, nil
	}
	exts := extensions(w.config.Extensions)

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// Like rg --no-messages: leave out what cannot be read.
			slog.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !slices.Contains(exts, strings.ToLower(filepath.Ext(d.Name()))) {
			return nil
		}
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			slog.Warn("skipping unreadable file", "path", path, "error", readErr)
			return nil
		}
		for _, n := range needles {
			if bytes.Contains(content, []byte(n)) {
				files = append(files, filepath.Clean(path))
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", root, err)
	}
	return dedupe(files), nil
}

func extensions(exts []string) []string {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

func nonEmpty(needles []string) []string {
	var out []string
	for _, n := range needles {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

func dedupe(files []string) []string {
	slices.Sort(files)
	return slices.Compact(files)
}
