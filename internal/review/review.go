// Package review runs a drill over a tree of org files: it finds the files
// that mention the item types, extracts their items, keeps the due ones and
// hands them to a session one file at a time.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/conorfennell/orgdrill/internal/domain"
	"github.com/conorfennell/orgdrill/internal/extract"
	"github.com/conorfennell/orgdrill/internal/fingerprint"
	"github.com/conorfennell/orgdrill/internal/outline"
	"github.com/conorfennell/orgdrill/internal/session"
)

// Locator finds the files under root containing any of needles.
type Locator interface {
	Locate(ctx context.Context, root string, needles []string) ([]string, error)
}

// Reader parses one file into an outline.
type Reader interface {
	Read(path string) (*outline.Node, error)
}

// ReaderFunc adapts a function such as parser.ParseFile to Reader.
type ReaderFunc func(path string) (*outline.Node, error)

func (f ReaderFunc) Read(path string) (*outline.Node, error) { return f(path) }

// DueChecker decides whether an item is due at now.
type DueChecker interface {
	IsDue(ctx context.Context, itemID string, now time.Time) (bool, error)
}

// Reviewer presents items to the learner.
type Reviewer interface {
	Review(ctx context.Context, items []domain.Item) ([]session.Result, error)
}

// Config is what a Runner needs to know about the run.
type Config struct {
	Root      string
	Types     extract.Types
	KeepGoing bool
}

// Needles are the strings a file must contain to be worth reading.
func (c Config) Needles() []string {
	return []string{c.Types.Exercise, c.Types.Definition}
}

// Deps are the collaborators of a Runner. Reviewer may be nil for a Runner
// only used for Plan.
type Deps struct {
	Locator  Locator
	Reader   Reader
	Due      DueChecker
	Reviewer Reviewer
	Now      func() time.Time
}

// Batch is the due items of one file, in leaves-first order.
type Batch struct {
	Path  string
	Items []domain.Item
}

// Runner ties the pipeline together.
type Runner struct {
	cfg  Config
	deps Deps
}

// NewRunner creates a runner. A nil Now means time.Now.
func NewRunner(cfg Config, deps Deps) *Runner {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Runner{cfg: cfg, deps: deps}
}

// Run reviews the due items file by file until they run out or the learner
// quits. On error the report accumulated so far is returned with it.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r.deps.Reviewer == nil {
		return nil, errors.New("review: no reviewer configured")
	}
	report := &Report{}
	err := r.walk(ctx, report, func(b Batch) (bool, error) {
		results, err := r.deps.Reviewer.Review(ctx, b.Items)
		report.record(results)
		if err != nil {
			return false, fmt.Errorf("failed to review %s: %w", b.Path, err)
		}
		return report.Quit, nil
	})
	if report.Quit {
		report.Logf("quit")
	}
	return report, err
}

// Plan runs the same pipeline without presenting anything and returns the
// due items per file.
func (r *Runner) Plan(ctx context.Context) ([]Batch, *Report, error) {
	var batches []Batch
	report := &Report{}
	err := r.walk(ctx, report, func(b Batch) (bool, error) {
		batches = append(batches, b)
		return false, nil
	})
	return batches, report, err
}

// walk calls visit with the due items of each located file. visit returns
// true to stop early.
func (r *Runner) walk(ctx context.Context, report *Report, visit func(Batch) (bool, error)) error {
	files, err := r.deps.Locator.Locate(ctx, r.cfg.Root, r.cfg.Needles())
	if err != nil {
		return fmt.Errorf("failed to locate files under %s: %w", r.cfg.Root, err)
	}
	files = slices.Sorted(slices.Values(files))
	report.Logf("found %d candidate files under %s", len(files), r.cfg.Root)

	seen := make(map[string]seenItem)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		items, err := r.items(path, report)
		if err != nil {
			return err
		}
		if items == nil {
			continue
		}
		report.Files++
		items = r.dedupe(path, items, seen, report)
		report.Items += len(items)

		due, err := r.due(ctx, items)
		if err != nil {
			return err
		}
		report.Due += len(due)
		report.Logf("%s: %d items, %d due", path, len(items), len(due))
		if len(due) == 0 {
			continue
		}

		stop, err := visit(Batch{Path: path, Items: due})
		if err != nil || stop {
			return err
		}
	}
	return nil
}

// items reads and extracts one file. A nil slice with a nil error means the
// file was skipped.
func (r *Runner) items(path string, report *Report) ([]domain.Item, error) {
	doc, err := r.deps.Reader.Read(path)
	if err != nil {
		report.FilesSkipped++
		report.Logf("skipped %s: %v", path, err)
		slog.Warn("skipping unreadable file", "path", path, "error", err)
		return nil, nil
	}

	items, err := extract.Items(doc, r.cfg.Types)
	var malformed *domain.MalformedItemError
	switch {
	case err == nil:
		if items == nil {
			items = []domain.Item{}
		}
		return items, nil
	case errors.As(err, &malformed) && r.cfg.KeepGoing:
		report.FilesSkipped++
		report.Logf("skipped %s: %v", path, err)
		slog.Warn("skipping file with malformed item", "path", path, "error", err)
		return nil, nil
	default:
		report.Logf("stopped at %s: %v", path, err)
		return nil, fmt.Errorf("%s: %w", path, err)
	}
}

type seenItem struct {
	path string
	item domain.Item
}

// dedupe drops items whose ID was already seen in this run.
func (r *Runner) dedupe(path string, items []domain.Item, seen map[string]seenItem, report *Report) []domain.Item {
	kept := items[:0:0]
	for _, item := range items {
		id := item.Ref().ID
		first, dup := seen[id]
		if !dup {
			seen[id] = seenItem{path: path, item: item}
			kept = append(kept, item)
			continue
		}

		report.Duplicates++
		relation := "conflicts with"
		if fingerprint.Same(first.item, item) {
			relation = "copies"
		}
		report.Logf("duplicate id %s in %s (%q) %s %s (%q); ignored",
			id, path, item.Ref().Subject, relation, first.path, first.item.Ref().Subject)
		slog.Warn("duplicate item id", "id", id, "path", path, "first", first.path)
	}
	return kept
}

func (r *Runner) due(ctx context.Context, items []domain.Item) ([]domain.Item, error) {
	now := r.deps.Now()
	var due []domain.Item
	for _, item := range items {
		ok, err := r.deps.Due.IsDue(ctx, item.Ref().ID, now)
		if err != nil {
			return nil, err
		}
		if ok {
			due = append(due, item)
		}
	}
	return due, nil
}
