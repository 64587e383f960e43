package gitsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func commitFile(t *testing.T, repo *git.Repository, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add(name); err != nil {
		t.Fatal(err)
	}
	_, err = wt.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestSync(t *testing.T) {
	ctx := context.Background()
	upstreamDir := t.TempDir()
	upstream, err := git.PlainInit(upstreamDir, false)
	if err != nil {
		t.Fatalf("PlainInit() returned an unexpected error: %v", err)
	}
	commitFile(t, upstream, upstreamDir, "notes.org", "* First\n")

	local := filepath.Join(t.TempDir(), "notes")

	t.Run("clones when missing", func(t *testing.T) {
		if err := Sync(ctx, upstreamDir, local, nil); err != nil {
			t.Fatalf("Sync() returned an unexpected error: %v", err)
		}
		if _, err := os.Stat(filepath.Join(local, "notes.org")); err != nil {
			t.Errorf("Expected notes.org in the clone, but got %v", err)
		}
	})

	t.Run("pulls when present", func(t *testing.T) {
		commitFile(t, upstream, upstreamDir, "more.org", "* Second\n")
		if err := Sync(ctx, upstreamDir, local, nil); err != nil {
			t.Fatalf("Sync() returned an unexpected error: %v", err)
		}
		if _, err := os.Stat(filepath.Join(local, "more.org")); err != nil {
			t.Errorf("Expected more.org after pull, but got %v", err)
		}
	})

	t.Run("already up to date is not an error", func(t *testing.T) {
		if err := Sync(ctx, upstreamDir, local, nil); err != nil {
			t.Errorf("Expected no error, but got %v", err)
		}
	})

	t.Run("path that is not a repo", func(t *testing.T) {
		if err := Sync(ctx, upstreamDir, t.TempDir(), nil); err == nil {
			t.Error("Expected an error for a plain directory")
		}
	})
}
