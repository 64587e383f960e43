package locate

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/orgdrill/internal/domain"
)

func writeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"a.org":          "* A\n:PROPERTIES:\n:TYPE: ex-type\n:END:\n",
		"sub/b.org":      ":TYPE: def-type\n",
		"sub/c.org":      "nothing to see",
		"sub/d.md":       ":TYPE: ex-type\n",
		"sub/deep/E.ORG": "ex-type and def-type",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestWalkLocate(t *testing.T) {
	root := writeTree(t)
	w := NewWalk(nil)

	files, err := w.Locate(context.Background(), root, []string{"ex-type", "def-type", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.org"),
		filepath.Join(root, "sub/b.org"),
		filepath.Join(root, "sub/deep/E.ORG"),
	}, files)

	files, err = NewWalk(&Config{Extensions: []string{"md"}}).Locate(context.Background(), root, []string{"ex-type"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "sub/d.md")}, files)

	files, err = w.Locate(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = w.Locate(context.Background(), filepath.Join(root, "missing"), []string{"x"})
	assert.Error(t, err)
}

func TestWalkSkipsUnreadableDirectories(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	root := writeTree(t)
	locked := filepath.Join(root, "sub", "deep")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	files, err := NewWalk(nil).Locate(context.Background(), root, []string{"ex-type", "def-type"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.org"),
		filepath.Join(root, "sub/b.org"),
	}, files)
}

func TestRipgrepUnavailable(t *testing.T) {
	r := NewRipgrep(&Config{RipgrepPath: "definitely-not-rg-binary"})
	_, err := r.Locate(context.Background(), t.TempDir(), []string{"x"})
	assert.ErrorIs(t, err, domain.ErrLocatorUnavailable)
}

func TestRipgrepLocate(t *testing.T) {
	if _, err := exec.LookPath("rg"); err != nil {
		t.Skip("rg not installed")
	}
	root := writeTree(t)
	r := NewRipgrep(nil)

	files, err := r.Locate(context.Background(), root, []string{"ex-type", "def-type"})
	require.NoError(t, err)
	assert.Contains(t, files, filepath.Join(root, "a.org"))
	assert.Contains(t, files, filepath.Join(root, "sub/b.org"))
	assert.NotContains(t, files, filepath.Join(root, "sub/c.org"))
	assert.Contains(t, files, filepath.Join(root, "sub/deep/E.ORG"), "extensions match regardless of case")
	assert.NotContains(t, files, filepath.Join(root, "sub/d.md"))

	files, err = r.Locate(context.Background(), root, []string{"no-such-needle"})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".org"}, extensions(nil))
	assert.Equal(t, []string{".org", ".md"}, extensions([]string{"ORG", " .md ", ""}))
}
