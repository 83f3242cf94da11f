package coveragerc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// buildTree lays out a package checkout under a temp root.
func buildTree(t *testing.T, paths []string) string {
	t.Helper()
	root := t.TempDir()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("# stub\n"), 0o644))
	}
	return root
}

func TestSelectFilesOmitsAndPrunes(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	root := buildTree(t, []string{
		".git/config",
		"docs/guide.md",
		"naima/core.py",
		"naima/models.py",
		"naima/version.py",
		"naima/tests/test_io.py",
		"naima/tests/data/spectrum.dat",
		"naima/extern/validator.py",
		"setup.py",
	})

	m, err := NewMatcher([]string{"*tests*", "*extern*", "*version*"})
	require.NoError(t, err)

	got, err := SelectFiles(root, m)
	require.NoError(t, err)

	want := []string{
		"docs/guide.md",
		"naima/core.py",
		"naima/models.py",
		"setup.py",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SelectFiles mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectFilesNilMatcher(t *testing.T) {
	root := buildTree(t, []string{
		".git/config",
		"pkg/a.py",
		"pkg/sub/b.py",
		"top.py",
	})

	got, err := SelectFiles(root, nil)
	require.NoError(t, err)

	want := []string{"pkg/a.py", "pkg/sub/b.py", "top.py"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SelectFiles mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectFilesPrunesTopLevelDir(t *testing.T) {
	root := buildTree(t, []string{
		"docs/a.md",
		"docs/deep/b.md",
		"pkg/core.py",
	})

	m, err := NewMatcher([]string{"docs"})
	require.NoError(t, err)

	got, err := SelectFiles(root, m)
	require.NoError(t, err)

	want := []string{"pkg/core.py"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SelectFiles mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectFilesMissingRoot(t *testing.T) {
	_, err := SelectFiles(filepath.Join(t.TempDir(), "nope"), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "read root")
}

func TestSelectFilesSkipsSymlinks(t *testing.T) {
	root := buildTree(t, []string{"pkg/core.py"})

	link := filepath.Join(root, "alias")
	if err := os.Symlink(filepath.Join(root, "pkg"), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got, err := SelectFiles(root, nil)
	require.NoError(t, err)

	want := []string{"pkg/core.py"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SelectFiles mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectFilesDeepPruningStops(t *testing.T) {
	// A matched directory must be pruned, not merely have its files
	// filtered, so a huge omitted subtree is never walked.
	root := buildTree(t, []string{
		"pkg/core.py",
		"pkg/tests/test_a.py",
		"pkg/tests/nested/deeper/test_b.py",
	})

	m, err := NewMatcher([]string{"*tests*"})
	require.NoError(t, err)

	got, err := SelectFiles(root, m)
	require.NoError(t, err)

	want := []string{"pkg/core.py"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SelectFiles mismatch (-want +got):\n%s", diff)
	}
}
