package coveragerc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".coveragerc")

	require.NoError(t, WriteFileAtomic(path, []byte("[run]\nsource = naima\n")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[run]\nsource = naima\n", string(got))
}

func TestWriteFileAtomicReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".coveragerc")

	require.NoError(t, WriteFileAtomic(path, []byte("old\n")))
	require.NoError(t, WriteFileAtomic(path, []byte("new\n")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(got))
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "deeper", ".coveragerc")

	err := WriteFileAtomic(path, []byte("x"))
	require.Error(t, err)
}

func TestWriteFileAtomicLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".coveragerc")

	require.NoError(t, WriteFileAtomic(path, []byte("content\n")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the target file remains after a commit")
	assert.Equal(t, ".coveragerc", entries[0].Name())
}
