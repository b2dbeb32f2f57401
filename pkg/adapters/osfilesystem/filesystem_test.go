package osfilesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystem_WriteAndReadFile(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "out.mp4")

	require.NoError(t, fs.WriteFile(path, []byte("first")))
	require.NoError(t, fs.WriteFile(path, []byte("second")))

	data, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestFileSystem_WriteFileLeavesNoTemporaries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, New().WriteFile(filepath.Join(dir, "a", "b", "out.mp4"), []byte("x")))

	entries, err := os.ReadDir(filepath.Join(dir, "a", "b"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.mp4", entries[0].Name())
}

func TestFileSystem_Exists(t *testing.T) {
	fs := New()
	dir := t.TempDir()
	path := filepath.Join(dir, "packets")

	exists, err := fs.Exists(path)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, fs.MkdirAll(path))
	exists, err = fs.Exists(path)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFileSystem_ReadMissing(t *testing.T) {
	_, err := New().ReadFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
