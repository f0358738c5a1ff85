package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, filepath.Join(root, "a.hcl"))
	touch(t, filepath.Join(root, "nested", "b.hcl"))
	touch(t, filepath.Join(root, "nested", "c.txt"))

	files, err := FindFilesByExtension(root, ".hcl")

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.hcl"),
		filepath.Join(root, "nested", "b.hcl"),
	}, files)
}

func TestFindFilesByExtension_EmptyExtensionPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { _, _ = FindFilesByExtension(t.TempDir(), "") })
}

func TestFindFiles(t *testing.T) {
	t.Parallel()

	// Arrange
	root := t.TempDir()
	dir := filepath.Join(root, "dir")
	touch(t, filepath.Join(dir, "one.hcl"))
	touch(t, filepath.Join(dir, "two.hcl"))
	single := filepath.Join(root, "single.hcl")
	touch(t, single)
	other := filepath.Join(root, "notes.md")
	touch(t, other)

	// Act
	files, err := FindFiles([]string{
		single,
		dir,
		filepath.Join(dir, "one.hcl"),
		other,
		filepath.Join(root, "missing"),
	}, ".hcl")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{
		single,
		filepath.Join(dir, "one.hcl"),
		filepath.Join(dir, "two.hcl"),
	}, files)
}

func TestFindFiles_Glob(t *testing.T) {
	t.Parallel()

	// Arrange
	root := t.TempDir()
	touch(t, filepath.Join(root, "a", "one.hcl"))
	touch(t, filepath.Join(root, "a", "b", "two.hcl"))
	touch(t, filepath.Join(root, "a", "b", "skip.txt"))
	touch(t, filepath.Join(root, "c", "three.hcl"))

	// Act
	files, err := FindFiles([]string{filepath.Join(root, "a", "**", "*")}, ".hcl")

	// Assert
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a", "one.hcl"),
		filepath.Join(root, "a", "b", "two.hcl"),
	}, files)
}

func TestFindFiles_BadPattern(t *testing.T) {
	t.Parallel()

	_, err := FindFiles([]string{filepath.Join(t.TempDir(), "[")}, ".hcl")

	require.Error(t, err)
}
