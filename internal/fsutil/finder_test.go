package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, fsys afero.Fs, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, afero.WriteFile(fsys, p, []byte("model \"M\" {}\n"), 0o644))
	}
}

func TestFindFilesByExtension(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys,
		filepath.Join("models", "b.hcl"),
		filepath.Join("models", "a.hcl"),
		filepath.Join("models", "nested", "c.hcl"),
		filepath.Join("models", "notes.txt"),
	)

	got, err := FindFilesByExtension(fsys, "models", ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("models", "a.hcl"),
		filepath.Join("models", "b.hcl"),
		filepath.Join("models", "nested", "c.hcl"),
	}, got)
}

func TestFindFilesByExtension_EmptyExtensionPanics(t *testing.T) {
	assert.Panics(t, func() { _, _ = FindFilesByExtension(afero.NewMemMapFs(), ".", "") })
}

func TestCollectFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	a := filepath.Join("models", "a.hcl")
	b := filepath.Join("models", "b.hcl")
	writeFiles(t, fsys, a, b, "readme.md")

	got, err := CollectFiles(fsys, ".hcl", a, "models", "readme.md")
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, got, "duplicates are dropped and order is kept")

	_, err = CollectFiles(fsys, ".hcl", "missing.hcl")
	require.ErrorIs(t, err, os.ErrNotExist)
}
