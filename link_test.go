package conveyor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymlinkLinker(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	origin := writeFile(t, filepath.Join(dir, "parts", "commands", "base"), "x\n")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "templates", "t", "commands"), 0o755))
	at := filepath.Join(dir, "templates", "t", "commands", "base")

	var l SymlinkLinker
	require.NoError(t, l.Link(origin, at))

	target, err := os.Readlink(at)
	require.NoError(t, err)
	assert.False(t, filepath.IsAbs(target), "links are relative")

	got, err := l.Resolve(at)
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(origin)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.Error(t, l.Link(origin, at), "existing link is not replaced")

	require.NoError(t, l.Unlink(at))
	_, err = os.Lstat(at)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.FileExists(t, origin)
}

func TestSymlinkLinker_UnlinkRefusesRegularFile(t *testing.T) {
	t.Parallel()
	path := writeFile(t, filepath.Join(t.TempDir(), "real"), "x\n")
	require.Error(t, SymlinkLinker{}.Unlink(path))
	assert.FileExists(t, path)
}

func TestSymlinkLinker_ResolveDangling(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	at := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing"), at))
	_, err := SymlinkLinker{}.Resolve(at)
	require.ErrorIs(t, err, os.ErrNotExist)
}
