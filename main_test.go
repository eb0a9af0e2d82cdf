package conveyor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// writeFile creates path with content, making parent directories as needed.
func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// collect drains Lines into a single string.
func collect(t *testing.T, p Part) string {
	t.Helper()
	var out string
	for line, err := range p.Lines() {
		require.NoError(t, err)
		out += line
	}
	return out
}

// failingLinker fails Link for any target in fail and otherwise behaves like SymlinkLinker.
type failingLinker struct {
	SymlinkLinker
	fail map[string]bool
}

func (l failingLinker) Link(origin, at string) error {
	if l.fail[filepath.Base(at)] {
		return os.ErrPermission
	}
	return l.SymlinkLinker.Link(origin, at)
}
