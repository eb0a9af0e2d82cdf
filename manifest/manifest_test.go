package manifest

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"testing"

	"github.com/skosovsky/conveyor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

//go:embed testdata/*.yaml
var testdataFS embed.FS

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestParseBytes_ValidSimple(t *testing.T) {
	t.Parallel()
	m, err := ParseBytes([]byte("id: web\nparts:\n  commands: [net]\n"))
	require.NoError(t, err)
	assert.Equal(t, "web", m.ID)
	assert.Equal(t, conveyor.Selection{{Section: conveyor.Commands, Names: []string{"net"}}}, m.Selection())
}

func TestParseBytes_ValidFull(t *testing.T) {
	t.Parallel()
	data, err := testdataFS.ReadFile("testdata/valid_full.yaml")
	require.NoError(t, err)
	m, err := ParseBytes(data)
	require.NoError(t, err)
	assert.Equal(t, "webserver", m.ID)
	assert.Equal(t, "Web server with a hardened post-install", m.Description)
	assert.Equal(t, "commands:network,lang;packages:base,httpd;pre:partitioning;post:hardening,motd;post.header:logging",
		m.Selection().String(), "sections come out in rendering order")
}

func TestParseBytes_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data string
	}{
		{"missing id", "parts:\n  pre: [a]\n"},
		{"bad id", "id: ../up\n"},
		{"unknown section", "id: x\nparts:\n  kernel: [a]\n"},
		{"bad part name", "id: x\nparts:\n  pre: [\"a/b\"]\n"},
		{"bad yaml", "id: x\nparts: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseBytes([]byte(tt.data))
			require.ErrorIs(t, err, conveyor.ErrInvalidManifest)
		})
	}
}

func TestParseFS(t *testing.T) {
	t.Parallel()
	m, err := ParseFS(testdataFS, "testdata/valid_simple.yaml")
	require.NoError(t, err)
	assert.Equal(t, "minimal", m.ID)

	_, err = ParseFS(testdataFS, "testdata/invalid_missing_id.yaml")
	require.ErrorIs(t, err, conveyor.ErrInvalidManifest)
	_, err = ParseFS(testdataFS, "testdata/invalid_section.yaml")
	require.ErrorIs(t, err, conveyor.ErrUnknownSection)
}

func TestParseFile(t *testing.T) {
	t.Parallel()
	m, err := ParseFile("testdata/valid_simple.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"base"}, m.Parts[conveyor.Packages])

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFromBlueprintWrite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	origin := filepath.Join(dir, "parts", "packages", "base")
	require.NoError(t, os.MkdirAll(filepath.Dir(origin), 0o755))
	require.NoError(t, os.WriteFile(origin, []byte("@core\n"), 0o644))
	bp := conveyor.NewBlueprint("web", filepath.Join(dir, "templates", "web"))
	_, err := bp.Attach(conveyor.Packages, conveyor.NewFragment(conveyor.Packages, origin), conveyor.KindVirtual)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, FromBlueprint(bp).Write(&buf))
	assert.Contains(t, buf.String(), "id: web\n")
	assert.NotContains(t, buf.String(), "description")

	back, err := ParseBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "packages:base", back.Selection().String())
}
