package inspect

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/skosovsky/conveyor"
	"github.com/skosovsky/conveyor/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gopkg.in/yaml.v3"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newInspector(t *testing.T, opts ...Option) *Inspector {
	t.Helper()
	base := t.TempDir()
	for _, s := range conveyor.Sections() {
		require.NoError(t, os.MkdirAll(filepath.Join(base, engine.PartsDir, string(s)), 0o755))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(base, engine.TemplatesDir), 0o755))
	files := map[string]string{
		"commands/net":  "network --hostname=@@HOST@@ --ip=@@IP@@\n",
		"packages/base": "@core\n",
		"pre/disk":      "echo @@DISK@@\n",
	}
	for rel, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(base, engine.PartsDir, filepath.FromSlash(rel)), []byte(body), 0o644))
	}
	e, err := engine.Open(base)
	require.NoError(t, err)
	for id, list := range map[string]string{
		"web":    "commands:net;packages:base",
		"db":     "packages:base;pre:disk",
		"webdev": "commands:net",
	} {
		sel, err := conveyor.ParseSelection(list)
		require.NoError(t, err)
		_, err = e.Create(id, sel)
		require.NoError(t, err)
	}
	return New(e.Registry(), e.Store(), opts...)
}

func TestInspector_Parts(t *testing.T) {
	t.Parallel()
	i := newInspector(t)

	parts, err := i.Parts(false)
	require.NoError(t, err)
	assert.Equal(t, []PartInfo{
		{Section: conveyor.Commands, Name: "net"},
		{Section: conveyor.Packages, Name: "base"},
		{Section: conveyor.Pre, Name: "disk"},
	}, parts)

	parts, err = i.Parts(true)
	require.NoError(t, err)
	assert.Equal(t, []string{"HOST", "IP"}, parts[0].Vars)
	assert.Empty(t, parts[1].Vars)

	var buf bytes.Buffer
	require.NoError(t, WriteParts(&buf, parts))
	assert.Equal(t, "commands net ( HOST IP )\npackages base\npre disk ( DISK )\n", buf.String())
}

func TestInspector_TemplatesIDs(t *testing.T) {
	t.Parallel()
	i := newInspector(t, WithConcurrency(1))
	ctx := context.Background()

	all, err := i.Templates(ctx, Query{})
	require.NoError(t, err)
	var ids []string
	for _, ti := range all {
		ids = append(ids, ti.ID)
	}
	assert.Equal(t, []string{"db", "web", "webdev"}, ids)

	filtered, err := i.Templates(ctx, Query{Filter: regexp.MustCompile("^web")})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, "web", filtered[0].ID)

	var buf bytes.Buffer
	require.NoError(t, WriteTemplates(&buf, filtered, Query{}))
	assert.Equal(t, "web\nwebdev\n", buf.String())
}

func TestInspector_TemplatesVars(t *testing.T) {
	t.Parallel()
	i := newInspector(t)
	q := Query{Vars: true, Filter: regexp.MustCompile("^(db|web)$")}
	got, err := i.Templates(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"DISK"}, got[0].Vars)
	assert.Equal(t, []string{"HOST", "IP"}, got[1].Vars)

	var buf bytes.Buffer
	require.NoError(t, WriteTemplates(&buf, got, q))
	assert.Equal(t, "db ( DISK )\nweb ( HOST IP )\n", buf.String())
}

func TestInspector_TemplatesParts(t *testing.T) {
	t.Parallel()
	i := newInspector(t)
	q := Query{Parts: true, AllParts: true, Filter: regexp.MustCompile("^db$")}
	got, err := i.Templates(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []PartInfo{{Section: conveyor.Packages, Name: "base"}, {Section: conveyor.Pre, Name: "disk"}}, got[0].Parts)
	assert.Equal(t, []PartInfo{{Section: conveyor.Commands, Name: "net"}}, got[0].Unused)

	var buf bytes.Buffer
	require.NoError(t, WriteTemplates(&buf, got, q))
	assert.Equal(t, "db\n  -- commands net\n  ++ packages base\n  ++ pre disk\n", buf.String())
}

func TestInspector_TemplatesCanceled(t *testing.T) {
	t.Parallel()
	i := newInspector(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := i.Templates(ctx, Query{Vars: true})
	require.ErrorIs(t, err, context.Canceled)
}

func TestWriteYAML(t *testing.T) {
	t.Parallel()
	i := newInspector(t)
	got, err := i.Templates(context.Background(), Query{Parts: true, Vars: true, Filter: regexp.MustCompile("^webdev$")})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, got))
	var back []TemplateInfo
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, got, back)
	assert.Contains(t, buf.String(), "- id: webdev\n")
}

func TestScanner_CachesAndForgets(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "part")
	require.NoError(t, os.WriteFile(path, []byte("@@B@@ @@A@@\n"), 0o644))
	s := NewScanner()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vars, err := s.Scan(path)
			assert.NoError(t, err)
			assert.Equal(t, []string{"A", "B"}, vars)
		}()
	}
	wg.Wait()

	require.NoError(t, os.WriteFile(path, []byte("@@C@@\n"), 0o644))
	vars, err := s.Scan(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, vars, "served from cache")

	s.Forget()
	vars, err = s.Scan(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, vars)

	_, err = s.Scan(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
