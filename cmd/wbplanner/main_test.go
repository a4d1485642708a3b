package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wbplanner/internal/navigator"
	"wbplanner/internal/schema/schematest"
	"wbplanner/internal/uploadplan"
)

const testRules = `
shortcuts:
  - table: CollectionObject
    path: catalogNumber
    headers:
      contains: cat
`

type testEnv struct {
	dir    string
	config string
	redis  *miniredis.Miniredis
	// stderr holds the log output of the last run.
	stderr string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	mr := miniredis.RunT(t)

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		return path
	}

	schemaFile := write("schema.yaml", schematest.FixtureYAML)
	rulesFile := write("rules.yaml", testRules)
	config := write("wbplanner.yaml", strings.Join([]string{
		"schema: " + schemaFile,
		"rules: " + rulesFile,
		"base_table: CollectionObject",
		"cache:",
		"  local_path: " + filepath.Join(dir, "cache", "cache.db"),
		"  redis_url: redis://" + mr.Addr(),
		"log:",
		"  level: error",
	}, "\n"))

	write("items.csv", "Cat #,Start Date,Determined Date,Determined Date\nA1,2020-01-01,2020-02-02,2021-03-03\n")

	return &testEnv{dir: dir, config: config, redis: mr}
}

func (e *testEnv) path(name string) string {
	return filepath.Join(e.dir, name)
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", e.config, "--env-file", e.path(".env")}, args...))

	err := cmd.Execute()
	e.stderr = errOut.String()

	return out.String(), err
}

func TestPlanThenCheck(t *testing.T) {
	env := newTestEnv(t)
	planFile := env.path("plan.json")

	_, err := env.run(t, "plan", env.path("items.csv"), "-o", planFile, "--dump")
	require.NoError(t, err)

	data, err := os.ReadFile(planFile)
	require.NoError(t, err)

	p, err := uploadplan.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, "CollectionObject", p.BaseTableName)
	assert.Equal(t, "Cat #", p.Uploadable.UploadTable.WBCols["catalogNumber"])
	assert.Len(t, p.Uploadable.UploadTable.ToMany["determinations"], 2)

	assert.FileExists(t, env.path("cache/cache.db"))

	out, err := env.run(t, "check", planFile)
	require.NoError(t, err)
	assert.Contains(t, out, "4 lines valid for CollectionObject")
}

func TestPlan_YAML(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "plan", env.path("items.csv"), "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "baseTableName: CollectionObject")

	_, err = env.run(t, "plan", env.path("items.csv"), "--format", "xml")
	assert.Error(t, err)
}

func TestCheck_StalePlan(t *testing.T) {
	env := newTestEnv(t)

	stale := env.path("stale.json")
	require.NoError(t, os.WriteFile(stale, []byte(`{
		"baseTableName": "CollectionObject",
		"uploadable": {"uploadTable": {"wbcols": {"nope": "X"}}}
	}`), 0o644))

	_, err := env.run(t, "check", stale, "--log-format", "json")
	assert.ErrorContains(t, err, "nope")
	assert.Contains(t, env.stderr, `"code":"unknown_field"`)
}

func TestSessionReuse(t *testing.T) {
	env := newTestEnv(t)
	id := "0b6f7c1e-7a43-4c55-9d55-3c1c0c4f6a10"
	edges := "wbplan:session:" + id + ":" + navigator.EdgeBucket

	_, err := env.run(t, "paths", "Agent")
	require.NoError(t, err)
	assert.Empty(t, env.redis.Keys(), "a fresh session ends with the run")

	_, err = env.run(t, "paths", "Agent", "--session", id)
	require.NoError(t, err)
	assert.True(t, env.redis.Exists(edges))

	_, err = env.run(t, "plan", env.path("items.csv"), "--session", id)
	require.NoError(t, err)
	assert.True(t, env.redis.Exists(edges), "the session outlives the plan run")

	out, err := env.run(t, "end-session", "--session", id)
	require.NoError(t, err)
	assert.Equal(t, "session "+id+" ended\n", out)
	assert.False(t, env.redis.Exists(edges))

	_, err = env.run(t, "end-session")
	assert.Error(t, err)

	_, err = env.run(t, "paths", "--session", "nope")
	assert.Error(t, err)
}

func TestSuggest(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "suggest", env.path("items.csv"))
	require.NoError(t, err)
	assert.Contains(t, out, "=== CollectionObject (automapper) ===")
	assert.Contains(t, out, "✓ Cat # -> catalogNumber")

	out, err = env.run(t, "suggest", env.path("items.csv"), "--no-header")
	require.NoError(t, err)
	assert.Contains(t, out, "✗ Column 1")
}

func TestPaths(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "paths", "Agent", "--labels")
	require.NoError(t, err)
	assert.Contains(t, out, "firstName\tFirst Name\n")
	assert.Contains(t, out, "addresses.#1.city\tcity\n")

	out, err = env.run(t, "paths")
	require.NoError(t, err)
	assert.Contains(t, out, "collectingEvent.startDate\n")

	_, err = env.run(t, "paths", "Nope")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	cmd := newRootCmd()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "wbplanner dev\n", out.String())
}

func TestParseHeaders(t *testing.T) {
	headers, err := parseHeaders(strings.NewReader("\ufeffCat #, Start Date ,\"Notes, misc\"\n1,2,3\n"), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cat #", "Start Date", "Notes, misc"}, headers)

	headers, err = parseHeaders(strings.NewReader("a,b\n"), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Column 1", "Column 2"}, headers)

	_, err = parseHeaders(strings.NewReader(""), false)
	assert.Error(t, err)
}
