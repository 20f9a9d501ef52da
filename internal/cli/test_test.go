package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/projector/internal/harness"
	"github.com/roach88/projector/internal/todo"
)

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), t.TempDir())
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestTestHelpText(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "scenarios")
	assert.Contains(t, out, "--update")
	assert.Contains(t, out, "--filter")
	assert.Contains(t, out, "scenarios-dir")
}

const passingScenario = `name: toggle
description: toggle through the row
items:
  - {id: a, text: first}
steps:
  - row: {id: a, kind: toggle}
    info: space
assertions:
  - type: final_items
    items:
      - {id: a, text: first, done: true}
  - type: row_emissions
    id: a
    count: 1
`

const failingScenario = `name: wrong
description: expects a dispatch that never happens
steps:
  - draft: hello
assertions:
  - type: dispatch_count
    count: 5
`

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestTestCommandPassingScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "toggle.yaml", passingScenario)

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ toggle")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommandFailingScenarioExitCode(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "toggle.yaml", passingScenario)
	writeScenario(t, dir, "wrong.yaml", failingScenario)

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var response struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "error", response.Status)
	assert.Equal(t, 1, response.Data.Passed)
	assert.Equal(t, 1, response.Data.Failed)
	assert.Equal(t, "E_TEST_FAILED", response.Error.Code)
}

func TestTestCommandUpdateThenCompareGolden(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "toggle.yaml", passingScenario)

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "golden updated")
	require.FileExists(t, goldenFilePath(path))

	// The golden file now pins the snapshot.
	_, err = execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(goldenFilePath(path), []byte("{}\n"), 0644))
	out, err = execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Contains(t, out, "Golden file mismatch")
}

func TestCompareWithGolden(t *testing.T) {
	s, err := harness.ParseScenario([]byte(passingScenario))
	require.NoError(t, err)
	result, err := harness.Run(s)
	require.NoError(t, err)

	dir := t.TempDir()
	scenarioFile := filepath.Join(dir, "toggle.yaml")
	require.NoError(t, updateGoldenFile(s, result, scenarioFile))

	match, err := compareWithGolden(s, result, goldenFilePath(scenarioFile))
	require.NoError(t, err)
	assert.True(t, match)

	result.State.Items = append(result.State.Items, todo.Item{ID: "extra"})
	match, err = compareWithGolden(s, result, goldenFilePath(scenarioFile))
	require.NoError(t, err)
	assert.False(t, match)
}

func TestFindScenarioFiles(t *testing.T) {
	tmpDir := t.TempDir()

	// Create scenario files
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test1.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test2.yml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "ignore.txt"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	tmpDir := t.TempDir()

	// Create scenario files
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "draft-clear.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "draft-add.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "row-toggle.yaml"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "draft-*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	// All found files should start with draft-
	for _, f := range files {
		base := filepath.Base(f)
		assert.True(t, len(base) >= 6 && base[:6] == "draft-", "Expected file to start with 'draft-': %s", f)
	}
}

func TestFindScenarioFilesSubdirectories(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "subdir")
	require.NoError(t, os.MkdirAll(subDir, 0755))

	// Create scenario files in root and subdir
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "root.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(subDir, "sub.yaml"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestGoldenFilePath(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"/path/to/scenario.yaml", "/path/to/golden/scenario.golden"},
		{"/path/to/scenario.yml", "/path/to/golden/scenario.golden"},
		{"scenarios/test.yaml", "scenarios/golden/test.golden"},
	}

	for _, tc := range testCases {
		result := goldenFilePath(tc.input)
		assert.Equal(t, tc.expected, result)
	}
}

func TestRunScenarioGoldenOutcomes(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "toggle.yaml", passingScenario)
	ctx := context.Background()

	sr := runScenario(ctx, path, false)
	assert.True(t, sr.Pass)
	assert.Empty(t, sr.Golden, "no golden file yet")

	sr = runScenario(ctx, path, true)
	assert.True(t, sr.Pass)
	assert.Equal(t, goldenUpdated, sr.Golden)

	sr = runScenario(ctx, path, false)
	assert.True(t, sr.Pass)
	assert.Equal(t, goldenMatch, sr.Golden)
}

func TestRunScenarioLoadError(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "broken.yaml", "name: [")

	sr := runScenario(context.Background(), path, false)
	assert.False(t, sr.Pass)
	assert.Equal(t, "broken.yaml", sr.Name)
	require.Len(t, sr.Errors, 1)
	assert.Contains(t, sr.Errors[0], "failed to load scenario")
}
