package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMetadata = `
[project]
name = "cli_test"
version = "0.1.0"
license = "MIT"
`

func writeProject(t *testing.T, sources map[string]string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Veryl.toml"), []byte(testMetadata), 0o644))
	for name, text := range sources {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	}
	return root
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runCLI(t, "-version")
	assert.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(out, "verylcheck v"))
}

func TestRun_BadFormat(t *testing.T) {
	code, _, errOut := runCLI(t, "-format", "xml")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, `unknown -format "xml"`)
}

func TestRun_Metadata(t *testing.T) {
	root := writeProject(t, nil)

	code, out, _ := runCLI(t, "-config", root, "-metadata", "json")
	require.Equal(t, exitOK, code)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	project := decoded["project"].(map[string]any)
	assert.Equal(t, "cli_test", project["name"])
	assert.Equal(t, filepath.Join(root, "Veryl.toml"), decoded["metadata_path"])

	code, pretty, _ := runCLI(t, "-config", filepath.Join(root, "Veryl.toml"), "-metadata", "pretty")
	require.Equal(t, exitOK, code)
	assert.Contains(t, pretty, "\n  \"project\": {")
}

func TestRun_MissingMetadata(t *testing.T) {
	code, _, errOut := runCLI(t, "-config", filepath.Join(t.TempDir(), "Veryl.toml"))
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "failed to load metadata")
}

func TestRun_CleanProject(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/top.veryl": `
module Top (
    o: output logic,
) {
    assign o = 1;
}`,
	})

	code, out, _ := runCLI(t, "-config", root, "-format", "json")
	require.Equal(t, exitOK, code)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "cli_test", decoded["project"])
	assert.EqualValues(t, 1, decoded["files"])
	assert.EqualValues(t, 1, decoded["facts"])
	assert.Empty(t, decoded["diagnostics"])
}

func TestRun_ReportsInvalidAssignment(t *testing.T) {
	root := writeProject(t, map[string]string{
		"top.veryl": `
module Top (
    i: input logic,
) {
    always_comb {
        i = 1;
    }
}`,
	})

	code, out, _ := runCLI(t, "-config", root)
	assert.Equal(t, exitFound, code)
	assert.Contains(t, out, "top.veryl:6:9")
	assert.Contains(t, out, "invalid_assignment")
	assert.Contains(t, out, "1 error(s)")
}

func TestRun_PersistsFacts(t *testing.T) {
	root := writeProject(t, map[string]string{
		"top.veryl": `
module Top (
    o: output logic,
) {
    assign o = 1;
}`,
	})
	db := filepath.Join(t.TempDir(), "facts.db")

	code, _, _ := runCLI(t, "-config", root, "-db", db, "-format", "sarif")
	require.Equal(t, exitOK, code)
	assert.FileExists(t, db)
}
