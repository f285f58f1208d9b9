package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-funcform/pkg/testsupport"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	dir := t.TempDir()
	registryPath := filepath.Join(dir, "functions.json")
	require.NoError(t, os.WriteFile(registryPath, []byte(testsupport.SampleRegistryJSON), 0o644))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--registry", registryPath, "--config", writeEmptyConfig(t, dir)))
	require.NoError(t, root.ExecuteContext(testsupport.Context()))
	return out.String()
}

func writeEmptyConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "funcform.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debug: false\n"), 0o644))
	return path
}

func TestCLI_List(t *testing.T) {
	out := runCLI(t, "list")
	require.Contains(t, out, "greet\t3 params")
	require.Contains(t, out, "createOrder\t5 params")
}

func TestCLI_RenderFragment(t *testing.T) {
	out := runCLI(t, "render", "greet", "--fragment", "--action", "/form/greet", "--require-non-nullable-inputs")
	require.Contains(t, out, `action="/form/greet"`)
	require.Contains(t, out, `required=""`)
	require.NotContains(t, out, "<html")
}

func TestCLI_RenderPage(t *testing.T) {
	out := runCLI(t, "render", "sum")
	require.Contains(t, out, "<!DOCTYPE html>")
	require.Contains(t, out, `name="numbers#count" value="1"`)
}

func TestCLI_SchemaAndOpenAPI(t *testing.T) {
	var schemaDoc map[string]any
	require.NoError(t, json.Unmarshal([]byte(runCLI(t, "schema", "greet")), &schemaDoc))
	require.Equal(t, "greet", schemaDoc["title"])

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(runCLI(t, "openapi", "--title", "calc")), &doc))
	info := doc["info"].(map[string]any)
	require.Equal(t, "calc", info["title"])
	require.Contains(t, doc["paths"].(map[string]any), "/greet")
}

func TestCLI_ConfigShow(t *testing.T) {
	var cfg map[string]any
	require.NoError(t, json.Unmarshal([]byte(runCLI(t, "config", "show", "--backend", "http://example.test")), &cfg))
	require.Equal(t, "http://example.test", cfg["Backend"])
}
