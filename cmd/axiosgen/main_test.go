package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osakka/axiosgen/pkg/config"
	cgerrors "github.com/osakka/axiosgen/pkg/errors"
)

const petstore = `{
  "swagger": "2.0",
  "info": {"title": "Petstore", "version": "1.0"},
  "paths": {
    "/pets/{id}": {
      "get": {
        "tags": ["pet"],
        "operationId": "getPet",
        "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
        "responses": {"200": {"description": "ok", "schema": {"$ref": "#/definitions/Pet"}}}
      }
    }
  },
  "definitions": {
    "Pet": {"type": "object", "properties": {"name": {"type": "string"}}}
  }
}`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCommand(&stdout, &stderr)
	root.SetArgs(append([]string{"--no-color", "--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "axiosgen version dev\n", out)
}

func TestGenerateCommand(t *testing.T) {
	spec := writeFile(t, "swagger.json", petstore)
	dir := t.TempDir()

	out, err := run(t, "generate", spec, "-o", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "Services: 1")
	assert.Contains(t, out, "Requests: 1")
	assert.Contains(t, out, "Code generation completed")

	data, err := os.ReadFile(filepath.Join(dir, "index.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "getPet(")
	assert.Contains(t, string(data), "export interface Pet")
}

func TestGenerateDryRunWritesNothing(t *testing.T) {
	spec := writeFile(t, "swagger.json", petstore)
	dir := filepath.Join(t.TempDir(), "out")

	out, err := run(t, "generate", spec, "-o", dir, "--dry-run", "--file-name", "api.ts")
	require.NoError(t, err)

	assert.Contains(t, out, "// ==== api.ts ====")
	assert.Contains(t, out, "getPet(")
	assert.NoDirExists(t, dir)
}

func TestGenerateEnvironmentOverride(t *testing.T) {
	spec := writeFile(t, "swagger.json", petstore)
	t.Setenv("AXIOSGEN_MODEL_MODE", config.ModelModeClass)

	out, err := run(t, "generate", spec, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "export class Pet")
}

func TestGenerateConfigFile(t *testing.T) {
	spec := writeFile(t, "swagger.json", petstore)
	dir := t.TempDir()
	cfgFile := writeFile(t, "axiosgen.yaml", "codegen:\n  file_name: client.ts\n  output_dir: "+dir+"\n")

	_, err := run(t, "generate", spec, "--config", cfgFile)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "client.ts"))

	// flags win over the file
	other := t.TempDir()
	_, err = run(t, "generate", spec, "--config", cfgFile, "-o", other)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(other, "client.ts"))
}

func TestGenerateRejectsBadOptions(t *testing.T) {
	spec := writeFile(t, "swagger.json", petstore)

	_, err := run(t, "generate", spec, "--model-mode", "record")
	require.Error(t, err)
	assert.True(t, cgerrors.IsCategory(err, cgerrors.CategoryConfiguration))
	assert.Equal(t, 2, exitCode(err))

	_, err = run(t, "generate")
	require.Error(t, err)
	assert.True(t, cgerrors.IsCategory(err, cgerrors.CategoryConfiguration))
}

func TestValidateCommand(t *testing.T) {
	spec := writeFile(t, "swagger.json", petstore)

	out, err := run(t, "validate", spec)
	require.NoError(t, err)
	assert.Contains(t, out, "Title: Petstore")
	assert.Contains(t, out, "Paths: 1")

	broken := writeFile(t, "broken.json", `{"swagger": "2.0", "paths": [`)
	out, err = run(t, "validate", broken)
	require.Error(t, err)
	assert.True(t, cgerrors.IsCategory(err, cgerrors.CategoryValidation))
	assert.Contains(t, out, "PARSE_ERROR")
	assert.Contains(t, out, "Document could not be decoded")
}

func TestInitConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "axiosgen.yaml")

	out, err := run(t, "init-config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	cfg := config.Default()
	require.NoError(t, config.NewLoader(nil).LoadFromFile(path, &cfg, true))
	assert.Equal(t, config.DefaultOptions().OutputDir, cfg.Codegen.OutputDir)

	_, err = run(t, "init-config", path)
	require.Error(t, err)

	_, err = run(t, "init-config", path, "--force")
	require.NoError(t, err)
}

func TestSetSource(t *testing.T) {
	opts := config.DefaultOptions()
	opts.SourceFile = "old.json"

	setSource(&opts, "https://example.com/swagger.json")
	assert.Equal(t, "https://example.com/swagger.json", opts.RemoteURL)
	assert.Empty(t, opts.SourceFile)

	setSource(&opts, "api.yaml")
	assert.Equal(t, "api.yaml", opts.SourceFile)
	assert.Empty(t, opts.RemoteURL)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(cgerrors.New(cgerrors.CategoryValidation, "op", "bad")))
	assert.Equal(t, 1, exitCode(cgerrors.New(cgerrors.CategoryIO, "op", "disk")))
}
