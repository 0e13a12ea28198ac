package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/raywall/fast-service-simulator/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const specJSON = `{
  "openapi": "3.0.0",
  "info": {"title": "t", "version": "1"},
  "paths": {"/ping": {"get": {"operationId": "ping", "responses": {"200": {"description": "ok"}}}}}
}`

func writeFiles(t *testing.T, cfg string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spec.json"), []byte(specJSON), 0o600))
	path := filepath.Join(dir, "simulator.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func TestRunValidate_HappyPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spec.json"), []byte(specJSON), 0o600))
	path := filepath.Join(dir, "simulator.yaml")
	content := "simulator:\n  swagger:\n    api: " + filepath.Join(dir, "spec.json") + "\n  scenarios:\n    - name: default\nlogging:\n  enabled: false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	var out bytes.Buffer
	code := runValidate(context.Background(), path, &out)

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "ping{GET /ping}")
	assert.Contains(t, out.String(), "Configuração válida")
}

func TestRunValidate_JSONOutput(t *testing.T) {
	t.Setenv("OUTPUT_FORMAT", "json")
	path := writeFiles(t, "simulator:\n  scenarios:\n    - name: orphan\n")

	var out bytes.Buffer
	code := runValidate(context.Background(), path, &out)
	require.Equal(t, 0, code)

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	var report engine.ValidationReport
	require.NoError(t, json.Unmarshal(lines[1], &report))
	assert.True(t, report.Valid)
	assert.NotEmpty(t, report.Warnings)
}

func TestRunValidate_Failures(t *testing.T) {
	t.Run("Invalid Structure", func(t *testing.T) {
		path := writeFiles(t, "server:\n  runtime: docker\n")
		var out bytes.Buffer
		assert.Equal(t, 1, runValidate(context.Background(), path, &out))
		assert.Contains(t, out.String(), "Erro de Carregamento")
	})

	t.Run("Missing Specification", func(t *testing.T) {
		path := writeFiles(t, "simulator:\n  swagger:\n    api: /nonexistent/spec.json\n")
		var out bytes.Buffer
		assert.Equal(t, 1, runValidate(context.Background(), path, &out))
		assert.Contains(t, out.String(), "A configuração contém erros")
	})
}
