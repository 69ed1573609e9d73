package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/gray-logic-registry/internal/auth"
	"github.com/nerrad567/gray-logic-registry/internal/registry"
)

// writeTestConfig writes a config using a YAML store in a temp dir.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
logging:
  level: error
  format: console
storage:
  save_destination: yaml
  load_sources: [yaml]
  yaml:
    path: "` + filepath.ToSlash(filepath.Join(dir, "values.yaml")) + `"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// runCLI runs one command line and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var stdout, stderr bytes.Buffer
	err := run(ctx, args, &stdout, &stderr)
	return stdout.String(), err
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "graylogic-registry dev")
}

func TestMissingConfig(t *testing.T) {
	_, err := runCLI(t, "get", "--config", "/nonexistent/path/config.yaml", "1/0/0/0")
	assert.Error(t, err)
}

func TestGetDefaults(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCLI(t, "--config", cfg, "get", "app/rgbled/status/green")
	require.NoError(t, err)
	assert.Equal(t, "255\n", out)

	out, err = runCLI(t, "--config", cfg, "get", "0/0/0/0/1")
	require.NoError(t, err)
	assert.Equal(t, "localhost\n", out)

	_, err = runCLI(t, "--config", cfg, "get", "--type", "u16", "1/0/0/0")
	assert.ErrorIs(t, err, registry.ErrTypeMismatch)

	_, err = runCLI(t, "--config", cfg, "get", "app/nothing/0/0")
	assert.ErrorIs(t, err, registry.ErrResolution)
}

func TestSetPersists(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := runCLI(t, "--config", cfg, "set", "app/rgbled/status/red", "40")
	require.NoError(t, err)
	out, err := runCLI(t, "--config", cfg, "get", "app/rgbled/status/red")
	require.NoError(t, err)
	assert.Equal(t, "40\n", out)

	_, err = runCLI(t, "--config", cfg, "set", "--save=false", "app/rgbled/status/red", "41")
	require.NoError(t, err)
	out, err = runCLI(t, "--config", cfg, "get", "app/rgbled/status/red")
	require.NoError(t, err)
	assert.Equal(t, "40\n", out, "unsaved values do not outlive the process")

	_, err = runCLI(t, "--config", cfg, "set", "--type", "u16", "sys/node/local/net/port", "9443")
	require.NoError(t, err)
	out, err = runCLI(t, "--config", cfg, "get", "sys/node/local/net/port")
	require.NoError(t, err)
	assert.Equal(t, "9443\n", out)

	_, err = runCLI(t, "--config", cfg, "set", "app/rgbled/status/red", "256")
	assert.ErrorIs(t, err, registry.ErrConversion)
}

func TestCommit(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := runCLI(t, "--config", cfg, "commit", "app")
	require.NoError(t, err)

	_, err = runCLI(t, "--config", cfg, "commit", "sys/node/local")
	assert.ErrorIs(t, err, registry.ErrCommit)

	_, err = runCLI(t, "--config", cfg, "set", "--commit", "app/rgbled/ambient/blue", "1")
	require.NoError(t, err)
}

func TestExport(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCLI(t, "--config", cfg, "export", "--depth", "1", "app/rgbled")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, []string{"1/0", "app/rgbled", "schema"}, strings.Fields(lines[0]))

	out, err = runCLI(t, "--config", cfg, "export")
	require.NoError(t, err)
	assert.Contains(t, out, "sys/node/local/net/host")
	assert.Contains(t, out, "localhost")
	assert.Contains(t, out, "app/rgbled/ambient/red")

	_, err = runCLI(t, "--config", cfg, "export", "--depth", "-1")
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCLI(t, "--config", cfg, "save")
	require.NoError(t, err)
	assert.Equal(t, "saved / to yaml\n", out)

	out, err = runCLI(t, "--config", cfg, "load", "app")
	require.NoError(t, err)
	assert.Equal(t, "loaded 6 values under 1\n", out)
}

func TestToken(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := runCLI(t, "--config", cfg, "token")
	assert.Error(t, err, "no secret configured")

	secret := strings.Repeat("k", 32)
	t.Setenv("GRAYLOGIC_REGISTRY_JWT_SECRET", secret)

	_, err = runCLI(t, "--config", cfg, "token", "--role", "admin")
	assert.ErrorIs(t, err, auth.ErrUnknownRole)

	out, err := runCLI(t, "--config", cfg, "token", "--role", "writer", "--subject", "installer")
	require.NoError(t, err)
	claims, err := auth.ParseToken(strings.TrimSpace(out), secret)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleWriter, claims.Role)
	assert.Equal(t, "installer", claims.Subject)
}

func TestServeRequiresSecret(t *testing.T) {
	cfg := writeTestConfig(t)
	_, err := runCLI(t, "--config", cfg, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "security")
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv(configEnv, writeTestConfig(t))
	out, err := runCLI(t, "get", "app/rgbled/ambient/green")
	require.NoError(t, err)
	assert.Equal(t, "180\n", out)
}
