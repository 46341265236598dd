package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, logLevel, scriptPath, lockstep = "", "", "", false
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "quarkxr dev"), out)
}

func TestHeadlessRunsTicks(t *testing.T) {
	_, err := execute(t, "headless", "--hz", "500", "--ticks", "5", "--lockstep", "--log-level", "error")
	assert.NoError(t, err)
}

func TestHeadlessRejectsBadLogLevel(t *testing.T) {
	_, err := execute(t, "headless", "--ticks", "1", "--log-level", "loud")
	assert.Error(t, err)
}

func TestUnknownConfigFile(t *testing.T) {
	_, err := execute(t, "headless", "--config", "/nonexistent/quarkxr.yaml")
	assert.Error(t, err)
}

func TestHeadlessWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "quarkxr.log")
	cfgPath := filepath.Join(dir, "quarkxr.yaml")
	cfg := "telemetry:\n  logging:\n    format: json\n    output: " + logPath + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	_, err := execute(t, "headless", "--config", cfgPath, "--hz", "500", "--ticks", "3", "--lockstep")
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"stopped"`)
}
