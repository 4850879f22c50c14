package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/beaver/internal/logging"
)

const cliConfig = `
logging:
  all_logger:
    default_name: root
    loggers:
      - {name: api, target: api, level: info}
  file_appenders:
    - enable: true
      file_dir: %s
      file_name: app.log
      file_max_size: 1048576
      file_max_count: 2
      logger_names: [api]
  console_appender:
    write_level: info
    logger_names: [%s]
`

func writeCLIConfig(t *testing.T, consoleLogger string) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(cliConfig, filepath.Join(dir, "logs"), consoleLogger)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	return dir
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCmd(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Version:    dev")
	assert.Contains(t, stdout, "Commit:     unknown")
}

func TestConfigPrintCmd(t *testing.T) {
	dir := writeCLIConfig(t, "root")

	stdout, stderr, err := execute(t, "config", "print", "--config-dir", dir)
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "logging.all_logger.default_name = root\n")
	assert.Contains(t, stdout, "logging.all_logger.loggers[0].target = api\n")
	assert.Contains(t, stdout, "logging.file_appenders[0].file_max_count = 2\n")
}

func TestConfigPrintCmd_EnvOverride(t *testing.T) {
	dir := writeCLIConfig(t, "root")
	t.Setenv("CLI_LOGGING_FORMAT", "console")

	stdout, _, err := execute(t, "config", "print", "--config-dir", dir, "--env-prefix", "CLI", "--env-separator", "_")
	require.NoError(t, err)
	assert.Contains(t, stdout, "logging.format = console\n")
}

func TestConfigPrintCmd_NoFile(t *testing.T) {
	dir := t.TempDir()

	stdout, stderr, err := execute(t, "config", "print", "--config-dir", dir)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "no configuration file found in "+dir)
}

func TestConfigValidateCmd(t *testing.T) {
	dir := writeCLIConfig(t, "root")

	stdout, _, err := execute(t, "config", "validate", "--config-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "file:"+filepath.Join(dir, "logs", "app.log")+" write_level=info api>=info default>=off\n")
	assert.Contains(t, stdout, "console write_level=info default>=info\n")
	assert.Contains(t, stdout, "configuration is valid: 2 loggers, 2 enabled appenders")
}

func TestConfigValidateCmd_UnknownLogger(t *testing.T) {
	dir := writeCLIConfig(t, "cache")

	_, stderr, err := execute(t, "config", "validate", "--config-dir", dir)
	require.Error(t, err)

	var unknown *logging.UnknownLoggerError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "cache", unknown.Name)
	assert.Contains(t, stderr, `wrong logger name "cache" in appender console`)
}

func TestRun_Once(t *testing.T) {
	logging.ResetForTesting()
	t.Cleanup(logging.ResetForTesting)
	dir := writeCLIConfig(t, "root")

	stdout, _, err := execute(t, "run", "--once", "--config-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "bootstrap initialized")
	assert.Contains(t, stdout, `"logger":"beaver"`)
	assert.FileExists(t, filepath.Join(dir, "logs", "app.log"))
}

func TestRun_StopsOnCancel(t *testing.T) {
	logging.ResetForTesting()
	t.Cleanup(logging.ResetForTesting)
	dir := writeCLIConfig(t, "root")

	ctx, cancel := context.WithCancel(context.Background())
	var stdout bytes.Buffer
	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, &rootFlags{configDir: dir}, &runOptions{}, &stdout, &bytes.Buffer{})
	}()

	assert.Eventually(t, func() bool {
		return logging.CurrentState() == logging.StateInstalled
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
	assert.Contains(t, stdout.String(), "shutting down")
}

func TestRun_InvalidConfig(t *testing.T) {
	logging.ResetForTesting()
	t.Cleanup(logging.ResetForTesting)
	dir := writeCLIConfig(t, "ghost")

	_, _, err := execute(t, "run", "--once", "--config-dir", dir)
	require.Error(t, err)
	assert.Equal(t, logging.StateUnconfigured, logging.CurrentState())
}
