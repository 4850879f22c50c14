package bootstrap

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/beaver/internal/logging"
)

const testConfig = `
logging:
  all_logger:
    default_name: root
    loggers:
      - {name: api, target: api, level: debug}
  file_appenders:
    - enable: true
      file_dir: %s
      file_name: app.log
      file_max_size: 1048576
      file_max_count: 2
      logger_names: [api]
  console_appender:
    logger_names: [root]
`

func writeConfig(t *testing.T) (configDir, logDir string) {
	t.Helper()
	configDir = t.TempDir()
	logDir = filepath.Join(t.TempDir(), "logs")
	content := fmt.Sprintf(testConfig, logDir)
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o600))
	return configDir, logDir
}

func resetLogging(t *testing.T) {
	t.Helper()
	logging.ResetForTesting()
	t.Cleanup(logging.ResetForTesting)
}

func TestBootstrap_Initialize(t *testing.T) {
	resetLogging(t)
	configDir, logDir := writeConfig(t)
	var console bytes.Buffer

	b := New(WithConfigDir(configDir), WithLoggingOptions(logging.WithStdout(&console)))
	require.NoError(t, b.Initialize())
	t.Cleanup(func() { _ = b.Close() })

	assert.Equal(t, logging.StateInstalled, logging.CurrentState())
	require.NotNil(t, b.Config())
	assert.Equal(t, filepath.Join(configDir, "config.yaml"), b.Config().File())
	require.NotNil(t, b.LoggingConfig())
	assert.Len(t, b.LoggingConfig().FileAppenders, 1)
	assert.Nil(t, b.Metrics())

	logging.L().Named("api").Debug("api event")
	require.NoError(t, b.Close())
	require.NoError(t, b.Close(), "second close is a no-op")

	data, err := os.ReadFile(filepath.Join(logDir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "api event")
	assert.NotContains(t, string(data), "logging initialized")

	assert.Contains(t, console.String(), "logging initialized")
	assert.NotContains(t, console.String(), "api event")
}

func TestBootstrap_LoggingDisabled(t *testing.T) {
	resetLogging(t)
	configDir, _ := writeConfig(t)

	b := New(WithConfigDir(configDir), WithLogging(false))
	require.NoError(t, b.Initialize())

	assert.NotNil(t, b.Config())
	assert.Nil(t, b.LoggingConfig())
	assert.Equal(t, logging.StateUnconfigured, logging.CurrentState())
	assert.NoError(t, b.Close())
}

func TestBootstrap_MissingLoggingSection(t *testing.T) {
	resetLogging(t)

	b := New(WithConfigDir(t.TempDir()))
	err := b.Initialize()
	require.Error(t, err)

	var cfgErr *logging.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.ErrorIs(t, err, logging.ErrSectionMissing)
	assert.Equal(t, logging.StateUnconfigured, logging.CurrentState())
}

func TestBootstrap_LoggingBeforeConfig(t *testing.T) {
	b := New()
	assert.ErrorIs(t, b.InitializeLogging(), ErrConfigNotLoaded)
}

func TestBootstrap_EnvironmentOverride(t *testing.T) {
	resetLogging(t)
	configDir, _ := writeConfig(t)
	t.Setenv("TEST__LOGGING__FORMAT", "console")

	b := New(
		WithConfigDir(configDir),
		WithEnvPrefix("TEST"),
		WithLoggingOptions(logging.WithStdout(&bytes.Buffer{})),
	)
	require.NoError(t, b.Initialize())
	t.Cleanup(func() { _ = b.Close() })

	assert.Equal(t, logging.FormatConsole, b.LoggingConfig().Format)
}

func TestBootstrap_Metrics(t *testing.T) {
	resetLogging(t)
	configDir, logDir := writeConfig(t)
	reg := prometheus.NewRegistry()

	b := New(
		WithConfigDir(configDir),
		WithMetricsRegisterer(reg),
		WithLoggingOptions(logging.WithStdout(&bytes.Buffer{})),
	)
	require.NoError(t, b.Initialize())

	logging.L().Named("api").Info("counted")
	require.NoError(t, b.Close())

	m := b.Metrics()
	require.NotNil(t, m)
	label := "file:" + filepath.Join(logDir, "app.log")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Written.WithLabelValues(label)))
	// The console takes the root default, which catches the startup event too.
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Written.WithLabelValues("console")))
}

func TestBootstrap_AlreadyInstalled(t *testing.T) {
	resetLogging(t)
	configDir, _ := writeConfig(t)

	first := New(WithConfigDir(configDir), WithLoggingOptions(logging.WithStdout(&bytes.Buffer{})))
	require.NoError(t, first.Initialize())
	t.Cleanup(func() { _ = first.Close() })

	second := New(WithConfigDir(configDir))
	assert.ErrorIs(t, second.Initialize(), logging.ErrAlreadyInstalled)
}
