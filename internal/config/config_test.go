package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hestia/pkg/consts"
	herrors "github.com/turtacn/hestia/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hestia.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
environment: production
server_id: web-1
pid_file: /tmp/hestia-test.pid
initializers:
  builtin_root: /opt/hestia/builtin
  paths: [./initializers, ./extra]
plugins:
  metrics:
    path: /opt/plugins/metrics
    metadata:
      version: "1.2"
lifecycle:
  settle_delay: 250ms
  flush_delay: 2s
watch:
  enabled: true
observability:
  log_level: debug
  status_addr: ""
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "web-1", cfg.ServerID)
	assert.Equal(t, "/tmp/hestia-test.pid", cfg.PIDFile)
	assert.Equal(t, "/opt/hestia/builtin", cfg.Initializers.BuiltinRoot)
	assert.Equal(t, []string{"./initializers", "./extra"}, cfg.Initializers.Paths)
	assert.Equal(t, "/opt/plugins/metrics", cfg.Plugins["metrics"].Path)
	assert.Equal(t, "1.2", cfg.Plugins["metrics"].Metadata["version"])
	assert.Equal(t, 250*time.Millisecond, cfg.Lifecycle.SettleDelay)
	assert.Equal(t, 2*time.Second, cfg.Lifecycle.FlushDelay)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, consts.DefaultDebounce, cfg.Watch.Debounce)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.Empty(t, cfg.Observability.StatusAddr)
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, consts.DefaultEnvironment, cfg.Environment)
	assert.Equal(t, consts.DefaultPIDFile, cfg.PIDFile)
	assert.Equal(t, consts.DefaultBuiltinRoot, cfg.Initializers.BuiltinRoot)
	assert.Equal(t, consts.DefaultSettleDelay, cfg.Lifecycle.SettleDelay)
	assert.Equal(t, consts.DefaultStatusAddr, cfg.Observability.StatusAddr)
	assert.NotEmpty(t, cfg.ServerID, "server id is generated")
	assert.NotNil(t, cfg.Plugins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "environment: staging\n")
	t.Setenv("HESTIA_ENVIRONMENT", "production")
	t.Setenv("HESTIA_LIFECYCLE_SETTLE_DELAY", "1s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, time.Second, cfg.Lifecycle.SettleDelay)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "BadLogLevel", body: "observability:\n  log_level: chatty\n"},
		{name: "PluginWithoutPath", body: "plugins:\n  broken:\n    metadata: {a: b}\n"},
		{name: "NegativeDelay", body: "lifecycle:\n  settle_delay: -1s\n"},
		{name: "MalformedYAML", body: "environment: [unterminated\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Equal(t, herrors.ErrCodeConfigInvalid, herrors.CodeOf(err))
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	cfg.Environment = "qa"
	cfg.Initializers.Paths = []string{"/srv/init"}

	path := filepath.Join(t.TempDir(), "nested", "hestia.yaml")
	require.NoError(t, Save(cfg, path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "qa", again.Environment)
	assert.Equal(t, cfg.ServerID, again.ServerID)
	assert.Equal(t, []string{"/srv/init"}, again.Initializers.Paths)
	assert.Equal(t, cfg.Lifecycle, again.Lifecycle)
}
