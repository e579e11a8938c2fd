package smith

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadConfigMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := ReadConfig(t.Context(), filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err, "a missing config is not an error")
	require.Equal(t, "1", cfg.Version)
	require.Equal(t, DefaultReportsRoot, cfg.ReportsRoot)
	require.Equal(t, DefaultBaselinePath, cfg.BaselinePath)
	require.Equal(t, "info", cfg.Log.Level)
	require.False(t, cfg.Log.JSON)
}

func TestReadConfigInvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeTestFile(t, path, "reports_root: [unterminated")
	_, err := ReadConfig(t.Context(), path)
	require.Error(t, err)
}

func TestConfigWriteRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.ReportsRoot = "/srv/reports"
	cfg.Log.Level = "debug"
	cfg.Log.JSON = true
	require.NoError(t, cfg.Write(t.Context(), path))
	require.NotEmpty(t, cfg.Updated, "writing must stamp the config")
	require.NoFileExists(t, path+".tmp", "the temp file must be renamed away")

	got, err := ReadConfig(t.Context(), path)
	require.NoError(t, err)
	require.Equal(t, "/srv/reports", got.ReportsRoot)
	require.Equal(t, DefaultBaselinePath, got.BaselinePath)
	require.Equal(t, "debug", got.Log.Level)
	require.True(t, got.Log.JSON)
	require.Equal(t, cfg.Updated, got.Updated)
}

func TestConfigMerge(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Merge(&Config{ReportsRoot: "elsewhere", Log: LogConfig{Level: "warn", File: "run.log"}})
	require.Equal(t, "elsewhere", cfg.ReportsRoot)
	require.Equal(t, DefaultBaselinePath, cfg.BaselinePath, "zero fields in the overlay leave the base alone")
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, "run.log", cfg.Log.File)

	cfg.Merge(nil)
	require.Equal(t, "elsewhere", cfg.ReportsRoot)

	cfg.Log.JSON = true
	cfg.Merge(&Config{})
	require.True(t, cfg.Log.JSON, "merging must never clear the json flag")
}

func TestDefaultConfigPath(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	path, err := DefaultConfigPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(xdg, ConfigAppName, "config.yaml"), path)
}
