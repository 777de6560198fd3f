package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithDefaultsFillsAmbientFields(t *testing.T) {
	cfg := Config{Path: "/tmp/x.db"}.WithDefaults()
	require.Equal(t, 2000, cfg.Engine.LockTimeoutMS)
	require.Equal(t, 5000, cfg.Engine.RetryMaxElapsedMS)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadRejectsMissingPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "warren.toml")
	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadAppliesDefaultsOverLayeredFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "warren.toml")
	content := "path = \"/var/data/warren.db\"\n\n[logging]\nlevel = \"debug\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/data/warren.db", cfg.Path)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, 2000, cfg.Engine.LockTimeoutMS)
}
