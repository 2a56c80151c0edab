package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWithNoFileOrEnv(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.RetryCount)
	require.Equal(t, 300, cfg.RetryBaseDelayMs)
	require.Equal(t, int64(4194304), cfg.SmallFileThresholdBytes)
	require.Equal(t, 3, cfg.MaxParallelSmallFiles)
	require.False(t, cfg.ContinueOnError)
}

func TestLoadMergesYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"left_root: /left\nright_root: /right\nretry_count: 5\n",
	), 0644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	require.Equal(t, "/left", cfg.LeftRoot)
	require.Equal(t, "/right", cfg.RightRoot)
	require.Equal(t, 5, cfg.RetryCount)
	// Fields absent from the file keep their struct defaults.
	require.Equal(t, 300, cfg.RetryBaseDelayMs)
}

func TestLoadMissingFileAtExplicitPathIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.RetryCount)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retry_count: 5\n"), 0644))

	t.Setenv("LEMPICKA_RETRY_COUNT", "7")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	require.Equal(t, 7, cfg.RetryCount)
}

func TestLoadFlagOverlayTakesPriority(t *testing.T) {
	t.Setenv("LEMPICKA_RETRY_COUNT", "7")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("retry-count", 2, "")
	require.NoError(t, flags.Set("retry-count", "9"))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	require.Equal(t, 9, cfg.RetryCount)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_parallel_small_files: 0\n"), 0644))

	_, err := Load(path, nil)
	require.Error(t, err)
}

func TestToSyncOptionsCarriesFieldsThrough(t *testing.T) {
	cfg := &FileConfig{LeftRoot: "/a", RightRoot: "/b", RetryCount: 4, MaxParallelSmallFiles: 2}
	options := cfg.ToSyncOptions()
	require.Equal(t, "/a", options.LeftRoot)
	require.Equal(t, "/b", options.RightRoot)
	require.Equal(t, 4, options.RetryCount)
	require.Equal(t, 2, options.MaxParallelSmallFiles)
}
