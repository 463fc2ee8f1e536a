package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolated returns options that never pick up files from the developer machine
func isolated(t *testing.T) LoadOptions {
	t.Helper()
	dir := t.TempDir()
	return LoadOptions{
		SearchPaths: []string{dir},
		EnvFile:     filepath.Join(dir, "missing.env"),
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(isolated(t))
	require.NoError(t, err)

	assert.Equal(t, "annotations.csv", cfg.Store.Path)
	assert.True(t, cfg.Navigation.Autosave)
	assert.False(t, cfg.Navigation.UnlabeledOnly)
	assert.Equal(t, 500, cfg.Display.MaxSize)
	assert.True(t, cfg.Display.Rotate)
	assert.Equal(t, 10*time.Minute, cfg.Display.CacheTTL)
	assert.Contains(t, cfg.Scan.Extensions, ".jpg")
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Source())

	assert.Equal(t, Default(), cfg)
}

func TestLoadFromFile(t *testing.T) {
	opts := isolated(t)
	path := filepath.Join(opts.SearchPaths[0], AppName+".yaml")
	content := `
data_dir: /scans
store:
  path: labels.json
navigation:
  unlabeled_only: true
  autosave: false
display:
  max_size: 320
  cache_ttl: 30s
scan:
  extensions: [".png"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "/scans", cfg.DataDir)
	assert.Equal(t, "labels.json", cfg.Store.Path)
	assert.True(t, cfg.Navigation.UnlabeledOnly)
	assert.False(t, cfg.Navigation.Autosave)
	assert.Equal(t, 320, cfg.Display.MaxSize)
	assert.Equal(t, 30*time.Second, cfg.Display.CacheTTL)
	assert.Equal(t, []string{".png"}, cfg.Scan.Extensions)
	assert.Equal(t, path, cfg.Source())
}

func TestExplicitConfigFileMustExist(t *testing.T) {
	opts := isolated(t)
	opts.ConfigFile = filepath.Join(t.TempDir(), "nope.yaml")

	_, err := Load(opts)
	assert.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	opts := isolated(t)
	path := filepath.Join(opts.SearchPaths[0], AppName+".yaml")
	require.NoError(t, os.WriteFile(path, []byte("display:\n  max_size: 320\n"), 0o644))

	t.Setenv("ECG_ANNOTATOR_DISPLAY_MAX_SIZE", "640")
	t.Setenv("ECG_ANNOTATOR_NAVIGATION_UNLABELED_ONLY", "true")

	cfg, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Display.MaxSize)
	assert.True(t, cfg.Navigation.UnlabeledOnly)
}

func TestDotEnvFile(t *testing.T) {
	opts := isolated(t)
	opts.EnvFile = filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(opts.EnvFile, []byte("ECG_ANNOTATOR_LOGGING_LEVEL=debug\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("ECG_ANNOTATOR_LOGGING_LEVEL") })

	cfg, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty store path", func(c *Config) { c.Store.Path = " " }},
		{"bad format", func(c *Config) { c.Store.Format = "xlsx" }},
		{"no extensions", func(c *Config) { c.Scan.Extensions = nil }},
		{"zero size", func(c *Config) { c.Display.MaxSize = 0 }},
		{"negative ttl", func(c *Config) { c.Display.CacheTTL = -time.Second }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestStorePath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "annotations.csv", cfg.StorePath())

	cfg.DataDir = filepath.Join("data", "scans")
	assert.Equal(t, filepath.Join("data", "scans", "annotations.csv"), cfg.StorePath())

	abs := filepath.Join(t.TempDir(), "labels.yaml")
	cfg.Store.Path = abs
	assert.Equal(t, abs, cfg.StorePath())
}

func TestSaveFileRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/scans/batch-7"
	cfg.Navigation.UnlabeledOnly = true
	cfg.Display.CacheTTL = 90 * time.Second

	path := filepath.Join(t.TempDir(), "nested", AppName+".yaml")
	require.NoError(t, cfg.SaveFile(path))
	assert.Equal(t, path, cfg.Source())

	opts := isolated(t)
	opts.ConfigFile = path
	loaded, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, cfg.DataDir, loaded.DataDir)
	assert.True(t, loaded.Navigation.UnlabeledOnly)
	assert.Equal(t, 90*time.Second, loaded.Display.CacheTTL)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	opts := isolated(t)
	t.Setenv("ECG_ANNOTATOR_DATA_DIR", "/from/env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("data-dir", "", "")
	flags.Bool("unlabeled-only", false, "")
	require.NoError(t, flags.Parse([]string{"--data-dir", "/from/flag"}))

	opts.Flags = map[string]*pflag.Flag{
		"data_dir":                  flags.Lookup("data-dir"),
		"navigation.unlabeled_only": flags.Lookup("unlabeled-only"),
		"store.path":                nil,
	}

	cfg, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.DataDir)
	assert.False(t, cfg.Navigation.UnlabeledOnly, "unset flags keep lower layers")
	assert.Equal(t, "annotations.csv", cfg.Store.Path)
}
