package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://www.annualreports.com", cfg.Collect.BaseURL)
	assert.Equal(t, 50, cfg.Collect.MinCompanies)
	assert.Equal(t, 2020, cfg.Collect.MinYear)
	assert.Equal(t, 2025, cfg.Collect.MaxYear)
	assert.Equal(t, int64(1000), cfg.Collect.MinPDFBytes)
	assert.Equal(t, "data/pdf_metadata.csv", cfg.Collect.MetadataPath)
	assert.Equal(t, "native", cfg.Extract.Provider)
	assert.Equal(t, 50, cfg.Extract.MaxPages)
	assert.Equal(t, 500, cfg.Extract.MinChars)
	assert.Equal(t, 500, cfg.Label.MaxExcerptChars)
	assert.Equal(t, 3, cfg.Label.ExcerptsPerReport)
	assert.Equal(t, "dataset.csv", cfg.Train.DatasetPath)
	assert.Equal(t, 16, cfg.Train.BatchSize)
	assert.Equal(t, 3, cfg.Train.Epochs)
	assert.InDelta(t, 0.05, cfg.Train.LearningRate, 0.0001)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./model", cfg.Server.ModelDir)
	assert.Empty(t, cfg.Server.AllowedOrigins)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
collect:
  min_companies: 10
  concurrency: 2
train:
  epochs: 5
server:
  allowed_origins: ["http://localhost:3000"]
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Collect.MinCompanies)
	assert.Equal(t, 2, cfg.Collect.Concurrency)
	assert.Equal(t, 5, cfg.Train.Epochs)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	// Defaults still apply for unset values
	assert.Equal(t, 16, cfg.Train.BatchSize)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("SCOPE_STORE_DRIVER", "postgres")
	t.Setenv("SCOPE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("SCOPE_TRAIN_EPOCHS", "7")
	t.Setenv("SCOPE_EXTRACT_PROVIDER", "pdftotext")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Train.Epochs)
	assert.Equal(t, "pdftotext", cfg.Extract.Provider)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("collect: [unclosed"), 0o644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestLoadFile_ExplicitPath(t *testing.T) {
	chdirTemp(t)
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte("label:\n  output_path: out/dataset.csv\nlog:\n  level: debug\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "out/dataset.csv", cfg.Label.OutputPath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 50, cfg.Collect.MinCompanies)
}

func TestLoadFile_MissingExplicitPath(t *testing.T) {
	chdirTemp(t)

	_, err := LoadFile("/nonexistent/pipeline.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
}

func TestInitLoggerBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "loud", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
