package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scope-cli/internal/config"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{
		"collect", "label", "train", "augment", "validation", "diagnose",
		"validate", "verify", "predict", "serve", "runs",
	}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "scope-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "log-level", "log-format", "store-driver", "database-url"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "root should have --%s flag", name)
	}
	assert.Equal(t, "info", rootCmd.PersistentFlags().Lookup("log-level").DefValue)
}

func TestApplyGlobalFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addGlobalFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--log-level", "debug", "--database-url", "postgres://localhost/scope"}))

	c := &config.Config{
		Log:   config.LogConfig{Level: "warn", Format: "console"},
		Store: config.StoreConfig{Driver: "postgres", DatabaseURL: "from-file"},
	}
	applyGlobalFlags(cmd, c)

	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "console", c.Log.Format)
	assert.Equal(t, "postgres", c.Store.Driver)
	assert.Equal(t, "postgres://localhost/scope", c.Store.DatabaseURL)
}

func TestCollectCommand_Flags(t *testing.T) {
	for _, name := range []string{"min-companies", "concurrency", "fallback", "pdf-dir", "text-dir", "out"} {
		assert.NotNil(t, collectCmd.Flags().Lookup(name), "collect should have --%s flag", name)
	}
	assert.Equal(t, "50", collectCmd.Flags().Lookup("min-companies").DefValue)
}

func TestTrainCommand_Flags(t *testing.T) {
	for _, name := range []string{"dataset", "validation", "model-dir", "base-model", "epochs", "batch-size", "learning-rate", "seed"} {
		assert.NotNil(t, trainCmd.Flags().Lookup(name), "train should have --%s flag", name)
	}
	flag := trainCmd.Flags().Lookup("epochs")
	require.NotNil(t, flag)
	assert.Equal(t, "3", flag.DefValue)
}

func TestRunsCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range runsCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"list", "show", "stats"} {
		assert.True(t, names[name], "runs should have subcommand %q", name)
	}
}
