package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partner-up-dev/fclayer/internal/errors"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "default", cfg.Access)
	assert.Equal(t, 3, cfg.Keep)
	assert.False(t, cfg.Strict)
	assert.False(t, cfg.Prune.ContinueOnError)
	assert.Equal(t, "s", cfg.Command.Program)
	assert.Equal(t, []string{"cli", "fc3", "layer"}, cfg.Command.Prefix)
	assert.Equal(t, "json", cfg.Command.OutputFormat)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_LoadFromYAML(t *testing.T) {
	yamlContent := `
access: "prod"
keep: 5
strict: true
prune:
  continue_on_error: true
command:
  program: "/usr/local/bin/s"
  prefix: ["cli", "fc3", "layer"]
  flag_names:
    access: "--access"
dev:
  debug: true
`
	path := writeConfig(t, t.TempDir(), ".fclayer.yml", yamlContent)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Access)
	assert.Equal(t, 5, cfg.Keep)
	assert.True(t, cfg.Strict)
	assert.True(t, cfg.Prune.ContinueOnError)
	assert.Equal(t, "/usr/local/bin/s", cfg.Command.Program)
	assert.True(t, cfg.Dev.Debug)

	// Overridden spelling replaces the default, others are kept.
	assert.Equal(t, "--access", cfg.Command.FlagName("access"))
	assert.Equal(t, "-o", cfg.Command.FlagName("outputFormat"))
}

func TestConfig_LoadNonExistentFile(t *testing.T) {
	_, err := LoadConfig("/non/existent/file.yml")
	assert.Error(t, err)
	assert.Equal(t, errors.ErrorTypeConfig, errors.TypeOf(err))
}

func TestConfig_LoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "bad.yml", "keep: [unclosed\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestConfig_FindConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	subDir := filepath.Join(tempDir, "deploy", "layers")
	require.NoError(t, os.MkdirAll(subDir, 0755))
	configPath := writeConfig(t, tempDir, ".fclayer.yml", "keep: 4\n")

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalDir) }()
	require.NoError(t, os.Chdir(subDir))

	found := FindConfigFile()
	// Resolve symlinks (macOS temp dirs live under /private)
	expected, _ := filepath.EvalSymlinks(configPath)
	actual, _ := filepath.EvalSymlinks(found)
	assert.Equal(t, expected, actual)
}

func TestConfig_Validate(t *testing.T) {
	cfg := NewConfig()
	cfg.Command.Program = "  "

	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeConfig, errors.TypeOf(err))
}

func TestCommandConfig_FlagName(t *testing.T) {
	cfg := NewConfig()

	tests := []struct {
		option   string
		expected string
	}{
		{option: "region", expected: "--region"},
		{option: "layerName", expected: "--layer-name"},
		{option: "versionId", expected: "--version-id"},
		{option: "access", expected: "-a"},
		{option: "assumeYes", expected: "-y"},
	}

	for _, tt := range tests {
		t.Run(tt.option, func(t *testing.T) {
			assert.Equal(t, tt.expected, cfg.Command.FlagName(tt.option))
		})
	}
}

func TestLoadConfigWithPrecedence(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "fclayer.yml", "access: staging\nkeep: 6\n")
	access, keep := "prod", 2

	cfg, err := LoadConfigWithCLI(path, Overrides{Access: &access, Keep: &keep, DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Access)
	assert.Equal(t, 2, cfg.Keep)
	assert.True(t, cfg.Prune.DryRun)
}

func TestLoadConfigWithPrecedence_ExplicitDefaultsWin(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "fclayer.yml", "access: staging\nkeep: 1\n")
	access, keep := DefaultAccess, DefaultKeep

	cfg, err := LoadConfigWithCLI(path, Overrides{Access: &access, Keep: &keep})
	require.NoError(t, err)

	assert.Equal(t, DefaultAccess, cfg.Access)
	assert.Equal(t, DefaultKeep, cfg.Keep)
}

func TestLoadConfigWithPrecedence_NoOverrides(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "fclayer.yml", "access: staging\nkeep: 6\nstrict: true\n")

	cfg, err := LoadConfigWithCLI(path, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Access)
	assert.Equal(t, 6, cfg.Keep)
	assert.True(t, cfg.Strict)
}

func TestLoadConfigWithPrecedence_NoFile(t *testing.T) {
	keep := 0

	cfg, err := LoadConfigWithCLI("", Overrides{Keep: &keep})
	require.NoError(t, err)

	// An explicit --keep 0 must reach the prune command so it can be rejected.
	assert.Equal(t, 0, cfg.Keep)
	assert.Equal(t, DefaultAccess, cfg.Access)

	cfg, err = LoadConfigWithCLI("", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, DefaultKeep, cfg.Keep)
}
