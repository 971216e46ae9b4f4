package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"

	"github.com/partner-up-dev/fclayer/internal/errors"
)

// Defaults shared with the CLI flag definitions.
const (
	DefaultAccess       = "default"
	DefaultKeep         = 3
	DefaultProgram      = "s"
	DefaultOutputFormat = "json"
)

// Config represents the complete configuration for fclayer
type Config struct {
	Access  string        `yaml:"access"`
	Keep    int           `yaml:"keep"`
	Strict  bool          `yaml:"strict"`
	Prune   PruneConfig   `yaml:"prune"`
	Command CommandConfig `yaml:"command"`
	Dev     DevConfig     `yaml:"dev"`
}

// PruneConfig controls how old versions are removed
type PruneConfig struct {
	// ContinueOnError attempts every removal and reports all failures
	// instead of stopping at the first one.
	ContinueOnError bool `yaml:"continue_on_error"`
	DryRun          bool `yaml:"dry_run"`
}

// CommandConfig describes how the Serverless Devs CLI is invoked
type CommandConfig struct {
	Program      string   `yaml:"program"`
	Prefix       []string `yaml:"prefix"`
	OutputFormat string   `yaml:"output_format"`
	// FlagNames overrides the spelling of individual option flags,
	// e.g. {"access": "-a"}.
	FlagNames map[string]string `yaml:"flag_names"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Access: DefaultAccess,
		Keep:   DefaultKeep,
		Strict: false,
		Prune: PruneConfig{
			ContinueOnError: false,
			DryRun:          false,
		},
		Command: CommandConfig{
			Program:      DefaultProgram,
			Prefix:       []string{"cli", "fc3", "layer"},
			OutputFormat: DefaultOutputFormat,
			FlagNames: map[string]string{
				"outputFormat": "-o",
				"access":       "-a",
				"assumeYes":    "-y",
			},
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to read config file '%s'", path), err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to parse config file '%s'", path), err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".fclayer.yml", ".fclayer.yaml", "fclayer.yml", "fclayer.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks values that would make every command fail. Keep is
// checked by the prune command itself.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Command.Program) == "" {
		return errors.NewConfigError("command.program must not be empty", nil)
	}
	return nil
}

// FlagName returns the command-line flag for an option name, applying
// overrides first and kebab-casing the rest: "layerName" becomes "--layer-name".
func (c *CommandConfig) FlagName(option string) string {
	if flag, ok := c.FlagNames[option]; ok && flag != "" {
		return flag
	}
	return "--" + strcase.ToKebab(option)
}

// Overrides holds values given on the command line. A nil Access or Keep
// means the flag was omitted and the config file (or default) applies.
type Overrides struct {
	Access          *string
	Keep            *int
	Strict          bool
	ContinueOnError bool
	DryRun          bool
	Debug           bool
}

// LoadConfigWithCLI loads config with CLI argument precedence: an explicitly
// given flag always wins over the config file, even when it repeats the default.
func LoadConfigWithCLI(configPath string, cli Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cli.Access != nil {
		cfg.Access = *cli.Access
	}
	if cli.Keep != nil {
		cfg.Keep = *cli.Keep
	}

	// Boolean switches can only turn behaviour on
	cfg.Strict = cfg.Strict || cli.Strict
	cfg.Prune.ContinueOnError = cfg.Prune.ContinueOnError || cli.ContinueOnError
	cfg.Prune.DryRun = cfg.Prune.DryRun || cli.DryRun
	cfg.Dev.Debug = cfg.Dev.Debug || cli.Debug

	return cfg, nil
}
