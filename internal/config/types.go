package config

import (
	"path/filepath"
)

const (
	// DefaultServerCommand is the MCP server binary spawned when no command is configured.
	DefaultServerCommand = "protokoll-mcp"
	// DefaultUpdateRepository is the GitHub slug self-update looks for releases in.
	DefaultUpdateRepository = "redaksjon/protokoll"
)

// ProtokollConfig is the top-level configuration structure for the protokoll CLI.
type ProtokollConfig struct {
	// MCP server settings
	MCPServerCommand string   `yaml:"mcpServerCommand,omitempty" mapstructure:"mcpServerCommand"`
	MCPServerArgs    []string `yaml:"mcpServerArgs,omitempty" mapstructure:"mcpServerArgs"`

	// Directory settings
	InputDirectory     string   `yaml:"inputDirectory,omitempty" mapstructure:"inputDirectory"`
	OutputDirectory    string   `yaml:"outputDirectory,omitempty" mapstructure:"outputDirectory"`
	ProcessedDirectory string   `yaml:"processedDirectory,omitempty" mapstructure:"processedDirectory"`
	ContextDirectories []string `yaml:"contextDirectories,omitempty" mapstructure:"contextDirectories"`

	// Model settings
	Model              string `yaml:"model,omitempty" mapstructure:"model"`
	TranscriptionModel string `yaml:"transcriptionModel,omitempty" mapstructure:"transcriptionModel"`
	ClassifyModel      string `yaml:"classifyModel,omitempty" mapstructure:"classifyModel"`
	ComposeModel       string `yaml:"composeModel,omitempty" mapstructure:"composeModel"`

	OpenAIAPIKey string `yaml:"openaiApiKey,omitempty" mapstructure:"openaiApiKey"`

	Debug   bool `yaml:"debug,omitempty" mapstructure:"debug"`
	Verbose bool `yaml:"verbose,omitempty" mapstructure:"verbose"`
	// LogLevel names the log level (debug, info, warn, error) used when
	// neither debug nor verbose is set.
	LogLevel string `yaml:"logLevel,omitempty" mapstructure:"logLevel"`

	UpdateRepository string `yaml:"updateRepository,omitempty" mapstructure:"updateRepository"`

	// Sources lists the files the configuration was read from, farthest first.
	Sources []string `yaml:"-" mapstructure:"-"`
}

// GetDefaultConfig returns the configuration used when no file or environment
// variable says otherwise.
func GetDefaultConfig() ProtokollConfig {
	return ProtokollConfig{
		MCPServerCommand: DefaultServerCommand,
		MCPServerArgs:    []string{},
		UpdateRepository: DefaultUpdateRepository,
	}
}

// ConfigDir returns the directory of the nearest configuration file, or an
// empty string when the configuration came from defaults and environment only.
func (c ProtokollConfig) ConfigDir() string {
	if len(c.Sources) == 0 {
		return ""
	}
	return filepath.Dir(c.Sources[len(c.Sources)-1])
}

// Override mutates a loaded configuration. Overrides are applied last and win
// over files and environment variables.
type Override func(*ProtokollConfig)

// WithDebug forces debug logging on.
func WithDebug(debug bool) Override {
	return func(c *ProtokollConfig) {
		if debug {
			c.Debug = true
		}
	}
}

// WithVerbose forces verbose logging on.
func WithVerbose(verbose bool) Override {
	return func(c *ProtokollConfig) {
		if verbose {
			c.Verbose = true
		}
	}
}

// WithModel replaces the enhancement model when model is non-empty.
func WithModel(model string) Override {
	return func(c *ProtokollConfig) {
		if model != "" {
			c.Model = model
		}
	}
}
