package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"protokoll/pkg/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// For mocking in tests
var osGetwd = os.Getwd

const (
	// ConfigFileName is looked up in the working directory and every parent.
	ConfigFileName = "protokoll-config.yaml"

	envPrefix   = "PROTOKOLL"
	dotEnvFile  = ".env"
	subsystemID = "Config"
)

// envBindings maps configuration keys to their environment variable suffix.
var envBindings = map[string]string{
	"mcpServerCommand":   "MCP_SERVER_COMMAND",
	"mcpServerArgs":      "MCP_SERVER_ARGS",
	"inputDirectory":     "INPUT_DIRECTORY",
	"outputDirectory":    "OUTPUT_DIRECTORY",
	"processedDirectory": "PROCESSED_DIRECTORY",
	"contextDirectories": "CONTEXT_DIRECTORIES",
	"model":              "MODEL",
	"transcriptionModel": "TRANSCRIPTION_MODEL",
	"classifyModel":      "CLASSIFY_MODEL",
	"composeModel":       "COMPOSE_MODEL",
	"openaiApiKey":       "OPENAI_API_KEY",
	"debug":              "DEBUG",
	"verbose":            "VERBOSE",
	"logLevel":           "LOG_LEVEL",
	"updateRepository":   "UPDATE_REPOSITORY",
}

// GetConfigFileName returns the default configuration file name.
func GetConfigFileName() string {
	return ConfigFileName
}

// LoadConfig loads the protokoll configuration.
//
// With an empty configPath every protokoll-config.yaml between the filesystem
// root and the working directory is merged, nearer files overriding farther
// ones. With a configPath only that file is read. PROTOKOLL_* environment
// variables are applied on top, and overrides are applied last.
func LoadConfig(configPath string, overrides ...Override) (ProtokollConfig, error) {
	loadDotEnv()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	var sources []string
	if configPath != "" {
		fullPath, err := filepath.Abs(configPath)
		if err != nil {
			return ProtokollConfig{}, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		v.SetConfigFile(fullPath)
		if err := v.ReadInConfig(); err != nil {
			return ProtokollConfig{}, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		sources = append(sources, fullPath)
	} else {
		paths, err := discoverConfigFiles()
		if err != nil {
			logging.Warn(subsystemID, "Could not search for %s: %v", ConfigFileName, err)
		}
		for _, path := range paths {
			v.SetConfigFile(path)
			if err := v.MergeInConfig(); err != nil {
				return ProtokollConfig{}, fmt.Errorf("error loading config from %s: %w", path, err)
			}
			sources = append(sources, path)
		}
	}

	for key, suffix := range envBindings {
		if err := v.BindEnv(key, envPrefix+"_"+suffix); err != nil {
			return ProtokollConfig{}, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	var cfg ProtokollConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return ProtokollConfig{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.Sources = sources
	if cfg.MCPServerCommand == "" {
		cfg.MCPServerCommand = DefaultServerCommand
	}
	if cfg.MCPServerArgs == nil {
		cfg.MCPServerArgs = []string{}
	}

	for _, override := range overrides {
		override(&cfg)
	}

	for _, src := range sources {
		logging.Debug(subsystemID, "Loaded configuration from %s", src)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := GetDefaultConfig()
	v.SetDefault("mcpServerCommand", defaults.MCPServerCommand)
	v.SetDefault("mcpServerArgs", defaults.MCPServerArgs)
	v.SetDefault("updateRepository", defaults.UpdateRepository)
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
}

// discoverConfigFiles walks from the working directory to the filesystem root
// and returns every config file found, farthest first.
var discoverConfigFiles = func() ([]string, error) {
	wd, err := osGetwd()
	if err != nil {
		return nil, err
	}

	var found []string
	dir := wd
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			found = append(found, candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	// Reverse so that the nearest file is merged last.
	for i, j := 0, len(found)-1; i < j; i, j = i+1, j-1 {
		found[i], found[j] = found[j], found[i]
	}
	return found, nil
}

// loadDotEnv reads .env from the working directory. Variables that are
// already set in the environment keep their value.
func loadDotEnv() {
	wd, err := osGetwd()
	if err != nil {
		return
	}
	path := filepath.Join(wd, dotEnvFile)
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn(subsystemID, "Could not load %s: %v", path, err)
	}
}
