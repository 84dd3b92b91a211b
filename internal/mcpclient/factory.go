package mcpclient

import (
	"os"

	"protokoll/internal/config"
)

// For mocking in tests
var osGetwd = os.Getwd

// NewConfigured builds a client from the loaded configuration. The working
// directory becomes the server's workspace root. overrides are applied to the
// options last.
func NewConfigured(cfg config.ProtokollConfig, overrides ...func(*Options)) *Client {
	opts := Options{
		ServerCommand:   cfg.MCPServerCommand,
		ServerArgs:      cfg.MCPServerArgs,
		ConfigDirectory: cfg.ConfigDir(),
	}
	if wd, err := osGetwd(); err == nil {
		opts.WorkspaceRoot = wd
	}
	if cfg.OpenAIAPIKey != "" {
		if _, set := os.LookupEnv("OPENAI_API_KEY"); !set {
			opts.Env = map[string]string{"OPENAI_API_KEY": cfg.OpenAIAPIKey}
		}
	}

	for _, override := range overrides {
		override(&opts)
	}
	return New(opts)
}
