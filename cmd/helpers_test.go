package cmd

import (
	"bytes"
	"testing"

	"protokoll/internal/config"
	"protokoll/internal/mcpclient"
	"protokoll/internal/mcpclient/mcptest"
	"protokoll/internal/output"
)

// setupServer points every command at a fresh in-process server and replaces
// config loading with the defaults plus mutate.
func setupServer(t *testing.T, mutate ...func(*config.ProtokollConfig)) *mcptest.Server {
	t.Helper()

	srv := mcptest.NewServer()

	origNewClient, origLoadConfig := newClient, loadConfig
	newClient = func(cfg config.ProtokollConfig) *mcpclient.Client {
		return srv.NewClient()
	}
	loadConfig = func(path string, overrides ...config.Override) (config.ProtokollConfig, error) {
		cfg := config.GetDefaultConfig()
		for _, m := range mutate {
			m(&cfg)
		}
		for _, o := range overrides {
			o(&cfg)
		}
		return cfg, nil
	}

	t.Cleanup(func() {
		newClient, loadConfig = origNewClient, origLoadConfig
		activeConfig = config.GetDefaultConfig()
		activeFormat = output.FormatText
	})
	return srv
}

// runCLI executes a fresh command tree and returns stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
