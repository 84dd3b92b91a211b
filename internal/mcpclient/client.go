package mcpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"protokoll/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	// DefaultServerCommand is spawned when Options.ServerCommand is empty.
	DefaultServerCommand = "protokoll-mcp"
	// DefaultTimeout matches the request timeout of the reference MCP SDKs.
	DefaultTimeout = 60 * time.Second

	clientName = "protokoll-cli"
	subsystem  = "MCPClient"

	methodProgress = "notifications/progress"
)

// ErrNotConnected is returned by every request method before Connect succeeds.
var ErrNotConnected = errors.New("client not connected, call Connect first")

// Options configures how the server process is spawned.
type Options struct {
	ServerCommand   string
	ServerArgs      []string
	WorkspaceRoot   string
	ConfigDirectory string
	// Env holds extra KEY=VALUE pairs for the server process on top of the
	// inherited environment.
	Env           map[string]string
	Timeout       time.Duration
	ClientVersion string
	// Stderr receives the server's stderr. Defaults to os.Stderr.
	Stderr io.Writer
}

// DialFunc produces a started, not yet initialized, MCP client.
type DialFunc func(ctx context.Context, opts Options) (client.MCPClient, error)

// Client is a connection to a protokoll MCP server running as a child process.
type Client struct {
	options   Options
	dial      DialFunc
	client    client.MCPClient
	connected bool
	mu        sync.Mutex

	progressMu sync.RWMutex
	onProgress func(ProgressUpdate)
}

// New creates a client that spawns the server over stdio on Connect.
func New(opts Options) *Client {
	return NewWithDialer(opts, DialStdio)
}

// NewWithDialer creates a client using a custom transport dialer.
func NewWithDialer(opts Options, dial DialFunc) *Client {
	if opts.ServerCommand == "" {
		opts.ServerCommand = DefaultServerCommand
	}
	if opts.ServerArgs == nil {
		opts.ServerArgs = []string{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.ClientVersion == "" {
		opts.ClientVersion = "dev"
	}
	return &Client{
		options: opts,
		dial:    dial,
	}
}

// Options returns the effective options after defaults were applied.
func (c *Client) Options() Options {
	return c.options
}

// Connect spawns the server and performs the MCP handshake. Calling Connect
// on a connected client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	logging.Debug(subsystem, "Spawning MCP server: %s %v", c.options.ServerCommand, c.options.ServerArgs)

	mcpClient, err := c.dial(ctx, c.options)
	if err != nil {
		return fmt.Errorf("failed to connect to MCP server: %w", err)
	}
	c.client = mcpClient
	c.client.OnNotification(c.handleNotification)

	if err := c.initialize(ctx); err != nil {
		c.cleanup()
		return fmt.Errorf("failed to connect to MCP server: %w", err)
	}

	c.connected = true
	return nil
}

// CallTool executes a tool and returns the raw result.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]interface{}, opts ...CallOption) (*mcp.CallToolResult, error) {
	mcpClient, err := c.connectedClient()
	if err != nil {
		return nil, err
	}

	callOpts := callOptions{timeout: c.options.Timeout}
	for _, opt := range opts {
		opt(&callOpts)
	}

	if args == nil {
		args = map[string]interface{}{}
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	if callOpts.progressToken != "" {
		req.Params.Meta = &mcp.Meta{ProgressToken: callOpts.progressToken}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, callOpts.timeout)
	defer cancel()

	logging.Debug(subsystem, "tools/call (%s) args=%v", name, args)

	result, err := mcpClient.CallTool(timeoutCtx, req)
	if err != nil {
		return nil, fmt.Errorf("tool call %s failed: %w", name, err)
	}
	return result, nil
}

// ListTools lists the tools the server offers.
func (c *Client) ListTools(ctx context.Context) (*mcp.ListToolsResult, error) {
	mcpClient, err := c.connectedClient()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.options.Timeout)
	defer cancel()

	logging.Debug(subsystem, "tools/list")
	return mcpClient.ListTools(timeoutCtx, mcp.ListToolsRequest{})
}

// ReadResource reads a resource by URI.
func (c *Client) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	mcpClient, err := c.connectedClient()
	if err != nil {
		return nil, err
	}

	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri

	timeoutCtx, cancel := context.WithTimeout(ctx, c.options.Timeout)
	defer cancel()

	logging.Debug(subsystem, "resources/read (%s)", uri)
	return mcpClient.ReadResource(timeoutCtx, req)
}

// ListResources lists the resources the server offers.
func (c *Client) ListResources(ctx context.Context) (*mcp.ListResourcesResult, error) {
	mcpClient, err := c.connectedClient()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.options.Timeout)
	defer cancel()

	logging.Debug(subsystem, "resources/list")
	return mcpClient.ListResources(timeoutCtx, mcp.ListResourcesRequest{})
}

// GetPrompt renders a prompt with the given arguments.
func (c *Client) GetPrompt(ctx context.Context, name string, args map[string]string) (*mcp.GetPromptResult, error) {
	mcpClient, err := c.connectedClient()
	if err != nil {
		return nil, err
	}

	req := mcp.GetPromptRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	timeoutCtx, cancel := context.WithTimeout(ctx, c.options.Timeout)
	defer cancel()

	logging.Debug(subsystem, "prompts/get (%s)", name)
	return mcpClient.GetPrompt(timeoutCtx, req)
}

// ListPrompts lists the prompts the server offers.
func (c *Client) ListPrompts(ctx context.Context) (*mcp.ListPromptsResult, error) {
	mcpClient, err := c.connectedClient()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.options.Timeout)
	defer cancel()

	logging.Debug(subsystem, "prompts/list")
	return mcpClient.ListPrompts(timeoutCtx, mcp.ListPromptsRequest{})
}

// Close shuts the connection down. Errors from the transport are ignored and
// Close may be called any number of times.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanup()
	return nil
}

// IsConnected reports whether the handshake completed and Close was not called.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) connectedClient() (client.MCPClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil || !c.connected {
		return nil, ErrNotConnected
	}
	return c.client, nil
}

// cleanup must be called with c.mu held.
func (c *Client) cleanup() {
	c.connected = false
	if c.client != nil {
		if err := c.client.Close(); err != nil {
			logging.Debug(subsystem, "Ignoring close error: %v", err)
		}
		c.client = nil
	}
}

// initialize performs the MCP protocol handshake
func (c *Client) initialize(ctx context.Context) error {
	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    clientName,
		Version: c.options.ClientVersion,
	}
	req.Params.Capabilities = mcp.ClientCapabilities{}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.options.Timeout)
	defer cancel()

	result, err := c.client.Initialize(timeoutCtx, req)
	if err != nil {
		return err
	}
	logging.Debug(subsystem, "Connected to %s %s", result.ServerInfo.Name, result.ServerInfo.Version)
	return nil
}

// DialStdio spawns the configured server command and wires its stderr through.
func DialStdio(ctx context.Context, opts Options) (client.MCPClient, error) {
	stdio := transport.NewStdio(opts.ServerCommand, serverEnv(opts), opts.ServerArgs...)
	mcpClient := client.NewClient(stdio)
	if err := mcpClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", opts.ServerCommand, err)
	}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	go func() {
		_, _ = io.Copy(stderr, stdio.Stderr())
	}()

	return mcpClient, nil
}

// serverEnv lists the variables added to the inherited environment of the
// server process.
func serverEnv(opts Options) []string {
	keys := make([]string, 0, len(opts.Env))
	for key := range opts.Env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var env []string
	for _, key := range keys {
		env = append(env, key+"="+opts.Env[key])
	}
	if opts.WorkspaceRoot != "" {
		env = append(env, "WORKSPACE_ROOT="+opts.WorkspaceRoot)
	}
	if opts.ConfigDirectory != "" {
		env = append(env, "PROTOKOLL_CONFIG_DIR="+opts.ConfigDirectory)
	}
	return env
}
