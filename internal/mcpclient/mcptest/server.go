// Package mcptest runs a fake protokoll MCP server in-process so that the
// client and the commands can be tested without spawning a child process.
package mcptest

import (
	"context"
	"encoding/json"
	"sync"

	"protokoll/internal/mcpclient"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Call records one tools/call request received by the fake server.
type Call struct {
	Tool string
	Args map[string]any
	Meta *mcp.Meta
}

// Server is an in-process MCP server with scripted tool responses.
type Server struct {
	srv      *server.MCPServer
	mu       sync.Mutex
	calls    []Call
	dials    int
	handlers []func(mcp.JSONRPCNotification)
}

// NewServer creates an empty fake server.
func NewServer() *Server {
	return &Server{
		srv: server.NewMCPServer(
			"protokoll-mcp-test",
			"0.0.0-test",
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
			server.WithPromptCapabilities(false),
		),
	}
}

// MCPServer exposes the underlying server to register resources and prompts.
func (s *Server) MCPServer() *server.MCPServer {
	return s.srv
}

// Handle registers a tool with a custom handler. Calls are recorded before
// the handler runs.
func (s *Server) Handle(tool string, handler server.ToolHandlerFunc) {
	s.srv.AddTool(mcp.NewTool(tool, mcp.WithDescription("test tool "+tool)), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.record(tool, request)
		return handler(ctx, request)
	})
}

// HandleJSON registers a tool answering with payload encoded as JSON text.
func (s *Server) HandleJSON(tool string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	s.HandleText(tool, string(data))
}

// HandleText registers a tool answering with a fixed text content.
func (s *Server) HandleText(tool, text string) {
	s.Handle(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(text), nil
	})
}

// HandleError registers a tool answering with an isError result.
func (s *Server) HandleError(tool, message string) {
	s.Handle(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError(message), nil
	})
}

// HandleEmpty registers a tool answering with no content at all.
func (s *Server) HandleEmpty(tool string) {
	s.Handle(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return &mcp.CallToolResult{}, nil
	})
}

// Calls returns every recorded call in order.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// LastCall returns the most recent call of tool.
func (s *Server) LastCall(tool string) (Call, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.calls) - 1; i >= 0; i-- {
		if s.calls[i].Tool == tool {
			return s.calls[i], true
		}
	}
	return Call{}, false
}

// Dials reports how many connections were opened.
func (s *Server) Dials() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dials
}

// Dialer connects clients to this server in-process.
func (s *Server) Dialer() mcpclient.DialFunc {
	return func(ctx context.Context, _ mcpclient.Options) (client.MCPClient, error) {
		s.mu.Lock()
		s.dials++
		s.mu.Unlock()

		c, err := client.NewInProcessClient(s.srv)
		if err != nil {
			return nil, err
		}
		if err := c.Start(ctx); err != nil {
			return nil, err
		}
		return &notifyingClient{Client: c, srv: s}, nil
	}
}

// notifyingClient records notification handlers so that SendProgress can
// reach them. The in-process transport does not carry server notifications.
type notifyingClient struct {
	*client.Client
	srv *Server
}

func (c *notifyingClient) OnNotification(handler func(notification mcp.JSONRPCNotification)) {
	c.srv.mu.Lock()
	c.srv.handlers = append(c.srv.handlers, handler)
	c.srv.mu.Unlock()
	c.Client.OnNotification(handler)
}

// SendProgress delivers a notifications/progress message to every client
// connected to this server. Tool handlers call it to report progress.
func (s *Server) SendProgress(token string, progress, total float64, message string) {
	s.mu.Lock()
	handlers := make([]func(mcp.JSONRPCNotification), len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.Unlock()

	notification := mcp.JSONRPCNotification{
		JSONRPC: mcp.JSONRPC_VERSION,
		Notification: mcp.Notification{
			Method: "notifications/progress",
			Params: mcp.NotificationParams{
				AdditionalFields: map[string]any{
					"progressToken": token,
					"progress":      progress,
					"total":         total,
					"message":       message,
				},
			},
		},
	}
	for _, handler := range handlers {
		handler(notification)
	}
}

// NewClient returns an unconnected client wired to this server.
func (s *Server) NewClient() *mcpclient.Client {
	return mcpclient.NewWithDialer(mcpclient.Options{}, s.Dialer())
}

func (s *Server) record(tool string, request mcp.CallToolRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{
		Tool: tool,
		Args: request.GetArguments(),
		Meta: request.Params.Meta,
	})
}
