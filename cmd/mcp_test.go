package cmd

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPTools(t *testing.T) {
	srv := setupServer(t)
	srv.HandleText(toolGetVersion, "1.0.0")
	srv.HandleText(toolContextStatus, "{}")

	out, _, err := runCLI(t, "mcp", "tools")
	require.NoError(t, err)

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "DESCRIPTION")
	assert.Contains(t, out, toolGetVersion)
	assert.Contains(t, out, toolContextStatus)
}

func TestMCPTools_JSON(t *testing.T) {
	srv := setupServer(t)
	srv.HandleText(toolGetVersion, "1.0.0")

	out, _, err := runCLI(t, "-o", "json", "mcp", "tools")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "protokoll_get_version"`)
	assert.NotContains(t, out, "NAME")
}

func TestMCPResourcesAndRead(t *testing.T) {
	srv := setupServer(t)
	srv.MCPServer().AddResource(
		mcp.NewResource("protokoll://context/status", "Context status", mcp.WithMIMEType("application/json")),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      request.Params.URI,
					MIMEType: "application/json",
					Text:     `{"projects":3}`,
				},
			}, nil
		},
	)

	out, _, err := runCLI(t, "mcp", "resources")
	require.NoError(t, err)
	assert.Contains(t, out, "protokoll://context/status")
	assert.Contains(t, out, "application/json")

	out, _, err = runCLI(t, "mcp", "read", "protokoll://context/status")
	require.NoError(t, err)
	assert.Equal(t, "{\"projects\":3}\n", out)
}

func TestMCPPrompts(t *testing.T) {
	srv := setupServer(t)
	srv.MCPServer().AddPrompt(
		mcp.NewPrompt("review_transcript",
			mcp.WithPromptDescription("Review a transcript"),
			mcp.WithArgument("transcriptPath", mcp.RequiredArgument()),
		),
		func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			return mcp.NewGetPromptResult("Transcript review", []mcp.PromptMessage{
				mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent("Review "+request.Params.Arguments["transcriptPath"])),
			}), nil
		},
	)

	out, _, err := runCLI(t, "mcp", "prompts")
	require.NoError(t, err)
	assert.Contains(t, out, "review_transcript")
	assert.Contains(t, out, "transcriptPath*")

	out, _, err = runCLI(t, "mcp", "prompt", "review_transcript", "transcriptPath=a.md")
	require.NoError(t, err)
	assert.Equal(t, "Transcript review\n\n[user] Review a.md\n", out)
}

func TestMCPList_Empty(t *testing.T) {
	setupServer(t)

	out, _, err := runCLI(t, "mcp", "tools")
	require.NoError(t, err)
	assert.Equal(t, "ℹ No tools available\n", out)
}

func TestParsePromptArgs(t *testing.T) {
	args, err := parsePromptArgs([]string{"a=1", "b=x=y", "c="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "x=y", "c": ""}, args)

	_, err = parsePromptArgs([]string{"novalue"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid prompt argument "novalue"`)

	_, err = parsePromptArgs([]string{"=x"})
	assert.Error(t, err)
}
