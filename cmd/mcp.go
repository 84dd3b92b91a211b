package cmd

import (
	"context"
	"fmt"
	"strings"

	"protokoll/internal/mcpclient"
	"protokoll/internal/output"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
)

const descriptionWidth = 60

func newMCPCmd() *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Inspect the MCP server",
		Long: `Lists the tools, resources and prompts the MCP server offers, reads
resources and renders prompts. Useful to check what a server version supports.`,
	}

	mcpCmd.AddCommand(&cobra.Command{
		Use:   "tools",
		Short: "List the tools offered by the server",
		Args:  cobra.NoArgs,
		RunE:  runMCPTools,
	})
	mcpCmd.AddCommand(&cobra.Command{
		Use:   "resources",
		Short: "List the resources offered by the server",
		Args:  cobra.NoArgs,
		RunE:  runMCPResources,
	})
	mcpCmd.AddCommand(&cobra.Command{
		Use:   "prompts",
		Short: "List the prompts offered by the server",
		Args:  cobra.NoArgs,
		RunE:  runMCPPrompts,
	})
	mcpCmd.AddCommand(&cobra.Command{
		Use:     "read <uri>",
		Short:   "Read a resource",
		Example: `  protokoll mcp read protokoll://context/status`,
		Args:    cobra.ExactArgs(1),
		RunE:    runMCPRead,
	})
	mcpCmd.AddCommand(&cobra.Command{
		Use:     "prompt <name> [key=value...]",
		Short:   "Render a prompt with arguments",
		Example: `  protokoll mcp prompt review_transcript transcriptPath=meeting.md`,
		Args:    cobra.MinimumNArgs(1),
		RunE:    runMCPPrompt,
	})

	return mcpCmd
}

func runMCPTools(cmd *cobra.Command, args []string) error {
	return withClient(cmd, func(ctx context.Context, c *mcpclient.Client) error {
		result, err := c.ListTools(ctx)
		if err != nil {
			return fmt.Errorf("failed to list tools: %w", err)
		}

		p := printerFor(cmd)
		return p.Render(result.Tools, func() {
			if len(result.Tools) == 0 {
				p.Info("No tools available")
				return
			}
			rows := make([][]any, 0, len(result.Tools))
			for _, tool := range result.Tools {
				rows = append(rows, []any{tool.Name, output.Truncate(tool.Description, descriptionWidth)})
			}
			p.Table([]string{"Name", "Description"}, rows)
		})
	})
}

func runMCPResources(cmd *cobra.Command, args []string) error {
	return withClient(cmd, func(ctx context.Context, c *mcpclient.Client) error {
		result, err := c.ListResources(ctx)
		if err != nil {
			return fmt.Errorf("failed to list resources: %w", err)
		}

		p := printerFor(cmd)
		return p.Render(result.Resources, func() {
			if len(result.Resources) == 0 {
				p.Info("No resources available")
				return
			}
			rows := make([][]any, 0, len(result.Resources))
			for _, resource := range result.Resources {
				rows = append(rows, []any{resource.URI, resource.Name, resource.MIMEType})
			}
			p.Table([]string{"URI", "Name", "MIME Type"}, rows)
		})
	})
}

func runMCPPrompts(cmd *cobra.Command, args []string) error {
	return withClient(cmd, func(ctx context.Context, c *mcpclient.Client) error {
		result, err := c.ListPrompts(ctx)
		if err != nil {
			return fmt.Errorf("failed to list prompts: %w", err)
		}

		p := printerFor(cmd)
		return p.Render(result.Prompts, func() {
			if len(result.Prompts) == 0 {
				p.Info("No prompts available")
				return
			}
			rows := make([][]any, 0, len(result.Prompts))
			for _, prompt := range result.Prompts {
				var argNames []string
				for _, arg := range prompt.Arguments {
					name := arg.Name
					if arg.Required {
						name += "*"
					}
					argNames = append(argNames, name)
				}
				rows = append(rows, []any{
					prompt.Name,
					output.Truncate(prompt.Description, descriptionWidth),
					strings.Join(argNames, ", "),
				})
			}
			p.Table([]string{"Name", "Description", "Arguments"}, rows)
		})
	})
}

func runMCPRead(cmd *cobra.Command, args []string) error {
	uri := args[0]

	return withClient(cmd, func(ctx context.Context, c *mcpclient.Client) error {
		result, err := c.ReadResource(ctx, uri)
		if err != nil {
			return fmt.Errorf("failed to read resource %s: %w", uri, err)
		}

		p := printerFor(cmd)
		return p.Render(result.Contents, func() {
			for _, content := range result.Contents {
				if text, ok := mcp.AsTextResourceContents(content); ok {
					p.Println(text.Text)
					continue
				}
				if blob, ok := mcp.AsBlobResourceContents(content); ok {
					p.Printf("[binary content: %s, %d bytes base64]\n", blob.MIMEType, len(blob.Blob))
				}
			}
		})
	})
}

func runMCPPrompt(cmd *cobra.Command, args []string) error {
	name := args[0]
	promptArgs, err := parsePromptArgs(args[1:])
	if err != nil {
		return err
	}

	return withClient(cmd, func(ctx context.Context, c *mcpclient.Client) error {
		result, err := c.GetPrompt(ctx, name, promptArgs)
		if err != nil {
			return fmt.Errorf("failed to get prompt %s: %w", name, err)
		}

		p := printerFor(cmd)
		return p.Render(result, func() {
			if result.Description != "" {
				p.Heading("%s", result.Description)
				p.Println()
			}
			for _, msg := range result.Messages {
				if text, ok := mcp.AsTextContent(msg.Content); ok {
					p.Printf("[%s] %s\n", msg.Role, text.Text)
				} else {
					p.Printf("[%s] %s\n", msg.Role, p.Muted("(non-text content)"))
				}
			}
		})
	})
}

// parsePromptArgs turns key=value pairs into prompt arguments.
func parsePromptArgs(pairs []string) (map[string]string, error) {
	promptArgs := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid prompt argument %q (expected key=value)", pair)
		}
		promptArgs[key] = value
	}
	return promptArgs, nil
}
