package cmd

import (
	"context"
	"errors"
	"fmt"

	"protokoll/internal/mcpclient"

	"github.com/spf13/cobra"
)

const toolGetVersion = "protokoll_get_version"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information from the MCP server",
		Long:  `Prints the CLI version and build information, then asks the MCP server for its own version.`,
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
}

func runVersion(cmd *cobra.Command, args []string) error {
	return withClient(cmd, func(ctx context.Context, c *mcpclient.Client) error {
		result, err := c.CallTool(ctx, toolGetVersion, nil)
		if err != nil {
			return fmt.Errorf("error calling MCP server: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Protokoll CLI:", cliVersion)
		fmt.Fprintln(out, "Git:", gitInfo)
		fmt.Fprintln(out, "\nMCP Server:")

		if len(result.Content) == 0 {
			fmt.Fprintln(out, "No version information returned from server")
			return nil
		}
		text, err := mcpclient.TextContent(toolGetVersion, result)
		if err != nil {
			// Non-text content is not printed.
			if errors.Is(err, mcpclient.ErrNoTextContent) {
				return nil
			}
			return err
		}
		fmt.Fprintln(out, text)
		return nil
	})
}
