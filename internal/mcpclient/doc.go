// Package mcpclient provides the MCP (Model Context Protocol) client the
// protokoll commands use to talk to the protokoll MCP server.
//
// The server runs as a child process and messages travel over its stdin and
// stdout. A Client is created per command invocation, connected, used for a
// single tool call and closed again:
//
//	c := mcpclient.NewConfigured(cfg)
//	if err := c.Connect(ctx); err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	result, err := c.CallTool(ctx, "protokoll_get_version", nil)
//
// Long-running tools accept WithTimeout and WithProgressToken; progress
// notifications are delivered to the function registered with OnProgress.
package mcpclient
