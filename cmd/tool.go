package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"protokoll/internal/mcpclient"
	"protokoll/pkg/logging"

	"github.com/spf13/cobra"
)

// toolArgs collects tool arguments. Empty optional values are left out so the
// server applies its own defaults.
type toolArgs map[string]interface{}

func (a toolArgs) str(key, value string) toolArgs {
	if value != "" {
		a[key] = value
	}
	return a
}

func (a toolArgs) list(key string, values []string) toolArgs {
	if len(values) > 0 {
		a[key] = values
	}
	return a
}

// textValue is a response field that is only displayed. It accepts any JSON
// type: strings as is, numbers and booleans literally, arrays joined with
// ", ", objects as compact JSON and null as "".
type textValue string

func (v *textValue) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = textValue(formatValue(raw))
	return nil
}

func (v textValue) String() string {
	return string(v)
}

func formatValue(raw interface{}) string {
	switch val := raw.(type) {
	case nil:
		return ""
	case string:
		return val
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, formatValue(item))
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}

// withClient connects a configured client for the duration of fn.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *mcpclient.Client) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c := newClient(activeConfig)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logging.Debug("CLI", "Failed to close client: %v", err)
		}
	}()

	return fn(ctx, c)
}

// callTool runs tool and returns its JSON text. A nil result with a nil error
// means the server answered without text content, in which case commands
// print nothing.
func callTool(ctx context.Context, c *mcpclient.Client, tool string, args toolArgs, opts ...mcpclient.CallOption) (json.RawMessage, error) {
	result, err := c.CallTool(ctx, tool, args, opts...)
	if err != nil {
		return nil, err
	}

	text, err := mcpclient.TextContent(tool, result)
	if errors.Is(err, mcpclient.ErrNoTextContent) {
		logging.Debug("CLI", "%s returned no text content", tool)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(text), nil
}

// runTool is the common shape of a command: connect, call tool, decode the
// response into data and hand it to render.
func runTool(cmd *cobra.Command, tool string, args toolArgs, data interface{}, render func(raw json.RawMessage) error, opts ...mcpclient.CallOption) error {
	return withClient(cmd, func(ctx context.Context, c *mcpclient.Client) error {
		raw, err := callTool(ctx, c, tool, args, opts...)
		if err != nil || raw == nil {
			return err
		}
		if err := mcpclient.Decode(tool, string(raw), data); err != nil {
			return err
		}
		return render(raw)
	})
}
