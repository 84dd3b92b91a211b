package mcpclient

import (
	"fmt"
	"time"

	"protokoll/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

// CallOption tunes a single CallTool request.
type CallOption func(*callOptions)

type callOptions struct {
	progressToken string
	timeout       time.Duration
}

// WithProgressToken asks the server to report progress for this call under token.
func WithProgressToken(token string) CallOption {
	return func(o *callOptions) {
		o.progressToken = token
	}
}

// WithTimeout replaces the default request timeout. Long-running tools such
// as audio processing need minutes rather than the default minute.
func WithTimeout(timeout time.Duration) CallOption {
	return func(o *callOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// ProgressUpdate is the payload of a notifications/progress message.
type ProgressUpdate struct {
	ProgressToken string
	Progress      *float64
	Total         *float64
	Message       string
}

// OnProgress registers fn to receive progress notifications. Passing nil
// stops delivery.
func (c *Client) OnProgress(fn func(ProgressUpdate)) {
	c.progressMu.Lock()
	defer c.progressMu.Unlock()
	c.onProgress = fn
}

func (c *Client) handleNotification(notification mcp.JSONRPCNotification) {
	logging.Debug(subsystem, "notification %s", notification.Method)

	if notification.Method != methodProgress {
		return
	}

	c.progressMu.RLock()
	fn := c.onProgress
	c.progressMu.RUnlock()
	if fn == nil {
		return
	}

	fn(ParseProgress(notification.Params.AdditionalFields))
}

// ParseProgress extracts a ProgressUpdate from notification params. Numeric
// tokens are rendered in decimal form.
func ParseProgress(fields map[string]any) ProgressUpdate {
	var update ProgressUpdate

	switch token := fields["progressToken"].(type) {
	case string:
		update.ProgressToken = token
	case float64:
		update.ProgressToken = fmt.Sprintf("%.0f", token)
	case int:
		update.ProgressToken = fmt.Sprintf("%d", token)
	}

	update.Progress = asFloat(fields["progress"])
	update.Total = asFloat(fields["total"])
	if msg, ok := fields["message"].(string); ok {
		update.Message = msg
	}
	return update
}

func asFloat(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return nil
	}
	return &f
}
