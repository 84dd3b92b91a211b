package mcpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ErrNoTextContent means the tool answered without any text content.
var ErrNoTextContent = errors.New("tool result has no text content")

// ToolError carries the text of a result the server flagged with isError.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tool %s failed", e.Tool)
	}
	return e.Message
}

// TextContent returns the text of the first content item. Error results are
// turned into a *ToolError.
func TextContent(tool string, result *mcp.CallToolResult) (string, error) {
	if result == nil {
		return "", ErrNoTextContent
	}

	if result.IsError {
		var errorMsgs []string
		for _, content := range result.Content {
			if textContent, ok := mcp.AsTextContent(content); ok {
				errorMsgs = append(errorMsgs, textContent.Text)
			}
		}
		return "", &ToolError{Tool: tool, Message: strings.Join(errorMsgs, "\n")}
	}

	if len(result.Content) == 0 {
		return "", ErrNoTextContent
	}
	textContent, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		return "", ErrNoTextContent
	}
	return textContent.Text, nil
}

// DecodeResult unmarshals the JSON text of the first content item into v.
func DecodeResult(tool string, result *mcp.CallToolResult, v any) error {
	text, err := TextContent(tool, result)
	if err != nil {
		return err
	}
	return Decode(tool, text, v)
}

// Decode unmarshals the JSON text returned by tool into v.
func Decode(tool, text string, v any) error {
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", tool, err)
	}
	return nil
}
