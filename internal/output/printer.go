package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Format represents the output format for CLI commands
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Icons prefixed to status lines.
const (
	IconSuccess = "✓"
	IconInfo    = "ℹ"
	IconWarning = "⚠️ "
	IconError   = "✗"
)

// ParseFormat validates a --output value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s (use text, json or yaml)", s)
	}
}

// Printer writes command output in the selected format. Styling is applied
// only when the destination is a terminal.
type Printer struct {
	out    io.Writer
	format Format
	color  bool

	successStyle lipgloss.Style
	infoStyle    lipgloss.Style
	warnStyle    lipgloss.Style
	errorStyle   lipgloss.Style
	headingStyle lipgloss.Style
	mutedStyle   lipgloss.Style
}

// New creates a printer for out.
func New(out io.Writer, format Format) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:          out,
		format:       format,
		color:        isTerminal(out),
		successStyle: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#7CFC00"}),
		infoStyle:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1565C0", Dark: "#87CEFA"}),
		warnStyle:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#EF6C00", Dark: "#FFD700"}),
		errorStyle:   r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#FF6B6B"}),
		headingStyle: r.NewStyle().Bold(true),
		mutedStyle:   r.NewStyle().Faint(true),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Writer returns the destination writer.
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Format returns the selected format.
func (p *Printer) Format() Format {
	return p.format
}

// Println prints a plain line.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

// Printf prints plain formatted text.
func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

// Success prints "✓ message".
func (p *Printer) Success(format string, a ...any) {
	p.status(p.successStyle, IconSuccess, format, a...)
}

// Info prints "ℹ message".
func (p *Printer) Info(format string, a ...any) {
	p.status(p.infoStyle, IconInfo, format, a...)
}

// Warn prints "⚠️  message".
func (p *Printer) Warn(format string, a ...any) {
	p.status(p.warnStyle, IconWarning, format, a...)
}

// Error prints "✗ message".
func (p *Printer) Error(format string, a ...any) {
	p.status(p.errorStyle, IconError, format, a...)
}

// Heading prints a bold line.
func (p *Printer) Heading(format string, a ...any) {
	fmt.Fprintln(p.out, p.headingStyle.Render(fmt.Sprintf(format, a...)))
}

// Muted renders s in a faint style without printing it.
func (p *Printer) Muted(s string) string {
	return p.mutedStyle.Render(s)
}

func (p *Printer) status(style lipgloss.Style, icon, format string, a ...any) {
	fmt.Fprintln(p.out, style.Render(icon+" "+fmt.Sprintf(format, a...)))
}

// Render prints data as JSON or YAML when one of those formats was selected,
// and otherwise calls textFn for the command's human-readable layout.
func (p *Printer) Render(data any, textFn func()) error {
	switch p.format {
	case FormatJSON:
		return p.JSON(data)
	case FormatYAML:
		return p.YAML(data)
	default:
		textFn()
		return nil
	}
}

// JSON prints v as indented JSON.
func (p *Printer) JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	fmt.Fprintln(p.out, string(data))
	return nil
}

// YAML prints v as YAML. v is passed through JSON first so that json tags
// decide the field names.
func (p *Printer) YAML(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to convert to YAML: %w", err)
	}
	fmt.Fprint(p.out, string(yamlData))
	return nil
}

// Table prints rows under headers using a rounded table.
func (p *Printer) Table(headers []string, rows [][]any) {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		label := strings.ToUpper(h)
		if p.color {
			label = text.FgHiCyan.Sprint(label)
		}
		header[i] = label
	}
	t.AppendHeader(header)

	for _, row := range rows {
		t.AppendRow(table.Row(row))
	}
	t.Render()
}

// Truncate shortens s to max runes, ending with "...".
func Truncate(s string, max int) string {
	runes := []rune(s)
	if max <= 3 || len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
