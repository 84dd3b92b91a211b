package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatText},
		{in: "text", want: FormatText},
		{in: "JSON", want: FormatJSON},
		{in: "yaml", want: FormatYAML},
		{in: "table", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrinter_StatusLinesArePlainOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, FormatText)

	p.Success("Task created: %s", "task-1")
	p.Info("Status is already '%s'", "reviewed")
	p.Error("failed")

	assert.Equal(t, "✓ Task created: task-1\nℹ Status is already 'reviewed'\n✗ failed\n", buf.String())
}

func TestPrinter_Render(t *testing.T) {
	data := map[string]any{"id": "p1", "name": "Project One"}

	t.Run("text calls layout", func(t *testing.T) {
		var buf bytes.Buffer
		called := false
		err := New(&buf, FormatText).Render(data, func() { called = true })
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		err := New(&buf, FormatJSON).Render(data, func() { t.Fatal("text layout used") })
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"p1","name":"Project One"}`, buf.String())
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		err := New(&buf, FormatYAML).Render(data, func() { t.Fatal("text layout used") })
		require.NoError(t, err)
		assert.Equal(t, "id: p1\nname: Project One\n", buf.String())
	})
}

func TestPrinter_Table(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, FormatText).Table([]string{"name", "description"}, [][]any{
		{"protokoll_get_version", "Version info"},
	})

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "protokoll_get_version")
	assert.Contains(t, out, "╭")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "héllo", Truncate("héllo", 5))
}
