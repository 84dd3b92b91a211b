package cmd

import (
	"context"
	"strings"
	"testing"

	"protokoll/internal/config"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedProgressToken(t *testing.T, token string) {
	t.Helper()
	original := newProgressToken
	newProgressToken = func() string { return token }
	t.Cleanup(func() { newProgressToken = original })
}

func TestProcess(t *testing.T) {
	srv := setupServer(t, func(c *config.ProtokollConfig) {
		c.TranscriptionModel = "whisper-1"
	})
	srv.HandleJSON(toolProcessAudio, map[string]any{
		"outputPath": "/notes/2026/02/standup.md",
		"title":      "Standup",
		"project":    "weekly",
		"message":    "Enhanced with 3 context entities",
	})
	fixedProgressToken(t, "progress-1")

	out, _, err := runCLI(t, "process", "standup.m4a", "-p", "weekly", "-o", "/notes")
	require.NoError(t, err)

	assert.Contains(t, out, "Processing audio file...\n")
	assert.Contains(t, out, "✓ Audio processed successfully\n")
	assert.Contains(t, out, "Output: /notes/2026/02/standup.md\nTitle: Standup\nProject: weekly\n")
	assert.NotContains(t, out, "Duration:")
	assert.Contains(t, out, "\nEnhanced with 3 context entities\n")

	call, ok := srv.LastCall(toolProcessAudio)
	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"audioFile":          "standup.m4a",
		"projectId":          "weekly",
		"outputDirectory":    "/notes",
		"transcriptionModel": "whisper-1",
	}, call.Args)
	require.NotNil(t, call.Meta)
	assert.Equal(t, "progress-1", call.Meta.ProgressToken)
}

func TestProcess_OutputFlagIsOutputDirectory(t *testing.T) {
	root := newRootCmd()
	process, _, err := root.Find([]string{"process"})
	require.NoError(t, err)

	flag := process.Flags().Lookup("output")
	require.NotNil(t, flag)
	assert.Equal(t, "Override output directory", flag.Usage)
}

func TestBatch_RequiresInputDirectory(t *testing.T) {
	srv := setupServer(t)

	_, _, err := runCLI(t, "batch")
	require.ErrorIs(t, err, ErrInputDirectoryRequired)
	assert.Equal(t, "inputDirectory is required: provide it as an argument or in your config file", err.Error())
	assert.Equal(t, 0, srv.Dials())
}

func TestBatch_UsesConfigDirectories(t *testing.T) {
	srv := setupServer(t, func(c *config.ProtokollConfig) {
		c.InputDirectory = "/recordings"
		c.OutputDirectory = "/notes"
	})
	srv.HandleJSON(toolBatchProcess, map[string]any{
		"processedCount": 2,
		"failedCount":    1,
		"results": []map[string]any{
			{"success": true, "filename": "a.m4a", "outputPath": "/notes/a.md"},
			{"success": false, "file": "b.m4a"},
		},
	})
	fixedProgressToken(t, "batch-1")

	out, _, err := runCLI(t, "batch", "-e", "m4a, wav")
	require.NoError(t, err)

	assert.Contains(t, out, "Input directory: /recordings\nOutput directory: /notes\n")
	assert.Contains(t, out, "✓ Batch processing complete\n")
	assert.Contains(t, out, "Processed: 2 files\nFailed: 1 files\n")
	assert.Contains(t, out, "  ✓ a.m4a\n    → /notes/a.md\n")
	assert.Contains(t, out, "  ✗ b.m4a\n")

	call, ok := srv.LastCall(toolBatchProcess)
	require.True(t, ok)
	assert.Equal(t, "/recordings", call.Args["inputDirectory"])
	assert.Equal(t, "/notes", call.Args["outputDirectory"])
	assert.Equal(t, []any{"m4a", "wav"}, call.Args["extensions"])
	require.NotNil(t, call.Meta)
	assert.Equal(t, "batch-1", call.Meta.ProgressToken)
}

func TestBatch_ArgumentWinsOverConfig(t *testing.T) {
	srv := setupServer(t, func(c *config.ProtokollConfig) {
		c.InputDirectory = "/recordings"
	})
	srv.HandleJSON(toolBatchProcess, map[string]any{"processedCount": 0})

	out, _, err := runCLI(t, "batch", "/media/audio")
	require.NoError(t, err)
	assert.NotContains(t, out, "Output directory")
	assert.NotContains(t, out, "Results:")

	call, ok := srv.LastCall(toolBatchProcess)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"inputDirectory": "/media/audio"}, call.Args)
}

func TestSplitExtensions(t *testing.T) {
	assert.Nil(t, splitExtensions(""))
	assert.Equal(t, []string{"m4a", "mp3"}, splitExtensions("m4a, mp3,"))
}

func TestProcess_NonStringFieldsAreDisplayed(t *testing.T) {
	srv := setupServer(t)
	srv.HandleJSON(toolProcessAudio, map[string]any{
		"outputPath": "/notes/a.md",
		"duration":   42.5,
		"project":    nil,
	})

	out, _, err := runCLI(t, "process", "a.m4a")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Audio processed successfully\n")
	assert.Contains(t, out, "Output: /notes/a.md\n")
	assert.Contains(t, out, "Duration: 42.5\n")
	assert.NotContains(t, out, "Project:")
}

func TestBatch_UndecodableResultIsStillPrinted(t *testing.T) {
	srv := setupServer(t)
	srv.HandleText(toolBatchProcess, `{"processedCount":"two"}`)

	out, _, err := runCLI(t, "batch", "/recordings")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse protokoll_batch_process response")
	assert.Contains(t, out, `{"processedCount":"two"}`)
}

func TestProcess_RendersProgressOnStderr(t *testing.T) {
	srv := setupServer(t)
	srv.Handle(toolProcessAudio, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		srv.SendProgress("progress-7", 5, 10, "Transcribing")
		srv.SendProgress("progress-7", 6, 10, "Transcribing")
		return mcp.NewToolResultText(`{"outputPath":"/notes/a.md"}`), nil
	})
	fixedProgressToken(t, "progress-7")

	out, stderr, err := runCLI(t, "process", "a.m4a")
	require.NoError(t, err)

	assert.Equal(t, "Transcribing: 50%\nTranscribing: 60%\nTranscribing: 100%\n", stderr)
	assert.NotContains(t, out, "Transcribing")
	assert.Contains(t, out, "Output: /notes/a.md\n")
}

func TestBatch_ProgressReportsFailure(t *testing.T) {
	srv := setupServer(t)
	srv.Handle(toolBatchProcess, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		srv.SendProgress("batch-7", 1, 4, "Batch")
		return mcp.NewToolResultError("disk full"), nil
	})
	fixedProgressToken(t, "batch-7")

	_, stderr, err := runCLI(t, "batch", "/recordings")
	require.Error(t, err)
	assert.Equal(t, "disk full", err.Error())
	assert.True(t, strings.HasPrefix(stderr, "✗ disk full\n"))
}
