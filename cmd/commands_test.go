package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	srv := setupServer(t)
	srv.HandleText(toolGetVersion, "protokoll-mcp 1.4.0")

	original := cliVersion
	cliVersion = "1.2.3"
	t.Cleanup(func() { cliVersion = original })

	out, _, err := runCLI(t, "version")
	require.NoError(t, err)

	assert.Contains(t, out, "Protokoll CLI: 1.2.3\n")
	assert.Contains(t, out, "Git: ")
	assert.Contains(t, out, "\nMCP Server:\nprotokoll-mcp 1.4.0\n")
	assert.Equal(t, 1, srv.Dials())
}

func TestVersionCommand_NoContent(t *testing.T) {
	srv := setupServer(t)
	srv.HandleEmpty(toolGetVersion)

	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "No version information returned from server")
}

func TestStatusSet(t *testing.T) {
	tests := []struct {
		name     string
		response map[string]any
		want     string
	}{
		{
			name:     "changed",
			response: map[string]any{"changed": true, "previousStatus": "initial", "newStatus": "reviewed"},
			want:     "✓ Status changed: initial → reviewed\n",
		},
		{
			name:     "unchanged",
			response: map[string]any{"changed": false, "newStatus": "reviewed"},
			want:     "ℹ Status is already 'reviewed'\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := setupServer(t)
			srv.HandleJSON(toolSetStatus, tt.response)

			out, _, err := runCLI(t, "status", "set", "notes.md", "reviewed")
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)

			call, ok := srv.LastCall(toolSetStatus)
			require.True(t, ok)
			assert.Equal(t, map[string]any{"transcriptPath": "notes.md", "status": "reviewed"}, call.Args)
		})
	}
}

func TestStatusShow_DefaultsToReviewed(t *testing.T) {
	srv := setupServer(t)
	srv.HandleJSON(toolReadTranscript, map[string]any{
		"filePath": "/notes/a.md",
		"title":    "Standup",
		"metadata": map[string]any{},
	})

	out, _, err := runCLI(t, "status", "show", "a.md")
	require.NoError(t, err)
	assert.Equal(t, "File: /notes/a.md\nTitle: Standup\nStatus: reviewed\n", out)
}

func TestStatusSet_JSONOutput(t *testing.T) {
	srv := setupServer(t)
	srv.HandleJSON(toolSetStatus, map[string]any{"changed": true, "previousStatus": "initial", "newStatus": "closed"})

	out, _, err := runCLI(t, "-o", "json", "status", "set", "a.md", "closed")
	require.NoError(t, err)
	assert.JSONEq(t, `{"changed":true,"previousStatus":"initial","newStatus":"closed"}`, out)
}

func TestToolErrorFailsCommand(t *testing.T) {
	srv := setupServer(t)
	srv.HandleError(toolSetStatus, "Invalid status: done")

	_, _, err := runCLI(t, "status", "set", "a.md", "done")
	require.Error(t, err)
	assert.Equal(t, "Invalid status: done", err.Error())
}

func TestEmptyResultPrintsNothing(t *testing.T) {
	srv := setupServer(t)
	srv.HandleEmpty(toolDeleteTask)

	out, _, err := runCLI(t, "task", "delete", "a.md", "task-1")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestInvalidJSONFailsCommand(t *testing.T) {
	srv := setupServer(t)
	srv.HandleText(toolCreateTask, "not json")

	_, _, err := runCLI(t, "task", "add", "a.md", "Do it")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse protokoll_create_task response")
}

func TestTaskCommands(t *testing.T) {
	srv := setupServer(t)
	srv.HandleJSON(toolCreateTask, map[string]any{"task": map[string]any{"id": "task-1", "description": "Follow up"}})
	srv.HandleJSON(toolCompleteTask, map[string]any{"taskId": "task-1", "description": "Follow up"})
	srv.HandleJSON(toolDeleteTask, map[string]any{"taskId": "task-1"})

	out, _, err := runCLI(t, "task", "add", "a.md", "Follow up")
	require.NoError(t, err)
	assert.Equal(t, "✓ Task created: task-1\n  Description: Follow up\n", out)

	out, _, err = runCLI(t, "task", "complete", "a.md", "task-1")
	require.NoError(t, err)
	assert.Equal(t, "✓ Task completed: task-1\n  Follow up\n", out)

	out, _, err = runCLI(t, "task", "delete", "a.md", "task-1")
	require.NoError(t, err)
	assert.Equal(t, "✓ Task deleted: task-1\n", out)

	call, ok := srv.LastCall(toolCompleteTask)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"transcriptPath": "a.md", "taskId": "task-1"}, call.Args)
}

func TestTaskAdd_RequiresArguments(t *testing.T) {
	setupServer(t)

	_, _, err := runCLI(t, "task", "add", "a.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestTranscriptRead(t *testing.T) {
	srv := setupServer(t)
	srv.HandleJSON(toolReadTranscript, map[string]any{
		"filePath":      "/notes/a.md",
		"title":         "Standup",
		"content":       "# Standup\nAll good.",
		"contentLength": 19,
	})

	out, _, err := runCLI(t, "transcript", "read", "a.md")
	require.NoError(t, err)
	assert.Equal(t, "📄 Standup\n   File: /notes/a.md\n   Length: 19 characters\n\n# Standup\nAll good.\n", out)
}

func TestTranscriptRead_Copy(t *testing.T) {
	srv := setupServer(t)
	srv.HandleJSON(toolReadTranscript, map[string]any{"title": "T", "content": "body"})

	var copied string
	original := clipboardWriteAll
	clipboardWriteAll = func(text string) error {
		copied = text
		return nil
	}
	t.Cleanup(func() { clipboardWriteAll = original })

	_, stderr, err := runCLI(t, "transcript", "read", "a.md", "--copy")
	require.NoError(t, err)
	assert.Equal(t, "body", copied)
	assert.Contains(t, stderr, "copied to clipboard")

	clipboardWriteAll = func(string) error { return errors.New("no clipboard") }
	_, _, err = runCLI(t, "transcript", "read", "a.md", "--copy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to copy transcript to clipboard")
}

func TestTranscriptList(t *testing.T) {
	srv := setupServer(t)
	srv.HandleJSON(toolListTranscripts, map[string]any{
		"directory": "/notes",
		"transcripts": []map[string]any{
			{"path": "2026/02/a.md", "title": "Standup", "date": "2026-02-03", "time": "09:00"},
			{"path": "b.md", "title": "Untitled"},
		},
		"pagination": map[string]any{"total": 5, "hasMore": true},
	})

	out, _, err := runCLI(t, "transcript", "list", "-l", "2", "--search", "stand")
	require.NoError(t, err)

	assert.Contains(t, out, "📚 Transcripts (5 total):\n   Directory: /notes\n\n")
	assert.Contains(t, out, "   • Standup\n     Path: 2026/02/a.md\n     Date: 2026-02-03 09:00\n\n")
	assert.Contains(t, out, "     Date: unknown date\n")
	assert.Contains(t, out, "   ... and 3 more\n")

	call, ok := srv.LastCall(toolListTranscripts)
	require.True(t, ok)
	assert.EqualValues(t, 2, call.Args["limit"])
	assert.Equal(t, "stand", call.Args["search"])
	assert.Equal(t, "date", call.Args["sortBy"])
}

func TestContextStatus(t *testing.T) {
	srv := setupServer(t)
	srv.HandleJSON(toolContextStatus, map[string]any{
		"directories": []map[string]any{
			{"path": "/home/me/.protokoll", "level": 0},
			{"path": "/home/.protokoll", "level": 1},
		},
		"counts": map[string]any{"projects": 3, "people": 2},
	})

	out, _, err := runCLI(t, "context", "status")
	require.NoError(t, err)

	assert.Contains(t, out, "[Context System Status]")
	assert.Contains(t, out, "  → /home/me/.protokoll (level 0)\n")
	assert.Contains(t, out, "    /home/.protokoll (level 1)\n")
	assert.Contains(t, out, "  Projects:  3\n")
	assert.Contains(t, out, "  Terms:     0\n")
}

func TestContextStatus_NoDirectories(t *testing.T) {
	srv := setupServer(t)
	srv.HandleJSON(toolContextStatus, map[string]any{"directories": []any{}})

	out, _, err := runCLI(t, "context", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No .protokoll directories found.")
	assert.NotContains(t, out, "Loaded entities")
}

func TestContextSearch(t *testing.T) {
	srv := setupServer(t)
	srv.HandleJSON(toolSearchContext, map[string]any{
		"results": []map[string]any{{"type": "person", "id": "jane", "name": "Jane Doe"}},
	})

	out, _, err := runCLI(t, "context", "search", "jane")
	require.NoError(t, err)
	assert.Contains(t, out, "Results for \"jane\" (1):")
	assert.Contains(t, out, "  [person] jane - Jane Doe\n")

	srv2 := setupServer(t)
	srv2.HandleJSON(toolSearchContext, map[string]any{"results": []any{}})
	out, _, err = runCLI(t, "context", "search", "nobody")
	require.NoError(t, err)
	assert.Equal(t, "No results found for \"nobody\".\n", out)
}

func TestFeedback(t *testing.T) {
	srv := setupServer(t)
	srv.HandleJSON(toolProvideFeedback, map[string]any{
		"changesApplied": 1,
		"changes":        []map[string]any{{"type": "spelling", "description": "YB → Wibey"}},
		"moved":          true,
		"outputPath":     "/notes/b.md",
	})

	out, _, err := runCLI(t, "feedback", "a.md", "YB should be Wibey", "-m", "gpt-4o")
	require.NoError(t, err)

	assert.Contains(t, out, "Processing feedback...\n")
	assert.Contains(t, out, "✓ Applied 1 change(s):\n  • spelling: YB → Wibey\n")
	assert.Contains(t, out, "File moved to: /notes/b.md")

	call, ok := srv.LastCall(toolProvideFeedback)
	require.True(t, ok)
	assert.Equal(t, "gpt-4o", call.Args["model"])
}

func TestFeedback_NoChanges(t *testing.T) {
	srv := setupServer(t)
	srv.HandleJSON(toolProvideFeedback, map[string]any{"changesApplied": 0})

	out, _, err := runCLI(t, "feedback", "a.md", "looks fine")
	require.NoError(t, err)
	assert.Contains(t, out, "ℹ No changes were applied.")

	call, ok := srv.LastCall(toolProvideFeedback)
	require.True(t, ok)
	_, hasModel := call.Args["model"]
	assert.False(t, hasModel)
}
