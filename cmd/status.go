package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

const (
	toolSetStatus      = "protokoll_set_status"
	toolReadTranscript = "protokoll_read_transcript"

	// defaultTranscriptStatus applies to transcripts without a status in
	// their metadata.
	defaultTranscriptStatus = "reviewed"
)

type setStatusResult struct {
	Changed        bool      `json:"changed"`
	PreviousStatus textValue `json:"previousStatus"`
	NewStatus      textValue `json:"newStatus"`
}

type transcriptResult struct {
	FilePath      textValue `json:"filePath"`
	Title         textValue `json:"title"`
	Content       textValue `json:"content"`
	ContentLength int       `json:"contentLength"`
	Metadata      struct {
		Status textValue `json:"status"`
	} `json:"metadata"`
}

func newStatusCmd() *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Manage transcript lifecycle status",
	}

	statusCmd.AddCommand(&cobra.Command{
		Use:   "set <transcriptPath> <newStatus>",
		Short: "Set the lifecycle status of a transcript",
		Long: `Set the lifecycle status of a transcript.

Valid statuses: initial, enhanced, reviewed, in_progress, closed, archived`,
		Example: `  protokoll status set meeting-notes.md reviewed
  protokoll status set 2026/02/03-meeting.md closed
  protokoll status set ~/notes/planning.md in_progress`,
		Args: cobra.ExactArgs(2),
		RunE: runStatusSet,
	})

	statusCmd.AddCommand(&cobra.Command{
		Use:   "show <transcriptPath>",
		Short: "Show the current status of a transcript",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatusShow,
	})

	return statusCmd
}

func runStatusSet(cmd *cobra.Command, args []string) error {
	var data setStatusResult
	return runTool(cmd, toolSetStatus, toolArgs{
		"transcriptPath": args[0],
		"status":         args[1],
	}, &data, func(raw json.RawMessage) error {
		p := printerFor(cmd)
		return p.Render(raw, func() {
			if data.Changed {
				p.Success("Status changed: %s → %s", data.PreviousStatus, data.NewStatus)
			} else {
				p.Info("Status is already '%s'", data.NewStatus)
			}
		})
	})
}

func runStatusShow(cmd *cobra.Command, args []string) error {
	var data transcriptResult
	return runTool(cmd, toolReadTranscript, toolArgs{
		"transcriptPath": args[0],
	}, &data, func(raw json.RawMessage) error {
		p := printerFor(cmd)
		return p.Render(raw, func() {
			status := data.Metadata.Status
			if status == "" {
				status = defaultTranscriptStatus
			}
			p.Printf("File: %s\n", data.FilePath)
			p.Printf("Title: %s\n", data.Title)
			p.Printf("Status: %s\n", status)
		})
	})
}
