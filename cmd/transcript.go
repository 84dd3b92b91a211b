package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

const toolListTranscripts = "protokoll_list_transcripts"

// For mocking in tests
var clipboardWriteAll = clipboard.WriteAll

type transcriptListResult struct {
	Directory   textValue `json:"directory"`
	Transcripts []struct {
		Path  textValue `json:"path"`
		Title textValue `json:"title"`
		Date  textValue `json:"date"`
		Time  textValue `json:"time"`
	} `json:"transcripts"`
	Pagination struct {
		Total   int  `json:"total"`
		HasMore bool `json:"hasMore"`
	} `json:"pagination"`
}

func newTranscriptCmd() *cobra.Command {
	transcriptCmd := &cobra.Command{
		Use:   "transcript",
		Short: "Read and manage transcripts",
	}

	transcriptCmd.AddCommand(newTranscriptReadCmd())
	transcriptCmd.AddCommand(newTranscriptListCmd())
	return transcriptCmd
}

func newTranscriptReadCmd() *cobra.Command {
	var copyContent bool

	cmd := &cobra.Command{
		Use:   "read <transcriptPath>",
		Short: "Read a transcript file",
		Example: `  protokoll transcript read meeting-notes.md
  protokoll transcript read 2026/02/03-meeting.md --copy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data transcriptResult
			return runTool(cmd, toolReadTranscript, toolArgs{
				"transcriptPath": args[0],
			}, &data, func(raw json.RawMessage) error {
				p := printerFor(cmd)
				err := p.Render(raw, func() {
					p.Heading("📄 %s", data.Title)
					p.Printf("   File: %s\n", data.FilePath)
					p.Printf("   Length: %d characters\n", data.ContentLength)
					p.Printf("\n%s\n", data.Content)
				})
				if err != nil || !copyContent {
					return err
				}

				if err := clipboardWriteAll(data.Content.String()); err != nil {
					return fmt.Errorf("failed to copy transcript to clipboard: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "Transcript content copied to clipboard")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&copyContent, "copy", false, "Copy the transcript content to the clipboard")
	return cmd
}

func newTranscriptListCmd() *cobra.Command {
	var (
		limit  int
		search string
		sortBy string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transcripts",
		Example: `  protokoll transcript list
  protokoll transcript list --limit 20
  protokoll transcript list --search meeting
  protokoll transcript list --sort title`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var data transcriptListResult
			targs := toolArgs{"limit": limit}.str("search", search).str("sortBy", sortBy)
			return runTool(cmd, toolListTranscripts, targs, &data, func(raw json.RawMessage) error {
				p := printerFor(cmd)
				return p.Render(raw, func() {
					p.Println()
					p.Heading("📚 Transcripts (%d total):", data.Pagination.Total)
					p.Printf("   Directory: %s\n\n", data.Directory)

					for _, t := range data.Transcripts {
						dateTime := "unknown date"
						if t.Date != "" {
							dateTime = t.Date.String()
							if t.Time != "" {
								dateTime += " " + t.Time.String()
							}
						}
						p.Printf("   • %s\n", t.Title)
						p.Printf("     Path: %s\n", t.Path)
						p.Printf("     Date: %s\n\n", dateTime)
					}

					if data.Pagination.HasMore {
						p.Printf("   ... and %d more\n", data.Pagination.Total-len(data.Transcripts))
					}
				})
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "Maximum number of results")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search within transcripts")
	cmd.Flags().StringVar(&sortBy, "sort", "date", "Sort by field: date, filename, title")
	return cmd
}
