package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

const (
	toolCombineTranscripts   = "protokoll_combine_transcripts"
	toolEditTranscript       = "protokoll_edit_transcript"
	toolChangeTranscriptDate = "protokoll_change_transcript_date"
	toolCreateNote           = "protokoll_create_note"
)

type combineResult struct {
	OutputPath   textValue   `json:"outputPath"`
	SourceFiles  []textValue `json:"sourceFiles"`
	DeletedFiles []textValue `json:"deletedFiles"`
}

type editResult struct {
	Message    textValue `json:"message"`
	Renamed    bool      `json:"renamed"`
	OutputPath textValue `json:"outputPath"`
}

type changeDateResult struct {
	Moved        bool      `json:"moved"`
	OriginalPath textValue `json:"originalPath"`
	OutputPath   textValue `json:"outputPath"`
	Message      textValue `json:"message"`
}

type createNoteResult struct {
	Message  textValue `json:"message"`
	FilePath textValue `json:"filePath"`
}

func newActionCmd() *cobra.Command {
	actionCmd := &cobra.Command{
		Use:   "action",
		Short: "Perform actions on transcripts",
	}

	actionCmd.AddCommand(newActionCombineCmd())
	actionCmd.AddCommand(newActionEditCmd())
	actionCmd.AddCommand(&cobra.Command{
		Use:   "change-date <transcriptPath> <newDate>",
		Short: "Change the date of a transcript (moves file)",
		Example: `  protokoll action change-date meeting.md 2026-02-01
  protokoll action change-date notes.md 2026-01-15T10:30:00Z`,
		Args: cobra.ExactArgs(2),
		RunE: runActionChangeDate,
	})
	actionCmd.AddCommand(newActionCreateNoteCmd())

	return actionCmd
}

func newActionCombineCmd() *cobra.Command {
	var title, project string

	cmd := &cobra.Command{
		Use:   "combine <files...>",
		Short: "Combine multiple transcripts into one",
		Example: `  protokoll action combine meeting-1.md meeting-2.md
  protokoll action combine notes/*.md --title "Weekly Summary"
  protokoll action combine 2026/02/*.md --project weekly-review`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targs := toolArgs{"transcriptPaths": args}.str("title", title).str("projectId", project)

			var data combineResult
			return runTool(cmd, toolCombineTranscripts, targs, &data, func(raw json.RawMessage) error {
				p := printerFor(cmd)
				return p.Render(raw, func() {
					combined := len(data.SourceFiles)
					if combined == 0 {
						combined = len(args)
					}
					p.Success("Combined %d transcripts", combined)
					p.Printf("  Output: %s\n", data.OutputPath)
					if len(data.DeletedFiles) > 0 {
						p.Printf("  Deleted: %d source files\n", len(data.DeletedFiles))
					}
				})
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Title for combined transcript")
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project ID to assign")
	return cmd
}

func newActionEditCmd() *cobra.Command {
	var (
		title, project, status string
		addTags, removeTags    []string
	)

	cmd := &cobra.Command{
		Use:   "edit <transcriptPath>",
		Short: "Edit transcript metadata",
		Example: `  protokoll action edit meeting.md --title "Q1 Planning Meeting"
  protokoll action edit notes.md --project quarterly-review
  protokoll action edit notes.md --add-tag important --add-tag review
  protokoll action edit notes.md --status reviewed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targs := toolArgs{"transcriptPath": args[0]}.
				str("title", title).
				str("projectId", project).
				list("tagsToAdd", addTags).
				list("tagsToRemove", removeTags).
				str("status", status)

			var data editResult
			return runTool(cmd, toolEditTranscript, targs, &data, func(raw json.RawMessage) error {
				p := printerFor(cmd)
				return p.Render(raw, func() {
					p.Success("%s", data.Message)
					if data.Renamed {
						p.Printf("  New path: %s\n", data.OutputPath)
					}
				})
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title (renames file)")
	cmd.Flags().StringVarP(&project, "project", "p", "", "New project ID")
	cmd.Flags().StringArrayVar(&addTags, "add-tag", nil, "Add a tag (can be repeated)")
	cmd.Flags().StringArrayVar(&removeTags, "remove-tag", nil, "Remove a tag (can be repeated)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "New status (initial, enhanced, reviewed, in_progress, closed, archived)")
	return cmd
}

func runActionChangeDate(cmd *cobra.Command, args []string) error {
	var data changeDateResult
	return runTool(cmd, toolChangeTranscriptDate, toolArgs{
		"transcriptPath": args[0],
		"newDate":        args[1],
	}, &data, func(raw json.RawMessage) error {
		p := printerFor(cmd)
		return p.Render(raw, func() {
			if !data.Moved {
				p.Info("%s", data.Message)
				return
			}
			p.Success("Transcript moved")
			p.Printf("  From: %s\n", data.OriginalPath)
			p.Printf("  To: %s\n", data.OutputPath)
		})
	})
}

func newActionCreateNoteCmd() *cobra.Command {
	var (
		title, content, project, date string
		tags                          []string
	)

	cmd := &cobra.Command{
		Use:   "create-note",
		Short: "Create a new note/transcript",
		Example: `  protokoll action create-note --title "Meeting Notes"
  protokoll action create-note --title "Planning" --project quarterly-review
  protokoll action create-note --title "Ideas" --tag brainstorm --tag important`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			targs := toolArgs{"title": title}.
				str("content", content).
				str("projectId", project).
				list("tags", tags).
				str("date", date)

			var data createNoteResult
			return runTool(cmd, toolCreateNote, targs, &data, func(raw json.RawMessage) error {
				p := printerFor(cmd)
				return p.Render(raw, func() {
					p.Success("%s", data.Message)
					p.Printf("  Path: %s\n", data.FilePath)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Note title")
	_ = cmd.MarkFlagRequired("title")
	// -c is taken by the global --config flag.
	cmd.Flags().StringVar(&content, "content", "", "Note content")
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project ID to assign")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Add a tag (can be repeated)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date for the note (ISO format, defaults to now)")
	return cmd
}
