package cmd

import (
	"encoding/json"

	"protokoll/internal/output"

	"github.com/spf13/cobra"
)

const toolProvideFeedback = "protokoll_provide_feedback"

type feedbackResult struct {
	ChangesApplied int `json:"changesApplied"`
	Changes        []struct {
		Type        textValue `json:"type"`
		Description textValue `json:"description"`
	} `json:"changes"`
	Moved      bool      `json:"moved"`
	OutputPath textValue `json:"outputPath"`
}

func newFeedbackCmd() *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "feedback <transcriptPath> <feedback>",
		Short: "Provide natural language feedback to correct a transcript",
		Long: `Provide natural language feedback to correct a transcript.

The feedback is processed by an LLM on the server. It can fix spelling, add
terms to the context, change the project assignment and more.`,
		Example: `  protokoll feedback meeting.md "YB should be Wibey"
  protokoll feedback notes.md "San Jay Grouper is actually Sanjay Gupta"
  protokoll feedback notes.md "This should be assigned to the quarterly-review project"
  protokoll feedback notes.md "Add 'kubernetes' as a technical term"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if model == "" {
				model = activeConfig.Model
			}
			targs := toolArgs{
				"transcriptPath": args[0],
				"feedback":       args[1],
			}.str("model", model)

			p := printerFor(cmd)
			if p.Format() == output.FormatText {
				p.Println("Processing feedback...")
			}

			var data feedbackResult
			return runTool(cmd, toolProvideFeedback, targs, &data, func(raw json.RawMessage) error {
				return p.Render(raw, func() {
					if data.ChangesApplied == 0 {
						p.Println()
						p.Info("No changes were applied.")
						return
					}

					p.Println()
					p.Success("Applied %d change(s):", data.ChangesApplied)
					for _, change := range data.Changes {
						p.Printf("  • %s: %s\n", change.Type, change.Description)
					}
					if data.Moved {
						p.Printf("\n  File moved to: %s\n", data.OutputPath)
					}
				})
			})
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "LLM model for processing feedback")
	return cmd
}
