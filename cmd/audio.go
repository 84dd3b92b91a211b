package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"protokoll/internal/mcpclient"
	"protokoll/internal/output"
	"protokoll/internal/progress"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const (
	toolProcessAudio = "protokoll_process_audio"
	toolBatchProcess = "protokoll_batch_process"

	processTimeout = 10 * time.Minute
	batchTimeout   = 30 * time.Minute
)

// ErrInputDirectoryRequired is returned by batch when neither the argument
// nor the configuration names an input directory.
var ErrInputDirectoryRequired = errors.New("inputDirectory is required")

// For mocking in tests
var newProgressToken = func() string { return uuid.NewString() }

type processResult struct {
	OutputPath textValue `json:"outputPath"`
	Title      textValue `json:"title"`
	Project    textValue `json:"project"`
	Duration   textValue `json:"duration"`
	Message    textValue `json:"message"`
}

type batchResult struct {
	ProcessedCount int `json:"processedCount"`
	FailedCount    int `json:"failedCount"`
	Results        []struct {
		Success    bool      `json:"success"`
		Filename   textValue `json:"filename"`
		File       textValue `json:"file"`
		OutputPath textValue `json:"outputPath"`
	} `json:"results"`
}

// runLongTool calls a long-running tool with a progress token and renders
// the server's progress notifications on stderr while it runs.
func runLongTool(cmd *cobra.Command, tool string, args toolArgs, timeout time.Duration, data interface{}, render func(raw json.RawMessage) error) error {
	return withClient(cmd, func(ctx context.Context, c *mcpclient.Client) error {
		token := newProgressToken()
		tracker := progress.NewTracker(cmd.ErrOrStderr())
		c.OnProgress(tracker.Handle)
		defer c.OnProgress(nil)

		raw, err := callTool(ctx, c, tool, args,
			mcpclient.WithProgressToken(token),
			mcpclient.WithTimeout(timeout),
		)
		tracker.Finish(token, err)
		if err != nil || raw == nil {
			return err
		}
		if err := mcpclient.Decode(tool, string(raw), data); err != nil {
			// The raw result is printed when it cannot be laid out.
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return err
		}
		return render(raw)
	})
}

func newProcessCmd() *cobra.Command {
	var project, outputDir, model, transcriptionModel string

	cmd := &cobra.Command{
		Use:   "process <audioFile>",
		Short: "Process an audio file through the transcription pipeline",
		Example: `  protokoll process recording.m4a
  protokoll process audio.m4a --project weekly-review
  protokoll process /path/to/audio.wav --output ~/transcripts`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if model == "" {
				model = activeConfig.Model
			}
			if transcriptionModel == "" {
				transcriptionModel = activeConfig.TranscriptionModel
			}
			targs := toolArgs{"audioFile": args[0]}.
				str("projectId", project).
				str("outputDirectory", outputDir).
				str("model", model).
				str("transcriptionModel", transcriptionModel)

			p := printerFor(cmd)
			p.Println("Processing audio file...")
			p.Println()

			var data processResult
			return runLongTool(cmd, toolProcessAudio, targs, processTimeout, &data, func(raw json.RawMessage) error {
				p.Println()
				p.Success("Audio processed successfully")
				p.Println()
				if data.OutputPath != "" {
					p.Printf("Output: %s\n", data.OutputPath)
				}
				if data.Title != "" {
					p.Printf("Title: %s\n", data.Title)
				}
				if data.Project != "" {
					p.Printf("Project: %s\n", data.Project)
				}
				if data.Duration != "" {
					p.Printf("Duration: %s\n", data.Duration)
				}
				if data.Message != "" {
					p.Printf("\n%s\n", data.Message)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Specific project ID for routing")
	// --output shadows the global output format flag for this command.
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Override output directory")
	cmd.Flags().StringVarP(&model, "model", "m", "", "LLM model for enhancement")
	cmd.Flags().StringVar(&transcriptionModel, "transcription-model", "", "Transcription model (default: whisper-1)")
	return cmd
}

func newBatchCmd() *cobra.Command {
	var outputDir, extensions string

	cmd := &cobra.Command{
		Use:   "batch [inputDirectory]",
		Short: "Process multiple audio files in a directory",
		Example: `  protokoll batch ~/recordings
  protokoll batch /media/audio --output ~/transcripts
  protokoll batch                          # Uses inputDirectory from config`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputDirectory := activeConfig.InputDirectory
			if len(args) > 0 && args[0] != "" {
				inputDirectory = args[0]
			}
			if inputDirectory == "" {
				return fmt.Errorf("%w: provide it as an argument or in your config file", ErrInputDirectoryRequired)
			}
			if outputDir == "" {
				outputDir = activeConfig.OutputDirectory
			}

			p := printerFor(cmd)
			p.Println("Batch processing audio files...")
			p.Println()
			p.Printf("Input directory: %s\n", inputDirectory)
			if outputDir != "" {
				p.Printf("Output directory: %s\n", outputDir)
			}
			p.Println()

			targs := toolArgs{"inputDirectory": inputDirectory}.
				str("outputDirectory", outputDir).
				list("extensions", splitExtensions(extensions))

			var data batchResult
			return runLongTool(cmd, toolBatchProcess, targs, batchTimeout, &data, func(raw json.RawMessage) error {
				printBatchResult(p, data)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Override output directory")
	cmd.Flags().StringVarP(&extensions, "extensions", "e", "", "Audio extensions (comma-separated, default: m4a,mp3,wav,webm)")
	return cmd
}

func printBatchResult(p *output.Printer, data batchResult) {
	p.Println()
	p.Success("Batch processing complete")
	p.Println()
	p.Printf("Processed: %d files\n", data.ProcessedCount)
	p.Printf("Failed: %d files\n", data.FailedCount)

	if data.Results == nil {
		return
	}
	p.Println("\nResults:")
	for _, result := range data.Results {
		name := result.Filename
		if name == "" {
			name = result.File
		}
		if result.Success {
			p.Printf("  %s %s\n", output.IconSuccess, name)
		} else {
			p.Printf("  %s %s\n", output.IconError, name)
		}
		if result.OutputPath != "" {
			p.Printf("    → %s\n", result.OutputPath)
		}
	}
}

// splitExtensions turns "m4a, mp3" into ["m4a", "mp3"].
func splitExtensions(list string) []string {
	if list == "" {
		return nil
	}
	var exts []string
	for _, ext := range strings.Split(list, ",") {
		if ext = strings.TrimSpace(ext); ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}
