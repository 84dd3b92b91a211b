package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

const (
	toolContextStatus = "protokoll_context_status"
	toolSearchContext = "protokoll_search_context"
)

type contextStatusResult struct {
	Directories []struct {
		Path  textValue `json:"path"`
		Level int       `json:"level"`
	} `json:"directories"`
	Counts struct {
		Projects  int `json:"projects"`
		People    int `json:"people"`
		Terms     int `json:"terms"`
		Companies int `json:"companies"`
		Ignored   int `json:"ignored"`
	} `json:"counts"`
}

type contextSearchResult struct {
	Results []struct {
		Type textValue `json:"type"`
		ID   textValue `json:"id"`
		Name textValue `json:"name"`
	} `json:"results"`
}

func newContextCmd() *cobra.Command {
	contextCmd := &cobra.Command{
		Use:   "context",
		Short: "Show context system overview",
	}

	contextCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show context system status",
		Args:  cobra.NoArgs,
		RunE:  runContextStatus,
	})

	contextCmd.AddCommand(&cobra.Command{
		Use:   "search <query>",
		Short: "Search across all entity types",
		Args:  cobra.ExactArgs(1),
		RunE:  runContextSearch,
	})

	return contextCmd
}

func runContextStatus(cmd *cobra.Command, args []string) error {
	var data contextStatusResult
	return runTool(cmd, toolContextStatus, toolArgs{}, &data, func(raw json.RawMessage) error {
		p := printerFor(cmd)
		return p.Render(raw, func() {
			p.Println()
			p.Heading("[Context System Status]")
			p.Println()

			if len(data.Directories) == 0 {
				p.Println("No .protokoll directories found.")
				p.Println(`Run "protokoll --init-config" to create one.`)
				return
			}

			p.Println("Discovered context directories:")
			for _, dir := range data.Directories {
				marker := " "
				if dir.Level == 0 {
					marker = "→"
				}
				p.Printf("  %s %s (level %d)\n", marker, dir.Path, dir.Level)
			}

			p.Println("\nLoaded entities:")
			p.Printf("  Projects:  %d\n", data.Counts.Projects)
			p.Printf("  People:    %d\n", data.Counts.People)
			p.Printf("  Terms:     %d\n", data.Counts.Terms)
			p.Printf("  Companies: %d\n", data.Counts.Companies)
			p.Printf("  Ignored:   %d\n", data.Counts.Ignored)
			p.Println()
		})
	})
}

func runContextSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	var data contextSearchResult
	return runTool(cmd, toolSearchContext, toolArgs{"query": query}, &data, func(raw json.RawMessage) error {
		p := printerFor(cmd)
		return p.Render(raw, func() {
			if len(data.Results) == 0 {
				p.Printf("No results found for %q.\n", query)
				return
			}

			p.Printf("\nResults for %q (%d):\n\n", query, len(data.Results))
			for _, entity := range data.Results {
				p.Printf("  [%s] %s - %s\n", entity.Type, entity.ID, entity.Name)
			}
			p.Println()
		})
	})
}
