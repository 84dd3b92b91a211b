package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"protokoll/internal/output"

	"github.com/spf13/cobra"
)

const (
	toolGetEntity    = "protokoll_get_entity"
	toolDeleteEntity = "protokoll_delete_entity"
	toolMergeTerms   = "protokoll_merge_terms"
)

// entity holds the fields of any context entity the list layouts show.
type entity struct {
	ID          textValue `json:"id"`
	Name        textValue `json:"name"`
	Description textValue `json:"description"`
	Active      *bool     `json:"active"`
	Routing     struct {
		Destination textValue `json:"destination"`
	} `json:"routing"`
	Role      textValue `json:"role"`
	Company   textValue `json:"company"`
	Expansion textValue `json:"expansion"`
	Domain    textValue `json:"domain"`
	Industry  textValue `json:"industry"`
}

func (e entity) isActive() bool {
	return e.Active == nil || *e.Active
}

// entityFlag is an optional string flag of an add command, forwarded under
// the same argument name.
type entityFlag struct {
	name  string
	usage string
}

// entityKind describes one of the entity command groups.
type entityKind struct {
	name     string // entity type understood by the server
	title    string
	plural   string // key of the list in list responses
	group    string // heading of list output
	short    string
	listTool string
	addTool  string
	addFlags []entityFlag
	compact  func(e entity) string
	verbose  func(p *output.Printer, e entity)
}

var entityKinds = []entityKind{
	{
		name:     "project",
		title:    "Project",
		plural:   "projects",
		group:    "Projects",
		short:    "Manage projects",
		listTool: "protokoll_list_projects",
		addTool:  "protokoll_add_project",
		addFlags: []entityFlag{
			{name: "id", usage: "Project ID (auto-calculated from name if not provided)"},
			{name: "description", usage: "Project description"},
			{name: "destination", usage: "Output destination path"},
			{name: "structure", usage: "Directory structure: none, year, month, day"},
		},
		compact: func(e entity) string {
			var b strings.Builder
			if e.Routing.Destination != "" {
				b.WriteString(" → " + e.Routing.Destination.String())
			}
			if !e.isActive() {
				b.WriteString(" [inactive]")
			}
			return b.String()
		},
		verbose: func(p *output.Printer, e entity) {
			if e.Description != "" {
				p.Printf("    Description: %s\n", e.Description)
			}
			if e.Routing.Destination != "" {
				p.Printf("    Destination: %s\n", e.Routing.Destination)
			}
			p.Printf("    Active: %t\n", e.isActive())
		},
	},
	{
		name:     "person",
		title:    "Person",
		plural:   "people",
		group:    "People",
		short:    "Manage people",
		listTool: "protokoll_list_people",
		addTool:  "protokoll_add_person",
		addFlags: []entityFlag{
			{name: "id", usage: "Person ID (auto-calculated from name if not provided)"},
			{name: "role", usage: "Role/title"},
			{name: "company", usage: "Company name"},
		},
		compact: func(e entity) string {
			var details []string
			if e.Role != "" {
				details = append(details, e.Role.String())
			}
			if e.Company != "" {
				details = append(details, "@"+e.Company.String())
			}
			if len(details) == 0 {
				return ""
			}
			return " (" + strings.Join(details, " · ") + ")"
		},
		verbose: func(p *output.Printer, e entity) {
			if e.Role != "" {
				p.Printf("    Role: %s\n", e.Role)
			}
			if e.Company != "" {
				p.Printf("    Company: %s\n", e.Company)
			}
		},
	},
	{
		name:     "term",
		title:    "Term",
		plural:   "terms",
		group:    "Terms",
		short:    "Manage terms",
		listTool: "protokoll_list_terms",
		addTool:  "protokoll_add_term",
		addFlags: []entityFlag{
			{name: "id", usage: "Term ID (auto-calculated from name if not provided)"},
			{name: "expansion", usage: "Full expansion if acronym"},
			{name: "domain", usage: "Domain category"},
			{name: "description", usage: "Term description"},
		},
		compact: func(e entity) string {
			if e.Expansion == "" {
				return ""
			}
			return " (" + e.Expansion.String() + ")"
		},
		verbose: func(p *output.Printer, e entity) {
			if e.Expansion != "" {
				p.Printf("    Expansion: %s\n", e.Expansion)
			}
			if e.Domain != "" {
				p.Printf("    Domain: %s\n", e.Domain)
			}
		},
	},
	{
		name:     "company",
		title:    "Company",
		plural:   "companies",
		group:    "Companies",
		short:    "Manage companies",
		listTool: "protokoll_list_companies",
		addTool:  "protokoll_add_company",
		addFlags: []entityFlag{
			{name: "id", usage: "Company ID (auto-calculated from name if not provided)"},
			{name: "industry", usage: "Industry sector"},
		},
		compact: func(e entity) string {
			if e.Industry == "" {
				return ""
			}
			return " [" + e.Industry.String() + "]"
		},
		verbose: func(p *output.Printer, e entity) {
			if e.Industry != "" {
				p.Printf("    Industry: %s\n", e.Industry)
			}
		},
	},
}

func newEntityCmd(kind entityKind) *cobra.Command {
	entityCmd := &cobra.Command{
		Use:   kind.name,
		Short: kind.short,
	}

	entityCmd.AddCommand(newEntityListCmd(kind))
	entityCmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: fmt.Sprintf("Show details of a %s", kind.name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntityShow(cmd, kind, args[0])
		},
	})
	entityCmd.AddCommand(newEntityAddCmd(kind))
	entityCmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: fmt.Sprintf("Delete a %s", kind.name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntityDelete(cmd, kind, args[0])
		},
	})

	if kind.name == "term" {
		entityCmd.AddCommand(&cobra.Command{
			Use:   "merge <sourceId> <targetId>",
			Short: "Merge two terms (combines metadata, deletes source)",
			Args:  cobra.ExactArgs(2),
			RunE:  runTermMerge,
		})
	}

	return entityCmd
}

func newEntityListCmd(kind entityKind) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List all %s", kind.plural),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var data map[string]json.RawMessage
			return runTool(cmd, kind.listTool, toolArgs{}, &data, func(raw json.RawMessage) error {
				var entities []entity
				if list, ok := data[kind.plural]; ok {
					if err := json.Unmarshal(list, &entities); err != nil {
						return fmt.Errorf("failed to parse %s response: %w", kind.listTool, err)
					}
				}

				p := printerFor(cmd)
				return p.Render(raw, func() {
					printEntityList(p, kind, entities, verbose)
				})
			})
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show full details")
	return cmd
}

func printEntityList(p *output.Printer, kind entityKind, entities []entity, verbose bool) {
	if len(entities) == 0 {
		p.Printf("No %s found.\n", kind.plural)
		return
	}

	p.Printf("\n%s (%d):\n\n", kind.group, len(entities))
	for _, e := range entities {
		if !verbose {
			p.Printf("  %s - %s%s\n", e.ID, e.Name, kind.compact(e))
			continue
		}
		p.Printf("  %s\n", e.ID)
		p.Printf("    Name: %s\n", e.Name)
		kind.verbose(p, e)
		p.Println()
	}
}

func runEntityShow(cmd *cobra.Command, kind entityKind, id string) error {
	var data struct {
		Entity json.RawMessage `json:"entity"`
	}
	return runTool(cmd, toolGetEntity, toolArgs{
		"entityType": kind.name,
		"entityId":   id,
	}, &data, func(raw json.RawMessage) error {
		p := printerFor(cmd)
		if p.Format() != output.FormatText {
			return p.Render(raw, nil)
		}
		p.Println()
		if data.Entity == nil {
			p.Println("null")
			return nil
		}
		return p.JSON(data.Entity)
	})
}

func newEntityAddCmd(kind entityKind) *cobra.Command {
	var name string
	values := make(map[string]*string, len(kind.addFlags))

	cmd := &cobra.Command{
		Use:   "add",
		Short: fmt.Sprintf("Add a new %s", kind.name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			targs := toolArgs{"name": name}
			for _, flag := range kind.addFlags {
				targs.str(flag.name, *values[flag.name])
			}

			var data map[string]json.RawMessage
			return runTool(cmd, kind.addTool, targs, &data, func(raw json.RawMessage) error {
				id := createdEntityID(data, kind.name)
				p := printerFor(cmd)
				return p.Render(raw, func() {
					p.Success("%s created: %s", kind.title, id)
				})
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", fmt.Sprintf("%s name", kind.title))
	_ = cmd.MarkFlagRequired("name")
	for _, flag := range kind.addFlags {
		values[flag.name] = cmd.Flags().String(flag.name, "", flag.usage)
	}
	return cmd
}

// createdEntityID reads the id from {"<kind>": {"id": ...}}, falling back to
// a top-level id.
func createdEntityID(data map[string]json.RawMessage, kind string) string {
	var created struct {
		ID textValue `json:"id"`
	}
	if nested, ok := data[kind]; ok {
		if err := json.Unmarshal(nested, &created); err == nil && created.ID != "" {
			return created.ID.String()
		}
	}
	var id textValue
	if top, ok := data["id"]; ok {
		_ = json.Unmarshal(top, &id)
	}
	return id.String()
}

type successResult struct {
	Success bool `json:"success"`
}

func runEntityDelete(cmd *cobra.Command, kind entityKind, id string) error {
	var data successResult
	return runTool(cmd, toolDeleteEntity, toolArgs{
		"entityType": kind.name,
		"entityId":   id,
	}, &data, func(raw json.RawMessage) error {
		p := printerFor(cmd)
		return p.Render(raw, func() {
			if data.Success {
				p.Success("%s %q deleted.", kind.title, id)
			}
		})
	})
}

func runTermMerge(cmd *cobra.Command, args []string) error {
	sourceID, targetID := args[0], args[1]

	var data successResult
	return runTool(cmd, toolMergeTerms, toolArgs{
		"sourceId": sourceID,
		"targetId": targetID,
	}, &data, func(raw json.RawMessage) error {
		p := printerFor(cmd)
		return p.Render(raw, func() {
			if data.Success {
				p.Success("Merged %q into %q", sourceID, targetID)
			}
		})
	})
}
