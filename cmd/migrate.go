package cmd

import (
	"io"
	"os"
	"path/filepath"

	"protokoll/internal/migrate"
	"protokoll/internal/output"

	"github.com/spf13/cobra"
)

// For mocking in tests
var osGetwd = os.Getwd

// migrationReport is the json and yaml form of a migration run.
type migrationReport struct {
	ContextDirectory string         `json:"contextDirectory"`
	DryRun           bool           `json:"dryRun"`
	Plans            []migrate.Plan `json:"plans"`
}

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migration utilities",
	}

	migrateCmd.AddCommand(newMigrateEntitiesCmd())
	return migrateCmd
}

func newMigrateEntitiesCmd() *cobra.Command {
	var (
		contextPath string
		execute     bool
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "entities",
		Short: "Migrate entity files from slug to UUID identification",
		Long: `Migrate entity files from slug to UUID identification.

Migration process:
  1. Generates UUIDs for all entity files
  2. Renames files to {uuid-prefix}-{slug}.yaml format
  3. Updates the id field to the UUID and adds a slug field with the old id

Without --execute only the migration plan is shown. With -o json or -o yaml
the plan is printed as a document instead of the step by step report.`,
		Example: `  protokoll migrate entities --context ~/activity/context --dry-run
  protokoll migrate entities --context ~/activity/context --execute
  protokoll -o json migrate entities`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if contextPath == "" {
				wd, err := osGetwd()
				if err != nil {
					return err
				}
				contextPath = wd
			}
			return runMigrateEntities(cmd, contextPath, !execute)
		},
	}

	// -c is taken by the global --config flag.
	cmd.Flags().StringVar(&contextPath, "context", "", "Context directory path (default: current directory)")
	cmd.Flags().BoolVar(&execute, "execute", false, "Actually perform the migration")
	// Dry run is the default; the flag is accepted for explicit invocations.
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without making changes (default)")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "execute")
	return cmd
}

func runMigrateEntities(cmd *cobra.Command, contextPath string, dryRun bool) error {
	p := printerFor(cmd)

	if p.Format() != output.FormatText {
		plans, err := migrate.New(io.Discard).Run(contextPath, dryRun)
		if err != nil {
			return err
		}
		if plans == nil {
			plans = []migrate.Plan{}
		}
		return p.Render(migrationReport{
			ContextDirectory: contextPath,
			DryRun:           dryRun,
			Plans:            plans,
		}, nil)
	}

	p.Println()
	if dryRun {
		p.Heading("🔍 DRY RUN MODE")
	} else {
		p.Heading("⚡ EXECUTING MIGRATION")
	}
	p.Printf("Context directory: %s\n\n", contextPath)

	plans, err := migrate.New(p.Writer()).Run(contextPath, dryRun)
	if err != nil {
		return err
	}

	if len(plans) == 0 {
		p.Success("No entities need migration (all already have UUIDs)")
		return nil
	}

	p.Printf("\nMigration Plan (%d entities):\n\n", len(plans))
	order, byType := migrate.GroupByType(plans)
	for _, entityType := range order {
		typePlans := byType[entityType]
		p.Printf("\n%s (%d):\n", entityType, len(typePlans))
		for _, plan := range typePlans {
			p.Printf("  %s\n", filepath.Base(plan.File))
			p.Printf("    Old ID: %s\n", plan.OldID)
			p.Printf("    New ID: %s\n", plan.NewID)
			p.Printf("    New Filename: %s\n", plan.NewFilename)
		}
	}

	p.Println()
	if dryRun {
		p.Warn("This was a dry run. No changes were made.")
		p.Println("To execute the migration, run with --execute flag")
	} else {
		p.Success("Migration complete! %d entities migrated.", len(plans))
	}
	return nil
}
