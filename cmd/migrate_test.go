package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeContextEntity(t *testing.T, root, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(path, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(path, name), []byte(content), 0644))
	return path
}

func TestMigrateEntities_DryRunByDefault(t *testing.T) {
	srv := setupServer(t)
	root := t.TempDir()
	people := writeContextEntity(t, root, "people", "jane.yaml", "id: jane\nname: Jane\n")

	out, _, err := runCLI(t, "migrate", "entities", "--context", root)
	require.NoError(t, err)

	assert.Contains(t, out, "🔍 DRY RUN MODE\n")
	assert.Contains(t, out, "Context directory: "+root+"\n")
	assert.Contains(t, out, "Skipping projects (directory not found)\n")
	assert.Contains(t, out, "Migration Plan (1 entities):")
	assert.Contains(t, out, "\npeople (1):\n  jane.yaml\n    Old ID: jane\n")
	assert.Contains(t, out, "This was a dry run. No changes were made.")
	assert.Contains(t, out, "To execute the migration, run with --execute flag\n")

	_, err = os.Stat(filepath.Join(people, "jane.yaml"))
	assert.NoError(t, err)
	assert.Equal(t, 0, srv.Dials())
}

func TestMigrateEntities_Execute(t *testing.T) {
	setupServer(t)
	root := t.TempDir()
	terms := writeContextEntity(t, root, "terms", "k8s.yaml", "id: k8s\nname: Kubernetes\n")

	out, _, err := runCLI(t, "migrate", "entities", "--context", root, "--execute")
	require.NoError(t, err)

	assert.Contains(t, out, "⚡ EXECUTING MIGRATION\n")
	assert.Contains(t, out, "✓ Migrated: k8s.yaml → ")
	assert.Contains(t, out, "✓ Migration complete! 1 entities migrated.")

	entries, err := os.ReadDir(terms)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEqual(t, "k8s.yaml", entries[0].Name())
	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]-k8s\.yaml$`, entries[0].Name())
}

func TestMigrateEntities_NothingToDo(t *testing.T) {
	setupServer(t)
	root := t.TempDir()

	original := osGetwd
	osGetwd = func() (string, error) { return root, nil }
	t.Cleanup(func() { osGetwd = original })

	out, _, err := runCLI(t, "migrate", "entities")
	require.NoError(t, err)
	assert.Contains(t, out, "Context directory: "+root+"\n")
	assert.Contains(t, out, "✓ No entities need migration (all already have UUIDs)\n")
}

func TestMigrateEntities_DryRunFlag(t *testing.T) {
	setupServer(t)
	root := t.TempDir()
	writeContextEntity(t, root, "people", "jane.yaml", "id: jane\nname: Jane\n")

	out, _, err := runCLI(t, "migrate", "entities", "--context", root, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "🔍 DRY RUN MODE\n")

	_, _, err = runCLI(t, "migrate", "entities", "--context", root, "--dry-run", "--execute")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestMigrateEntities_JSON(t *testing.T) {
	setupServer(t)
	root := t.TempDir()
	people := writeContextEntity(t, root, "people", "jane.yaml", "id: jane\nname: Jane\n")

	out, _, err := runCLI(t, "-o", "json", "migrate", "entities", "--context", root)
	require.NoError(t, err)

	var report struct {
		ContextDirectory string `json:"contextDirectory"`
		DryRun           bool   `json:"dryRun"`
		Plans            []struct {
			File       string `json:"file"`
			OldID      string `json:"oldId"`
			EntityType string `json:"entityType"`
		} `json:"plans"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, root, report.ContextDirectory)
	assert.True(t, report.DryRun)
	require.Len(t, report.Plans, 1)
	assert.Equal(t, filepath.Join(people, "jane.yaml"), report.Plans[0].File)
	assert.Equal(t, "jane", report.Plans[0].OldID)
	assert.Equal(t, "people", report.Plans[0].EntityType)
}
