// Package migrate converts context entity files from slug identifiers to
// UUID identifiers.
//
// Every entity directory under a context path holds one YAML file per entity.
// Migration gives each entity a random UUID, keeps the old identifier as its
// slug and renames the file to "<first 10 characters of the UUID>-<slug>.yaml".
package migrate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"protokoll/pkg/logging"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// EntityDirs lists the entity directories in the order they are migrated.
var EntityDirs = []string{"people", "projects", "companies", "terms", "ignored"}

const uuidPrefixLen = 10

// ErrNotMapping is returned for entity files whose document is not a mapping.
var ErrNotMapping = errors.New("entity is not a mapping")

var uuidPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// Plan describes the migration of a single entity file.
type Plan struct {
	File        string `json:"file"`
	OldID       string `json:"oldId"`
	NewID       string `json:"newId"`
	NewFilename string `json:"newFilename"`
	EntityType  string `json:"entityType"`
}

// Migrator plans and performs the migration of one context directory.
type Migrator struct {
	// Out receives skip and progress messages.
	Out io.Writer
	// NewID generates identifiers. Defaults to random UUIDs.
	NewID func() string
}

// New returns a Migrator reporting to out.
func New(out io.Writer) *Migrator {
	return &Migrator{
		Out:   out,
		NewID: func() string { return uuid.New().String() },
	}
}

// IsUUID reports whether id is a canonical UUID string.
func IsUUID(id string) bool {
	return uuidPattern.MatchString(id)
}

// Run plans the migration of every entity under contextPath. Unless dryRun is
// set each planned file is rewritten with its UUID and slug under its new
// name, and the original file is removed.
func (m *Migrator) Run(contextPath string, dryRun bool) ([]Plan, error) {
	var plans []Plan

	for _, dirName := range EntityDirs {
		dirPath := filepath.Join(contextPath, dirName)

		info, err := os.Stat(dirPath)
		if err != nil || !info.IsDir() {
			fmt.Fprintf(m.Out, "Skipping %s (directory not found)\n", dirName)
			continue
		}

		entries, err := os.ReadDir(dirPath)
		if err != nil {
			return plans, fmt.Errorf("failed to read %s: %w", dirPath, err)
		}

		var files []string
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".yaml") {
				files = append(files, entry.Name())
			}
		}
		sort.Strings(files)

		for _, file := range files {
			plan, skip, err := m.migrateFile(dirPath, dirName, file, dryRun)
			if err != nil {
				return plans, err
			}
			if skip {
				continue
			}
			plans = append(plans, plan)
		}
	}

	return plans, nil
}

func (m *Migrator) migrateFile(dirPath, dirName, file string, dryRun bool) (Plan, bool, error) {
	filePath := filepath.Join(dirPath, file)

	data, err := os.ReadFile(filePath)
	if err != nil {
		return Plan{}, false, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Plan{}, false, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	entity, err := entityMapping(&doc)
	if err != nil {
		return Plan{}, false, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}

	oldID := scalarValue(entity, "id")
	if IsUUID(oldID) {
		fmt.Fprintf(m.Out, "Skipping %s (already has UUID)\n", file)
		return Plan{}, true, nil
	}

	// The old id is kept as the slug; entities without one fall back to
	// their file name.
	slug := oldID
	if slug == "" {
		slug = strings.TrimSuffix(file, ".yaml")
	}

	newID := m.NewID()
	prefix := newID
	if len(prefix) > uuidPrefixLen {
		prefix = prefix[:uuidPrefixLen]
	}

	plan := Plan{
		File:        filePath,
		OldID:       oldID,
		NewID:       newID,
		NewFilename: fmt.Sprintf("%s-%s.yaml", prefix, slug),
		EntityType:  dirName,
	}

	if dryRun {
		return plan, false, nil
	}

	setScalar(entity, "id", newID)
	setScalar(entity, "slug", slug)

	out, err := encodeEntity(&doc)
	if err != nil {
		return Plan{}, false, fmt.Errorf("failed to encode %s: %w", filePath, err)
	}

	newPath := filepath.Join(dirPath, plan.NewFilename)
	if err := os.WriteFile(newPath, out, 0644); err != nil {
		return Plan{}, false, fmt.Errorf("failed to write %s: %w", newPath, err)
	}
	if newPath != filePath {
		if err := os.Remove(filePath); err != nil {
			return Plan{}, false, fmt.Errorf("failed to remove %s: %w", filePath, err)
		}
	}

	logging.Debug("Migrate", "Rewrote %s as %s", filePath, newPath)
	fmt.Fprintf(m.Out, "✓ Migrated: %s → %s\n", file, plan.NewFilename)
	return plan, false, nil
}

// GroupByType groups plans by entity type, keeping EntityDirs order.
func GroupByType(plans []Plan) ([]string, map[string][]Plan) {
	byType := make(map[string][]Plan)
	var order []string
	for _, plan := range plans {
		if _, seen := byType[plan.EntityType]; !seen {
			order = append(order, plan.EntityType)
		}
		byType[plan.EntityType] = append(byType[plan.EntityType], plan)
	}
	return order, byType
}

// encodeEntity writes doc back with the two-space indentation entity files
// are written with.
func encodeEntity(doc *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// entityMapping returns the top-level mapping of a YAML document. An empty
// document yields a fresh mapping.
func entityMapping(doc *yaml.Node) (*yaml.Node, error) {
	if doc.Kind == 0 {
		doc.Kind = yaml.DocumentNode
	}
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"})
		}
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}
	return doc, nil
}

func scalarValue(mapping *yaml.Node, key string) string {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key && mapping.Content[i+1].Kind == yaml.ScalarNode {
			return mapping.Content[i+1].Value
		}
	}
	return ""
}

// setScalar replaces the value of key, or appends key after the existing
// entries. A new slug is placed right after id.
func setScalar(mapping *yaml.Node, key, value string) {
	valueNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = valueNode
			return
		}
	}

	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	if key == "slug" {
		for i := 0; i+1 < len(mapping.Content); i += 2 {
			if mapping.Content[i].Value == "id" {
				rest := append([]*yaml.Node{keyNode, valueNode}, mapping.Content[i+2:]...)
				mapping.Content = append(mapping.Content[:i+2], rest...)
				return
			}
		}
	}
	mapping.Content = append(mapping.Content, keyNode, valueNode)
}
