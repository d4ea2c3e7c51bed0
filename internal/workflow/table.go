// Package workflow loads versioned status transition tables and checks
// status changes against them.
package workflow

import (
	"embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/genomic-reports/internal/domain"
)

//go:embed tables/*.yaml
var defaultTables embed.FS

// Table is the transition edge table of one workflow class.
type Table struct {
	Version    int
	Name       string
	Initial    string
	States     []string
	Exportable []string

	edges map[string][]string
}

type tableFile struct {
	Version    int                 `yaml:"version"`
	Table      string              `yaml:"table"`
	Initial    string              `yaml:"initial"`
	States     []string            `yaml:"states"`
	Exportable []string            `yaml:"exportable"`
	Edges      map[string][]string `yaml:"edges"`
}

// Parse decodes and validates a YAML transition table.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("workflow: decode: %w", err)
	}

	if f.Table == "" {
		return nil, fmt.Errorf("workflow: table is required")
	}
	if f.Version <= 0 {
		return nil, fmt.Errorf("workflow %s: version must be > 0", f.Table)
	}
	if len(f.States) == 0 {
		return nil, fmt.Errorf("workflow %s: no states", f.Table)
	}

	seen := make(map[string]bool, len(f.States))
	for _, s := range f.States {
		if s == "" {
			return nil, fmt.Errorf("workflow %s: empty state name", f.Table)
		}
		if seen[s] {
			return nil, fmt.Errorf("workflow %s: duplicate state %q", f.Table, s)
		}
		seen[s] = true
	}
	if !seen[f.Initial] {
		return nil, fmt.Errorf("workflow %s: initial state %q is not declared", f.Table, f.Initial)
	}
	for _, s := range f.Exportable {
		if !seen[s] {
			return nil, fmt.Errorf("workflow %s: exportable state %q is not declared", f.Table, s)
		}
	}
	for from, tos := range f.Edges {
		if !seen[from] {
			return nil, fmt.Errorf("workflow %s: edge from undeclared state %q", f.Table, from)
		}
		for _, to := range tos {
			if !seen[to] {
				return nil, fmt.Errorf("workflow %s: edge %s -> undeclared state %q", f.Table, from, to)
			}
			if to == from {
				return nil, fmt.Errorf("workflow %s: self edge on %q", f.Table, from)
			}
		}
	}

	return &Table{
		Version:    f.Version,
		Name:       f.Table,
		Initial:    f.Initial,
		States:     f.States,
		Exportable: f.Exportable,
		edges:      f.Edges,
	}, nil
}

// LoadFile reads a transition table from disk.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("workflow: read %s: %w", path, err)
	}
	return Parse(data)
}

// Defaults returns the embedded transition tables keyed by table name.
func Defaults() (map[string]*Table, error) {
	entries, err := defaultTables.ReadDir("tables")
	if err != nil {
		return nil, fmt.Errorf("workflow: list embedded tables: %w", err)
	}
	out := make(map[string]*Table, len(entries))
	for _, e := range entries {
		data, err := defaultTables.ReadFile("tables/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("workflow: read embedded %s: %w", e.Name(), err)
		}
		t, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		out[t.Name] = t
	}
	return out, nil
}

// Allowed reports whether from -> to is a declared edge.
func (t *Table) Allowed(from, to string) bool {
	return slices.Contains(t.edges[from], to)
}

// HasState reports whether s is a declared state.
func (t *Table) HasState(s string) bool {
	return slices.Contains(t.States, s)
}

// IsExportable reports whether records in state s may be snapshotted.
func (t *Table) IsExportable(s string) bool {
	return slices.Contains(t.Exportable, s)
}

// Check returns a *domain.TransitionError unless from -> to is an edge.
func (t *Table) Check(recordID int64, from, to string) error {
	if t.Allowed(from, to) {
		return nil
	}
	return &domain.TransitionError{Table: t.Name, RecordID: recordID, From: from, To: to}
}
