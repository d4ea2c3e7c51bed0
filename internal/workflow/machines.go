package workflow

import (
	"fmt"
	"sort"

	"github.com/heartmarshall/genomic-reports/internal/config"
	"github.com/heartmarshall/genomic-reports/internal/domain"
)

// Machines holds one transition table per workflow class.
type Machines struct {
	tables map[string]*Table
}

// NewMachines indexes tables by their table name.
func NewMachines(tables ...*Table) (*Machines, error) {
	m := &Machines{tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		if _, dup := m.tables[t.Name]; dup {
			return nil, fmt.Errorf("workflow: duplicate table %s", t.Name)
		}
		m.tables[t.Name] = t
	}
	return m, nil
}

// Load builds Machines from the embedded defaults, replacing any table for
// which the config names an override file.
func Load(cfg config.WorkflowConfig) (*Machines, error) {
	tables, err := Defaults()
	if err != nil {
		return nil, err
	}
	for _, path := range []string{cfg.ReportTablePath, cfg.GermlineTablePath} {
		if path == "" {
			continue
		}
		t, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		tables[t.Name] = t
	}

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	list := make([]*Table, len(names))
	for i, name := range names {
		list[i] = tables[name]
	}
	return NewMachines(list...)
}

// For returns the table of a workflow class.
func (m *Machines) For(table string) (*Table, error) {
	t, ok := m.tables[table]
	if !ok {
		return nil, domain.NewValidationError("table", fmt.Sprintf("%s has no workflow", table))
	}
	return t, nil
}

// Versions returns table name to version, for startup logs.
func (m *Machines) Versions() map[string]int {
	out := make(map[string]int, len(m.tables))
	for name, t := range m.tables {
		out[name] = t.Version
	}
	return out
}
