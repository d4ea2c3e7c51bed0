package entity

import (
	"fmt"

	"github.com/heartmarshall/genomic-reports/internal/domain"
)

// Registry holds the entity classes by table name.
type Registry struct {
	classes map[string]*Class
}

// NewRegistry validates the class graph and builds a Registry. Every
// relation must name a registered child whose Parent and ParentKey match.
func NewRegistry(classes ...*Class) (*Registry, error) {
	r := &Registry{classes: make(map[string]*Class, len(classes))}
	for _, c := range classes {
		if c.Table == "" {
			return nil, fmt.Errorf("entity: class with empty table")
		}
		if _, dup := r.classes[c.Table]; dup {
			return nil, fmt.Errorf("entity: duplicate class %s", c.Table)
		}
		r.classes[c.Table] = c
	}

	for _, c := range classes {
		for _, rel := range c.Children {
			child, ok := r.classes[rel.Child]
			if !ok {
				return nil, fmt.Errorf("entity: %s: unknown child %s", c.Table, rel.Child)
			}
			if !rel.Mode.IsValid() {
				return nil, fmt.Errorf("entity: %s -> %s: invalid mode %q", c.Table, rel.Child, rel.Mode)
			}
			if child.Parent != c.Table || child.ParentKey != rel.ForeignKey {
				return nil, fmt.Errorf("entity: %s -> %s: child parent is %s.%s", c.Table, rel.Child, child.Parent, child.ParentKey)
			}
		}
		if c.Parent != "" {
			if _, ok := r.classes[c.Parent]; !ok {
				return nil, fmt.Errorf("entity: %s: unknown parent %s", c.Table, c.Parent)
			}
			if _, ok := c.Column(c.ParentKey); !ok {
				return nil, fmt.Errorf("entity: %s: parent key %s is not a column", c.Table, c.ParentKey)
			}
		}
		if c.Ranking != nil {
			for _, col := range append(append([]string{}, c.Ranking.ScopeColumns...), c.Ranking.RankColumn) {
				if _, ok := c.Column(col); !ok {
					return nil, fmt.Errorf("entity: %s: ranking column %s is not a column", c.Table, col)
				}
			}
		}
		if c.Dedup != nil {
			for _, col := range c.Dedup.Columns {
				if _, ok := c.Column(col); !ok {
					return nil, fmt.Errorf("entity: %s: dedup column %s is not a column", c.Table, col)
				}
			}
		}
	}
	return r, nil
}

// Class returns the class registered for table.
func (r *Registry) Class(table string) (*Class, error) {
	c, ok := r.classes[table]
	if !ok {
		return nil, domain.NewValidationError("table", fmt.Sprintf("unknown entity class %q", table))
	}
	return c, nil
}

// Root returns the top-level ancestor class of table: the report a child
// row belongs to, or the class itself for roots.
func (r *Registry) Root(table string) (*Class, error) {
	c, err := r.Class(table)
	if err != nil {
		return nil, err
	}
	for c.Parent != "" {
		c = r.classes[c.Parent]
	}
	return c, nil
}
