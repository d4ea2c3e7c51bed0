// Package entity declares the entity classes of the report store: their
// columns, parent/child relations with cascade annotations, and the
// uniqueness rules the enforcer applies to them.
package entity

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/heartmarshall/genomic-reports/internal/domain"
)

// ColumnKind is the value type of a user-editable column.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindInt
	KindFloat
	KindBool
	KindTextList
	KindUUID
)

func (k ColumnKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "integer"
	case KindFloat:
		return "number"
	case KindBool:
		return "boolean"
	case KindTextList:
		return "text list"
	case KindUUID:
		return "uuid"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Column describes a user-editable column. System columns (id, ident,
// timestamps, soft-delete stamp) and the workflow status are not listed.
type Column struct {
	Name      string
	Kind      ColumnKind
	Required  bool
	Immutable bool
	MaxLen    int
	Enum      []string
}

// Relation links a parent class to a child class through the child's
// foreign key column.
type Relation struct {
	Child      string
	ForeignKey string
	Mode       domain.RelationMode
}

// Ranking declares that live rows sharing ScopeColumns must carry
// distinct RankColumn values.
type Ranking struct {
	ScopeColumns []string
	RankColumn   string
}

// Dedup declares that live rows may not share the canonical key built
// from Columns. The key is persisted in KeyColumn.
type Dedup struct {
	Columns   []string
	KeyColumn string
}

// Class is one entity class: a table plus its lifecycle rules.
type Class struct {
	Table      string
	Parent     string
	ParentKey  string
	Columns    []Column
	Children   []Relation
	Restorable bool
	Workflow   bool
	Ranking    *Ranking
	Dedup      *Dedup
}

// Column returns the column definition by name.
func (c *Class) Column(name string) (Column, bool) {
	for _, col := range c.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the user-editable column names in declaration order.
func (c *Class) ColumnNames() []string {
	names := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		names[i] = col.Name
	}
	return names
}

// SelectColumns returns every column the store reads for the class.
func (c *Class) SelectColumns() []string {
	cols := []string{"id", "ident", "created_at", "updated_at", "deleted_at", "deleted_by"}
	cols = append(cols, c.ColumnNames()...)
	if c.Workflow {
		cols = append(cols, "status")
	}
	if c.Dedup != nil {
		cols = append(cols, c.Dedup.KeyColumn)
	}
	return cols
}

// ValidateCreate checks a full set of fields for a new record.
func (c *Class) ValidateCreate(fields map[string]any) []domain.FieldError {
	var errs []domain.FieldError
	errs = append(errs, c.rejectSystem(fields)...)
	for _, col := range c.Columns {
		v, ok := fields[col.Name]
		if col.Required && (!ok || v == nil) {
			errs = append(errs, domain.FieldError{Field: col.Name, Message: "required"})
		}
	}
	for name, v := range fields {
		errs = append(errs, c.checkValue(name, v)...)
	}
	return sortFieldErrors(errs)
}

// ValidatePatch checks a partial update. Immutable columns are rejected.
func (c *Class) ValidatePatch(patch map[string]any) []domain.FieldError {
	if len(patch) == 0 {
		return []domain.FieldError{{Field: "patch", Message: "at least one field must be provided"}}
	}
	var errs []domain.FieldError
	errs = append(errs, c.rejectSystem(patch)...)
	for name, v := range patch {
		col, ok := c.Column(name)
		if ok && col.Immutable {
			errs = append(errs, domain.FieldError{Field: name, Message: "immutable"})
			continue
		}
		if ok && col.Required && v == nil {
			errs = append(errs, domain.FieldError{Field: name, Message: "required"})
			continue
		}
		errs = append(errs, c.checkValue(name, v)...)
	}
	return sortFieldErrors(errs)
}

func (c *Class) rejectSystem(fields map[string]any) []domain.FieldError {
	var errs []domain.FieldError
	for _, name := range []string{"id", "ident", "created_at", "updated_at", "deleted_at", "deleted_by"} {
		if _, ok := fields[name]; ok {
			errs = append(errs, domain.FieldError{Field: name, Message: "read-only"})
		}
	}
	if _, ok := fields["status"]; ok && c.Workflow {
		errs = append(errs, domain.FieldError{Field: "status", Message: "set by transitions only"})
	}
	if c.Dedup != nil {
		if _, ok := fields[c.Dedup.KeyColumn]; ok {
			errs = append(errs, domain.FieldError{Field: c.Dedup.KeyColumn, Message: "read-only"})
		}
	}
	return errs
}

func (c *Class) checkValue(name string, v any) []domain.FieldError {
	if c.isSystem(name) {
		return nil
	}
	col, ok := c.Column(name)
	if !ok {
		return []domain.FieldError{{Field: name, Message: "unknown field"}}
	}
	if v == nil {
		return nil
	}
	if msg := col.check(v); msg != "" {
		return []domain.FieldError{{Field: name, Message: msg}}
	}
	return nil
}

func (c *Class) isSystem(name string) bool {
	switch name {
	case "id", "ident", "created_at", "updated_at", "deleted_at", "deleted_by":
		return true
	case "status":
		return c.Workflow
	}
	return c.Dedup != nil && name == c.Dedup.KeyColumn
}

func (col Column) check(v any) string {
	switch col.Kind {
	case KindText:
		s, ok := v.(string)
		if !ok {
			return "must be " + col.Kind.String()
		}
		if col.MaxLen > 0 && utf8.RuneCountInString(s) > col.MaxLen {
			return fmt.Sprintf("max %d characters", col.MaxLen)
		}
		if len(col.Enum) > 0 && !slices.Contains(col.Enum, s) {
			return "must be one of " + fmt.Sprint(col.Enum)
		}
	case KindInt:
		if _, ok := domain.AsInt64(v); !ok {
			return "must be " + col.Kind.String()
		}
	case KindFloat:
		switch v.(type) {
		case float64, float32, int, int32, int64:
		default:
			return "must be " + col.Kind.String()
		}
	case KindBool:
		if _, ok := v.(bool); !ok {
			return "must be " + col.Kind.String()
		}
	case KindTextList:
		switch l := v.(type) {
		case []string:
		case []any:
			for _, e := range l {
				if _, ok := e.(string); !ok {
					return "must be " + col.Kind.String()
				}
			}
		default:
			return "must be " + col.Kind.String()
		}
	case KindUUID:
		switch u := v.(type) {
		case uuid.UUID:
		case string:
			if _, err := uuid.Parse(u); err != nil {
				return "must be " + col.Kind.String()
			}
		default:
			return "must be " + col.Kind.String()
		}
	}
	return ""
}

func sortFieldErrors(errs []domain.FieldError) []domain.FieldError {
	slices.SortFunc(errs, func(a, b domain.FieldError) int {
		if a.Field < b.Field {
			return -1
		}
		if a.Field > b.Field {
			return 1
		}
		return 0
	})
	return errs
}
