package domain

// AuditType classifies a change-history entry.
type AuditType string

const (
	AuditTypeCreate AuditType = "create"
	AuditTypeChange AuditType = "change"
	AuditTypeRemove AuditType = "remove"
	AuditTypeStatus AuditType = "status"
)

func (t AuditType) String() string { return string(t) }

func (t AuditType) IsValid() bool {
	switch t {
	case AuditTypeCreate, AuditTypeChange, AuditTypeRemove, AuditTypeStatus:
		return true
	}
	return false
}

// RelationMode says whether soft-deleting a parent propagates to the child
// class.
type RelationMode string

const (
	RelationCascade     RelationMode = "cascade"
	RelationIndependent RelationMode = "independent"
)

func (m RelationMode) String() string { return string(m) }

func (m RelationMode) IsValid() bool {
	switch m {
	case RelationCascade, RelationIndependent:
		return true
	}
	return false
}
