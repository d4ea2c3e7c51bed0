package record

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/genomic-reports/internal/domain"
	"github.com/heartmarshall/genomic-reports/internal/entity"
)

// encodeValue converts caller-supplied values into the types pgx encodes
// for the column kind. JSON decoded input carries float64 numbers and []any
// lists.
func encodeValue(class *entity.Class, name string, v any) any {
	if v == nil {
		return nil
	}
	col, ok := class.Column(name)
	if !ok {
		return v
	}
	switch col.Kind {
	case entity.KindInt:
		if n, ok := domain.AsInt64(v); ok {
			return n
		}
	case entity.KindTextList:
		if l, ok := v.([]any); ok {
			out := make([]string, 0, len(l))
			for _, e := range l {
				s, _ := e.(string)
				out = append(out, s)
			}
			return out
		}
	case entity.KindUUID:
		if s, ok := v.(string); ok {
			if u, err := uuid.Parse(s); err == nil {
				return u
			}
		}
	}
	return v
}

// toRecord lifts the system columns out of a row map.
func toRecord(table string, m map[string]any) (*domain.Record, error) {
	rec := &domain.Record{Table: table, Fields: make(map[string]any, len(m))}

	for k, v := range m {
		switch k {
		case "id":
			id, ok := domain.AsInt64(v)
			if !ok {
				return nil, fmt.Errorf("%s: unexpected id type %T", table, v)
			}
			rec.ID = id
		case "ident":
			u, err := toUUID(v)
			if err != nil {
				return nil, fmt.Errorf("%s ident: %w", table, err)
			}
			rec.Ident = u
		case "created_at":
			rec.CreatedAt, _ = v.(time.Time)
		case "updated_at":
			rec.UpdatedAt, _ = v.(time.Time)
		case "deleted_at":
			if t, ok := v.(time.Time); ok {
				rec.DeletedAt = &t
			}
		case "deleted_by":
			if v != nil {
				u, err := toUUID(v)
				if err != nil {
					return nil, fmt.Errorf("%s deleted_by: %w", table, err)
				}
				rec.DeletedBy = &u
			}
		default:
			rec.Fields[k] = normalizeValue(v)
		}
	}
	return rec, nil
}

// normalizeValue turns pgx decoded values into JSON friendly ones.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case [16]byte:
		return uuid.UUID(x).String()
	case uuid.UUID:
		return x.String()
	case int32:
		return int64(x)
	}
	return v
}

func toUUID(v any) (uuid.UUID, error) {
	switch x := v.(type) {
	case [16]byte:
		return uuid.UUID(x), nil
	case uuid.UUID:
		return x, nil
	case string:
		return uuid.Parse(x)
	}
	return uuid.Nil, fmt.Errorf("unexpected uuid type %T", v)
}
