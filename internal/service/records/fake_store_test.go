package records

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/genomic-reports/internal/domain"
	"github.com/heartmarshall/genomic-reports/internal/entity"
)

var _ recordStore = &fakeStore{}

// fakeStore is an in-memory recordStore. now is the transaction timestamp
// stamped on soft-deleted rows; tests advance it between calls.
type fakeStore struct {
	mu     sync.Mutex
	rows   map[domain.Ref]*domain.Record
	nextID int64
	now    time.Time
	locks  []domain.Ref

	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows: make(map[domain.Ref]*domain.Record),
		now:  time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC),
	}
}

// seed stores a live record and returns it.
func (f *fakeStore) seed(table string, fields map[string]any) *domain.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(table, fields)
}

func (f *fakeStore) insert(table string, fields map[string]any) *domain.Record {
	f.nextID++
	rec := &domain.Record{
		Table:     table,
		ID:        f.nextID,
		Ident:     uuid.New(),
		CreatedAt: f.now,
		UpdatedAt: f.now,
		Fields:    maps.Clone(fields),
	}
	f.rows[rec.Ref()] = rec
	return clone(rec)
}

func (f *fakeStore) row(ref domain.Ref) *domain.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rows[ref]; ok {
		return clone(r)
	}
	return nil
}

func (f *fakeStore) lockedRefs() []domain.Ref {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.locks)
}

func (f *fakeStore) Insert(ctx context.Context, table string, fields map[string]any) (*domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	return f.insert(table, fields), nil
}

func (f *fakeStore) Get(ctx context.Context, ref domain.Ref) (*domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[ref]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ref, domain.ErrNotFound)
	}
	return clone(r), nil
}

func (f *fakeStore) GetForUpdate(ctx context.Context, ref domain.Ref) (*domain.Record, error) {
	r, err := f.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.locks = append(f.locks, ref)
	f.mu.Unlock()
	return r, nil
}

func (f *fakeStore) Update(ctx context.Context, ref domain.Ref, set map[string]any) (*domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[ref]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ref, domain.ErrNotFound)
	}
	maps.Copy(r.Fields, set)
	r.UpdatedAt = f.now
	return clone(r), nil
}

func (f *fakeStore) SoftDelete(ctx context.Context, ref domain.Ref, actor uuid.UUID) (*domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[ref]
	if !ok || r.IsDeleted() {
		return nil, fmt.Errorf("%s: %w", ref, domain.ErrNotFound)
	}
	at, by := f.now, actor
	r.DeletedAt, r.DeletedBy = &at, &by
	return clone(r), nil
}

func (f *fakeStore) Restore(ctx context.Context, ref domain.Ref) (*domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[ref]
	if !ok || !r.IsDeleted() {
		return nil, fmt.Errorf("%s: %w", ref, domain.ErrNotFound)
	}
	r.DeletedAt, r.DeletedBy = nil, nil
	return clone(r), nil
}

func (f *fakeStore) Children(ctx context.Context, rel entity.Relation, parentID int64, stamp *domain.DeletionStamp, lock bool) ([]*domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*domain.Record
	for ref, r := range f.rows {
		if ref.Table != rel.Child {
			continue
		}
		if id, _ := r.Int64(rel.ForeignKey); id != parentID {
			continue
		}
		if stamp == nil && r.IsDeleted() {
			continue
		}
		if stamp != nil && (r.Stamp() == nil || *r.Stamp() != *stamp) {
			continue
		}
		out = append(out, clone(r))
	}
	slices.SortFunc(out, func(a, b *domain.Record) int { return int(a.ID - b.ID) })
	if lock {
		for _, r := range out {
			f.locks = append(f.locks, r.Ref())
		}
	}
	return out, nil
}

func clone(r *domain.Record) *domain.Record {
	c := *r
	c.Fields = maps.Clone(r.Fields)
	if r.DeletedAt != nil {
		at := *r.DeletedAt
		c.DeletedAt = &at
	}
	if r.DeletedBy != nil {
		by := *r.DeletedBy
		c.DeletedBy = &by
	}
	return &c
}
