package export

import (
	"context"
	"github.com/heartmarshall/genomic-reports/internal/domain"
	"github.com/heartmarshall/genomic-reports/internal/entity"
	"sync"
)

var _ recordReader = &recordReaderMock{}

type recordReaderMock struct {
	ChildrenFunc func(ctx context.Context, rel entity.Relation, parentID int64, stamp *domain.DeletionStamp, lock bool) ([]*domain.Record, error)

	GetFunc func(ctx context.Context, ref domain.Ref) (*domain.Record, error)

	calls struct {
		Children []struct {
			Ctx      context.Context
			Rel      entity.Relation
			ParentID int64
			Stamp    *domain.DeletionStamp
			Lock     bool
		}
		Get []struct {
			Ctx context.Context
			Ref domain.Ref
		}
	}
	lockChildren sync.RWMutex
	lockGet      sync.RWMutex
}

func (mock *recordReaderMock) Children(ctx context.Context, rel entity.Relation, parentID int64, stamp *domain.DeletionStamp, lock bool) ([]*domain.Record, error) {
	if mock.ChildrenFunc == nil {
		panic("recordReaderMock.ChildrenFunc: method is nil but recordReader.Children was just called")
	}
	callInfo := struct {
		Ctx      context.Context
		Rel      entity.Relation
		ParentID int64
		Stamp    *domain.DeletionStamp
		Lock     bool
	}{Ctx: ctx, Rel: rel, ParentID: parentID, Stamp: stamp, Lock: lock}
	mock.lockChildren.Lock()
	mock.calls.Children = append(mock.calls.Children, callInfo)
	mock.lockChildren.Unlock()
	return mock.ChildrenFunc(ctx, rel, parentID, stamp, lock)
}

func (mock *recordReaderMock) ChildrenCalls() []struct {
	Ctx      context.Context
	Rel      entity.Relation
	ParentID int64
	Stamp    *domain.DeletionStamp
	Lock     bool
} {
	mock.lockChildren.RLock()
	calls := mock.calls.Children
	mock.lockChildren.RUnlock()
	return calls
}

func (mock *recordReaderMock) Get(ctx context.Context, ref domain.Ref) (*domain.Record, error) {
	if mock.GetFunc == nil {
		panic("recordReaderMock.GetFunc: method is nil but recordReader.Get was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Ref domain.Ref
	}{Ctx: ctx, Ref: ref}
	mock.lockGet.Lock()
	mock.calls.Get = append(mock.calls.Get, callInfo)
	mock.lockGet.Unlock()
	return mock.GetFunc(ctx, ref)
}

func (mock *recordReaderMock) GetCalls() []struct {
	Ctx context.Context
	Ref domain.Ref
} {
	mock.lockGet.RLock()
	calls := mock.calls.Get
	mock.lockGet.RUnlock()
	return calls
}
