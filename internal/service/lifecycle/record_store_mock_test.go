package lifecycle

import (
	"context"
	"github.com/heartmarshall/genomic-reports/internal/domain"
	"sync"
)

var _ recordStore = &recordStoreMock{}

type recordStoreMock struct {
	GetForUpdateFunc func(ctx context.Context, ref domain.Ref) (*domain.Record, error)

	UpdateFunc func(ctx context.Context, ref domain.Ref, set map[string]any) (*domain.Record, error)

	calls struct {
		GetForUpdate []struct {
			Ctx context.Context
			Ref domain.Ref
		}
		Update []struct {
			Ctx context.Context
			Ref domain.Ref
			Set map[string]any
		}
	}
	lockGetForUpdate sync.RWMutex
	lockUpdate       sync.RWMutex
}

func (mock *recordStoreMock) GetForUpdate(ctx context.Context, ref domain.Ref) (*domain.Record, error) {
	if mock.GetForUpdateFunc == nil {
		panic("recordStoreMock.GetForUpdateFunc: method is nil but recordStore.GetForUpdate was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Ref domain.Ref
	}{Ctx: ctx, Ref: ref}
	mock.lockGetForUpdate.Lock()
	mock.calls.GetForUpdate = append(mock.calls.GetForUpdate, callInfo)
	mock.lockGetForUpdate.Unlock()
	return mock.GetForUpdateFunc(ctx, ref)
}

func (mock *recordStoreMock) GetForUpdateCalls() []struct {
	Ctx context.Context
	Ref domain.Ref
} {
	mock.lockGetForUpdate.RLock()
	calls := mock.calls.GetForUpdate
	mock.lockGetForUpdate.RUnlock()
	return calls
}

func (mock *recordStoreMock) Update(ctx context.Context, ref domain.Ref, set map[string]any) (*domain.Record, error) {
	if mock.UpdateFunc == nil {
		panic("recordStoreMock.UpdateFunc: method is nil but recordStore.Update was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Ref domain.Ref
		Set map[string]any
	}{Ctx: ctx, Ref: ref, Set: set}
	mock.lockUpdate.Lock()
	mock.calls.Update = append(mock.calls.Update, callInfo)
	mock.lockUpdate.Unlock()
	return mock.UpdateFunc(ctx, ref, set)
}

func (mock *recordStoreMock) UpdateCalls() []struct {
	Ctx context.Context
	Ref domain.Ref
	Set map[string]any
} {
	mock.lockUpdate.RLock()
	calls := mock.calls.Update
	mock.lockUpdate.RUnlock()
	return calls
}
