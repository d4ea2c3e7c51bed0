package export

import (
	"context"
	"github.com/heartmarshall/genomic-reports/internal/domain"
	"sync"
)

var _ snapshotRepo = &snapshotRepoMock{}

type snapshotRepoMock struct {
	FinalizeFunc func(ctx context.Context, key string, success bool, log *string) (domain.ExportSnapshot, error)

	InsertFunc func(ctx context.Context, s domain.ExportSnapshot) (domain.ExportSnapshot, error)

	PendingFunc func(ctx context.Context, limit int) ([]domain.ExportSnapshot, error)

	calls struct {
		Finalize []struct {
			Ctx     context.Context
			Key     string
			Success bool
			Log     *string
		}
		Insert []struct {
			Ctx context.Context
			S   domain.ExportSnapshot
		}
		Pending []struct {
			Ctx   context.Context
			Limit int
		}
	}
	lockFinalize sync.RWMutex
	lockInsert   sync.RWMutex
	lockPending  sync.RWMutex
}

func (mock *snapshotRepoMock) Finalize(ctx context.Context, key string, success bool, log *string) (domain.ExportSnapshot, error) {
	if mock.FinalizeFunc == nil {
		panic("snapshotRepoMock.FinalizeFunc: method is nil but snapshotRepo.Finalize was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		Key     string
		Success bool
		Log     *string
	}{Ctx: ctx, Key: key, Success: success, Log: log}
	mock.lockFinalize.Lock()
	mock.calls.Finalize = append(mock.calls.Finalize, callInfo)
	mock.lockFinalize.Unlock()
	return mock.FinalizeFunc(ctx, key, success, log)
}

func (mock *snapshotRepoMock) FinalizeCalls() []struct {
	Ctx     context.Context
	Key     string
	Success bool
	Log     *string
} {
	mock.lockFinalize.RLock()
	calls := mock.calls.Finalize
	mock.lockFinalize.RUnlock()
	return calls
}

func (mock *snapshotRepoMock) Insert(ctx context.Context, s domain.ExportSnapshot) (domain.ExportSnapshot, error) {
	if mock.InsertFunc == nil {
		panic("snapshotRepoMock.InsertFunc: method is nil but snapshotRepo.Insert was just called")
	}
	callInfo := struct {
		Ctx context.Context
		S   domain.ExportSnapshot
	}{Ctx: ctx, S: s}
	mock.lockInsert.Lock()
	mock.calls.Insert = append(mock.calls.Insert, callInfo)
	mock.lockInsert.Unlock()
	return mock.InsertFunc(ctx, s)
}

func (mock *snapshotRepoMock) InsertCalls() []struct {
	Ctx context.Context
	S   domain.ExportSnapshot
} {
	mock.lockInsert.RLock()
	calls := mock.calls.Insert
	mock.lockInsert.RUnlock()
	return calls
}

func (mock *snapshotRepoMock) Pending(ctx context.Context, limit int) ([]domain.ExportSnapshot, error) {
	if mock.PendingFunc == nil {
		panic("snapshotRepoMock.PendingFunc: method is nil but snapshotRepo.Pending was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Limit int
	}{Ctx: ctx, Limit: limit}
	mock.lockPending.Lock()
	mock.calls.Pending = append(mock.calls.Pending, callInfo)
	mock.lockPending.Unlock()
	return mock.PendingFunc(ctx, limit)
}

func (mock *snapshotRepoMock) PendingCalls() []struct {
	Ctx   context.Context
	Limit int
} {
	mock.lockPending.RLock()
	calls := mock.calls.Pending
	mock.lockPending.RUnlock()
	return calls
}
