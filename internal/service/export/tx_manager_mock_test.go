package export

import (
	"context"
	"sync"
)

var _ txManager = &txManagerMock{}

type txManagerMock struct {
	RunInSnapshotTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

	calls struct {
		RunInSnapshotTx []struct {
			Ctx context.Context
			Fn  func(ctx context.Context) error
		}
	}
	lockRunInSnapshotTx sync.RWMutex
}

func (mock *txManagerMock) RunInSnapshotTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mock.RunInSnapshotTxFunc == nil {
		panic("txManagerMock.RunInSnapshotTxFunc: method is nil but txManager.RunInSnapshotTx was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Fn  func(ctx context.Context) error
	}{Ctx: ctx, Fn: fn}
	mock.lockRunInSnapshotTx.Lock()
	mock.calls.RunInSnapshotTx = append(mock.calls.RunInSnapshotTx, callInfo)
	mock.lockRunInSnapshotTx.Unlock()
	return mock.RunInSnapshotTxFunc(ctx, fn)
}

func (mock *txManagerMock) RunInSnapshotTxCalls() []struct {
	Ctx context.Context
	Fn  func(ctx context.Context) error
} {
	mock.lockRunInSnapshotTx.RLock()
	calls := mock.calls.RunInSnapshotTx
	mock.lockRunInSnapshotTx.RUnlock()
	return calls
}
