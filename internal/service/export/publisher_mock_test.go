package export

import (
	"context"
	"github.com/heartmarshall/genomic-reports/internal/domain"
	"sync"
)

var _ publisher = &publisherMock{}

type publisherMock struct {
	PublishSnapshotFunc func(ctx context.Context, s domain.ExportSnapshot) error

	calls struct {
		PublishSnapshot []struct {
			Ctx context.Context
			S   domain.ExportSnapshot
		}
	}
	lockPublishSnapshot sync.RWMutex
}

func (mock *publisherMock) PublishSnapshot(ctx context.Context, s domain.ExportSnapshot) error {
	if mock.PublishSnapshotFunc == nil {
		panic("publisherMock.PublishSnapshotFunc: method is nil but publisher.PublishSnapshot was just called")
	}
	callInfo := struct {
		Ctx context.Context
		S   domain.ExportSnapshot
	}{Ctx: ctx, S: s}
	mock.lockPublishSnapshot.Lock()
	mock.calls.PublishSnapshot = append(mock.calls.PublishSnapshot, callInfo)
	mock.lockPublishSnapshot.Unlock()
	return mock.PublishSnapshotFunc(ctx, s)
}

func (mock *publisherMock) PublishSnapshotCalls() []struct {
	Ctx context.Context
	S   domain.ExportSnapshot
} {
	mock.lockPublishSnapshot.RLock()
	calls := mock.calls.PublishSnapshot
	mock.lockPublishSnapshot.RUnlock()
	return calls
}
