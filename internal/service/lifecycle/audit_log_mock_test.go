package lifecycle

import (
	"context"
	"github.com/heartmarshall/genomic-reports/internal/domain"
	"sync"
)

var _ auditLog = &auditLogMock{}

type auditLogMock struct {
	RecordFunc func(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error)

	calls struct {
		Record []struct {
			Ctx   context.Context
			Entry domain.AuditEntry
		}
	}
	lockRecord sync.RWMutex
}

func (mock *auditLogMock) Record(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error) {
	if mock.RecordFunc == nil {
		panic("auditLogMock.RecordFunc: method is nil but auditLog.Record was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Entry domain.AuditEntry
	}{Ctx: ctx, Entry: entry}
	mock.lockRecord.Lock()
	mock.calls.Record = append(mock.calls.Record, callInfo)
	mock.lockRecord.Unlock()
	return mock.RecordFunc(ctx, entry)
}

func (mock *auditLogMock) RecordCalls() []struct {
	Ctx   context.Context
	Entry domain.AuditEntry
} {
	mock.lockRecord.RLock()
	calls := mock.calls.Record
	mock.lockRecord.RUnlock()
	return calls
}
