package records

import (
	"context"
	"github.com/heartmarshall/genomic-reports/internal/domain"
	"sync"
)

var _ auditLog = &auditLogMock{}

type auditLogMock struct {
	GetFunc func(ctx context.Context, id int64) (domain.AuditEntry, error)

	HistoryFunc func(ctx context.Context, table string, entryID int64) ([]domain.AuditEntry, error)

	RecordFunc func(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error)

	calls struct {
		Get []struct {
			Ctx context.Context
			ID  int64
		}
		History []struct {
			Ctx     context.Context
			Table   string
			EntryID int64
		}
		Record []struct {
			Ctx   context.Context
			Entry domain.AuditEntry
		}
	}
	lockGet     sync.RWMutex
	lockHistory sync.RWMutex
	lockRecord  sync.RWMutex
}

func (mock *auditLogMock) Get(ctx context.Context, id int64) (domain.AuditEntry, error) {
	if mock.GetFunc == nil {
		panic("auditLogMock.GetFunc: method is nil but auditLog.Get was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  int64
	}{Ctx: ctx, ID: id}
	mock.lockGet.Lock()
	mock.calls.Get = append(mock.calls.Get, callInfo)
	mock.lockGet.Unlock()
	return mock.GetFunc(ctx, id)
}

func (mock *auditLogMock) GetCalls() []struct {
	Ctx context.Context
	ID  int64
} {
	mock.lockGet.RLock()
	calls := mock.calls.Get
	mock.lockGet.RUnlock()
	return calls
}

func (mock *auditLogMock) History(ctx context.Context, table string, entryID int64) ([]domain.AuditEntry, error) {
	if mock.HistoryFunc == nil {
		panic("auditLogMock.HistoryFunc: method is nil but auditLog.History was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		Table   string
		EntryID int64
	}{Ctx: ctx, Table: table, EntryID: entryID}
	mock.lockHistory.Lock()
	mock.calls.History = append(mock.calls.History, callInfo)
	mock.lockHistory.Unlock()
	return mock.HistoryFunc(ctx, table, entryID)
}

func (mock *auditLogMock) HistoryCalls() []struct {
	Ctx     context.Context
	Table   string
	EntryID int64
} {
	mock.lockHistory.RLock()
	calls := mock.calls.History
	mock.lockHistory.RUnlock()
	return calls
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
