package history

import (
	"context"
	"github.com/heartmarshall/genomic-reports/internal/domain"
	"sync"
)

var _ auditReader = &auditReaderMock{}

type auditReaderMock struct {
	HistoryFunc func(ctx context.Context, table string, entryID int64) ([]domain.AuditEntry, error)

	ScopeHistoryFunc func(ctx context.Context, scopeTable string, scopeID int64) ([]domain.AuditEntry, error)

	calls struct {
		History []struct {
			Ctx     context.Context
			Table   string
			EntryID int64
		}
		ScopeHistory []struct {
			Ctx        context.Context
			ScopeTable string
			ScopeID    int64
		}
	}
	lockHistory      sync.RWMutex
	lockScopeHistory sync.RWMutex
}

func (mock *auditReaderMock) History(ctx context.Context, table string, entryID int64) ([]domain.AuditEntry, error) {
	if mock.HistoryFunc == nil {
		panic("auditReaderMock.HistoryFunc: method is nil but auditReader.History was just called")
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

func (mock *auditReaderMock) HistoryCalls() []struct {
	Ctx     context.Context
	Table   string
	EntryID int64
} {
	mock.lockHistory.RLock()
	calls := mock.calls.History
	mock.lockHistory.RUnlock()
	return calls
}

func (mock *auditReaderMock) ScopeHistory(ctx context.Context, scopeTable string, scopeID int64) ([]domain.AuditEntry, error) {
	if mock.ScopeHistoryFunc == nil {
		panic("auditReaderMock.ScopeHistoryFunc: method is nil but auditReader.ScopeHistory was just called")
	}
	callInfo := struct {
		Ctx        context.Context
		ScopeTable string
		ScopeID    int64
	}{Ctx: ctx, ScopeTable: scopeTable, ScopeID: scopeID}
	mock.lockScopeHistory.Lock()
	mock.calls.ScopeHistory = append(mock.calls.ScopeHistory, callInfo)
	mock.lockScopeHistory.Unlock()
	return mock.ScopeHistoryFunc(ctx, scopeTable, scopeID)
}

func (mock *auditReaderMock) ScopeHistoryCalls() []struct {
	Ctx        context.Context
	ScopeTable string
	ScopeID    int64
} {
	mock.lockScopeHistory.RLock()
	calls := mock.calls.ScopeHistory
	mock.lockScopeHistory.RUnlock()
	return calls
}
