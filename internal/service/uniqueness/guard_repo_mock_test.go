package uniqueness

import (
	"context"
	"sync"
)

var _ guardRepo = &guardRepoMock{}

type guardRepoMock struct {
	DedupCollisionsFunc func(ctx context.Context, table string, keyColumn string, key string) ([]int64, error)
	LockScopesFunc      func(ctx context.Context, keys ...string) error
	RankCollisionsFunc  func(ctx context.Context, table string, rankColumn string, scope map[string]any) ([]int64, error)

	calls struct {
		DedupCollisions []struct {
			Ctx       context.Context
			Table     string
			KeyColumn string
			Key       string
		}
		LockScopes []struct {
			Ctx  context.Context
			Keys []string
		}
		RankCollisions []struct {
			Ctx        context.Context
			Table      string
			RankColumn string
			Scope      map[string]any
		}
	}
	lockDedupCollisions sync.RWMutex
	lockLockScopes      sync.RWMutex
	lockRankCollisions  sync.RWMutex
}

func (mock *guardRepoMock) DedupCollisions(ctx context.Context, table string, keyColumn string, key string) ([]int64, error) {
	if mock.DedupCollisionsFunc == nil {
		panic("guardRepoMock.DedupCollisionsFunc: method is nil but guardRepo.DedupCollisions was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		Table     string
		KeyColumn string
		Key       string
	}{Ctx: ctx, Table: table, KeyColumn: keyColumn, Key: key}
	mock.lockDedupCollisions.Lock()
	mock.calls.DedupCollisions = append(mock.calls.DedupCollisions, callInfo)
	mock.lockDedupCollisions.Unlock()
	return mock.DedupCollisionsFunc(ctx, table, keyColumn, key)
}

func (mock *guardRepoMock) DedupCollisionsCalls() []struct {
	Ctx       context.Context
	Table     string
	KeyColumn string
	Key       string
} {
	mock.lockDedupCollisions.RLock()
	calls := mock.calls.DedupCollisions
	mock.lockDedupCollisions.RUnlock()
	return calls
}

func (mock *guardRepoMock) LockScopes(ctx context.Context, keys ...string) error {
	if mock.LockScopesFunc == nil {
		panic("guardRepoMock.LockScopesFunc: method is nil but guardRepo.LockScopes was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Keys []string
	}{Ctx: ctx, Keys: keys}
	mock.lockLockScopes.Lock()
	mock.calls.LockScopes = append(mock.calls.LockScopes, callInfo)
	mock.lockLockScopes.Unlock()
	return mock.LockScopesFunc(ctx, keys...)
}

func (mock *guardRepoMock) LockScopesCalls() []struct {
	Ctx  context.Context
	Keys []string
} {
	mock.lockLockScopes.RLock()
	calls := mock.calls.LockScopes
	mock.lockLockScopes.RUnlock()
	return calls
}

func (mock *guardRepoMock) RankCollisions(ctx context.Context, table string, rankColumn string, scope map[string]any) ([]int64, error) {
	if mock.RankCollisionsFunc == nil {
		panic("guardRepoMock.RankCollisionsFunc: method is nil but guardRepo.RankCollisions was just called")
	}
	callInfo := struct {
		Ctx        context.Context
		Table      string
		RankColumn string
		Scope      map[string]any
	}{Ctx: ctx, Table: table, RankColumn: rankColumn, Scope: scope}
	mock.lockRankCollisions.Lock()
	mock.calls.RankCollisions = append(mock.calls.RankCollisions, callInfo)
	mock.lockRankCollisions.Unlock()
	return mock.RankCollisionsFunc(ctx, table, rankColumn, scope)
}

func (mock *guardRepoMock) RankCollisionsCalls() []struct {
	Ctx        context.Context
	Table      string
	RankColumn string
	Scope      map[string]any
} {
	mock.lockRankCollisions.RLock()
	calls := mock.calls.RankCollisions
	mock.lockRankCollisions.RUnlock()
	return calls
}
