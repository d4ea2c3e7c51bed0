package records

import (
	"context"
	"github.com/heartmarshall/genomic-reports/internal/service/uniqueness"
	"sync"
)

var _ enforcer = &enforcerMock{}

type enforcerMock struct {
	LockFunc   func(ctx context.Context, touches ...uniqueness.Touch) error
	VerifyFunc func(ctx context.Context, touches ...uniqueness.Touch) error

	calls struct {
		Lock []struct {
			Ctx     context.Context
			Touches []uniqueness.Touch
		}
		Verify []struct {
			Ctx     context.Context
			Touches []uniqueness.Touch
		}
	}
	lockLock   sync.RWMutex
	lockVerify sync.RWMutex
}

func (mock *enforcerMock) Lock(ctx context.Context, touches ...uniqueness.Touch) error {
	if mock.LockFunc == nil {
		panic("enforcerMock.LockFunc: method is nil but enforcer.Lock was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		Touches []uniqueness.Touch
	}{Ctx: ctx, Touches: touches}
	mock.lockLock.Lock()
	mock.calls.Lock = append(mock.calls.Lock, callInfo)
	mock.lockLock.Unlock()
	return mock.LockFunc(ctx, touches...)
}

func (mock *enforcerMock) LockCalls() []struct {
	Ctx     context.Context
	Touches []uniqueness.Touch
} {
	mock.lockLock.RLock()
	calls := mock.calls.Lock
	mock.lockLock.RUnlock()
	return calls
}

func (mock *enforcerMock) Verify(ctx context.Context, touches ...uniqueness.Touch) error {
	if mock.VerifyFunc == nil {
		panic("enforcerMock.VerifyFunc: method is nil but enforcer.Verify was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		Touches []uniqueness.Touch
	}{Ctx: ctx, Touches: touches}
	mock.lockVerify.Lock()
	mock.calls.Verify = append(mock.calls.Verify, callInfo)
	mock.lockVerify.Unlock()
	return mock.VerifyFunc(ctx, touches...)
}

func (mock *enforcerMock) VerifyCalls() []struct {
	Ctx     context.Context
	Touches []uniqueness.Touch
} {
	mock.lockVerify.RLock()
	calls := mock.calls.Verify
	mock.lockVerify.RUnlock()
	return calls
}
