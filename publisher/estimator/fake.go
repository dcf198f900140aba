package estimator

import (
	"context"
	"sync/atomic"
)

var _ Estimator = (*FakeEstimator)(nil)

// FakeEstimator returns a canned estimation, for tests and dev mode
type FakeEstimator struct {
	Journal []byte
	Cycles  uint64
	Err     error

	calls atomic.Int64
}

func (f *FakeEstimator) Execute(_ context.Context, _ []byte, _ []byte) (*Estimation, error) {
	f.calls.Add(1)
	if f.Err != nil {
		return nil, f.Err
	}
	return &Estimation{
		Journal: f.Journal,
		Cycles:  f.Cycles,
	}, nil
}

func (f *FakeEstimator) Calls() int64 {
	return f.calls.Load()
}
