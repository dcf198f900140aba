package market

import (
	"context"
	"math/big"

	"github.com/proofgrid/publisher-api/publisher/model"
)

var _ Backend = (*FakeBackend)(nil)

// FakeBackend scripts market behavior for tests: a fixed sequence of
// statuses and a chain head that advances per query.
type FakeBackend struct {
	SubmitErr error
	Submitted *model.Request

	// consumed one per Status call, the last entry repeats
	Statuses    []model.RequestStatus
	Result      *model.Fulfillment
	Head        uint64
	HeadStep    uint64
	StatusCalls int
}

func (f *FakeBackend) Submit(_ context.Context, req *model.Request) error {
	if f.SubmitErr != nil {
		return f.SubmitErr
	}
	f.Submitted = req
	return nil
}

func (f *FakeBackend) Status(_ context.Context, _ *big.Int) (model.RequestStatus, error) {
	i := f.StatusCalls
	f.StatusCalls++
	if i >= len(f.Statuses) {
		i = len(f.Statuses) - 1
	}
	if i < 0 {
		return model.StatusUnknown, nil
	}
	return f.Statuses[i], nil
}

func (f *FakeBackend) Fulfillment(_ context.Context, _ *big.Int) (*model.Fulfillment, error) {
	return f.Result, nil
}

func (f *FakeBackend) BlockNumber(_ context.Context) (uint64, error) {
	h := f.Head
	f.Head += f.HeadStep
	return h, nil
}
