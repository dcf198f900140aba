package market

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/proofgrid/publisher-api/publisher/chain"
	"github.com/proofgrid/publisher-api/publisher/model"

	"golang.org/x/xerrors"
)

// how long a submission may wait for inclusion before it counts as failed
const submitConfirmTimeout = 30 * time.Second

// Backend is the market submission and polling surface. The on-chain
// implementation talks to the market contract; tests swap in a fake.
type Backend interface {
	Submit(ctx context.Context, req *model.Request) error
	Status(ctx context.Context, id *big.Int) (model.RequestStatus, error)
	Fulfillment(ctx context.Context, id *big.Int) (*model.Fulfillment, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// mirrors the submitRequest tuple layout
type chainRequest struct {
	Id            *big.Int
	Requester     common.Address
	ProgramId     [32]byte
	PredicateType uint8
	PredicateData []byte
	ImageUrl      string
	InputType     uint8
	InputData     []byte
	MinPrice      *big.Int
	MaxPrice      *big.Int
	BiddingStart  uint64
	RampUpPeriod  uint32
	Timeout       uint32
	LockinStake   *big.Int
}

type chainBackend struct {
	client   *chain.Client
	contract *bind.BoundContract
	auth     *bind.TransactOpts
}

var _ Backend = (*chainBackend)(nil)

// NewChainBackend binds the market contract at addr
func NewChainBackend(client *chain.Client, addr common.Address, auth *bind.TransactOpts) Backend {
	contract := bind.NewBoundContract(addr, marketABI, client.Eth, client.Eth, client.Eth)
	return &chainBackend{
		client:   client,
		contract: contract,
		auth:     auth,
	}
}

func (cb *chainBackend) Submit(ctx context.Context, req *model.Request) error {
	creq := chainRequest{
		Id:            req.ID,
		Requester:     req.Requester,
		ProgramId:     req.Requirements.ProgramID,
		PredicateType: uint8(req.Requirements.Predicate.Type),
		PredicateData: req.Requirements.Predicate.Data,
		ImageUrl:      req.ImageURL,
		InputType:     uint8(req.Input.Type),
		InputData:     req.Input.Data,
		MinPrice:      req.Offer.MinPrice,
		MaxPrice:      req.Offer.MaxPrice,
		BiddingStart:  req.Offer.BiddingStart,
		RampUpPeriod:  req.Offer.RampUpPeriod,
		Timeout:       req.Offer.Timeout,
		LockinStake:   req.Offer.LockinStake,
	}

	// escrow the max price with the submission
	opts := *cb.auth
	opts.Context = ctx
	opts.Value = req.Offer.MaxPrice

	tx, err := cb.contract.Transact(&opts, "submitRequest", creq)
	if err != nil {
		return xerrors.Errorf("send submitRequest: %w", err)
	}

	receipt, err := cb.client.WaitMined(ctx, tx.Hash(), submitConfirmTimeout)
	if err != nil {
		return xerrors.Errorf("confirm submitRequest (tx %s): %w", tx.Hash(), err)
	}
	if receipt.Status != 1 {
		return xerrors.Errorf("submitRequest reverted (tx %s)", tx.Hash())
	}

	return nil
}

func (cb *chainBackend) Status(ctx context.Context, id *big.Int) (model.RequestStatus, error) {
	var out []interface{}
	err := cb.contract.Call(&bind.CallOpts{Context: ctx}, &out, "requestStatus", id)
	if err != nil {
		return model.StatusUnknown, xerrors.Errorf("requestStatus: %w", err)
	}
	return model.RequestStatus(out[0].(uint8)), nil
}

func (cb *chainBackend) Fulfillment(ctx context.Context, id *big.Int) (*model.Fulfillment, error) {
	var out []interface{}
	err := cb.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getFulfillment", id)
	if err != nil {
		return nil, xerrors.Errorf("getFulfillment: %w", err)
	}
	return &model.Fulfillment{
		Journal: out[0].([]byte),
		Seal:    out[1].([]byte),
	}, nil
}

func (cb *chainBackend) BlockNumber(ctx context.Context) (uint64, error) {
	return cb.client.BlockNumber(ctx)
}
