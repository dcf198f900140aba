package service

import (
	"bytes"
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/proofgrid/publisher-api/lib/logc"
	"github.com/proofgrid/publisher-api/publisher/estimator"
	"github.com/proofgrid/publisher-api/publisher/market"
	"github.com/proofgrid/publisher-api/publisher/model"
	"github.com/proofgrid/publisher-api/publisher/storage"

	"golang.org/x/xerrors"
)

var logger = logc.Logger("service")

// inputs at most this large ride inline in the request, larger ones
// go through storage and ride as a url
const inlineInputLimit = 1024

// Settler is the settlement capability the core drives after
// fulfillment
type Settler interface {
	Settle(ctx context.Context, artifact model.ProofArtifact, confirmTimeout time.Duration) (*model.SettlementReceipt, error)
}

// Marketer is the market capability the core drives between pricing
// and settlement
type Marketer interface {
	Submit(ctx context.Context, req *model.Request) error
	WaitForFulfillment(ctx context.Context, req *model.Request, pollInterval time.Duration, deadline *time.Time) (*model.Fulfillment, error)
}

// Core runs one request lifecycle: estimate, price, submit, wait,
// settle, read back. One run per invocation, no state survives it.
type Core struct {
	uploader  storage.Uploader
	estimator estimator.Estimator
	market    Marketer
	settler   Settler
	requester common.Address
}

func NewCore(uploader storage.Uploader, est estimator.Estimator, m Marketer, s Settler, requester common.Address) *Core {
	return &Core{
		uploader:  uploader,
		estimator: est,
		market:    m,
		settler:   s,
		requester: requester,
	}
}

type RunParams struct {
	// guest image and its abi-encoded input
	Image []byte
	Input []byte
	// image id the market verifier checks the proof against
	ProgramID [32]byte

	// auction terms
	MinPerMcycle *big.Int
	MaxPerMcycle *big.Int
	RampUpPeriod uint32
	Timeout      uint32
	LockinStake  *big.Int

	// wall clock knobs
	PollInterval   time.Duration
	Deadline       *time.Time
	ConfirmTimeout time.Duration
}

type RunResult struct {
	RequestID *big.Int
	Journal   []byte
	Receipt   *model.SettlementReceipt
}

func (c *Core) Run(ctx context.Context, p RunParams) (*RunResult, error) {
	// dry run first: an unprovable request must never reach the
	// market, or any other network spend
	est, err := c.estimator.Execute(ctx, p.Image, p.Input)
	if err != nil {
		return nil, xerrors.Errorf("dry run: %w", err)
	}
	digest := estimator.JournalDigest(est.Journal)
	logger.Infof("dry run ok: %d cycles, journal digest %x", est.Cycles, digest)

	imageURL, err := c.uploader.UploadImage(ctx, p.Image)
	if err != nil {
		return nil, xerrors.Errorf("upload image: %w", err)
	}
	logger.Info("image uploaded to ", imageURL)

	input := model.InlineInput(p.Input)
	if len(p.Input) > inlineInputLimit {
		inputURL, err := c.uploader.UploadInput(ctx, p.Input)
		if err != nil {
			return nil, xerrors.Errorf("upload input: %w", err)
		}
		logger.Info("input uploaded to ", inputURL)
		input = model.URLInput(inputURL)
	}

	offer, err := market.PriceOffer(est.Cycles, p.MinPerMcycle, p.MaxPerMcycle, p.RampUpPeriod, p.Timeout, p.LockinStake)
	if err != nil {
		return nil, err
	}

	reqs := model.Requirements{
		ProgramID: p.ProgramID,
		Predicate: model.DigestMatch(digest),
	}

	req, err := market.BuildRequest(imageURL, input, reqs, offer, c.requester)
	if err != nil {
		return nil, err
	}

	if err := c.market.Submit(ctx, req); err != nil {
		return nil, err
	}

	fulfillment, err := c.market.WaitForFulfillment(ctx, req, p.PollInterval, p.Deadline)
	if err != nil {
		return nil, err
	}

	// the market-returned journal is prover controlled; settle with
	// the dry run journal, whose digest the verifier checked
	if !bytes.Equal(fulfillment.Journal, est.Journal) {
		logger.Warnf("request %s: returned journal differs from dry run journal, ignoring it", req.ID)
	}

	artifact := model.ProofArtifact{
		Journal:       est.Journal,
		JournalDigest: digest,
		ProgramID:     p.ProgramID,
		Seal:          fulfillment.Seal,
	}

	receipt, err := c.settler.Settle(ctx, artifact, p.ConfirmTimeout)
	if err != nil {
		return nil, xerrors.Errorf("request %s: %w", req.ID, err)
	}
	logger.Infof("request %s settled in tx %s", req.ID, receipt.TxHash)

	return &RunResult{
		RequestID: req.ID,
		Journal:   est.Journal,
		Receipt:   receipt,
	}, nil
}
