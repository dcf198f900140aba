package service

import (
	"context"
	"crypto/sha256"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/proofgrid/publisher-api/lib/utils"
	"github.com/proofgrid/publisher-api/publisher/estimator"
	"github.com/proofgrid/publisher-api/publisher/market"
	"github.com/proofgrid/publisher-api/publisher/model"
	"github.com/proofgrid/publisher-api/publisher/storage"
)

var testRequester = common.HexToAddress("0x0d2897e7e3ad18df4a0571a7bacb3ffe417d3b06")

type fakeSettler struct {
	calls    int
	artifact model.ProofArtifact
	receipt  *model.SettlementReceipt
	err      error
}

func (f *fakeSettler) Settle(_ context.Context, artifact model.ProofArtifact, _ time.Duration) (*model.SettlementReceipt, error) {
	f.calls++
	f.artifact = artifact
	if f.err != nil {
		return nil, f.err
	}
	return f.receipt, nil
}

func testParams() RunParams {
	return RunParams{
		Image:        []byte("guest elf"),
		Input:        utils.EncodeUint256(big.NewInt(4)),
		ProgramID:    [32]byte{0xaa},
		MinPerMcycle: big.NewInt(1000),
		MaxPerMcycle: big.NewInt(2000),
		RampUpPeriod: 50,
		Timeout:      1000,
		PollInterval: time.Millisecond,
	}
}

func TestRunEndToEnd(t *testing.T) {
	journal := utils.EncodeUint256(big.NewInt(4))
	est := &estimator.FakeEstimator{Journal: journal, Cycles: 2_500_000}
	uploader := storage.NewFakeUploader()

	backend := &market.FakeBackend{
		Head: 100,
		Statuses: []model.RequestStatus{
			model.StatusOpen,
			model.StatusFulfilled,
		},
		Result: &model.Fulfillment{
			// prover-controlled bytes, must never reach settlement
			Journal: []byte("forged journal"),
			Seal:    []byte("seal"),
		},
	}

	settler := &fakeSettler{
		receipt: &model.SettlementReceipt{
			TxHash:      common.HexToHash("0xbeef"),
			BlockNumber: 42,
			GasUsed:     40000,
			ConfirmedAt: time.Now(),
		},
	}

	core := NewCore(uploader, est, market.NewClient(backend), settler, testRequester)

	res, err := core.Run(context.Background(), testParams())
	require.NoError(t, err)
	require.NotNil(t, res.Receipt)
	require.Equal(t, journal, res.Journal)

	// megacycle-ceil pricing: ceil(2.5) = 3
	req := backend.Submitted
	require.NotNil(t, req)
	require.Equal(t, int64(3000), req.Offer.MinPrice.Int64())
	require.Equal(t, int64(5000), req.Offer.MaxPrice.Int64())
	require.Equal(t, testRequester, req.Requester)

	// predicate digest comes from the dry run journal
	require.Equal(t, model.PredicateDigestMatch, req.Requirements.Predicate.Type)
	wantDigest := sha256.Sum256(journal)
	require.Equal(t, wantDigest[:], []byte(req.Requirements.Predicate.Data))

	// settlement carries the dry run journal, not the returned one
	require.Equal(t, 1, settler.calls)
	require.Equal(t, journal, settler.artifact.Journal)
	require.Equal(t, wantDigest, settler.artifact.JournalDigest)
	require.Equal(t, []byte("seal"), settler.artifact.Seal)

	// small input rides inline
	require.Equal(t, model.InputInline, req.Input.Type)
}

func TestRunLargeInputUploaded(t *testing.T) {
	est := &estimator.FakeEstimator{Journal: []byte("out"), Cycles: 1}
	uploader := storage.NewFakeUploader()
	backend := &market.FakeBackend{
		Head:     100,
		Statuses: []model.RequestStatus{model.StatusFulfilled},
		Result:   &model.Fulfillment{Seal: []byte("seal")},
	}
	settler := &fakeSettler{receipt: &model.SettlementReceipt{}}
	core := NewCore(uploader, est, market.NewClient(backend), settler, testRequester)

	p := testParams()
	p.Input = make([]byte, 4096)
	_, err := core.Run(context.Background(), p)
	require.NoError(t, err)

	req := backend.Submitted
	require.Equal(t, model.InputURL, req.Input.Type)
	require.Contains(t, uploader.Blobs, string(req.Input.Data))
}

func TestRunExpiredSkipsSettlement(t *testing.T) {
	est := &estimator.FakeEstimator{Journal: []byte("out"), Cycles: 1}
	backend := &market.FakeBackend{
		Head:     100,
		HeadStep: 600,
		Statuses: []model.RequestStatus{model.StatusOpen},
	}
	settler := &fakeSettler{}
	core := NewCore(storage.NewFakeUploader(), est, market.NewClient(backend), settler, testRequester)

	_, err := core.Run(context.Background(), testParams())
	require.ErrorIs(t, err, model.ErrExpired)
	require.Zero(t, settler.calls, "an expired run must issue zero settlement calls")
}

func TestRunDeadlineSkipsSettlement(t *testing.T) {
	est := &estimator.FakeEstimator{Journal: []byte("out"), Cycles: 1}
	backend := &market.FakeBackend{
		Head:     100,
		Statuses: []model.RequestStatus{model.StatusOpen},
	}
	settler := &fakeSettler{}
	core := NewCore(storage.NewFakeUploader(), est, market.NewClient(backend), settler, testRequester)

	p := testParams()
	deadline := time.Now().Add(20 * time.Millisecond)
	p.Deadline = &deadline

	_, err := core.Run(context.Background(), p)
	require.ErrorIs(t, err, model.ErrDeadlineExceeded)
	require.Zero(t, settler.calls)
}

func TestRunEstimationFailureAbortsEarly(t *testing.T) {
	est := &estimator.FakeEstimator{Err: model.ErrEstimation}
	uploader := storage.NewFakeUploader()
	backend := &market.FakeBackend{Head: 100}
	settler := &fakeSettler{}
	core := NewCore(uploader, est, market.NewClient(backend), settler, testRequester)

	_, err := core.Run(context.Background(), testParams())
	require.ErrorIs(t, err, model.ErrEstimation)

	// fail fast: nothing uploaded, nothing submitted, nothing settled
	require.Empty(t, uploader.Blobs)
	require.Nil(t, backend.Submitted)
	require.Zero(t, settler.calls)
}

func TestRunConfirmationTimeoutSurfacesTxHash(t *testing.T) {
	est := &estimator.FakeEstimator{Journal: []byte("out"), Cycles: 1}
	backend := &market.FakeBackend{
		Head:     100,
		Statuses: []model.RequestStatus{model.StatusFulfilled},
		Result:   &model.Fulfillment{Seal: []byte("seal")},
	}
	txHash := common.HexToHash("0xdead")
	settler := &fakeSettler{
		err: &model.SettleError{
			Phase:  model.PhaseConfirm,
			TxHash: txHash,
			Err:    errors.New("not mined"),
		},
	}
	core := NewCore(storage.NewFakeUploader(), est, market.NewClient(backend), settler, testRequester)

	_, err := core.Run(context.Background(), testParams())

	var se *model.SettleError
	require.ErrorAs(t, err, &se)
	require.Equal(t, txHash, se.TxHash)
	// request id is in the message for manual follow-up
	require.Contains(t, err.Error(), backend.Submitted.ID.String())
}
