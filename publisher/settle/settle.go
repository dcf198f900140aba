package settle

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/proofgrid/publisher-api/lib/logc"
	"github.com/proofgrid/publisher-api/publisher/model"

	"golang.org/x/xerrors"
)

var logger = logc.Logger("settle")

// default bound on waiting for the settlement tx to be included,
// wall clock, unrelated to the offer's block-scale timeout
const DefaultConfirmTimeout = 12 * time.Second

// TxWaiter confirms inclusion of a broadcast transaction
type TxWaiter interface {
	WaitMined(ctx context.Context, txHash common.Hash, timeout time.Duration) (*types.Receipt, error)
}

// Driver broadcasts the consumer-side settlement transaction, waits
// for confirmation and verifies the on-chain state afterwards.
type Driver struct {
	consumer Consumer
	waiter   TxWaiter
	auth     *bind.TransactOpts
}

func NewDriver(consumer Consumer, waiter TxWaiter, auth *bind.TransactOpts) *Driver {
	return &Driver{
		consumer: consumer,
		waiter:   waiter,
		auth:     auth,
	}
}

// Settle runs broadcast, confirm, read-back in order. Nothing is
// retried: a failed broadcast will not heal by resending, and
// resubmitting after a confirmation timeout risks a duplicate call.
func (d *Driver) Settle(ctx context.Context, artifact model.ProofArtifact, confirmTimeout time.Duration) (*model.SettlementReceipt, error) {
	if confirmTimeout <= 0 {
		confirmTimeout = DefaultConfirmTimeout
	}

	// baseline read, needed to judge the post-settlement state and
	// done before any funds move
	before, err := d.consumer.ReadState(ctx, d.auth.From)
	if err != nil {
		return nil, xerrors.Errorf("read consumer state before settlement: %w", err)
	}

	opts := *d.auth
	opts.Context = ctx

	tx, err := d.consumer.Settle(&opts, artifact)
	if err != nil {
		return nil, &model.SettleError{Phase: model.PhaseBroadcast, Err: err}
	}
	logger.Info("settlement tx broadcast: ", tx.Hash())

	receipt, err := d.waiter.WaitMined(ctx, tx.Hash(), confirmTimeout)
	if err != nil {
		// the tx may still land later, surface the hash for lookup
		return nil, &model.SettleError{Phase: model.PhaseConfirm, TxHash: tx.Hash(), Err: err}
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, &model.SettleError{Phase: model.PhaseConfirm, TxHash: tx.Hash(), Err: xerrors.New("transaction reverted")}
	}
	logger.Info("settlement tx confirmed: ", tx.Hash(), " gas used: ", receipt.GasUsed)

	after, err := d.consumer.ReadState(ctx, d.auth.From)
	if err != nil {
		return nil, &model.SettleError{Phase: model.PhasePostcondition, TxHash: tx.Hash(), Err: err}
	}
	if err := d.consumer.Verify(before, after, artifact); err != nil {
		return nil, &model.SettleError{Phase: model.PhasePostcondition, TxHash: tx.Hash(), Err: err}
	}

	var blockNumber uint64
	if receipt.BlockNumber != nil {
		blockNumber = receipt.BlockNumber.Uint64()
	}

	return &model.SettlementReceipt{
		TxHash:      tx.Hash(),
		BlockNumber: blockNumber,
		GasUsed:     receipt.GasUsed,
		ConfirmedAt: time.Now(),
	}, nil
}
