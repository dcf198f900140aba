package chain

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/proofgrid/publisher-api/lib/logc"

	"golang.org/x/xerrors"
)

var logger = logc.Logger("chain")

// receipt poll cadence while waiting for inclusion
const receiptPollInterval = 500 * time.Millisecond

// Client wraps an eth node connection with its chain id
type Client struct {
	Eth     *ethclient.Client
	ChainID *big.Int
}

// connect to an eth node with an endpoint
func Dial(ctx context.Context, endpoint string) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, xerrors.Errorf("dial %s: %w", endpoint, err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, xerrors.Errorf("chain id: %w", err)
	}
	logger.Debug("chain id: ", chainID)

	return &Client{
		Eth:     eth,
		ChainID: chainID,
	}, nil
}

func (c *Client) Close() {
	c.Eth.Close()
}

// make auth for sending transactions
func MakeAuth(chainID *big.Int, sk string) (*bind.TransactOpts, error) {
	priv, err := crypto.HexToECDSA(sk)
	if err != nil {
		return nil, xerrors.Errorf("parse sk: %w", err)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(priv, chainID)
	if err != nil {
		return nil, xerrors.Errorf("make auth: %w", err)
	}

	return auth, nil
}

// WaitMined polls for the receipt of a broadcast transaction until it is
// included or the timeout elapses. The wait never blocks the scheduler,
// cancelling the context abandons the wait but not the transaction.
func (c *Client) WaitMined(ctx context.Context, txHash common.Hash, timeout time.Duration) (*types.Receipt, error) {
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.Eth.TransactionReceipt(wctx, txHash)
		if err == nil {
			logger.Debug("tx mined: ", txHash, " gas used: ", receipt.GasUsed)
			return receipt, nil
		}
		if !isNotFound(err) && wctx.Err() == nil {
			return nil, xerrors.Errorf("query receipt for %s: %w", txHash, err)
		}

		select {
		case <-wctx.Done():
			return nil, xerrors.Errorf("tx %s not mined within %s: %w", txHash, timeout, wctx.Err())
		case <-ticker.C:
		}
	}
}

// a pending receipt, possibly wrapped by a middleware transport
func isNotFound(err error) bool {
	return errors.Is(err, ethereum.NotFound)
}

// current chain head height
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.Eth.BlockNumber(ctx)
}
