package market

import (
	"context"
	"time"

	"github.com/proofgrid/publisher-api/lib/logc"
	"github.com/proofgrid/publisher-api/publisher/model"

	"golang.org/x/xerrors"
)

var logger = logc.Logger("market")

// default polling cadence while waiting for fulfillment, wall clock,
// unrelated to the offer's block-scale timeout
const DefaultPollInterval = 5 * time.Second

// Client drives a request through the market: submit once, then poll
// until fulfillment or a terminal timeout.
type Client struct {
	backend Backend
}

func NewClient(backend Backend) *Client {
	return &Client{
		backend: backend,
	}
}

// Submit resolves the offer's bidding start from the chain head when
// unset, then sends the request. The request is immutable afterwards.
func (c *Client) Submit(ctx context.Context, req *model.Request) error {
	if req.Offer.BiddingStart == 0 {
		head, err := c.backend.BlockNumber(ctx)
		if err != nil {
			return xerrors.Errorf("%w: resolve bidding start: %v", model.ErrSubmission, err)
		}
		req.Offer.BiddingStart = head
	}

	if err := c.backend.Submit(ctx, req); err != nil {
		return xerrors.Errorf("%w: request %s: %v", model.ErrSubmission, req.ID, err)
	}

	logger.Infof("request %s submitted, bidding start %d, expires at block %d",
		req.ID, req.Offer.BiddingStart, req.Offer.ExpiresAt())

	return nil
}

// WaitForFulfillment polls the market at pollInterval until the request
// is fulfilled, its own on-chain timeout elapses (ErrExpired), or the
// caller's deadline passes (ErrDeadlineExceeded). A nil deadline waits
// as long as the request can live on chain. Fulfillment is always
// checked before the timeouts so a result that raced them still wins.
func (c *Client) WaitForFulfillment(ctx context.Context, req *model.Request, pollInterval time.Duration, deadline *time.Time) (*model.Fulfillment, error) {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.backend.Status(ctx, req.ID)
		if err != nil {
			return nil, xerrors.Errorf("poll request %s: %w", req.ID, err)
		}

		if status == model.StatusFulfilled {
			f, err := c.backend.Fulfillment(ctx, req.ID)
			if err != nil {
				return nil, xerrors.Errorf("fetch fulfillment for %s: %w", req.ID, err)
			}
			logger.Infof("request %s fulfilled, journal %d bytes, seal %d bytes",
				req.ID, len(f.Journal), len(f.Seal))
			return f, nil
		}
		logger.Debugf("request %s not fulfilled yet, status %d", req.ID, status)

		head, err := c.backend.BlockNumber(ctx)
		if err != nil {
			return nil, xerrors.Errorf("poll chain head for %s: %w", req.ID, err)
		}
		if head >= req.Offer.ExpiresAt() {
			return nil, xerrors.Errorf("%w: request %s, block %d past %d", model.ErrExpired, req.ID, head, req.Offer.ExpiresAt())
		}

		if deadline != nil && !time.Now().Before(*deadline) {
			return nil, xerrors.Errorf("%w: request %s still open on chain", model.ErrDeadlineExceeded, req.ID)
		}

		select {
		case <-ctx.Done():
			// the request stays live on chain, hand its id back for
			// manual reconciliation
			return nil, xerrors.Errorf("wait for request %s: %w", req.ID, ctx.Err())
		case <-ticker.C:
		}
	}
}
