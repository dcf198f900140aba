package estimator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/proofgrid/publisher-api/lib/logc"
	"github.com/proofgrid/publisher-api/publisher/model"

	"golang.org/x/xerrors"
)

var logger = logc.Logger("estimator")

// Estimation is the result of a dry run of an image against an input
type Estimation struct {
	// claimed output bytes of the execution
	Journal []byte
	// cycle count, used for pricing
	Cycles uint64
}

// Estimator executes a guest image against an input without proving it.
// The run yields the expected journal and a cycle count; how the
// estimate is produced is the executor's business.
type Estimator interface {
	Execute(ctx context.Context, image []byte, input []byte) (*Estimation, error)
}

// JournalDigest is the digest the market verifier checks the
// fulfilled journal against
func JournalDigest(journal []byte) [32]byte {
	return sha256.Sum256(journal)
}

// HTTPEstimator talks to an executor sidecar over http
type HTTPEstimator struct {
	endpoint string
	cli      *http.Client
}

func NewHTTPEstimator(endpoint string) *HTTPEstimator {
	return &HTTPEstimator{
		endpoint: endpoint,
		cli: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

type executeRequest struct {
	Image hexutil.Bytes `json:"image"`
	Input hexutil.Bytes `json:"input"`
}

type executeResponse struct {
	Journal hexutil.Bytes `json:"journal"`
	Cycles  uint64        `json:"cycles"`
}

func (e *HTTPEstimator) Execute(ctx context.Context, image []byte, input []byte) (*Estimation, error) {
	body, err := json.Marshal(executeRequest{
		Image: image,
		Input: input,
	})
	if err != nil {
		return nil, xerrors.Errorf("%w: encode request: %v", model.ErrEstimation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, xerrors.Errorf("%w: %v", model.ErrEstimation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.cli.Do(req)
	if err != nil {
		return nil, xerrors.Errorf("%w: executor unreachable: %v", model.ErrEstimation, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, xerrors.Errorf("%w: read response: %v", model.ErrEstimation, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, xerrors.Errorf("%w: executor status %d: %s", model.ErrEstimation, resp.StatusCode, data)
	}

	var out executeResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, xerrors.Errorf("%w: decode response: %v", model.ErrEstimation, err)
	}

	logger.Debugf("dry run ok, cycles: %d, journal: %d bytes", out.Cycles, len(out.Journal))

	return &Estimation{
		Journal: out.Journal,
		Cycles:  out.Cycles,
	}, nil
}
