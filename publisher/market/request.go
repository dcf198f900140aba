package market

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/proofgrid/publisher-api/publisher/model"

	"golang.org/x/xerrors"
)

// BuildRequest assembles an immutable request from its parts and
// assigns a fresh id. No network side effects.
func BuildRequest(imageURL string, input model.Input, reqs model.Requirements, offer model.Offer, requester common.Address) (*model.Request, error) {
	if imageURL == "" {
		return nil, xerrors.New("build request: empty image url")
	}
	if reqs.ProgramID == ([32]byte{}) {
		return nil, xerrors.New("build request: empty program id")
	}
	if len(reqs.Predicate.Data) == 0 {
		return nil, xerrors.New("build request: empty predicate data")
	}
	if err := offer.Validate(); err != nil {
		return nil, err
	}

	id, err := newRequestID(requester)
	if err != nil {
		return nil, err
	}

	return &model.Request{
		ID:           id,
		Requester:    requester,
		Requirements: reqs,
		ImageURL:     imageURL,
		Input:        input,
		Offer:        offer,
	}, nil
}

// request ids pack the requester address over a random 4 byte index,
// so ids from different accounts can never collide and a fresh index
// is drawn per run
func newRequestID(requester common.Address) (*big.Int, error) {
	var nonce [4]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, xerrors.Errorf("request id nonce: %w", err)
	}

	id := new(big.Int).SetBytes(requester.Bytes())
	id.Lsh(id, 32)
	id.Or(id, new(big.Int).SetUint64(uint64(binary.BigEndian.Uint32(nonce[:]))))
	return id, nil
}
