package model

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"golang.org/x/xerrors"
)

// number of cycles per megacycle, pricing unit of the market
const Mcycle = 1_000_000

type PredicateType uint8

const (
	// journal digest must equal the predicate data exactly
	PredicateDigestMatch PredicateType = iota
	// journal must start with the predicate data
	PredicatePrefixMatch
)

// Predicate is the acceptance rule a journal must satisfy
type Predicate struct {
	Type PredicateType `json:"type"`
	Data hexutil.Bytes `json:"data"`
}

func DigestMatch(digest [32]byte) Predicate {
	return Predicate{
		Type: PredicateDigestMatch,
		Data: digest[:],
	}
}

func PrefixMatch(prefix []byte) Predicate {
	return Predicate{
		Type: PredicatePrefixMatch,
		Data: prefix,
	}
}

// Requirements bind a request to a program and an acceptance rule.
// The predicate data must come from a dry run of the same image and
// input, a fabricated digest is rejected by the market verifier.
type Requirements struct {
	ProgramID [32]byte  `json:"program_id"`
	Predicate Predicate `json:"predicate"`
}

type InputType uint8

const (
	InputInline InputType = iota
	InputURL
)

// Input carries the guest input, inline for small payloads or
// a storage url for larger ones
type Input struct {
	Type InputType     `json:"type"`
	Data hexutil.Bytes `json:"data"`
}

func InlineInput(b []byte) Input {
	return Input{Type: InputInline, Data: b}
}

func URLInput(u string) Input {
	return Input{Type: InputURL, Data: []byte(u)}
}

// Offer is the reverse Dutch auction terms of a request.
// Prices are wei, periods are block counts.
type Offer struct {
	MinPrice *big.Int `json:"min_price"`
	MaxPrice *big.Int `json:"max_price"`
	// block height where bidding opens, 0 until resolved at submit time
	BiddingStart uint64   `json:"bidding_start"`
	RampUpPeriod uint32   `json:"ramp_up_period"`
	Timeout      uint32   `json:"timeout"`
	LockinStake  *big.Int `json:"lockin_stake"`
}

func (o *Offer) Validate() error {
	if o.MinPrice == nil || o.MaxPrice == nil {
		return xerrors.Errorf("%w: price not set", ErrPricingInvalid)
	}
	if o.MinPrice.Sign() < 0 {
		return xerrors.Errorf("%w: negative min price", ErrPricingInvalid)
	}
	if o.MinPrice.Cmp(o.MaxPrice) > 0 {
		return xerrors.Errorf("%w: min price %s above max price %s", ErrPricingInvalid, o.MinPrice, o.MaxPrice)
	}
	if o.Timeout == 0 {
		return xerrors.Errorf("%w: zero timeout", ErrPricingInvalid)
	}
	if o.RampUpPeriod > o.Timeout {
		return xerrors.Errorf("%w: ramp up period %d above timeout %d", ErrPricingInvalid, o.RampUpPeriod, o.Timeout)
	}
	return nil
}

// block height after which the request is void
func (o *Offer) ExpiresAt() uint64 {
	return o.BiddingStart + uint64(o.Timeout)
}

// Request is the priced proving request, immutable after submission
type Request struct {
	ID           *big.Int       `json:"id"`
	Requester    common.Address `json:"requester"`
	Requirements Requirements   `json:"requirements"`
	ImageURL     string         `json:"image_url"`
	Input        Input          `json:"input"`
	Offer        Offer          `json:"offer"`
}

func (r *Request) Encode() ([]byte, error) {
	return json.Marshal(r)
}

func (r *Request) Decode(b []byte) error {
	return json.Unmarshal(b, r)
}

type RequestStatus uint8

const (
	StatusUnknown RequestStatus = iota
	StatusOpen
	StatusLocked
	StatusFulfilled
)

// Fulfillment is what the market returns for a fulfilled request.
// The journal is prover controlled and must not be trusted for
// predicate checking, only the seal is consumed downstream.
type Fulfillment struct {
	Journal []byte
	Seal    []byte
}

// ProofArtifact is what settlement carries to the consumer contract.
// Journal and digest are the locally computed ones, never the
// market-returned journal.
type ProofArtifact struct {
	Journal       []byte
	JournalDigest [32]byte
	ProgramID     [32]byte
	Seal          []byte
}

// SettlementReceipt records a confirmed settlement transaction
type SettlementReceipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
	ConfirmedAt time.Time
}
