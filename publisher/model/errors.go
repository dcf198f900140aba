package model

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// the dry run could not execute the program, no request is submitted
	ErrEstimation = errors.New("estimation failed")
	// offer parameters violate the pricing invariants
	ErrPricingInvalid = errors.New("invalid offer parameters")
	// the market rejected the request at submission
	ErrSubmission = errors.New("request submission failed")
	// the request's own on-chain timeout elapsed unfulfilled
	ErrExpired = errors.New("request expired on chain")
	// the caller's wait budget ran out, the request may still be fulfilled
	ErrDeadlineExceeded = errors.New("fulfillment wait deadline exceeded")
)

type SettlePhase uint8

const (
	PhaseBroadcast SettlePhase = iota
	PhaseConfirm
	PhasePostcondition
)

func (p SettlePhase) String() string {
	switch p {
	case PhaseBroadcast:
		return "broadcast"
	case PhaseConfirm:
		return "confirm"
	case PhasePostcondition:
		return "postcondition"
	default:
		return "unknown"
	}
}

// SettleError is a settlement phase failure. TxHash is set for every
// phase past broadcast so the caller can follow up on chain.
type SettleError struct {
	Phase  SettlePhase
	TxHash common.Hash
	Err    error
}

func (e *SettleError) Error() string {
	if e.TxHash == (common.Hash{}) {
		return fmt.Sprintf("settle %s: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("settle %s (tx %s): %v", e.Phase, e.TxHash, e.Err)
}

func (e *SettleError) Unwrap() error {
	return e.Err
}
