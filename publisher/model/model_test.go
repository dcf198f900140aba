package model

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestRequest(t *testing.T) {
	r := &Request{
		ID:        big.NewInt(42),
		Requester: common.HexToAddress("0x0d2897e7e3ad18df4a0571a7bacb3ffe417d3b06"),
		ImageURL:  "http://localhost:8560/images/abc",
		Input:     InlineInput([]byte{1, 2, 3}),
		Offer: Offer{
			MinPrice:     big.NewInt(3000),
			MaxPrice:     big.NewInt(5000),
			BiddingStart: 100,
			RampUpPeriod: 50,
			Timeout:      1000,
			LockinStake:  big.NewInt(0),
		},
	}
	b, err := r.Encode()
	if err != nil {
		t.Fatal(err)
	}

	ra := &Request{}
	err = ra.Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	if ra.ID.Cmp(r.ID) != 0 || ra.Requester != r.Requester {
		t.Errorf("decoded request mismatch: %+v", ra)
	}
	t.Log(ra)
}

func TestOfferValidate(t *testing.T) {
	o := Offer{
		MinPrice: big.NewInt(10),
		MaxPrice: big.NewInt(5),
		Timeout:  100,
	}
	if err := o.Validate(); !errors.Is(err, ErrPricingInvalid) {
		t.Errorf("expected ErrPricingInvalid, got %v", err)
	}

	o.MaxPrice = big.NewInt(20)
	o.Timeout = 0
	if err := o.Validate(); !errors.Is(err, ErrPricingInvalid) {
		t.Errorf("expected ErrPricingInvalid for zero timeout, got %v", err)
	}

	o.Timeout = 100
	o.RampUpPeriod = 200
	if err := o.Validate(); !errors.Is(err, ErrPricingInvalid) {
		t.Errorf("expected ErrPricingInvalid for ramp above timeout, got %v", err)
	}

	o.RampUpPeriod = 50
	if err := o.Validate(); err != nil {
		t.Errorf("expected valid offer, got %v", err)
	}
}

func TestOfferExpiresAt(t *testing.T) {
	o := Offer{BiddingStart: 100, Timeout: 1000}
	if o.ExpiresAt() != 1100 {
		t.Errorf("expected 1100, got %d", o.ExpiresAt())
	}
}

func TestSettleError(t *testing.T) {
	inner := errors.New("timed out")
	h := common.HexToHash("0xdead")
	e := &SettleError{Phase: PhaseConfirm, TxHash: h, Err: inner}

	if !errors.Is(e, inner) {
		t.Error("expected unwrap to inner error")
	}

	var se *SettleError
	var err error = e
	if !errors.As(err, &se) {
		t.Fatal("expected As to match SettleError")
	}
	if se.Phase != PhaseConfirm || se.TxHash != h {
		t.Errorf("unexpected settle error fields: %+v", se)
	}
}
