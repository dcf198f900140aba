package market

import (
	"math/big"

	"github.com/proofgrid/publisher-api/publisher/model"
)

// PriceOffer converts a cycle estimate and per-megacycle rates into
// auction terms. Cycle counts round up to whole megacycles so the
// prover is never underpaid for a partial one. BiddingStart is left
// unset here, the client resolves it from the chain head at submit
// time since submission may be delayed.
func PriceOffer(cycles uint64, minPerMcycle, maxPerMcycle *big.Int, rampUp, timeout uint32, lockinStake *big.Int) (model.Offer, error) {
	mcycles := (cycles + model.Mcycle - 1) / model.Mcycle
	if mcycles == 0 {
		mcycles = 1
	}
	count := new(big.Int).SetUint64(mcycles)

	if lockinStake == nil {
		lockinStake = big.NewInt(0)
	}

	offer := model.Offer{
		MinPrice:     new(big.Int).Mul(minPerMcycle, count),
		MaxPrice:     new(big.Int).Mul(maxPerMcycle, count),
		RampUpPeriod: rampUp,
		Timeout:      timeout,
		LockinStake:  lockinStake,
	}

	if err := offer.Validate(); err != nil {
		return model.Offer{}, err
	}

	return offer, nil
}

// EffectivePrice is the price a prover can take the request at during
// block b: the min price before bidding starts, a linear ramp to the
// max price over the ramp-up window, then flat at max until the
// timeout. Nil after the request is void.
func EffectivePrice(o model.Offer, block uint64) *big.Int {
	if block >= o.ExpiresAt() {
		return nil
	}
	if block <= o.BiddingStart {
		return new(big.Int).Set(o.MinPrice)
	}

	elapsed := block - o.BiddingStart
	if elapsed >= uint64(o.RampUpPeriod) {
		return new(big.Int).Set(o.MaxPrice)
	}

	// min + (max-min) * elapsed / rampUp
	span := new(big.Int).Sub(o.MaxPrice, o.MinPrice)
	span.Mul(span, new(big.Int).SetUint64(elapsed))
	span.Div(span, new(big.Int).SetUint64(uint64(o.RampUpPeriod)))
	return span.Add(span, o.MinPrice)
}
