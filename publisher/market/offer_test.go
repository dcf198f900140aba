package market

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/proofgrid/publisher-api/publisher/model"
)

func TestPriceOfferMcycleCeil(t *testing.T) {
	// 2.5 mcycles price as 3 whole ones
	offer, err := PriceOffer(2_500_000, big.NewInt(1000), big.NewInt(2000), 50, 1000, nil)
	require.NoError(t, err)
	require.Equal(t, int64(3000), offer.MinPrice.Int64())
	require.Equal(t, int64(5000), offer.MaxPrice.Int64())
	require.Zero(t, offer.BiddingStart, "bidding start is resolved at submit time")
}

func TestPriceOfferMonotonicInCycles(t *testing.T) {
	prev := big.NewInt(-1)
	for _, cycles := range []uint64{1, 999_999, 1_000_000, 1_000_001, 2_500_000, 10_000_000} {
		offer, err := PriceOffer(cycles, big.NewInt(1000), big.NewInt(2000), 0, 100, nil)
		require.NoError(t, err)
		require.True(t, offer.MinPrice.Cmp(prev) >= 0, "min price must not decrease with cycles")
		require.True(t, offer.MinPrice.Cmp(offer.MaxPrice) <= 0)
		prev = offer.MinPrice
	}
}

func TestPriceOfferInvalid(t *testing.T) {
	_, err := PriceOffer(1_000_000, big.NewInt(2000), big.NewInt(1000), 0, 100, nil)
	require.ErrorIs(t, err, model.ErrPricingInvalid)

	_, err = PriceOffer(1_000_000, big.NewInt(1000), big.NewInt(2000), 0, 0, nil)
	require.ErrorIs(t, err, model.ErrPricingInvalid)

	_, err = PriceOffer(1_000_000, big.NewInt(1000), big.NewInt(2000), 200, 100, nil)
	require.ErrorIs(t, err, model.ErrPricingInvalid)
}

func TestEffectivePriceRamp(t *testing.T) {
	offer := model.Offer{
		MinPrice:     big.NewInt(3000),
		MaxPrice:     big.NewInt(5000),
		BiddingStart: 100,
		RampUpPeriod: 50,
		Timeout:      1000,
		LockinStake:  big.NewInt(0),
	}

	// min before and at bidding start
	require.Equal(t, int64(3000), EffectivePrice(offer, 10).Int64())
	require.Equal(t, int64(3000), EffectivePrice(offer, 100).Int64())

	// non-decreasing over the ramp
	prev := EffectivePrice(offer, 100)
	for b := uint64(101); b <= 150; b++ {
		p := EffectivePrice(offer, b)
		require.True(t, p.Cmp(prev) >= 0, "price must not decrease at block %d", b)
		prev = p
	}

	// flat at max until the timeout
	require.Equal(t, int64(5000), EffectivePrice(offer, 150).Int64())
	require.Equal(t, int64(5000), EffectivePrice(offer, 1099).Int64())

	// void after
	require.Nil(t, EffectivePrice(offer, 1100))
	require.Nil(t, EffectivePrice(offer, 2000))
}

func TestEffectivePriceMidRamp(t *testing.T) {
	offer := model.Offer{
		MinPrice:     big.NewInt(1000),
		MaxPrice:     big.NewInt(2000),
		BiddingStart: 0,
		RampUpPeriod: 100,
		Timeout:      200,
		LockinStake:  big.NewInt(0),
	}
	require.Equal(t, int64(1500), EffectivePrice(offer, 50).Int64())
}

func TestEffectivePriceZeroRamp(t *testing.T) {
	offer := model.Offer{
		MinPrice:     big.NewInt(1000),
		MaxPrice:     big.NewInt(2000),
		BiddingStart: 10,
		RampUpPeriod: 0,
		Timeout:      100,
		LockinStake:  big.NewInt(0),
	}
	// jumps straight to max once bidding is open
	require.Equal(t, int64(1000), EffectivePrice(offer, 10).Int64())
	require.Equal(t, int64(2000), EffectivePrice(offer, 11).Int64())

	if errors.Is(offer.Validate(), model.ErrPricingInvalid) {
		t.Error("zero ramp up is a valid offer")
	}
}
