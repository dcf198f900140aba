package market

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/proofgrid/publisher-api/publisher/model"
)

var testRequester = common.HexToAddress("0x0d2897e7e3ad18df4a0571a7bacb3ffe417d3b06")

func testOffer() model.Offer {
	return model.Offer{
		MinPrice:     big.NewInt(3000),
		MaxPrice:     big.NewInt(5000),
		RampUpPeriod: 50,
		Timeout:      1000,
		LockinStake:  big.NewInt(0),
	}
}

func testRequirements() model.Requirements {
	var program [32]byte
	program[0] = 0xaa
	var digest [32]byte
	digest[0] = 0xbb
	return model.Requirements{
		ProgramID: program,
		Predicate: model.DigestMatch(digest),
	}
}

func TestBuildRequest(t *testing.T) {
	req, err := BuildRequest("http://storage/images/abc", model.InlineInput([]byte{1}), testRequirements(), testOffer(), testRequester)
	require.NoError(t, err)

	require.Equal(t, testRequester, req.Requester)

	// the id embeds the requester address above the 4 byte index
	addrPart := new(big.Int).Rsh(req.ID, 32)
	require.Equal(t, new(big.Int).SetBytes(testRequester.Bytes()), addrPart)
}

func TestBuildRequestFreshIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		req, err := BuildRequest("http://storage/images/abc", model.InlineInput(nil), testRequirements(), testOffer(), testRequester)
		require.NoError(t, err)
		seen[req.ID.String()] = true
	}
	// 32 draws from 2^32 should never collide
	require.Len(t, seen, 32)
}

func TestBuildRequestValidation(t *testing.T) {
	_, err := BuildRequest("", model.InlineInput(nil), testRequirements(), testOffer(), testRequester)
	require.Error(t, err)

	_, err = BuildRequest("http://x", model.InlineInput(nil), model.Requirements{}, testOffer(), testRequester)
	require.Error(t, err)

	bad := testOffer()
	bad.MinPrice = big.NewInt(9000)
	_, err = BuildRequest("http://x", model.InlineInput(nil), testRequirements(), bad, testRequester)
	require.ErrorIs(t, err, model.ErrPricingInvalid)
}
