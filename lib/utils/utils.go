package utils

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"golang.org/x/xerrors"
)

// string to uint64
func StringToUint64(s string) (uint64, error) {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}

	return u, nil
}

func Uint64ToString(u uint64) string {
	return strconv.FormatUint(u, 10)
}

// abi encoding of a single uint256 word
func EncodeUint256(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

// decode a hex string with 0x prefix
func HexDecode(input string) ([]byte, error) {
	return hexutil.Decode(input)
}

func HexEncode(input []byte) string {
	return hexutil.Encode(input)
}

// parse a 0x-prefixed 32 byte hex string
func Bytes32FromHex(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hexutil.Decode(s)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, xerrors.Errorf("want 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}
