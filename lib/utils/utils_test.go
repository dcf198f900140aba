package utils

import (
	"bytes"
	"math/big"
	"testing"
)

func TestUint64RoundTrip(t *testing.T) {
	s := Uint64ToString(2500000)
	u, err := StringToUint64(s)
	if err != nil {
		t.Fatal(err)
	}
	if u != 2500000 {
		t.Errorf("expected 2500000, got %d", u)
	}
}

func TestEncodeUint256(t *testing.T) {
	b := EncodeUint256(big.NewInt(4))
	if len(b) != 32 {
		t.Fatalf("expected 32 bytes, got %d", len(b))
	}
	if b[31] != 4 {
		t.Errorf("expected low byte 4, got %d", b[31])
	}
	if !bytes.Equal(b[:31], make([]byte, 31)) {
		t.Error("expected zero padding")
	}
}

func TestHexRoundTrip(t *testing.T) {
	b, err := HexDecode("0x00ff10")
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 3 || b[1] != 0xff {
		t.Errorf("unexpected decode: %x", b)
	}
	if HexEncode(b) != "0x00ff10" {
		t.Errorf("unexpected encode: %s", HexEncode(b))
	}

	// the 0x prefix is required
	if _, err := HexDecode("00ff10"); err == nil {
		t.Error("expected error without 0x prefix")
	}
}

func TestBytes32FromHex(t *testing.T) {
	_, err := Bytes32FromHex("0x01")
	if err == nil {
		t.Error("expected error for short input")
	}

	h := "0x" + "11" + "0000000000000000000000000000000000000000000000000000000000" + "2233"
	b, err := Bytes32FromHex(h)
	if err != nil {
		t.Fatal(err)
	}
	if b[0] != 0x11 || b[31] != 0x33 {
		t.Errorf("unexpected decode: %x", b)
	}
}
