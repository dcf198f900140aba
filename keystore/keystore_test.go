package keystore

import (
	"bytes"
	"path/filepath"
	"testing"
)

// light scrypt params keep the store tests fast
func lightRepo(t *testing.T) *keyStore {
	t.Helper()
	if err := InitRepo(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	ks := Repo.(*keyStore)
	ks.scryptN = LightScryptN
	ks.scryptP = LightScryptP
	return ks
}

func TestEncryptDecryptKey(t *testing.T) {
	key := &Key{
		Address:     "0x0d2897e7e3ad18df4a0571a7bacb3ffe417d3b06",
		SecretValue: []byte("secret material"),
	}

	keyjson, err := encryptKey(key, "grid", LightScryptN, LightScryptP)
	if err != nil {
		t.Fatal(err)
	}

	got, err := decryptKey(keyjson, "grid")
	if err != nil {
		t.Fatal(err)
	}
	if got.Address != key.Address {
		t.Errorf("expected %s, got %s", key.Address, got.Address)
	}
	if !bytes.Equal(got.SecretValue, key.SecretValue) {
		t.Error("secret value mismatch after decrypt")
	}

	// wrong password must not decrypt
	if _, err := decryptKey(keyjson, "wrong"); err == nil {
		t.Error("expected decrypt failure with wrong password")
	}
}

func TestRepoLifecycle(t *testing.T) {
	ks := lightRepo(t)

	ki, err := NewKey()
	if err != nil {
		t.Fatal(err)
	}
	addr := ki.Address()

	if err := ks.Put(addr, "pw", *ki); err != nil {
		t.Fatal(err)
	}

	b, err := ks.Exist(addr)
	if err != nil {
		t.Fatal(err)
	}
	if !b {
		t.Error("stored key must exist")
	}

	got, err := ks.Get(addr, "pw")
	if err != nil {
		t.Fatal(err)
	}
	if got.SK() != ki.SK() {
		t.Error("sk mismatch after round trip")
	}

	if err := ks.Delete(addr, "pw"); err != nil {
		t.Fatal(err)
	}
	b, err = ks.Exist(addr)
	if err != nil {
		t.Fatal(err)
	}
	if b {
		t.Error("deleted key must not exist")
	}
}

func TestLoadKeyFile(t *testing.T) {
	ks := lightRepo(t)

	ki, err := NewKey()
	if err != nil {
		t.Fatal(err)
	}
	if err := ks.Put(ki.Address(), "pw", *ki); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(ks.path, ki.Address())

	sk, err := LoadKeyFile("pw", path)
	if err != nil {
		t.Fatal(err)
	}
	if sk != ki.SK() {
		t.Errorf("expected %s, got %s", ki.SK(), sk)
	}

	if _, err := LoadKeyFile("wrong", path); err == nil {
		t.Error("expected failure with wrong password")
	}
}

func TestImportRejectsBadSK(t *testing.T) {
	if _, err := Import("not hex"); err == nil {
		t.Error("expected error for non-hex sk")
	}
	if _, err := Import("0011"); err == nil {
		t.Error("expected error for short sk")
	}
}

func TestKeyInfoAddress(t *testing.T) {
	ki, err := NewKey()
	if err != nil {
		t.Fatal(err)
	}

	// importing the exported sk must yield the same address
	ki2, err := Import(ki.SK())
	if err != nil {
		t.Fatal(err)
	}
	if ki.Address() != ki2.Address() {
		t.Errorf("expected %s, got %s", ki.Address(), ki2.Address())
	}
}
