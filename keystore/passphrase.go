package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/xerrors"
)

const (
	// scrypt parameters for interactive use
	StandardScryptN = 1 << 18
	StandardScryptP = 1

	// weak parameters, tests only
	LightScryptN = 1 << 12
	LightScryptP = 6

	scryptR     = 8
	scryptDKLen = 32

	keyVersion = 3
)

type encryptedKeyJSON struct {
	Address string     `json:"address"`
	Crypto  cryptoJSON `json:"crypto"`
	Version int        `json:"version"`
}

type cryptoJSON struct {
	Cipher       string           `json:"cipher"`
	CipherText   string           `json:"ciphertext"`
	CipherParams cipherParamsJSON `json:"cipherparams"`
	KDF          string           `json:"kdf"`
	KDFParams    kdfParamsJSON    `json:"kdfparams"`
	MAC          string           `json:"mac"`
}

type cipherParamsJSON struct {
	IV string `json:"iv"`
}

type kdfParamsJSON struct {
	N     int    `json:"n"`
	R     int    `json:"r"`
	P     int    `json:"p"`
	DKLen int    `json:"dklen"`
	Salt  string `json:"salt"`
}

// encrypt a key with auth into a keyjson blob
func encryptKey(key *Key, auth string, scryptN, scryptP int) ([]byte, error) {
	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	derivedKey, err := scrypt.Key([]byte(auth), salt, scryptN, scryptR, scryptP, scryptDKLen)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}

	cipherText, err := aesCTRXOR(derivedKey[:16], key.SecretValue, iv)
	if err != nil {
		return nil, err
	}

	// mac binds the derived key to the ciphertext
	mac := crypto.Keccak256(derivedKey[16:32], cipherText)

	out := encryptedKeyJSON{
		Address: key.Address,
		Crypto: cryptoJSON{
			Cipher:     "aes-128-ctr",
			CipherText: hex.EncodeToString(cipherText),
			CipherParams: cipherParamsJSON{
				IV: hex.EncodeToString(iv),
			},
			KDF: "scrypt",
			KDFParams: kdfParamsJSON{
				N:     scryptN,
				R:     scryptR,
				P:     scryptP,
				DKLen: scryptDKLen,
				Salt:  hex.EncodeToString(salt),
			},
			MAC: hex.EncodeToString(mac),
		},
		Version: keyVersion,
	}

	return json.Marshal(out)
}

// decrypt a keyjson blob with auth
func decryptKey(keyjson []byte, auth string) (*Key, error) {
	var enc encryptedKeyJSON
	if err := json.Unmarshal(keyjson, &enc); err != nil {
		return nil, err
	}

	if enc.Crypto.KDF != "scrypt" {
		return nil, xerrors.Errorf("unsupported kdf: %s", enc.Crypto.KDF)
	}
	if enc.Crypto.Cipher != "aes-128-ctr" {
		return nil, xerrors.Errorf("unsupported cipher: %s", enc.Crypto.Cipher)
	}

	salt, err := hex.DecodeString(enc.Crypto.KDFParams.Salt)
	if err != nil {
		return nil, err
	}
	iv, err := hex.DecodeString(enc.Crypto.CipherParams.IV)
	if err != nil {
		return nil, err
	}
	cipherText, err := hex.DecodeString(enc.Crypto.CipherText)
	if err != nil {
		return nil, err
	}
	mac, err := hex.DecodeString(enc.Crypto.MAC)
	if err != nil {
		return nil, err
	}

	p := enc.Crypto.KDFParams
	derivedKey, err := scrypt.Key([]byte(auth), salt, p.N, p.R, p.P, p.DKLen)
	if err != nil {
		return nil, err
	}

	calcMac := crypto.Keccak256(derivedKey[16:32], cipherText)
	if subtle.ConstantTimeCompare(calcMac, mac) != 1 {
		return nil, xerrors.New("could not decrypt key with given password")
	}

	plain, err := aesCTRXOR(derivedKey[:16], cipherText, iv)
	if err != nil {
		return nil, err
	}

	return &Key{
		Address:     enc.Address,
		SecretValue: plain,
	}, nil
}

func aesCTRXOR(key, inText, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	stream := cipher.NewCTR(block, iv)
	out := make([]byte, len(inText))
	stream.XORKeyStream(out, inText)
	return out, nil
}
