package keystore

type KeyType byte

const (
	Secp256k1 KeyType = 1
)

// Key is the encrypted unit stored in a keyfile
type Key struct {
	Address     string
	SecretValue []byte
}

type KeyStore interface {
	Put(name, auth string, info KeyInfo) error
	Get(name, auth string) (KeyInfo, error)
	List() ([]string, error)
	Exist(name string) (bool, error)
	Delete(name, auth string) error
	Close() error
}

// the keystore selected by the config, set by InitRepo
var Repo KeyStore

func InitRepo(path string) error {
	ks, err := NewKeyStore(path)
	if err != nil {
		return err
	}
	Repo = ks
	return nil
}
