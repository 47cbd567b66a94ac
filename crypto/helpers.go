package crypto

import (
	"encoding/hex"
	"encoding/json"
	"io/ioutil"
	"os"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/errors"
)

// KeyFile is the on disk form of a private key.
type KeyFile struct {
	PrivateKey string            `json:"private_key"`
	PublicKey  string            `json:"public_key"`
	Address    autoshare.Address `json:"address"`
}

// NewKeyFile describes given key.
func NewKeyFile(p PrivateKey) KeyFile {
	pub := p.PublicKey()
	return KeyFile{
		PrivateKey: hex.EncodeToString(p),
		PublicKey:  pub.String(),
		Address:    pub.Address(),
	}
}

// Key decodes the private key.
func (k KeyFile) Key() (PrivateKey, error) {
	raw, err := hex.DecodeString(k.PrivateKey)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if len(raw) != 64 {
		return nil, errors.Wrapf(errors.ErrInput, "private key size %d", len(raw))
	}
	return PrivateKey(raw), nil
}

// SaveKey writes the key to path. Existing files are never overwritten.
func SaveKey(path string, p PrivateKey) error {
	raw, err := json.MarshalIndent(NewKeyFile(p), "", "  ")
	if err != nil {
		return errors.Wrap(err, "serialize key")
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	defer f.Close()
	_, err = f.Write(raw)
	return errors.Wrap(err, "write key")
}

// LoadKey reads a key saved by SaveKey.
func LoadKey(path string) (PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	var k KeyFile
	if err := json.Unmarshal(raw, &k); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return k.Key()
}
