package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/iov-one/autoshare/crypto"
	"github.com/spf13/pflag"
)

func defaultKeyPath() string {
	return env("AUTOSHARE_KEY", filepath.Join(os.ExpandEnv("$HOME"), ".autoshared.key.json"))
}

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := pflag.NewFlagSet("keygen", pflag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(os.Stderr, `
Generate a new ed25519 private key and print its address. This command fails
if the key file already exists.

When a seed is given, the key is derived from it using the derivation path and
the same seed and path always produce the same key.

`)
		fl.PrintDefaults()
	}
	keyFl := fl.String("key", defaultKeyPath(), "Path to the private key file. You can use AUTOSHARE_KEY environment variable to set it.")
	seedFl := fl.String("seed", "", "Hex encoded seed to derive the key from. A random key is generated when empty.")
	pathFl := fl.String("path", crypto.DefaultDerivationPath, "SLIP-10 derivation path, used together with --seed.")
	fl.Parse(args)

	key, err := newKey(*seedFl, *pathFl)
	if err != nil {
		return err
	}
	if err := crypto.SaveKey(*keyFl, key); err != nil {
		return fmt.Errorf("cannot save key: %s", err)
	}
	fmt.Fprintln(output, key.PublicKey().Address())
	return nil
}

func newKey(hexSeed, path string) (crypto.PrivateKey, error) {
	if hexSeed == "" {
		return crypto.GenPrivKeyEd25519(), nil
	}
	seed, err := hex.DecodeString(hexSeed)
	if err != nil {
		return nil, fmt.Errorf("invalid seed: %s", err)
	}
	key, err := crypto.DerivePrivKeyEd25519(seed, path)
	if err != nil {
		return nil, fmt.Errorf("cannot derive key: %s", err)
	}
	return key, nil
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := pflag.NewFlagSet("keyaddr", pflag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(os.Stderr, `
Print the address and the public key of a private key file.

`)
		fl.PrintDefaults()
	}
	keyFl := fl.String("key", defaultKeyPath(), "Path to the private key file. You can use AUTOSHARE_KEY environment variable to set it.")
	fl.Parse(args)

	key, err := crypto.LoadKey(*keyFl)
	if err != nil {
		return fmt.Errorf("cannot load key: %s", err)
	}
	kf := crypto.NewKeyFile(key)
	fmt.Fprintf(output, "address\t%s\npubkey\t%s\n", kf.Address, kf.PublicKey)
	return nil
}
