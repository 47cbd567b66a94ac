package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/iov-one/autoshare/app"
	"github.com/iov-one/autoshare/crypto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

func cmdSign(input io.Reader, output io.Writer, args []string) error {
	fl := pflag.NewFlagSet("sign", pflag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(os.Stderr, `
Sign given transaction. The transaction is read from standard input, a
signature is appended and the signed transaction is written to standard
output.

Unless given, the chain ID and the sequence of the signer are fetched from
the API.

`)
		fl.PrintDefaults()
	}
	var (
		keyFl   = fl.String("key", defaultKeyPath(), "Path to the private key file. You can use AUTOSHARE_KEY environment variable to set it.")
		apiFl   = fl.String("api", env("AUTOSHARE_API", "http://localhost:8080"), "Address of the API. You can use AUTOSHARE_API environment variable to set it.")
		chainFl = fl.String("chain-id", "", "Chain ID to sign for.")
		seqFl   = fl.Int64("sequence", -1, "Sequence of the signer.")
	)
	fl.Parse(args)

	key, err := crypto.LoadKey(*keyFl)
	if err != nil {
		return fmt.Errorf("cannot load key: %s", err)
	}
	tx, err := readTx(input)
	if err != nil {
		return err
	}

	chainID := *chainFl
	if chainID == "" {
		var status struct {
			ChainID string `json:"chain_id"`
		}
		if err := apiGet(*apiFl+"/status", &status); err != nil {
			return fmt.Errorf("cannot fetch chain ID: %s", err)
		}
		chainID = status.ChainID
	}
	seq := *seqFl
	if seq < 0 {
		var res struct {
			Sequence int64 `json:"sequence"`
		}
		if err := apiGet(fmt.Sprintf("%s/accounts/%s/sequence", *apiFl, key.PublicKey().Address()), &res); err != nil {
			return fmt.Errorf("cannot fetch sequence: %s", err)
		}
		seq = res.Sequence
	}

	if err := tx.Sign(key, chainID, seq); err != nil {
		return fmt.Errorf("cannot sign transaction: %s", err)
	}
	return json.NewEncoder(output).Encode(tx)
}

func cmdSubmit(input io.Reader, output io.Writer, args []string) error {
	fl := pflag.NewFlagSet("submit", pflag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(os.Stderr, `
Submit a signed transaction read from standard input and print the result.

`)
		fl.PrintDefaults()
	}
	var (
		apiFl   = fl.String("api", env("AUTOSHARE_API", "http://localhost:8080"), "Address of the API. You can use AUTOSHARE_API environment variable to set it.")
		checkFl = fl.Bool("check", false, "Only check the transaction, do not apply it.")
	)
	fl.Parse(args)

	tx, err := readTx(input)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("cannot serialize transaction: %s", err)
	}
	url := *apiFl + "/tx"
	if *checkFl {
		url += "/check"
	}
	resp, err := httpClient.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("cannot submit transaction: %s", err)
	}
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("cannot read response: %s", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("transaction rejected: %s", strings.TrimSpace(string(body)))
	}
	_, err = output.Write(body)
	return err
}

// readTx decodes a transaction of any message known to the application.
func readTx(input io.Reader) (*app.Tx, error) {
	raw, err := ioutil.ReadAll(input)
	if err != nil {
		return nil, fmt.Errorf("cannot read transaction: %s", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("no input data")
	}
	application, err := NewApplication(prometheus.NewRegistry())
	if err != nil {
		return nil, err
	}
	tx, err := application.Decoder.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("cannot decode transaction: %s", err)
	}
	return tx, nil
}

func apiGet(url string, dest interface{}) error {
	resp, err := httpClient.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
